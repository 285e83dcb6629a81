package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/catalog"
	"store-backend-api/internal/config"
	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/gateway/mercadopago"
	"store-backend-api/internal/repositories"
	"store-backend-api/internal/storage"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	PaymentService     PaymentService
	OrderService       OrderService
	ProductService     ProductService
	ProfileService     ProfileService
	ShippingService    ShippingService
	FulfillmentService FulfillmentService
	CleanupService     CleanupService
}

// Dependencies holds everything the services need besides repositories
type Dependencies struct {
	MercadoPago *mercadopago.Client
	MelhorEnvio *melhorenvio.Client
	Mirror      *catalog.Mirror
	Files       storage.FileStorage
	ShippingCfg config.MelhorEnvioConfig
	Logger      *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos *repositories.RepositoryContainer, deps *Dependencies) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository container cannot be nil")
	}
	if deps == nil {
		return nil, fmt.Errorf("service dependencies cannot be nil")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}

	paymentService := NewPaymentService(
		repos.ProductRepo,
		repos.OrderRepo,
		deps.MercadoPago,
		deps.MelhorEnvio,
		deps.Mirror,
		logger,
	)

	orderService := NewOrderService(
		repos.OrderRepo,
		repos.ProfileRepo,
		repos.VoucherRepo,
		repos.RefundRepo,
		deps.MercadoPago,
		logger,
	)

	productService := NewProductService(repos.ProductRepo, deps.Mirror, deps.Files, logger)
	profileService := NewProfileService(repos.ProfileRepo, logger)
	shippingService := NewShippingService(deps.MelhorEnvio, logger)
	fulfillmentService := NewFulfillmentService(repos.OrderRepo, deps.MelhorEnvio, deps.ShippingCfg, logger)
	cleanupService := NewCleanupService(repos.ProductRepo, deps.Files, logger)

	return &ServiceContainer{
		PaymentService:     paymentService,
		OrderService:       orderService,
		ProductService:     productService,
		ProfileService:     profileService,
		ShippingService:    shippingService,
		FulfillmentService: fulfillmentService,
		CleanupService:     cleanupService,
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.PaymentService == nil {
		return fmt.Errorf("payment service is nil")
	}
	if sc.OrderService == nil {
		return fmt.Errorf("order service is nil")
	}
	if sc.ProductService == nil {
		return fmt.Errorf("product service is nil")
	}
	if sc.ProfileService == nil {
		return fmt.Errorf("profile service is nil")
	}
	if sc.ShippingService == nil {
		return fmt.Errorf("shipping service is nil")
	}
	if sc.FulfillmentService == nil {
		return fmt.Errorf("fulfillment service is nil")
	}
	if sc.CleanupService == nil {
		return fmt.Errorf("cleanup service is nil")
	}

	return nil
}

// Close performs cleanup for all services
func (sc *ServiceContainer) Close() error {
	// Services don't hold connections themselves; gateways and the
	// catalog mirror are closed by the owning container.
	return nil
}
