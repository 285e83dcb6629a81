package server

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/catalog"
	"store-backend-api/internal/config"
	"store-backend-api/internal/database"
	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/gateway/mercadopago"
	"store-backend-api/internal/middleware"
	"store-backend-api/internal/repositories/sqlite"
	"store-backend-api/internal/services"
	"store-backend-api/internal/storage"
)

// Container holds all application dependencies
type Container struct {
	Config             *config.Config
	PaymentService     services.PaymentService
	OrderService       services.OrderService
	ProductService     services.ProductService
	ProfileService     services.ProfileService
	ShippingService    services.ShippingService
	FulfillmentService services.FulfillmentService
	CleanupService     services.CleanupService
	AuthService        *middleware.AuthService
	Logger             *logrus.Logger

	// Internal dependencies
	connManager *database.ConnectionManager
	mirror      *catalog.Mirror
	files       storage.FileStorage
	services    *services.ServiceContainer
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := newLogger(cfg.Environment)

	connManager := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:    cfg.Database.ConnectionString,
		MigrationsPath:  cfg.Database.MigrationsPath,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Hour,
		Logger:          logger,
	})
	if err := connManager.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repos := sqlite.NewRepositoryContainer(connManager.GetDB(), logger)

	mpClient := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MercadoPago.AccessToken,
		BaseURL:     cfg.MercadoPago.BaseURL,
	}, logger)

	meClient := melhorenvio.NewClient(melhorenvio.Config{
		Token:     cfg.MelhorEnvio.Token,
		BaseURL:   cfg.MelhorEnvio.BaseURL,
		OriginCEP: cfg.MelhorEnvio.OriginCEP,
	}, logger)

	// the mirror is optional; services skip it when nil
	var mirror *catalog.Mirror
	if cfg.Redis.Addr != "" {
		mirror = catalog.NewMirror(catalog.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
	}

	files, err := storage.Create(context.Background(), &storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.LocalPath,
		Bucket:    cfg.Storage.S3Bucket,
		Region:    cfg.Storage.S3Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		connManager.Close()
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	serviceContainer, err := services.NewServiceContainer(repos, &services.Dependencies{
		MercadoPago: mpClient,
		MelhorEnvio: meClient,
		Mirror:      mirror,
		Files:       files,
		ShippingCfg: cfg.MelhorEnvio,
		Logger:      logger,
	})
	if err != nil {
		connManager.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	return &Container{
		Config:             cfg,
		PaymentService:     serviceContainer.PaymentService,
		OrderService:       serviceContainer.OrderService,
		ProductService:     serviceContainer.ProductService,
		ProfileService:     serviceContainer.ProfileService,
		ShippingService:    serviceContainer.ShippingService,
		FulfillmentService: serviceContainer.FulfillmentService,
		CleanupService:     serviceContainer.CleanupService,
		AuthService:        authService,
		Logger:             logger,
		connManager:        connManager,
		mirror:             mirror,
		files:              files,
		services:           serviceContainer,
	}, nil
}

// HealthCheck verifies the container's backing connections
func (c *Container) HealthCheck() error {
	if c.connManager == nil {
		return fmt.Errorf("database connection not initialized")
	}
	return c.connManager.HealthCheck()
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.services != nil {
		if err := c.services.Close(); err != nil {
			return fmt.Errorf("failed to close services: %w", err)
		}
	}

	if c.files != nil {
		if err := c.files.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close file storage")
		}
	}

	if c.mirror != nil {
		if err := c.mirror.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close catalog mirror")
		}
	}

	if c.connManager != nil {
		if err := c.connManager.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}

func newLogger(environment string) *logrus.Logger {
	logger := logrus.New()
	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
