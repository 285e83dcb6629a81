package services

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/models"
)

// shippingService implements the ShippingService interface
type shippingService struct {
	client    *melhorenvio.Client
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewShippingService creates a new shipping service instance
func NewShippingService(client *melhorenvio.Client, logger *logrus.Logger) ShippingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &shippingService{
		client:    client,
		validator: validator.New(),
		logger:    logger,
	}
}

// QuoteFreight returns the shipping options for the given packages.
// All CEPs are quoted through the carrier; there are no local rules or
// region conditionals.
func (s *shippingService) QuoteFreight(ctx context.Context, req *FreightQuoteRequest) ([]melhorenvio.QuoteOption, error) {
	if req == nil {
		return nil, invalidf("freight quote request cannot be nil")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidf("validation failed: %v", err)
	}
	cep, ok := models.NormalizeCEP(req.DestinationCEP)
	if !ok {
		return nil, invalidf("CEP de destino inválido: %s", req.DestinationCEP)
	}

	packages := make([]melhorenvio.PackageInput, 0, len(req.Items))
	for i, item := range req.Items {
		packages = append(packages, melhorenvio.PackageInput{
			ID:             strconv.Itoa(i + 1),
			Width:          item.Width,
			Height:         item.Height,
			Length:         item.Length,
			Weight:         item.Weight,
			Quantity:       item.Quantity,
			InsuranceValue: item.InsuranceValue,
		})
	}

	options, err := s.client.Quote(ctx, cep, packages)
	if err != nil {
		return nil, gatewayErr("falha ao cotar frete", err)
	}

	return options, nil
}
