package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"store-backend-api/internal/config"
	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

// fulfillmentService implements the FulfillmentService interface
type fulfillmentService struct {
	orderRepo repositories.OrderRepository
	client    *melhorenvio.Client
	cfg       config.MelhorEnvioConfig
	logger    *logrus.Logger
}

// NewFulfillmentService creates a new fulfillment service instance
func NewFulfillmentService(
	orderRepo repositories.OrderRepository,
	client *melhorenvio.Client,
	cfg config.MelhorEnvioConfig,
	logger *logrus.Logger,
) FulfillmentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &fulfillmentService{
		orderRepo: orderRepo,
		client:    client,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateShipment inserts a label for the order into the carrier cart
func (s *fulfillmentService) CreateShipment(ctx context.Context, orderID string, req *CreateShipmentRequest) (*CreateShipmentResult, error) {
	order, err := s.orderRepo.GetWithItems(ctx, orderID, "")
	if err != nil {
		return nil, wrapRepoErr(fmt.Sprintf("pedido %s não encontrado", orderID), err)
	}

	serviceID, err := s.resolveServiceID(order, req)
	if err != nil {
		return nil, err
	}

	if order.Payer == nil || order.Payer.Address == nil {
		return nil, invalidf("pedido não possui endereço de entrega")
	}
	payer := order.Payer
	addr := payer.Address

	sender := melhorenvio.Party{
		Name:         s.cfg.SenderName,
		Phone:        s.cfg.SenderPhone,
		Email:        s.cfg.SenderEmail,
		Document:     s.cfg.SenderCPF,
		Address:      s.cfg.SenderStreet,
		Number:       s.cfg.SenderNumber,
		Neighborhood: s.cfg.SenderDistr,
		City:         s.cfg.SenderCity,
		StateAbbr:    s.cfg.SenderUF,
		PostalCode:   s.cfg.OriginCEP,
		CountryID:    "BR",
	}

	recipient := melhorenvio.Party{
		Name:         strings.TrimSpace(payer.FirstName + " " + payer.LastName),
		Phone:        payer.Phone,
		Email:        payer.Email,
		Document:     payer.Identification.Number,
		Address:      addr.StreetName,
		Number:       addr.StreetNumber,
		Complement:   addr.Complement,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		StateAbbr:    addr.FederalUnit,
		PostalCode:   addr.ZipCode,
		CountryID:    "BR",
	}
	if recipient.Name == "" {
		recipient.Name = "Cliente"
	}

	products := make([]melhorenvio.CartProduct, 0, len(order.Items))
	totalValue := 0.0
	for _, item := range order.Items {
		products = append(products, melhorenvio.CartProduct{
			Name:         item.ProductName,
			Quantity:     item.Quantity,
			UnitaryValue: item.Price,
		})
		totalValue += item.Price * float64(item.Quantity)
	}

	volumes := []melhorenvio.Volume{{
		Height: models.DefaultPackageHeightCM,
		Width:  models.DefaultPackageWidthCM,
		Length: models.DefaultPackageLengthCM,
		Weight: models.DefaultPackageWeightKG,
	}}

	result, err := s.client.AddToCart(ctx, serviceID, sender, recipient, products, volumes, totalValue)
	if err != nil {
		return nil, gatewayErr("falha ao criar etiqueta no Melhor Envio", err)
	}

	if err := s.orderRepo.SetMelhorEnvioOrderID(ctx, orderID, result.ID); err != nil {
		return nil, wrapRepoErr("falha ao vincular etiqueta ao pedido", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":              orderID,
		"melhor_envio_order_id": result.ID,
	}).Info("Etiqueta criada no carrinho")

	return &CreateShipmentResult{
		MelhorEnvioOrderID: result.ID,
		Message:            "Etiqueta adicionada ao carrinho. Acesse o painel Melhor Envio para pagar.",
	}, nil
}

// ProcessWebhook handles carrier events (tracking, delivered, canceled)
func (s *fulfillmentService) ProcessWebhook(ctx context.Context, eventType string, data map[string]interface{}) (*WebhookResult, error) {
	meOrderID := webhookString(data, "order_id")
	if meOrderID == "" {
		meOrderID = webhookString(data, "id")
	}
	if meOrderID == "" {
		s.logger.WithField("event", eventType).Warn("Webhook sem order_id")
		return &WebhookResult{Status: "ignored", Reason: "no order_id"}, nil
	}

	order, err := s.orderRepo.GetByMelhorEnvioID(ctx, meOrderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			s.logger.WithField("me_order_id", meOrderID).Warn("Pedido não encontrado para ME order")
			return &WebhookResult{Status: "ignored", Reason: "order not found"}, nil
		}
		return nil, wrapRepoErr("falha ao buscar pedido do webhook", err)
	}

	switch eventType {
	case "shipment.tracking":
		trackingCode := webhookString(data, "tracking")
		if trackingCode == "" {
			trackingCode = webhookString(data, "tracking_code")
		}
		if trackingCode != "" {
			shipped := models.OrderStatusShipped
			if err := s.orderRepo.UpdateTracking(ctx, order.ID, trackingCode, &shipped); err != nil {
				return nil, wrapRepoErr("falha ao atualizar rastreamento", err)
			}
			s.logger.WithFields(logrus.Fields{
				"order_id":      order.ID,
				"tracking_code": trackingCode,
			}).Info("Rastreamento atualizado")
			return &WebhookResult{Status: "updated", TrackingCode: trackingCode}, nil
		}

	case "shipment.delivered":
		if _, err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusDelivered); err != nil {
			return nil, wrapRepoErr("falha ao marcar pedido como entregue", err)
		}
		s.logger.WithField("order_id", order.ID).Info("Pedido entregue")
		return &WebhookResult{Status: "delivered"}, nil

	case "shipment.canceled":
		s.logger.WithField("order_id", order.ID).Info("Envio cancelado no ME")
		return &WebhookResult{Status: "canceled"}, nil
	}

	s.logger.WithField("event", eventType).Info("Evento webhook não tratado")
	return &WebhookResult{Status: "ignored", Reason: "unhandled event: " + eventType}, nil
}

// GetTrackingInfo returns the tracking state of an order
func (s *fulfillmentService) GetTrackingInfo(ctx context.Context, orderID string) (*TrackingResult, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, "")
	if err != nil {
		return nil, wrapRepoErr(fmt.Sprintf("pedido %s não encontrado", orderID), err)
	}

	result := &TrackingResult{
		OrderID:        orderID,
		TrackingCode:   order.TrackingCode,
		Status:         order.Status,
		TrackingEvents: []melhorenvio.TrackingEvent{},
	}

	if order.MelhorEnvioOrderID == nil || *order.MelhorEnvioOrderID == "" {
		return result, nil
	}

	meOrderID := *order.MelhorEnvioOrderID
	tracking, err := s.client.GetTracking(ctx, []string{meOrderID})
	if err != nil {
		// tracking is best-effort; the order state is still useful
		s.logger.WithError(err).WithField("order_id", orderID).Warn("Falha ao consultar rastreamento")
		return result, nil
	}

	if info, ok := tracking[meOrderID]; ok {
		result.TrackingEvents = info.Tracking.Events
	}

	return result, nil
}

// resolveServiceID prefers the request's service ID and falls back to the
// service stored on the order at checkout.
func (s *fulfillmentService) resolveServiceID(order *models.Order, req *CreateShipmentRequest) (int, error) {
	if req != nil && req.ServiceID != nil {
		return *req.ServiceID, nil
	}

	if order.ShippingService == nil || strings.TrimSpace(*order.ShippingService) == "" {
		return 0, invalidf("pedido sem shipping_service; não é possível criar etiqueta")
	}

	serviceID, err := strconv.Atoi(strings.TrimSpace(*order.ShippingService))
	if err != nil {
		return 0, invalidf("shipping_service do pedido inválido para o Melhor Envio")
	}

	return serviceID, nil
}

func webhookString(data map[string]interface{}, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
