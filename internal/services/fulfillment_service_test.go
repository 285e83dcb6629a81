package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"store-backend-api/internal/config"
	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

func senderConfig() config.MelhorEnvioConfig {
	return config.MelhorEnvioConfig{
		Token:        "t",
		OriginCEP:    "80000-000",
		SenderName:   "Loja Teste",
		SenderPhone:  "41999990000",
		SenderEmail:  "loja@example.com",
		SenderCPF:    "11122233344",
		SenderStreet: "Rua das Araucárias",
		SenderNumber: "100",
		SenderDistr:  "Centro",
		SenderCity:   "Curitiba",
		SenderUF:     "PR",
	}
}

func shippableOrder(t *testing.T, repos *repositories.RepositoryContainer, userID string) *models.Order {
	t.Helper()

	order := models.NewOrder(userID, models.OrderStatusApproved, 150)
	order.Payer = &models.Payer{
		Email:     "cliente@example.com",
		FirstName: "Maria",
		LastName:  "Silva",
		Identification: models.Identification{
			Type:   "CPF",
			Number: "12345678901",
		},
		Address: &models.Address{
			ZipCode:      "01310-100",
			StreetName:   "Av. Paulista",
			StreetNumber: "1000",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			FederalUnit:  "SP",
		},
	}
	order.ShippingService = strPtr("2")

	items := []*models.OrderItem{
		models.NewOrderItem(order.ID, 1, "Vestido", 1, 150),
	}
	return createOrder(t, repos, order, items)
}

func TestFulfillmentService_CreateShipment(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	var gotCart map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotCart)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "me-abc-123",
			"protocol": "ORD-2025-001",
			"status":   "pending",
		})
	}))
	defer server.Close()

	cfg := senderConfig()
	cfg.BaseURL = server.URL
	client := melhorenvio.NewClient(melhorenvio.Config{
		Token: cfg.Token, BaseURL: cfg.BaseURL, OriginCEP: cfg.OriginCEP,
	}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "envio@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)

	result, err := svc.CreateShipment(ctx, order.ID, nil)
	if err != nil {
		t.Fatalf("Failed to create shipment: %v", err)
	}
	if result.MelhorEnvioOrderID != "me-abc-123" {
		t.Errorf("Expected carrier order me-abc-123, got %s", result.MelhorEnvioOrderID)
	}

	// the service comes from the order's shipping_service
	if service, _ := gotCart["service"].(float64); service != 2 {
		t.Errorf("Expected service 2 on the cart request, got %v", gotCart["service"])
	}
	from, _ := gotCart["from"].(map[string]interface{})
	if from["city"] != "Curitiba" {
		t.Errorf("Expected sender city from config, got %v", from["city"])
	}
	to, _ := gotCart["to"].(map[string]interface{})
	if to["name"] != "Maria Silva" {
		t.Errorf("Expected recipient name from payer, got %v", to["name"])
	}

	// the carrier order is linked back to ours
	got, err := repos.OrderRepo.GetByMelhorEnvioID(ctx, "me-abc-123")
	if err != nil {
		t.Fatalf("Failed to load order by carrier ID: %v", err)
	}
	if got.ID != order.ID {
		t.Errorf("Expected order %s, got %s", order.ID, got.ID)
	}
}

func TestFulfillmentService_CreateShipment_ServiceIDOverride(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	var gotCart map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotCart)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "me-override"})
	}))
	defer server.Close()

	cfg := senderConfig()
	cfg.BaseURL = server.URL
	client := melhorenvio.NewClient(melhorenvio.Config{
		Token: cfg.Token, BaseURL: cfg.BaseURL, OriginCEP: cfg.OriginCEP,
	}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())

	user := createProfile(t, repos, "override@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)

	serviceID := 17
	_, err := svc.CreateShipment(context.Background(), order.ID, &CreateShipmentRequest{ServiceID: &serviceID})
	if err != nil {
		t.Fatalf("Failed to create shipment: %v", err)
	}
	if service, _ := gotCart["service"].(float64); service != 17 {
		t.Errorf("Expected requested service 17, got %v", gotCart["service"])
	}
}

func TestFulfillmentService_CreateShipment_Validation(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	cfg := senderConfig()
	client := melhorenvio.NewClient(melhorenvio.Config{
		Token: cfg.Token, OriginCEP: cfg.OriginCEP,
	}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "incompleto@example.com", models.RoleUser)

	// no shipping_service stored and no service in the request
	noService := models.NewOrder(user.ID, models.OrderStatusApproved, 50)
	noService.Payer = &models.Payer{
		Email:   "cliente@example.com",
		Address: &models.Address{ZipCode: "01310-100", StreetName: "Rua A", City: "São Paulo", FederalUnit: "SP"},
	}
	createOrder(t, repos, noService, []*models.OrderItem{models.NewOrderItem(noService.ID, 1, "Bolsa", 1, 50)})

	if _, err := svc.CreateShipment(ctx, noService.ID, nil); !IsInvalidInput(err) {
		t.Errorf("Expected invalid input without shipping service, got %v", err)
	}

	// non-numeric shipping_service
	badService := models.NewOrder(user.ID, models.OrderStatusApproved, 50)
	badService.Payer = noService.Payer
	badService.ShippingService = strPtr("sedex")
	createOrder(t, repos, badService, []*models.OrderItem{models.NewOrderItem(badService.ID, 1, "Bolsa", 1, 50)})

	if _, err := svc.CreateShipment(ctx, badService.ID, nil); !IsInvalidInput(err) {
		t.Errorf("Expected invalid input for non-numeric shipping service, got %v", err)
	}

	// missing delivery address
	noAddress := models.NewOrder(user.ID, models.OrderStatusApproved, 50)
	noAddress.ShippingService = strPtr("2")
	createOrder(t, repos, noAddress, []*models.OrderItem{models.NewOrderItem(noAddress.ID, 1, "Bolsa", 1, 50)})

	if _, err := svc.CreateShipment(ctx, noAddress.ID, nil); !IsInvalidInput(err) {
		t.Errorf("Expected invalid input without address, got %v", err)
	}

	// unknown order
	if _, err := svc.CreateShipment(ctx, "nao-existe", nil); !IsNotFound(err) {
		t.Errorf("Expected not found for unknown order, got %v", err)
	}
}

func TestFulfillmentService_ProcessWebhook_Tracking(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	cfg := senderConfig()
	client := melhorenvio.NewClient(melhorenvio.Config{Token: cfg.Token, OriginCEP: cfg.OriginCEP}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "rastreio@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)
	if err := repos.OrderRepo.SetMelhorEnvioOrderID(ctx, order.ID, "me-track-1"); err != nil {
		t.Fatalf("Failed to link carrier order: %v", err)
	}

	result, err := svc.ProcessWebhook(ctx, "shipment.tracking", map[string]interface{}{
		"order_id": "me-track-1",
		"tracking": "BR123456789XX",
	})
	if err != nil {
		t.Fatalf("Failed to process webhook: %v", err)
	}
	if result.Status != "updated" || result.TrackingCode != "BR123456789XX" {
		t.Errorf("Unexpected webhook result: %+v", result)
	}

	got, err := repos.OrderRepo.GetByID(ctx, order.ID, "")
	if err != nil {
		t.Fatalf("Failed to load order: %v", err)
	}
	if got.Status != models.OrderStatusShipped {
		t.Errorf("Expected order shipped, got %s", got.Status)
	}
	if got.TrackingCode == nil || *got.TrackingCode != "BR123456789XX" {
		t.Errorf("Expected tracking code on order, got %v", got.TrackingCode)
	}
}

func TestFulfillmentService_ProcessWebhook_Delivered(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	cfg := senderConfig()
	client := melhorenvio.NewClient(melhorenvio.Config{Token: cfg.Token, OriginCEP: cfg.OriginCEP}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "entregue@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)
	if err := repos.OrderRepo.SetMelhorEnvioOrderID(ctx, order.ID, "me-deliver-1"); err != nil {
		t.Fatalf("Failed to link carrier order: %v", err)
	}

	// some events carry the reference under "id" instead of "order_id"
	result, err := svc.ProcessWebhook(ctx, "shipment.delivered", map[string]interface{}{
		"id": "me-deliver-1",
	})
	if err != nil {
		t.Fatalf("Failed to process webhook: %v", err)
	}
	if result.Status != "delivered" {
		t.Errorf("Expected delivered result, got %+v", result)
	}

	got, err := repos.OrderRepo.GetByID(ctx, order.ID, "")
	if err != nil {
		t.Fatalf("Failed to load order: %v", err)
	}
	if got.Status != models.OrderStatusDelivered {
		t.Errorf("Expected order delivered, got %s", got.Status)
	}
}

func TestFulfillmentService_ProcessWebhook_Ignored(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	cfg := senderConfig()
	client := melhorenvio.NewClient(melhorenvio.Config{Token: cfg.Token, OriginCEP: cfg.OriginCEP}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	// no order reference at all
	result, err := svc.ProcessWebhook(ctx, "shipment.tracking", map[string]interface{}{})
	if err != nil {
		t.Fatalf("Failed to process webhook: %v", err)
	}
	if result.Status != "ignored" || result.Reason != "no order_id" {
		t.Errorf("Unexpected result for missing order_id: %+v", result)
	}

	// order reference that we never created
	result, err = svc.ProcessWebhook(ctx, "shipment.tracking", map[string]interface{}{
		"order_id": "me-desconhecido",
	})
	if err != nil {
		t.Fatalf("Failed to process webhook: %v", err)
	}
	if result.Status != "ignored" || result.Reason != "order not found" {
		t.Errorf("Unexpected result for unknown order: %+v", result)
	}

	// event type we do not handle
	user := createProfile(t, repos, "ignorado@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)
	if err := repos.OrderRepo.SetMelhorEnvioOrderID(ctx, order.ID, "me-ignore-1"); err != nil {
		t.Fatalf("Failed to link carrier order: %v", err)
	}

	result, err = svc.ProcessWebhook(ctx, "shipment.paid", map[string]interface{}{
		"order_id": "me-ignore-1",
	})
	if err != nil {
		t.Fatalf("Failed to process webhook: %v", err)
	}
	if result.Status != "ignored" {
		t.Errorf("Expected unhandled event to be ignored, got %+v", result)
	}
}

func TestFulfillmentService_GetTrackingInfo(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"me-info-1": map[string]interface{}{
				"status": "posted",
				"tracking": map[string]interface{}{
					"events": []map[string]interface{}{
						{"description": "Objeto postado", "location": "Curitiba/PR"},
					},
				},
			},
		})
	}))
	defer server.Close()

	cfg := senderConfig()
	cfg.BaseURL = server.URL
	client := melhorenvio.NewClient(melhorenvio.Config{
		Token: cfg.Token, BaseURL: cfg.BaseURL, OriginCEP: cfg.OriginCEP,
	}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "consulta@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)
	if err := repos.OrderRepo.SetMelhorEnvioOrderID(ctx, order.ID, "me-info-1"); err != nil {
		t.Fatalf("Failed to link carrier order: %v", err)
	}
	shipped := models.OrderStatusShipped
	if err := repos.OrderRepo.UpdateTracking(ctx, order.ID, "BR000111222XX", &shipped); err != nil {
		t.Fatalf("Failed to set tracking: %v", err)
	}

	result, err := svc.GetTrackingInfo(ctx, order.ID)
	if err != nil {
		t.Fatalf("Failed to get tracking info: %v", err)
	}
	if result.Status != models.OrderStatusShipped {
		t.Errorf("Expected shipped status, got %s", result.Status)
	}
	if result.TrackingCode == nil || *result.TrackingCode != "BR000111222XX" {
		t.Errorf("Expected tracking code, got %v", result.TrackingCode)
	}
	if len(result.TrackingEvents) != 1 || result.TrackingEvents[0].Description != "Objeto postado" {
		t.Errorf("Unexpected tracking events: %+v", result.TrackingEvents)
	}
}

func TestFulfillmentService_GetTrackingInfo_BestEffort(t *testing.T) {
	_, repos, cleanup := setupServiceDB(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := senderConfig()
	cfg.BaseURL = server.URL
	client := melhorenvio.NewClient(melhorenvio.Config{
		Token: cfg.Token, BaseURL: cfg.BaseURL, OriginCEP: cfg.OriginCEP,
	}, testLogger())
	svc := NewFulfillmentService(repos.OrderRepo, client, cfg, testLogger())
	ctx := context.Background()

	user := createProfile(t, repos, "melhor-esforco@example.com", models.RoleUser)
	order := shippableOrder(t, repos, user.ID)
	if err := repos.OrderRepo.SetMelhorEnvioOrderID(ctx, order.ID, "me-down-1"); err != nil {
		t.Fatalf("Failed to link carrier order: %v", err)
	}

	// the carrier API is down, but the local order state still comes back
	result, err := svc.GetTrackingInfo(ctx, order.ID)
	if err != nil {
		t.Fatalf("Expected best-effort result, got %v", err)
	}
	if result.Status != models.OrderStatusApproved {
		t.Errorf("Expected local order status, got %s", result.Status)
	}
	if len(result.TrackingEvents) != 0 {
		t.Errorf("Expected no events, got %+v", result.TrackingEvents)
	}
}
