package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend-api/internal/services"
)

// FulfillmentHandler handles shipment label and tracking HTTP requests
type FulfillmentHandler struct {
	fulfillmentService services.FulfillmentService
}

// NewFulfillmentHandler creates a new fulfillment handler
func NewFulfillmentHandler(fulfillmentService services.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{
		fulfillmentService: fulfillmentService,
	}
}

// webhookPayload is the carrier webhook envelope
type webhookPayload struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// @Summary Create a shipment label
// @Description Insert a label for the order into the carrier cart
// @Tags fulfillment
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body services.CreateShipmentRequest false "Carrier service override"
// @Success 201 {object} services.CreateShipmentResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /fulfillment/{id}/create-shipment [post]
func (h *FulfillmentHandler) CreateShipment(c *gin.Context) {
	orderID, ok := parseFulfillmentOrderID(c)
	if !ok {
		return
	}

	var req services.CreateShipmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body", err.Error())
			return
		}
	}

	result, err := h.fulfillmentService.CreateShipment(c.Request.Context(), orderID, &req)
	if err != nil {
		respondError(c, err, "Failed to create shipment")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary Process a carrier webhook
// @Description Handle tracking, delivered and canceled events from the carrier
// @Tags fulfillment
// @Accept json
// @Produce json
// @Param event body webhookPayload true "Carrier event"
// @Success 200 {object} services.WebhookResult
// @Failure 400 {object} ErrorResponse
// @Router /fulfillment/webhook [post]
func (h *FulfillmentHandler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}
	if payload.Event == "" {
		badRequest(c, "Invalid request", "event is required")
		return
	}
	if payload.Data == nil {
		payload.Data = map[string]interface{}{}
	}

	result, err := h.fulfillmentService.ProcessWebhook(c.Request.Context(), payload.Event, payload.Data)
	if err != nil {
		respondError(c, err, "Failed to process webhook")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get order tracking
// @Description Get the tracking state and events of an order
// @Tags fulfillment
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} services.TrackingResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /fulfillment/{id}/tracking [get]
func (h *FulfillmentHandler) GetTracking(c *gin.Context) {
	orderID, ok := parseFulfillmentOrderID(c)
	if !ok {
		return
	}

	result, err := h.fulfillmentService.GetTrackingInfo(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, "Failed to get tracking")
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseFulfillmentOrderID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		badRequest(c, "Invalid request", "Order ID is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "Invalid order ID", "Order ID must be a valid UUID")
		return "", false
	}
	return id, true
}
