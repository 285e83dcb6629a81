package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-backend-api/internal/services"
)

// ShippingHandler handles freight quote HTTP requests
type ShippingHandler struct {
	shippingService services.ShippingService
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(shippingService services.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
	}
}

// @Summary Quote freight
// @Description Quote shipping options for packages against a destination CEP
// @Tags frete
// @Accept json
// @Produce json
// @Param quote body services.FreightQuoteRequest true "Destination and packages"
// @Success 200 {array} melhorenvio.QuoteOption
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /frete [post]
func (h *ShippingHandler) QuoteFreight(c *gin.Context) {
	var req services.FreightQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	options, err := h.shippingService.QuoteFreight(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to quote freight")
		return
	}

	c.JSON(http.StatusOK, options)
}
