package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-backend-api/internal/middleware"
	"store-backend-api/internal/services"
)

// PaymentHandler handles checkout HTTP requests
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// @Summary Process a payment
// @Description Validate the cart and freight, charge through the payment gateway and create the order
// @Tags pagamento
// @Accept json
// @Produce json
// @Param payment body services.ProcessPaymentRequest true "Checkout data"
// @Success 201 {object} services.ProcessPaymentResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /pagamento [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req services.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	// the authenticated caller is the buyer regardless of the payload
	if userID, ok := middleware.GetUserID(c); ok {
		req.UserID = userID
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to process payment")
		return
	}

	c.JSON(http.StatusCreated, result)
}
