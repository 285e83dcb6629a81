package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend-api/internal/middleware"
	"store-backend-api/internal/models"
	"store-backend-api/internal/services"
)

// OrderHandler handles order lifecycle HTTP requests
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// OrderUpdateRequest is the backoffice PUT payload: either a status
// transition or a cancel+refund instruction.
type OrderUpdateRequest struct {
	Status        *models.OrderStatus `json:"status,omitempty"`
	FullCancel    bool                `json:"full_cancel,omitempty"`
	CancelItemIDs []string            `json:"cancel_item_ids,omitempty"`
	RefundMethod  string              `json:"refund_method,omitempty"`
}

// @Summary List orders
// @Description List the caller's orders, or every order when the X-Backoffice header is set by an admin
// @Tags pedidos
// @Accept json
// @Produce json
// @Param X-Backoffice header string false "Set to true to list all orders (admin only)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} services.OrderList
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /pedidos [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		return
	}

	page, limit := parsePagination(c)

	var (
		result *services.OrderList
		err    error
	)
	if c.GetHeader("X-Backoffice") == "true" {
		result, err = h.orderService.ListAllOrders(c.Request.Context(), userID, page, limit)
	} else {
		result, err = h.orderService.ListOrdersByCustomer(c.Request.Context(), userID, page, limit)
	}
	if err != nil {
		respondError(c, err, "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Get an order
// @Description Get the caller's order with items and refund requests
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} services.OrderDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /pedidos/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		return
	}

	detail, err := h.orderService.GetOrderDetail(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary Request an order cancel/refund
// @Description Register a customer cancel/refund request, total or per item, within the allowed window
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body services.CancelRequest true "Cancel scope"
// @Success 201 {object} services.CancelResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /pedidos/{id}/solicitar-cancelamento [post]
func (h *OrderHandler) RequestCancel(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		return
	}

	var req services.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.orderService.RequestCancelOrRefund(c.Request.Context(), orderID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to register cancel request")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary Update an order (backoffice)
// @Description Either move the order through the status lifecycle or cancel and refund it
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body OrderUpdateRequest true "Status transition or cancel+refund instruction"
// @Success 200 {object} services.BackofficeCancelResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /pedidos/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err.Error())
		return
	}

	switch {
	case req.Status != nil:
		order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, *req.Status)
		if err != nil {
			respondError(c, err, "Failed to update order status")
			return
		}
		c.JSON(http.StatusOK, order)

	case req.RefundMethod != "":
		result, err := h.orderService.BackofficeCancelAndRefund(c.Request.Context(), orderID, &services.BackofficeCancelRequest{
			FullCancel:    req.FullCancel,
			CancelItemIDs: req.CancelItemIDs,
			RefundMethod:  req.RefundMethod,
		})
		if err != nil {
			respondError(c, err, "Failed to cancel and refund order")
			return
		}
		c.JSON(http.StatusOK, result)

	default:
		badRequest(c, "Invalid request", "Provide status or refund_method")
	}
}

// @Summary Delete an order
// @Description Delete an order; items and refunds cascade, vouchers keep existing without the order link
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 204 "Order deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /pedidos/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondError(c, err, "Failed to delete order")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseOrderID(c *gin.Context) (string, bool) {
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

func parsePagination(c *gin.Context) (int, int) {
	page, limit := 1, 10
	if val, err := strconv.Atoi(c.Query("page")); err == nil && val > 0 {
		page = val
	}
	if val, err := strconv.Atoi(c.Query("limit")); err == nil && val > 0 {
		limit = val
	}
	return page, limit
}
