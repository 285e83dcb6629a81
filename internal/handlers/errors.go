package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-backend-api/internal/services"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a service error to the matching HTTP status.
// Validation and business-rule violations are 400, ownership and role
// failures 403, missing entities 404, upstream gateway failures 502,
// everything else 500.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case services.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "Forbidden",
			Message: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Not found",
			Message: err.Error(),
		})
	case services.IsGateway(err):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Upstream gateway error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   fallback,
			Message: err.Error(),
		})
	}
}

// badRequest writes a 400 with the given messages
func badRequest(c *gin.Context, title, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   title,
		Message: message,
	})
}
