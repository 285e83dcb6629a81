// Package mercadopago is a small HTTP client for the Mercado Pago
// payments API: payment creation and refunds.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"store-backend-api/internal/models"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 30 * time.Second

// APIError is returned when the Mercado Pago API rejects a request
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercado pago: %s (status %d)", e.Message, e.StatusCode)
}

// Config holds client configuration
type Config struct {
	AccessToken string
	BaseURL     string
}

// Client talks to the Mercado Pago API
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

// NewClient creates a Mercado Pago client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mercadopago.com"
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// PaymentRequest is the payment creation payload
type PaymentRequest struct {
	TransactionAmount float64       `json:"transaction_amount"`
	Description       string        `json:"description"`
	PaymentMethodID   string        `json:"payment_method_id"`
	Payer             *models.Payer `json:"payer"`
	Token             string        `json:"token,omitempty"`
	Installments      int           `json:"installments,omitempty"`
	IssuerID          string        `json:"issuer_id,omitempty"`
}

// PaymentResponse is the relevant slice of the payment creation response
type PaymentResponse struct {
	ID                 json.Number `json:"id"`
	Status             string      `json:"status"`
	StatusDetail       string      `json:"status_detail"`
	DateOfExpiration   string      `json:"date_of_expiration"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
			TicketURL    string `json:"ticket_url"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
	TransactionDetails struct {
		ExternalResourceURL string `json:"external_resource_url"`
	} `json:"transaction_details"`
}

// IsPix reports whether a payment method is PIX
func IsPix(methodID string) bool {
	return methodID == "pix"
}

// IsTicket reports whether a payment method is boleto/PEC (paid at a counter)
func IsTicket(methodID string) bool {
	return strings.Contains(methodID, "bol") || methodID == "pec"
}

// CreatePayment creates a payment. The idempotency key must be stable for
// retries of the same checkout attempt.
func (c *Client) CreatePayment(ctx context.Context, payment *PaymentRequest, idempotencyKey string) (*PaymentResponse, error) {
	headers := map[string]string{"x-idempotency-key": idempotencyKey}

	var result PaymentResponse
	if err := c.post(ctx, "/v1/payments", payment, headers, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// RefundResponse is the relevant slice of the refund creation response
type RefundResponse struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
	Amount float64     `json:"amount"`
}

// Refund refunds a payment. A nil amount refunds the full payment.
func (c *Client) Refund(ctx context.Context, paymentID string, amount *float64, idempotencyKey string) (*RefundResponse, error) {
	body := map[string]interface{}{}
	if amount != nil {
		body["amount"] = models.Round2(*amount)
	}

	headers := map[string]string{"X-Idempotency-Key": idempotencyKey}
	path := fmt.Sprintf("/v1/payments/%s/refunds", paymentID)

	var result RefundResponse
	if err := c.post(ctx, path, body, headers, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, headers map[string]string, out interface{}) error {
	if c.cfg.AccessToken == "" {
		return &APIError{Message: "MERCADO_PAGO_ACCESS_TOKEN não configurado"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &APIError{Message: fmt.Sprintf("encoding request: %v", err)}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &APIError{Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Error("Mercado Pago request failed")
		return &APIError{Message: "falha de conexão com o Mercado Pago"}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "falha ao ler resposta do Mercado Pago"}
	}

	c.logger.WithFields(logrus.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Mercado Pago request completed")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "resposta inválida do Mercado Pago"}
	}

	return nil
}

// extractErrorMessage pulls message plus the first cause description out
// of an MP error body.
func extractErrorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Cause   []struct {
			Description string `json:"description"`
		} `json:"cause"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		return "erro no Mercado Pago"
	}
	if len(body.Cause) > 0 && body.Cause[0].Description != "" {
		return fmt.Sprintf("%s - %s", body.Message, body.Cause[0].Description)
	}
	return body.Message
}
