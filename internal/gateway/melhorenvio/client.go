// Package melhorenvio is a small HTTP client for the Melhor Envio API:
// freight quotes, cart (label) insertion and shipment tracking.
package melhorenvio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"store-backend-api/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	calculatePath = "/api/v2/me/shipment/calculate"
	cartPath      = "/api/v2/me/cart"
	trackingPath  = "/api/v2/me/shipment/tracking"

	requestTimeout = 15 * time.Second
)

// APIError is returned when the Melhor Envio API fails or is unreachable
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("melhor envio: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("melhor envio: %s", e.Message)
}

// Config holds client configuration
type Config struct {
	Token     string
	BaseURL   string
	OriginCEP string
}

// Client talks to the Melhor Envio API
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

// NewClient creates a Melhor Envio client
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://melhorenvio.com.br"
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

// PackageInput describes one package for a freight quote
type PackageInput struct {
	ID             string  `json:"id"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Length         float64 `json:"length"`
	Weight         float64 `json:"weight"`
	Quantity       int     `json:"quantity"`
	InsuranceValue float64 `json:"insurance_value"`
}

// QuoteOption is one shipping option returned by a quote
type QuoteOption struct {
	Carrier      string  `json:"transportadora"`
	Price        float64 `json:"preco"`
	DeliveryDays *int    `json:"prazo_entrega_dias"`
	Service      string  `json:"service"`
}

type postalCode struct {
	PostalCode string `json:"postal_code"`
}

type quoteRequest struct {
	From     postalCode     `json:"from"`
	To       postalCode     `json:"to"`
	Products []PackageInput `json:"products"`
	Options  cartOptions    `json:"options"`
}

type cartOptions struct {
	InsuranceValue float64 `json:"insurance_value,omitempty"`
	Receipt        bool    `json:"receipt"`
	OwnHand        bool    `json:"own_hand"`
}

// Quote calls the calculate endpoint and returns the parsed options.
// Destination is the customer CEP; packages must have dimensions in cm
// and weight in kg.
func (c *Client) Quote(ctx context.Context, destinationCEP string, packages []PackageInput) ([]QuoteOption, error) {
	if c.cfg.Token == "" {
		return nil, &APIError{Message: "MELHOR_ENVIO_TOKEN não configurado"}
	}
	if c.cfg.OriginCEP == "" {
		return nil, &APIError{Message: "CEP_ORIGEM não configurado"}
	}

	for i := range packages {
		if packages[i].ID == "" {
			packages[i].ID = strconv.Itoa(i + 1)
		}
		if packages[i].Quantity < 1 {
			packages[i].Quantity = 1
		}
		packages[i].Width = models.Round2(packages[i].Width)
		packages[i].Height = models.Round2(packages[i].Height)
		packages[i].Length = models.Round2(packages[i].Length)
		packages[i].InsuranceValue = models.Round2(packages[i].InsuranceValue)
	}

	body := quoteRequest{
		From:     postalCode{PostalCode: c.cfg.OriginCEP},
		To:       postalCode{PostalCode: destinationCEP},
		Products: packages,
		Options:  cartOptions{Receipt: false, OwnHand: false},
	}

	var raw json.RawMessage
	if err := c.post(ctx, calculatePath, body, &raw); err != nil {
		return nil, err
	}

	return parseQuoteResponse(raw)
}

// Party identifies the sender or recipient of a shipment
type Party struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Document     string `json:"document"`
	Address      string `json:"address"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	StateAbbr    string `json:"state_abbr"`
	PostalCode   string `json:"postal_code"`
	CountryID    string `json:"country_id"`
}

// CartProduct is one declared product on a shipment label
type CartProduct struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitaryValue  float64 `json:"unitary_value"`
}

// Volume is one physical package of a shipment
type Volume struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
}

type cartRequest struct {
	Service   int           `json:"service"`
	From      Party         `json:"from"`
	To        Party         `json:"to"`
	Products  []CartProduct `json:"products"`
	Volumes   []Volume      `json:"volumes"`
	Options   cartOptions   `json:"options"`
}

// CartResult is the relevant slice of the cart insertion response
type CartResult struct {
	ID       string `json:"id"`
	Protocol string `json:"protocol"`
	Status   string `json:"status"`
}

// AddToCart inserts a shipment label into the Melhor Envio cart and
// returns the created order ID.
func (c *Client) AddToCart(ctx context.Context, serviceID int, sender, recipient Party, products []CartProduct, volumes []Volume, insuranceValue float64) (*CartResult, error) {
	if c.cfg.Token == "" {
		return nil, &APIError{Message: "MELHOR_ENVIO_TOKEN não configurado"}
	}

	body := cartRequest{
		Service:  serviceID,
		From:     sender,
		To:       recipient,
		Products: products,
		Volumes:  volumes,
		Options: cartOptions{
			InsuranceValue: models.Round2(insuranceValue),
			Receipt:        false,
			OwnHand:        false,
		},
	}

	var result CartResult
	if err := c.post(ctx, cartPath, body, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, &APIError{Message: "resposta do carrinho sem ID"}
	}

	return &result, nil
}

// TrackingEvent is one event on a shipment's tracking timeline
type TrackingEvent struct {
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`
}

// TrackingInfo is the tracking state of one shipment
type TrackingInfo struct {
	Tracking struct {
		Events []TrackingEvent `json:"events"`
	} `json:"tracking"`
	Status string `json:"status"`
}

// GetTracking fetches tracking data for the given Melhor Envio order IDs
func (c *Client) GetTracking(ctx context.Context, orderIDs []string) (map[string]TrackingInfo, error) {
	if c.cfg.Token == "" {
		return nil, &APIError{Message: "MELHOR_ENVIO_TOKEN não configurado"}
	}

	body := map[string][]string{"orders": orderIDs}

	var result map[string]TrackingInfo
	if err := c.post(ctx, trackingPath, body, &result); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
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
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Error("Melhor Envio request failed")
		return &APIError{Message: "falha de conexão com a API de frete"}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: "falha ao ler resposta da API de frete"}
	}

	c.logger.WithFields(logrus.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Melhor Envio request completed")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API retornou status %d", resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Message: "resposta inválida da API de frete"}
	}

	return nil
}

// parseQuoteResponse tolerates the different shapes the calculate
// endpoint may return: a plain list, an object with packages/data
// lists, or a single option object.
func parseQuoteResponse(raw json.RawMessage) ([]QuoteOption, error) {
	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		return collectOptions(list), nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &APIError{Message: "resposta inválida da API de frete"}
	}

	for _, key := range []string{"id", "packages", "data"} {
		val, ok := obj[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case []interface{}:
			var entries []map[string]interface{}
			for _, item := range v {
				entry, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				inner := entry["options"]
				if inner == nil {
					inner = entry["services"]
				}
				if innerList, ok := inner.([]interface{}); ok {
					for _, opt := range innerList {
						if m, ok := opt.(map[string]interface{}); ok {
							entries = append(entries, m)
						}
					}
				} else {
					entries = append(entries, entry)
				}
			}
			return collectOptions(entries), nil
		case map[string]interface{}:
			return collectOptions([]map[string]interface{}{v}), nil
		}
	}

	return collectOptions([]map[string]interface{}{obj}), nil
}

func collectOptions(entries []map[string]interface{}) []QuoteOption {
	var options []QuoteOption
	for _, entry := range entries {
		if opt := parseQuoteOption(entry); opt != nil {
			options = append(options, *opt)
		}
	}
	return options
}

func parseQuoteOption(entry map[string]interface{}) *QuoteOption {
	name := stringField(entry, "name")
	company, _ := entry["company"].(map[string]interface{})
	if name == "" && company != nil {
		name = stringField(company, "name")
	}
	if name == "" {
		name = stringField(entry, "company_name")
	}
	if name == "" {
		name = "Transportadora"
	}

	price, ok := floatField(entry, "custom_price")
	if !ok {
		price, ok = floatField(entry, "price")
	}
	if !ok {
		return nil
	}

	var days *int
	for _, key := range []string{"delivery_time", "delivery_time_min", "custom_delivery_time"} {
		if v, ok := floatField(entry, key); ok {
			d := int(v)
			days = &d
			break
		}
	}

	service := stringField(entry, "service")
	if service == "" && company != nil {
		service = stringField(company, "id")
		if service == "" {
			service = stringField(company, "code")
		}
	}
	if service == "" {
		service = stringField(entry, "id")
	}

	return &QuoteOption{
		Carrier:      name,
		Price:        models.Round2(price),
		DeliveryDays: days,
		Service:      strings.TrimSpace(service),
	}
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func floatField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
