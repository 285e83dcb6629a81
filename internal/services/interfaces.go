package services

import (
	"context"

	"store-backend-api/internal/gateway/melhorenvio"
	"store-backend-api/internal/models"
	"store-backend-api/internal/repositories"
)

// PaymentItem is one cart line sent to checkout
type PaymentItem struct {
	ID       int64   `json:"id" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Image    *string `json:"image,omitempty"`
	Color    string  `json:"color,omitempty"`
	Size     string  `json:"size,omitempty"`
}

// ProcessPaymentRequest is the checkout payload
type ProcessPaymentRequest struct {
	Token             string        `json:"token,omitempty"`
	TransactionAmount float64       `json:"transaction_amount" validate:"required,gt=0"`
	PaymentMethodID   string        `json:"payment_method_id" validate:"required"`
	Installments      int           `json:"installments"`
	IssuerID          string        `json:"issuer_id,omitempty"`
	Payer             *models.Payer `json:"payer" validate:"required"`
	UserID            string        `json:"user_id" validate:"required,uuid"`
	Items             []PaymentItem `json:"items" validate:"required,min=1,dive"`
	CEP               string        `json:"cep" validate:"required"`
	Freight           float64       `json:"frete" validate:"gte=0"`
	FreightService    string        `json:"frete_service,omitempty"`
}

// ProcessPaymentResult is the checkout response
type ProcessPaymentResult struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	StatusDetail    string  `json:"status_detail"`
	OrderDBID       string  `json:"order_db_id"`
	PaymentMethodID string  `json:"payment_method_id"`
	QRCode          *string `json:"qr_code,omitempty"`
	QRCodeBase64    *string `json:"qr_code_base64,omitempty"`
	TicketURL       *string `json:"ticket_url,omitempty"`
}

// PaymentService processes checkouts end to end
type PaymentService interface {
	// ProcessPayment validates freight and prices, charges through the
	// payment gateway, persists the order and decrements stock.
	ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*ProcessPaymentResult, error)
}

// CancelRequest is a customer cancel/refund request
type CancelRequest struct {
	Total        bool     `json:"total"`
	OrderItemIDs []string `json:"order_item_ids,omitempty"`
}

// CancelResult summarizes a registered cancel/refund request
type CancelResult struct {
	Message         string  `json:"message"`
	RefundRequestID string  `json:"refund_request_id"`
	OrderID         string  `json:"order_id"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
}

// BackofficeCancelRequest is an admin cancel/refund instruction
type BackofficeCancelRequest struct {
	FullCancel    bool     `json:"full_cancel"`
	CancelItemIDs []string `json:"cancel_item_ids,omitempty"`
	RefundMethod  string   `json:"refund_method" validate:"required,oneof=mp voucher"`
}

// BackofficeCancelResult summarizes a processed cancel/refund
type BackofficeCancelResult struct {
	Message         string          `json:"message"`
	OrderID         string          `json:"order_id"`
	RefundRequestID string          `json:"refund_request_id"`
	Amount          float64         `json:"amount"`
	Status          string          `json:"status"`
	MPRefundID      *string         `json:"mp_refund_id,omitempty"`
	Voucher         *models.Voucher `json:"voucher,omitempty"`
}

// OrderDetail is an order with its refund requests attached
type OrderDetail struct {
	*models.Order
	RefundRequests []*models.OrderRefund `json:"refund_requests"`
}

// OrderList is a paginated order listing
type OrderList struct {
	Data  []*models.Order `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// OrderService covers customer order queries and the cancel/refund flow
type OrderService interface {
	// GetOrderDetail returns the customer's own order with items and refunds
	GetOrderDetail(ctx context.Context, orderID, userID string) (*OrderDetail, error)

	// ListOrdersByCustomer lists the customer's orders newest first
	ListOrdersByCustomer(ctx context.Context, userID string, page, limit int) (*OrderList, error)

	// ListAllOrders lists every order; the requester must be an admin
	ListAllOrders(ctx context.Context, adminUserID string, page, limit int) (*OrderList, error)

	// RequestCancelOrRefund registers a customer cancel/refund request,
	// only within the allowed window after order completion
	RequestCancelOrRefund(ctx context.Context, orderID, userID string, req *CancelRequest) (*CancelResult, error)

	// BackofficeCancelAndRefund cancels items or the whole order and pays
	// the refund through the gateway or as a voucher
	BackofficeCancelAndRefund(ctx context.Context, orderID string, req *BackofficeCancelRequest) (*BackofficeCancelResult, error)

	// UpdateOrderStatus moves an order through the status lifecycle,
	// enforcing the valid transitions
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)

	// CreateVoucher issues a voucher with a unique code
	CreateVoucher(ctx context.Context, amount float64, orderID *string, validDays int) (*models.Voucher, error)

	// DeleteOrder removes an order; items and refunds cascade, vouchers
	// keep existing but lose the order link
	DeleteOrder(ctx context.Context, orderID string) error
}

// ProductInput carries product fields for create/update
type ProductInput struct {
	Name        string                   `json:"name"`
	Price       *float64                 `json:"price,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Category    *string                  `json:"category,omitempty"`
	Quantity    *int                     `json:"quantity,omitempty"`
	Size        *string                  `json:"size,omitempty"`
	Image       *string                  `json:"image,omitempty"`
	Images      []string                 `json:"images,omitempty"`
	Stock       map[string]int           `json:"stock,omitempty"`
	IsFeatured  *bool                    `json:"is_featured,omitempty"`
	Color       *string                  `json:"color,omitempty"`
	Material    *string                  `json:"material,omitempty"`
	Pattern     *string                  `json:"pattern,omitempty"`
	Variants    []*models.ProductVariant `json:"variants,omitempty"`
}

// ProductList is a paginated product listing
type ProductList struct {
	Data []*models.Product `json:"data"`
	Meta ListMeta          `json:"meta"`
}

// ListMeta carries pagination metadata
type ListMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	NextPage *int  `json:"nextPage"`
}

// ProductService manages the catalog and its read mirror
type ProductService interface {
	// ListProducts lists products with filters and pagination
	ListProducts(ctx context.Context, filters *repositories.ProductFilters) (*ProductList, error)

	// GetProduct returns a product with its variants
	GetProduct(ctx context.Context, id int64) (*models.Product, error)

	// CreateProduct creates a product (and variants) and mirrors it
	CreateProduct(ctx context.Context, input *ProductInput) (*models.Product, error)

	// UpdateProduct updates a product, replaces variants when provided,
	// drops the replaced cover image from storage and re-mirrors
	UpdateProduct(ctx context.Context, id int64, input *ProductInput) (*models.Product, error)

	// DeleteProduct removes a product, its storage image and mirror entry
	DeleteProduct(ctx context.Context, id int64) error

	// ExportCSV renders the whole catalog as CSV
	ExportCSV(ctx context.Context) ([]byte, error)
}

// ProfileList is a filtered profile listing
type ProfileList struct {
	Data  []*models.Profile `json:"data"`
	Count int64             `json:"count"`
}

// ProfileUpdateRequest updates a profile; at least one field is required
type ProfileUpdateRequest struct {
	ID    string       `json:"id" validate:"required,uuid"`
	Email *string      `json:"email,omitempty"`
	Role  *models.Role `json:"role,omitempty"`
}

// ProfileService administers user profiles
type ProfileService interface {
	// ListProfiles lists profiles with filters and pagination
	ListProfiles(ctx context.Context, filters *repositories.ProfileFilters) (*ProfileList, error)

	// UpdateProfile updates email and/or role; one of them is required
	UpdateProfile(ctx context.Context, req *ProfileUpdateRequest) (*models.Profile, error)

	// DeleteProfile removes a profile; admins cannot delete themselves
	DeleteProfile(ctx context.Context, id, currentUserID string) error

	// GetRole returns the role of a profile
	GetRole(ctx context.Context, id string) (models.Role, error)
}

// FreightQuoteItem is one package in a freight quote request
type FreightQuoteItem struct {
	Width          float64 `json:"width" validate:"required,gt=0"`
	Height         float64 `json:"height" validate:"required,gt=0"`
	Length         float64 `json:"length" validate:"required,gt=0"`
	Weight         float64 `json:"weight" validate:"required,gt=0"`
	Quantity       int     `json:"quantity" validate:"required,gt=0"`
	InsuranceValue float64 `json:"insurance_value"`
}

// FreightQuoteRequest asks for shipping options to a destination CEP
type FreightQuoteRequest struct {
	DestinationCEP string             `json:"cep_destino" validate:"required"`
	Items          []FreightQuoteItem `json:"itens" validate:"required,min=1,dive"`
}

// ShippingService quotes freight through the carrier gateway
type ShippingService interface {
	// QuoteFreight returns the shipping options for the given packages
	QuoteFreight(ctx context.Context, req *FreightQuoteRequest) ([]melhorenvio.QuoteOption, error)
}

// CreateShipmentRequest selects the carrier service for a label
type CreateShipmentRequest struct {
	ServiceID *int `json:"service_id,omitempty"`
}

// CreateShipmentResult reports the created carrier order
type CreateShipmentResult struct {
	MelhorEnvioOrderID string `json:"melhor_envio_order_id"`
	Message            string `json:"message"`
}

// WebhookResult reports how a carrier webhook event was handled
type WebhookResult struct {
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	TrackingCode string `json:"tracking_code,omitempty"`
}

// TrackingResult is the tracking state of an order
type TrackingResult struct {
	OrderID        string                       `json:"order_id"`
	TrackingCode   *string                      `json:"tracking_code"`
	Status         models.OrderStatus           `json:"status"`
	TrackingEvents []melhorenvio.TrackingEvent  `json:"tracking_events"`
}

// FulfillmentService manages shipment labels and carrier webhooks
type FulfillmentService interface {
	// CreateShipment inserts a label for the order into the carrier cart
	CreateShipment(ctx context.Context, orderID string, req *CreateShipmentRequest) (*CreateShipmentResult, error)

	// ProcessWebhook handles carrier events (tracking, delivered, canceled)
	ProcessWebhook(ctx context.Context, eventType string, data map[string]interface{}) (*WebhookResult, error)

	// GetTrackingInfo returns the tracking state of an order
	GetTrackingInfo(ctx context.Context, orderID string) (*TrackingResult, error)
}

// CleanupResult summarizes an orphan image cleanup run
type CleanupResult struct {
	DeletedCount int `json:"deleted_count"`
	OrphansFound int `json:"orphans_found"`
}

// CleanupService removes storage files no product references anymore
type CleanupService interface {
	// CleanupOrphanImages deletes stored images not referenced by any product
	CleanupOrphanImages(ctx context.Context) (*CleanupResult, error)
}
