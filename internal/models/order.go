package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusInProcess OrderStatus = "in_process"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// validTransitions encodes the allowed order status transitions.
// Rejected, cancelled and delivered are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusApproved, OrderStatusInProcess, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusInProcess: {OrderStatusApproved, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusApproved:  {OrderStatusCompleted, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusCompleted: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusInProcess, OrderStatusRejected,
		OrderStatusCompleted, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the order may move from its current status to next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if o.Status == next {
		return false
	}
	for _, allowed := range validTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the order reached a completed state
// (approved or completed) from the customer's point of view.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusApproved || o.Status == OrderStatusCompleted
}

// CompletedAt returns the completion timestamp of the order, or nil when the
// order is not completed. UpdatedAt is used with CreatedAt as fallback.
func (o *Order) CompletedAt() *time.Time {
	if !o.IsCompleted() {
		return nil
	}
	if !o.UpdatedAt.IsZero() {
		t := o.UpdatedAt
		return &t
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		return &t
	}
	return nil
}

// Identification holds the payer's document data
type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number" validate:"required"`
}

// Address holds a delivery address
type Address struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	FederalUnit  string `json:"federal_unit"`
}

// Payer holds the paying customer's data, persisted as JSON on the order
type Payer struct {
	Email          string         `json:"email" validate:"required,email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Phone          string         `json:"phone,omitempty"`
	Identification Identification `json:"identification"`
	Address        *Address       `json:"address,omitempty"`
}

// Order represents a customer order
type Order struct {
	ID                 string      `json:"id" db:"id"`
	UserID             string      `json:"user_id" db:"user_id" validate:"required,uuid"`
	Status             OrderStatus `json:"status" db:"status"`
	TotalAmount        float64     `json:"total_amount" db:"total_amount"`
	PaymentMethod      *string     `json:"payment_method,omitempty" db:"payment_method"`
	Installments       int         `json:"installments" db:"installments"`
	MPPaymentID        *string     `json:"mp_payment_id,omitempty" db:"mp_payment_id"`
	PaymentCode        *string     `json:"payment_code,omitempty" db:"payment_code"`
	PaymentURL         *string     `json:"payment_url,omitempty" db:"payment_url"`
	PaymentExpiration  *string     `json:"payment_expiration,omitempty" db:"payment_expiration"`
	Payer              *Payer      `json:"payer,omitempty" db:"payer"`
	ShippingService    *string     `json:"shipping_service,omitempty" db:"shipping_service"`
	ShippingAmount     *float64    `json:"shipping_amount,omitempty" db:"shipping_amount"`
	MelhorEnvioOrderID *string     `json:"melhor_envio_order_id,omitempty" db:"melhor_envio_order_id"`
	TrackingCode       *string     `json:"tracking_code,omitempty" db:"tracking_code"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`

	// Items is populated on detail reads; not a column.
	Items []*OrderItem `json:"items,omitempty" db:"-"`
	// UserEmail is joined in for backoffice listings; not a column.
	UserEmail *string `json:"user_email,omitempty" db:"-"`
}

// OrderItem represents a purchased line on an order
type OrderItem struct {
	ID              string   `json:"id" db:"id"`
	OrderID         string   `json:"order_id" db:"order_id"`
	ProductID       int64    `json:"product_id" db:"product_id"`
	ProductName     string   `json:"product_name" db:"product_name"`
	ImageURL        *string  `json:"image_url,omitempty" db:"image_url"`
	Quantity        int      `json:"quantity" db:"quantity"`
	Price           float64  `json:"price" db:"price"`
	PriceAtPurchase float64  `json:"price_at_purchase" db:"price_at_purchase"`
	Color           *string  `json:"color,omitempty" db:"color"`
	Size            *string  `json:"size,omitempty" db:"size"`
}

// Subtotal returns the line total at purchase price.
func (i *OrderItem) Subtotal() float64 {
	price := i.PriceAtPurchase
	if price == 0 {
		price = i.Price
	}
	return price * float64(i.Quantity)
}

// NewOrder creates a new order with generated ID and timestamps
func NewOrder(userID string, status OrderStatus, totalAmount float64) *Order {
	now := time.Now()
	return &Order{
		ID:           uuid.New().String(),
		UserID:       userID,
		Status:       status,
		TotalAmount:  totalAmount,
		Installments: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewOrderItem creates a new order item with generated ID
func NewOrderItem(orderID string, productID int64, name string, quantity int, price float64) *OrderItem {
	return &OrderItem{
		ID:              uuid.New().String(),
		OrderID:         orderID,
		ProductID:       productID,
		ProductName:     name,
		Quantity:        quantity,
		Price:           price,
		PriceAtPurchase: price,
	}
}

// Validate validates the order data
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order ID is required")
	}
	if o.UserID == "" {
		return fmt.Errorf("order user ID is required")
	}
	if !IsValidOrderStatus(o.Status) {
		return fmt.Errorf("invalid order status: %s", o.Status)
	}
	if o.TotalAmount < 0 {
		return fmt.Errorf("order total amount cannot be negative")
	}
	return nil
}
