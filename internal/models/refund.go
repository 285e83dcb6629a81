package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RefundRequestType distinguishes who opened the refund request
type RefundRequestType string

const (
	RefundRequestCustomer   RefundRequestType = "customer"
	RefundRequestBackoffice RefundRequestType = "backoffice"
)

// RefundStatus represents the processing state of a refund request
type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusRefunded RefundStatus = "refunded"
	RefundStatusRejected RefundStatus = "rejected"
)

// RefundMethod represents how a refund was paid out
type RefundMethod string

const (
	RefundMethodMercadoPago RefundMethod = "mp"
	RefundMethodVoucher     RefundMethod = "voucher"
)

// OrderRefund represents a cancel/refund request tied to an order
type OrderRefund struct {
	ID           string            `json:"id" db:"id"`
	OrderID      string            `json:"order_id" db:"order_id" validate:"required"`
	RequestType  RefundRequestType `json:"request_type" db:"request_type" validate:"required,oneof=customer backoffice"`
	Status       RefundStatus      `json:"status" db:"status"`
	Amount       float64           `json:"amount" db:"amount" validate:"gte=0"`
	OrderItemIDs []string          `json:"order_item_ids" db:"order_item_ids"`
	RefundMethod *RefundMethod     `json:"refund_method,omitempty" db:"refund_method"`
	MPRefundID   *string           `json:"mp_refund_id,omitempty" db:"mp_refund_id"`
	VoucherID    *string           `json:"voucher_id,omitempty" db:"voucher_id"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// NewOrderRefund creates a pending refund request with generated ID
func NewOrderRefund(orderID string, requestType RefundRequestType, amount float64, itemIDs []string) *OrderRefund {
	now := time.Now()
	if itemIDs == nil {
		itemIDs = []string{}
	}
	return &OrderRefund{
		ID:           uuid.New().String(),
		OrderID:      orderID,
		RequestType:  requestType,
		Status:       RefundStatusPending,
		Amount:       amount,
		OrderItemIDs: itemIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the refund request data
func (r *OrderRefund) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("refund ID is required")
	}
	if r.OrderID == "" {
		return fmt.Errorf("refund order ID is required")
	}
	if r.RequestType != RefundRequestCustomer && r.RequestType != RefundRequestBackoffice {
		return fmt.Errorf("invalid refund request type: %s", r.RequestType)
	}
	if r.Amount < 0 {
		return fmt.Errorf("refund amount cannot be negative")
	}
	return nil
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (r *OrderRefund) UpdateTimestamp() {
	r.UpdatedAt = time.Now()
}
