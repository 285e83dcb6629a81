package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoucherCodeLength is the length of generated voucher codes.
const VoucherCodeLength = 5

// DefaultVoucherValidityDays is the validity window for refund vouchers.
const DefaultVoucherValidityDays = 365

// Voucher represents a credit instrument optionally tied to an order
type Voucher struct {
	ID         string    `json:"id" db:"id"`
	Code       string    `json:"code" db:"code" validate:"required,len=5"`
	Amount     float64   `json:"amount" db:"amount" validate:"required,gt=0"`
	OrderID    *string   `json:"order_id,omitempty" db:"order_id"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewVoucher creates a voucher with generated ID and default validity
func NewVoucher(code string, amount float64, orderID *string) *Voucher {
	now := time.Now()
	return &Voucher{
		ID:         uuid.New().String(),
		Code:       code,
		Amount:     amount,
		OrderID:    orderID,
		ValidUntil: now.AddDate(0, 0, DefaultVoucherValidityDays),
		CreatedAt:  now,
	}
}

// Validate validates the voucher data
func (v *Voucher) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("voucher ID is required")
	}
	if len(v.Code) != VoucherCodeLength {
		return fmt.Errorf("voucher code must have %d characters", VoucherCodeLength)
	}
	if v.Amount <= 0 {
		return fmt.Errorf("voucher amount must be positive")
	}
	return nil
}

// IsExpired reports whether the voucher validity has passed.
func (v *Voucher) IsExpired(now time.Time) bool {
	return now.After(v.ValidUntil)
}
