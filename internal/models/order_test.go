package models

import (
	"testing"
	"time"
)

func TestOrder_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusApproved, true},
		{OrderStatusPending, OrderStatusInProcess, true},
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusInProcess, OrderStatusApproved, true},
		{OrderStatusApproved, OrderStatusShipped, true},
		{OrderStatusApproved, OrderStatusCompleted, true},
		{OrderStatusApproved, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		// terminal states
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusRejected, OrderStatusApproved, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		// same status is never a transition
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tc := range cases {
		order := &Order{Status: tc.from}
		if got := order.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusApproved, OrderStatusInProcess, OrderStatusRejected,
		OrderStatusCompleted, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !IsValidOrderStatus(s) {
			t.Errorf("Expected %s to be valid", s)
		}
	}
	if IsValidOrderStatus("faturado") {
		t.Error("Expected unknown status to be invalid")
	}
}

func TestOrder_CompletedAt(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC)

	order := &Order{Status: OrderStatusApproved, CreatedAt: created, UpdatedAt: updated}
	if got := order.CompletedAt(); got == nil || !got.Equal(updated) {
		t.Errorf("Expected UpdatedAt as completion time, got %v", got)
	}

	// falls back to CreatedAt
	order.UpdatedAt = time.Time{}
	if got := order.CompletedAt(); got == nil || !got.Equal(created) {
		t.Errorf("Expected CreatedAt fallback, got %v", got)
	}

	// not completed yet
	order.Status = OrderStatusPending
	if got := order.CompletedAt(); got != nil {
		t.Errorf("Expected nil for pending order, got %v", got)
	}
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := &OrderItem{Quantity: 3, Price: 50, PriceAtPurchase: 45}
	if got := item.Subtotal(); got != 135 {
		t.Errorf("Expected subtotal 135 from purchase price, got %v", got)
	}

	// older rows have no price_at_purchase
	item.PriceAtPurchase = 0
	if got := item.Subtotal(); got != 150 {
		t.Errorf("Expected subtotal 150 from price fallback, got %v", got)
	}
}

func TestOrder_Validate(t *testing.T) {
	order := NewOrder("user-1", OrderStatusPending, 100)
	if err := order.Validate(); err != nil {
		t.Errorf("Expected valid order, got %v", err)
	}

	order.Status = "faturado"
	if err := order.Validate(); err == nil {
		t.Error("Expected error for unknown status")
	}

	order = NewOrder("user-1", OrderStatusPending, -1)
	if err := order.Validate(); err == nil {
		t.Error("Expected error for negative total")
	}
}

func TestVoucher(t *testing.T) {
	voucher := NewVoucher("XK9P2", 150, nil)
	if err := voucher.Validate(); err != nil {
		t.Errorf("Expected valid voucher, got %v", err)
	}
	if voucher.IsExpired(time.Now()) {
		t.Error("Expected fresh voucher to be valid")
	}
	if !voucher.IsExpired(time.Now().AddDate(0, 0, DefaultVoucherValidityDays+1)) {
		t.Error("Expected voucher to expire after the validity window")
	}

	voucher.Code = "XK9P"
	if err := voucher.Validate(); err == nil {
		t.Error("Expected error for short code")
	}

	voucher = NewVoucher("XK9P2", 0, nil)
	if err := voucher.Validate(); err == nil {
		t.Error("Expected error for zero amount")
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		10.006:  10.01,
		10.004:  10.0,
		125.50:  125.50,
		0:       0,
		-10.006: -10.01,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeCEP(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"01310-100", "01310100", true},
		{"01310100", "01310100", true},
		{" 80.000-000 ", "80000000", true},
		{"1234", "1234", false},
		{"", "", false},
		{"abcdefgh", "", false},
		{"01310-1000", "013101000", false},
	}

	for _, tc := range cases {
		got, ok := NormalizeCEP(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeCEP(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeOption(t *testing.T) {
	if got := NormalizeOption("  M  "); got != "M" {
		t.Errorf("Expected trimmed option, got %q", got)
	}
	if got := NormalizeOption("   "); got != DefaultVariantOption {
		t.Errorf("Expected default option, got %q", got)
	}
}
