package domain

import (
	"testing"
	"time"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		minimum int
		want    StockStatus
	}{
		{"zero stock is out", 0, 5, StockOut},
		{"zero stock with zero minimum is out", 0, 0, StockOut},
		{"at threshold is low", 5, 5, StockLow},
		{"below threshold is low", 3, 5, StockLow},
		{"one above threshold is normal", 6, 5, StockNormal},
		{"well stocked is normal", 100, 5, StockNormal},
		{"positive stock with zero minimum is normal", 1, 0, StockNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStock(tt.stock, tt.minimum); got != tt.want {
				t.Errorf("ClassifyStock(%d, %d) = %q, want %q", tt.stock, tt.minimum, got, tt.want)
			}
		})
	}
}

func TestProduct_StockStatus(t *testing.T) {
	p := &Product{Stock: 4, MinimumStock: 5}
	if got := p.StockStatus(); got != StockLow {
		t.Errorf("StockStatus() = %q, want %q", got, StockLow)
	}
}

func TestProduct_IsDeleted(t *testing.T) {
	p := &Product{}
	if p.IsDeleted() {
		t.Error("product without DeletedAt should not be deleted")
	}

	now := time.Now()
	p.DeletedAt = &now
	if !p.IsDeleted() {
		t.Error("product with DeletedAt should be deleted")
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	for _, s := range ValidOrderStatuses {
		if !s.IsValid() {
			t.Errorf("status %q should be valid", s)
		}
	}

	for _, s := range []OrderStatus{"", "unknown", "PENDING", "done"} {
		if s.IsValid() {
			t.Errorf("status %q should not be valid", s)
		}
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderPending, false},
		{OrderProcessing, false},
		{OrderShipped, false},
		{OrderDelivered, true},
		{OrderCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestUser_TwoFactorStatus(t *testing.T) {
	u := &User{}
	if got := u.TwoFactorStatus(); got != TwoFactorDisabled {
		t.Errorf("expected disabled, got %q", got)
	}

	u.TwoFactorSecret = "ABCDEFGHIJKLMNOP"
	if got := u.TwoFactorStatus(); got != TwoFactorPending {
		t.Errorf("expected pending, got %q", got)
	}

	u.TwoFactorEnabled = true
	if got := u.TwoFactorStatus(); got != TwoFactorConfirmed {
		t.Errorf("expected enabled, got %q", got)
	}
}

func TestNewValidationError(t *testing.T) {
	if err := NewValidationError(nil); err != nil {
		t.Errorf("empty message list should yield nil, got %v", err)
	}

	err := NewValidationError([]string{"first", "second"})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatal("expected a ValidationError")
	}
	if len(ve.Messages) != 2 || ve.Messages[0] != "first" || ve.Messages[1] != "second" {
		t.Errorf("messages not preserved in order: %v", ve.Messages)
	}
}
