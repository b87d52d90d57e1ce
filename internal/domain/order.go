package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Money pairs a decimal amount with an ISO currency unit.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// OrderItem is one requested label inside a checkout, with the unit price
// frozen at checkout time.
type OrderItem struct {
	Name      string
	Class     Class
	FQDN      string
	UnitPrice decimal.Decimal
}

// PendingOrder is the durable record of an initiated, unpaid checkout.
// It is created when the provider session is opened and mutated only by
// payment reconciliation; rows are never deleted.
type PendingOrder struct {
	ID           string
	UserID       string
	ProviderRef  string
	Items        []OrderItem
	Total        decimal.Decimal
	Currency     currency.Unit
	Status       OrderStatus
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Order is the committed record of a completed purchase, written only after
// a successful capture.
type Order struct {
	ID            string
	UserID        string
	ProviderRef   string
	CaptureID     string
	Amount        decimal.Decimal
	Currency      currency.Unit
	PaymentMethod string
	Status        OrderStatus
	CreatedAt     time.Time
}
