// Package payment holds the provider-neutral types exchanged with a
// payment processor. Provider-specific field names and payload shapes stay
// inside the concrete adapter.
package payment

import (
	"github.com/shopspring/decimal"
)

// CreateOrderInput describes a provider-side order to open.
type CreateOrderInput struct {
	// InternalRef travels to the provider as the order's custom reference
	// and comes back on webhook events to resolve the pending order.
	InternalRef string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

// ProviderOrder is the provider's view of an opened order.
type ProviderOrder struct {
	Ref         string
	Status      string
	ApprovalURL string
	InternalRef string
}

// Capture is the result of finalizing fund transfer for an approved order.
type Capture struct {
	ID          string
	Status      string
	Amount      decimal.Decimal
	Currency    string
	InternalRef string
}

// CaptureStatusCompleted is the only capture status that grants domains.
const CaptureStatusCompleted = "COMPLETED"

// Event is a verified, parsed webhook notification.
type Event struct {
	ID           string
	Type         string
	CaptureID    string
	CaptureState string
	Amount       decimal.Decimal
	Currency     string
	InternalRef  string
	// ProviderOrderRef is the parent checkout order id, used as a fallback
	// lookup when the custom reference is absent from the event.
	ProviderOrderRef string
}

// Event types the reconciler dispatches on.
const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
)
