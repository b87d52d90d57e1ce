package app

import (
	"context"
	"net/http"

	"github.com/pixglobal/registry/internal/payment"
)

// PaymentProvider abstracts the external payment API. One implementation
// exists today (PayPal); the reconciler and checkout never touch
// provider-specific payload shapes directly.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, in payment.CreateOrderInput) (payment.ProviderOrder, error)
	CaptureOrder(ctx context.Context, ref string) (payment.Capture, error)
	GetOrder(ctx context.Context, ref string) (payment.ProviderOrder, error)
	VerifyWebhook(ctx context.Context, headers http.Header, rawBody []byte) (payment.Event, error)
}
