package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		WebhookID:    "wh-1",
		Environment:  "sandbox",
		BaseURL:      srv.URL,
	}, nil)
	return client, srv
}

func tokenHandler(tokenCalls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}
}

func TestCreateOrder(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.PurchaseUnits, 1)
		assert.Equal(t, "CAPTURE", req.Intent)
		assert.Equal(t, "po-1", req.PurchaseUnits[0].CustomID)
		assert.Equal(t, "25.00", req.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "BRL", req.PurchaseUnits[0].Amount.CurrencyCode)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "PAY-123",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "self", "href": "https://example.test/self"},
				{"rel": "approve", "href": "https://example.test/approve"},
			},
		})
	})

	client, _ := newTestClient(t, mux)

	order, err := client.CreateOrder(context.Background(), payment.CreateOrderInput{
		InternalRef: "po-1",
		Amount:      decimal.NewFromInt(25),
		Currency:    "BRL",
		Description: "maria.pix.global",
		ReturnURL:   "https://shop.test/success",
		CancelURL:   "https://shop.test/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-123", order.Ref)
	assert.Equal(t, "https://example.test/approve", order.ApprovalURL)
	assert.Equal(t, "po-1", order.InternalRef)
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestTokenIsCached(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "PAY-123", "status": "CREATED"})
	})

	client, _ := newTestClient(t, mux)

	for i := 0; i < 3; i++ {
		_, err := client.GetOrder(context.Background(), "PAY-123")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestCaptureOrder(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/checkout/orders/PAY-123/capture", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "PAY-123",
			"status": "COMPLETED",
			"purchase_units": []map[string]any{{
				"custom_id": "po-1",
				"payments": map[string]any{
					"captures": []map[string]any{{
						"id":     "CAP-9",
						"status": "COMPLETED",
						"amount": map[string]string{"currency_code": "BRL", "value": "100000.00"},
					}},
				},
			}},
		})
	})

	client, _ := newTestClient(t, mux)

	capture, err := client.CaptureOrder(context.Background(), "PAY-123")
	require.NoError(t, err)
	assert.Equal(t, "CAP-9", capture.ID)
	assert.Equal(t, payment.CaptureStatusCompleted, capture.Status)
	assert.True(t, capture.Amount.Equal(decimal.NewFromInt(100_000)))
	assert.Equal(t, "BRL", capture.Currency)
	assert.Equal(t, "po-1", capture.InternalRef)
}

func TestCreateOrderProviderFailure(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY"}`))
	})

	client, _ := newTestClient(t, mux)

	_, err := client.CreateOrder(context.Background(), payment.CreateOrderInput{
		InternalRef: "po-1",
		Amount:      decimal.NewFromInt(25),
		Currency:    "BRL",
	})
	assert.ErrorIs(t, err, domain.ErrPaymentProvider)
}

func validWebhookHeaders() http.Header {
	h := http.Header{}
	h.Set("Paypal-Auth-Algo", "SHA256withRSA")
	h.Set("Paypal-Cert-Url", "https://api.paypal.test/cert")
	h.Set("Paypal-Transmission-Id", "tx-1")
	h.Set("Paypal-Transmission-Sig", "sig")
	h.Set("Paypal-Transmission-Time", "2026-01-02T03:04:05Z")
	return h
}

func captureCompletedBody() []byte {
	return []byte(`{
		"id": "WH-1",
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": {
			"id": "CAP-9",
			"status": "COMPLETED",
			"custom_id": "po-1",
			"amount": {"currency_code": "BRL", "value": "25.00"},
			"supplementary_data": {"related_ids": {"order_id": "PAY-123"}}
		}
	}`)
}

func TestVerifyWebhook(t *testing.T) {
	var tokenCalls atomic.Int32
	verificationStatus := "SUCCESS"
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", tokenHandler(&tokenCalls))
	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		var req verifySignatureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "wh-1", req.WebhookID)
		assert.Equal(t, "tx-1", req.TransmissionID)
		_ = json.NewEncoder(w).Encode(map[string]string{"verification_status": verificationStatus})
	})

	client, _ := newTestClient(t, mux)

	t.Run("success", func(t *testing.T) {
		ev, err := client.VerifyWebhook(context.Background(), validWebhookHeaders(), captureCompletedBody())
		require.NoError(t, err)
		assert.Equal(t, "WH-1", ev.ID)
		assert.Equal(t, payment.EventCaptureCompleted, ev.Type)
		assert.Equal(t, "po-1", ev.InternalRef)
		assert.Equal(t, "PAY-123", ev.ProviderOrderRef)
		assert.Equal(t, "CAP-9", ev.CaptureID)
	})

	t.Run("missing header fails closed", func(t *testing.T) {
		h := validWebhookHeaders()
		h.Del("Paypal-Transmission-Sig")
		_, err := client.VerifyWebhook(context.Background(), h, captureCompletedBody())
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
	})

	t.Run("non-success status fails closed", func(t *testing.T) {
		verificationStatus = "FAILURE"
		defer func() { verificationStatus = "SUCCESS" }()
		_, err := client.VerifyWebhook(context.Background(), validWebhookHeaders(), captureCompletedBody())
		assert.ErrorIs(t, err, domain.ErrWebhookSignature)
	})
}

func TestParseEventMalformed(t *testing.T) {
	_, err := parseEvent([]byte(`{"event_type": "PAYMENT.CAPTURE.COMPLETED"}`))
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)

	_, err = parseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}
