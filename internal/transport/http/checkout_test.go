package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/domain"
	"github.com/shopspring/decimal"
)

func TestHandleCreateCartOrder(t *testing.T) {
	t.Parallel()

	result := app.CheckoutResult{
		OrderID:     "po-1",
		ProviderRef: "5O190127TN364715T",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T",
		Total:       decimal.NewFromInt(100025),
		Currency:    "BRL",
		Items: []domain.OrderItem{
			{Name: "maria", FQDN: "maria.pix.global", UnitPrice: decimal.NewFromInt(25)},
			{Name: "777", FQDN: "777.com.rich", UnitPrice: decimal.NewFromInt(100000)},
		},
	}

	tests := []struct {
		name           string
		userID         string
		body           string
		result         app.CheckoutResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "cart checkout created",
			userID:         "user-1",
			body:           `{"items":[{"name":"maria"},{"name":"777","type":"numeric"}]}`,
			result:         result,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"total":"100025"`,
		},
		{
			name:           "unauthenticated",
			body:           `{"items":[{"name":"maria"}]}`,
			serviceErr:     domain.ErrUnauthenticated,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty cart",
			userID:         "user-1",
			body:           `{"items":[]}`,
			serviceErr:     domain.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "item already registered",
			userID:         "user-1",
			body:           `{"items":[{"name":"maria"}]}`,
			serviceErr:     fmt.Errorf("maria.pix.global não está mais disponível: %w", domain.ErrItemUnavailable),
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeItemUnavailable,
		},
		{
			name:           "reserved item",
			userID:         "user-1",
			body:           `{"items":[{"name":"paypal"}]}`,
			serviceErr:     fmt.Errorf("paypal: reserved: %w", domain.ErrReserved),
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeReservedName,
		},
		{
			name:           "provider failure",
			userID:         "user-1",
			body:           `{"items":[{"name":"maria"}]}`,
			serviceErr:     fmt.Errorf("create provider order: %w", domain.ErrPaymentProvider),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "invalid body",
			userID:         "user-1",
			body:           `{"items":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCheckout{result: tt.result, err: tt.serviceErr}

			req := httptest.NewRequest(http.MethodPost, "/create-cart-order", strings.NewReader(tt.body))
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), userIDKey{}, tt.userID))
			}
			rec := httptest.NewRecorder()

			HandleCreateCartOrder(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestHandleCreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("single label forwarded as one-item cart", func(t *testing.T) {
		t.Parallel()
		svc := &stubCheckout{result: app.CheckoutResult{
			OrderID:     "po-2",
			ProviderRef: "REF-2",
			ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=REF-2",
			Total:       decimal.NewFromInt(25),
			Currency:    "BRL",
			Items: []domain.OrderItem{
				{Name: "maria", FQDN: "maria.pix.global", UnitPrice: decimal.NewFromInt(25)},
			},
		}}

		req := httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(`{"label":"maria"}`))
		req = req.WithContext(context.WithValue(req.Context(), userIDKey{}, "user-1"))
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(svc.gotItems) != 1 || svc.gotItems[0].Name != "maria" {
			t.Fatalf("expected one cart item for maria, got %+v", svc.gotItems)
		}
		if !strings.Contains(rec.Body.String(), `"checkout_url"`) {
			t.Fatalf("expected checkout_url in response, got %q", rec.Body.String())
		}
	})

	t.Run("missing label", func(t *testing.T) {
		t.Parallel()
		svc := &stubCheckout{}

		req := httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(`{"label":""}`))
		rec := httptest.NewRecorder()

		HandleCreateOrder(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

type stubCheckout struct {
	result   app.CheckoutResult
	err      error
	gotItems []app.CheckoutItem
}

func (s *stubCheckout) CreateCheckout(_ context.Context, _ string, items []app.CheckoutItem) (app.CheckoutResult, error) {
	s.gotItems = items
	return s.result, s.err
}
