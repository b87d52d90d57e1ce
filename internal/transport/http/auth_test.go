package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixglobal/registry/internal/clock"
	"github.com/pixglobal/registry/internal/domain"
)

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name           string
		header         string
		resolveID      string
		resolveErr     error
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "valid token",
			header:         "Bearer tok-1",
			resolveID:      "user-1",
			expectedStatus: http.StatusOK,
			expectedUser:   "user-1",
		},
		{
			name:           "lowercase scheme accepted",
			header:         "bearer tok-1",
			resolveID:      "user-1",
			expectedStatus: http.StatusOK,
			expectedUser:   "user-1",
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			header:         "Bearer tok-stale",
			resolveErr:     domain.ErrUnauthenticated,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "resolver failure",
			header:         "Bearer tok-1",
			resolveErr:     errors.New("db down"),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resolver := &stubResolver{id: tt.resolveID, err: tt.resolveErr}

			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/create-order", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(resolver, clk, next).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if gotUser != tt.expectedUser {
				t.Fatalf("expected user %q in context, got %q", tt.expectedUser, gotUser)
			}
		})
	}
}

type stubResolver struct {
	id  string
	err error
}

func (s *stubResolver) ResolveToken(_ context.Context, _ string, _ time.Time) (string, error) {
	return s.id, s.err
}
