package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/metrics"
)

// OrderCapturer is the minimal interface needed to capture a paid order.
type OrderCapturer interface {
	CaptureOrder(ctx context.Context, providerRef string) (app.CaptureResult, error)
}

type captureOrderRequest struct {
	OrderID string `json:"order_id"`
}

type captureOrderResponse struct {
	Success          bool     `json:"success"`
	OrderID          string   `json:"order_id"`
	Total            string   `json:"total"`
	Domains          []string `json:"domains"`
	AlreadyCompleted bool     `json:"already_completed,omitempty"`
}

// HandleCaptureOrder returns an HTTP handler for the return-from-provider
// confirmation call. The order_id in the body is the provider-side
// reference the buyer approved.
func HandleCaptureOrder(svc OrderCapturer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req captureOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.OrderID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "order_id is required")
			return
		}

		res, err := svc.CaptureOrder(r.Context(), req.OrderID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if !res.AlreadyCompleted {
			metrics.DomainsIssuedTotal.Add(float64(len(res.Issued)))
		}

		resp := captureOrderResponse{
			Success:          true,
			OrderID:          res.OrderID,
			Total:            res.Total.String(),
			Domains:          res.Issued,
			AlreadyCompleted: res.AlreadyCompleted,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
