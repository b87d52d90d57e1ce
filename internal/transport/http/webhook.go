package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/metrics"
)

const maxWebhookBody = 1 << 20

// WebhookProcessor is the minimal interface needed to reconcile a provider
// notification.
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) (app.WebhookOutcome, error)
}

type webhookResponse struct {
	Status    string   `json:"status"`
	EventID   string   `json:"event_id,omitempty"`
	EventType string   `json:"event_type,omitempty"`
	Domains   []string `json:"domains,omitempty"`
}

// HandleWebhook returns an HTTP handler for provider notifications. The
// raw body is passed through untouched; signature verification needs the
// exact bytes the provider signed.
func HandleWebhook(svc WebhookProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "unreadable request body")
			return
		}

		outcome, err := svc.HandleWebhook(r.Context(), r.Header, body)
		if err != nil {
			metrics.WebhookEventsTotal.WithLabelValues("error").Inc()
			writeServiceError(w, err)
			return
		}

		status := "processed"
		switch {
		case outcome.Duplicate:
			status = "duplicate"
		case outcome.Ignored:
			status = "ignored"
		}
		metrics.WebhookEventsTotal.WithLabelValues(status).Inc()
		if status == "processed" {
			metrics.DomainsIssuedTotal.Add(float64(len(outcome.Issued)))
		}

		resp := webhookResponse{
			Status:    status,
			EventID:   outcome.EventID,
			EventType: outcome.EventType,
			Domains:   outcome.Issued,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
