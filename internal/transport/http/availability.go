package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/metrics"
)

// AvailabilityChecker is the minimal interface needed to check a name.
type AvailabilityChecker interface {
	Check(ctx context.Context, rawName, rawClass string) (app.CheckResult, error)
}

type checkDomainRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type checkDomainResponse struct {
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	FQDN        string   `json:"fqdn,omitempty"`
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Price       string   `json:"price,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// HandleCheckDomain returns an HTTP handler for the POST availability check.
func HandleCheckDomain(svc AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkDomainRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, codeInvalidName, "name is required")
			return
		}

		writeCheckResult(w, r, svc, req.Name, req.Type)
	}
}

// HandleCheckAvailability returns an HTTP handler for the GET availability
// check used by the storefront search box.
func HandleCheckAvailability(svc AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, codeInvalidName, "name is required")
			return
		}

		writeCheckResult(w, r, svc, name, r.URL.Query().Get("type"))
	}
}

func writeCheckResult(w http.ResponseWriter, r *http.Request, svc AvailabilityChecker, name, class string) {
	res, err := svc.Check(r.Context(), name, class)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	outcome := res.Reason
	if res.Available {
		outcome = "available"
	}
	metrics.DomainChecksTotal.WithLabelValues(outcome).Inc()

	resp := checkDomainResponse{
		Name:        res.Name,
		Type:        string(res.Class),
		FQDN:        res.FQDN,
		Available:   res.Available,
		Reason:      res.Reason,
		Detail:      res.Detail,
		Suggestions: res.Suggestions,
	}
	if !res.Price.IsZero() {
		resp.Price = res.Price.String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
