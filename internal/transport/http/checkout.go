package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pixglobal/registry/internal/app"
	"github.com/pixglobal/registry/internal/metrics"
)

// CheckoutCreator is the minimal interface needed to open a checkout.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, userID string, items []app.CheckoutItem) (app.CheckoutResult, error)
}

type createOrderRequest struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

type cartItemRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createCartOrderRequest struct {
	Items []cartItemRequest `json:"items"`
}

type orderItemResponse struct {
	Name  string `json:"name"`
	FQDN  string `json:"fqdn"`
	Price string `json:"price"`
}

type createOrderResponse struct {
	OrderID     string              `json:"order_id"`
	ProviderRef string              `json:"provider_ref"`
	CheckoutURL string              `json:"checkout_url"`
	Total       string              `json:"total"`
	Currency    string              `json:"currency"`
	Items       []orderItemResponse `json:"items"`
}

// HandleCreateOrder returns an HTTP handler for a single-label checkout.
func HandleCreateOrder(svc CheckoutCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Label == "" {
			writeError(w, http.StatusBadRequest, codeInvalidName, "label is required")
			return
		}

		createCheckout(w, r, svc, []app.CheckoutItem{{Name: req.Label, Class: req.Type}})
	}
}

// HandleCreateCartOrder returns an HTTP handler for a multi-item checkout.
func HandleCreateCartOrder(svc CheckoutCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createCartOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		items := make([]app.CheckoutItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, app.CheckoutItem{Name: item.Name, Class: item.Type})
		}
		createCheckout(w, r, svc, items)
	}
}

func createCheckout(w http.ResponseWriter, r *http.Request, svc CheckoutCreator, items []app.CheckoutItem) {
	res, err := svc.CreateCheckout(r.Context(), UserID(r.Context()), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.OrdersCreatedTotal.Inc()

	resp := createOrderResponse{
		OrderID:     res.OrderID,
		ProviderRef: res.ProviderRef,
		CheckoutURL: res.ApprovalURL,
		Total:       res.Total.String(),
		Currency:    res.Currency,
		Items:       make([]orderItemResponse, 0, len(res.Items)),
	}
	for _, item := range res.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			Name:  item.Name,
			FQDN:  item.FQDN,
			Price: item.UnitPrice.String(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}
