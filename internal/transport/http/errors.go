package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixglobal/registry/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidName        = "invalid_name"
	codeReservedName       = "reserved_name"
	codeEmptyCart          = "empty_cart"
	codeUnauthenticated    = "unauthenticated"
	codeItemUnavailable    = "item_unavailable"
	codeOrderNotFound      = "order_not_found"
	codeInvalidSignature   = "invalid_signature"
	codePaymentProvider    = "payment_provider_error"
	codeDomainNotFound     = "domain_not_found"
	codeNoNFTLink          = "no_nft_link"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps the shared domain sentinels to their HTTP shape.
// Handlers switch on endpoint-specific errors first and fall through here.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, codeEmptyCart, "cart is empty")
	case errors.Is(err, domain.ErrReserved):
		writeError(w, http.StatusBadRequest, codeReservedName, err.Error())
	case errors.Is(err, domain.ErrInvalidFormat), errors.Is(err, domain.ErrUnknownClass):
		writeError(w, http.StatusBadRequest, codeInvalidName, err.Error())
	case errors.Is(err, domain.ErrItemUnavailable), errors.Is(err, domain.ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, codeItemUnavailable, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, "order not found")
	case errors.Is(err, domain.ErrDomainNotFound):
		writeError(w, http.StatusNotFound, codeDomainNotFound, "domain not found")
	case errors.Is(err, domain.ErrNoNFTLink):
		writeError(w, http.StatusNotFound, codeNoNFTLink, "domain has no nft link")
	case errors.Is(err, domain.ErrWebhookSignature), errors.Is(err, domain.ErrMalformedEvent):
		writeError(w, http.StatusBadRequest, codeInvalidSignature, "webhook verification failed")
	case errors.Is(err, domain.ErrPaymentProvider):
		writeError(w, http.StatusBadGateway, codePaymentProvider, "payment provider error")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
