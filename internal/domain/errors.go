package domain

import "errors"

var (
	ErrInvalidFormat      = errors.New("invalid label format")
	ErrReserved           = errors.New("label is reserved")
	ErrAlreadyRegistered  = errors.New("domain already registered")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrItemUnavailable    = errors.New("item unavailable")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPaymentProvider    = errors.New("payment provider error")
	ErrWebhookSignature   = errors.New("webhook signature invalid")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAlreadyExists = errors.New("order already exists")
	ErrDomainTaken        = errors.New("domain already taken")
	ErrDomainNotFound     = errors.New("domain not found")
	ErrNoNFTLink          = errors.New("domain has no nft link")
	ErrMalformedEvent     = errors.New("malformed provider event")
	ErrUnknownClass       = errors.New("unknown domain class")
)
