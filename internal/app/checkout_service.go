package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pixglobal/registry/internal/clock"
	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/payment"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// PendingOrderWriter persists initiated checkouts.
type PendingOrderWriter interface {
	CreatePendingOrder(ctx context.Context, po domain.PendingOrder) error
	AppendAudit(ctx context.Context, rec domain.AuditRecord) error
}

type CheckoutService struct {
	orders   PendingOrderWriter
	registry DomainChecker
	provider PaymentProvider
	clock    clock.Clock
	logger   *log.Logger

	currency currency.Unit
	// baseURL is the public storefront origin used for payment redirects.
	baseURL string
}

func NewCheckoutService(
	orders PendingOrderWriter,
	registry DomainChecker,
	provider PaymentProvider,
	clk clock.Clock,
	cur currency.Unit,
	baseURL string,
	logger *log.Logger,
) *CheckoutService {
	if logger == nil {
		logger = log.Default()
	}
	return &CheckoutService{
		orders:   orders,
		registry: registry,
		provider: provider,
		clock:    clk,
		logger:   logger,
		currency: cur,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

type CheckoutItem struct {
	Name  string
	Class string
}

type CheckoutResult struct {
	OrderID     string
	ProviderRef string
	ApprovalURL string
	Total       decimal.Decimal
	Currency    string
	Items       []domain.OrderItem
}

// CreateCheckout validates every item in the cart, opens a provider-side
// order for the total, and persists the pending order before returning the
// approval URL. A single failing item rejects the whole cart.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID string, items []CheckoutItem) (CheckoutResult, error) {
	if userID == "" {
		return CheckoutResult{}, domain.ErrUnauthenticated
	}
	if len(items) == 0 {
		return CheckoutResult{}, domain.ErrEmptyCart
	}

	orderItems, total, err := s.validateCart(ctx, items)
	if err != nil {
		return CheckoutResult{}, err
	}

	pendingID := uuid.NewString()
	providerOrder, err := s.provider.CreateOrder(ctx, payment.CreateOrderInput{
		InternalRef: pendingID,
		Amount:      total,
		Currency:    s.currency.String(),
		Description: cartDescription(orderItems),
		ReturnURL:   s.baseURL + "/payment/success",
		CancelURL:   s.baseURL + "/payment/cancel",
	})
	if err != nil {
		// No pending order is written when the provider call fails.
		return CheckoutResult{}, fmt.Errorf("create provider order: %w", err)
	}

	now := s.clock.Now()
	po := domain.PendingOrder{
		ID:          pendingID,
		UserID:      userID,
		ProviderRef: providerOrder.Ref,
		Items:       orderItems,
		Total:       total,
		Currency:    s.currency,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
	}
	if err := s.orders.CreatePendingOrder(ctx, po); err != nil {
		// The provider-side order stays orphaned; it expires unpaid.
		// Logged with the ref so ops can reconcile manually.
		s.logger.Printf("ERROR: pending order %s not persisted, provider order %s orphaned: %v",
			pendingID, providerOrder.Ref, err)
		return CheckoutResult{}, fmt.Errorf("persist pending order: %w", err)
	}

	_ = s.orders.AppendAudit(ctx, domain.AuditRecord{
		Action:   domain.AuditOrderCreated,
		Entity:   "pending_order",
		EntityID: pendingID,
		Detail: map[string]any{
			"provider_ref": providerOrder.Ref,
			"total":        total.String(),
			"items":        len(orderItems),
		},
		CreatedAt: now,
	})

	return CheckoutResult{
		OrderID:     pendingID,
		ProviderRef: providerOrder.Ref,
		ApprovalURL: providerOrder.ApprovalURL,
		Total:       total,
		Currency:    s.currency.String(),
		Items:       orderItems,
	}, nil
}

// validateCart normalizes, validates and prices every item, then verifies
// none of the fqdns is registered, in one batch query.
func (s *CheckoutService) validateCart(ctx context.Context, items []CheckoutItem) ([]domain.OrderItem, decimal.Decimal, error) {
	orderItems := make([]domain.OrderItem, 0, len(items))
	fqdns := make([]string, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		name := domain.Normalize(item.Name)

		var class domain.Class
		if item.Class == "" {
			class = domain.DetectClass(name)
		} else {
			parsed, err := domain.ToClass(item.Class)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("%s: %w", name, domain.ErrInvalidFormat)
			}
			class = parsed
		}

		if detail, err := domain.ValidateLabel(name, class); err != nil {
			if errors.Is(err, domain.ErrReserved) {
				return nil, decimal.Zero, fmt.Errorf("%s: %s: %w", name, detail, domain.ErrReserved)
			}
			return nil, decimal.Zero, fmt.Errorf("%s: %s: %w", name, detail, domain.ErrInvalidFormat)
		}

		price := domain.Price(name, class)
		fqdn := domain.FQDN(name, class)
		orderItems = append(orderItems, domain.OrderItem{
			Name:      name,
			Class:     class,
			FQDN:      fqdn,
			UnitPrice: price,
		})
		fqdns = append(fqdns, fqdn)
		total = total.Add(price)
	}

	registered, err := s.registry.FilterRegistered(ctx, fqdns)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("check cart availability: %w", err)
	}
	for _, fqdn := range fqdns {
		if registered[fqdn] {
			return nil, decimal.Zero, fmt.Errorf("%s não está mais disponível: %w", fqdn, domain.ErrItemUnavailable)
		}
	}

	return orderItems, total, nil
}

func cartDescription(items []domain.OrderItem) string {
	if len(items) == 1 {
		return "Registro de domínio " + items[0].FQDN
	}
	return fmt.Sprintf("Registro de %d domínios (%s, ...)", len(items), items[0].FQDN)
}
