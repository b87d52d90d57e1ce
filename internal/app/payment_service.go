package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/pixglobal/registry/internal/clock"
	"github.com/pixglobal/registry/internal/domain"
	"github.com/pixglobal/registry/internal/payment"
	"github.com/shopspring/decimal"
)

// ReconcileRepository is the transactional surface the payment state
// machine runs against.
type ReconcileRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPendingOrderForUpdate(ctx context.Context, id string) (domain.PendingOrder, error)
	GetPendingOrderByProviderRef(ctx context.Context, ref string) (domain.PendingOrder, error)
	MarkPendingOrderCompleted(ctx context.Context, id string, captureID string) error
	MarkPendingOrderFailed(ctx context.Context, id string, message string) error
	InsertOrder(ctx context.Context, order domain.Order) error
	// InsertDomain returns domain.ErrDomainTaken when the fqdn row already
	// exists, without aborting the surrounding transaction.
	InsertDomain(ctx context.Context, d domain.Domain) error
	AppendAudit(ctx context.Context, rec domain.AuditRecord) error
	HasProcessedEvent(ctx context.Context, eventID string) (bool, error)
	RecordEvent(ctx context.Context, ev domain.WebhookEvent) error
}

// PaymentService reconciles provider notifications and capture calls into
// completed orders and issued domains. All cross-request coordination goes
// through the registry's constraints and the webhook ledger.
type PaymentService struct {
	repo     ReconcileRepository
	provider PaymentProvider
	clock    clock.Clock
	logger   *log.Logger
}

func NewPaymentService(repo ReconcileRepository, provider PaymentProvider, clk clock.Clock, logger *log.Logger) *PaymentService {
	if logger == nil {
		logger = log.Default()
	}
	return &PaymentService{repo: repo, provider: provider, clock: clk, logger: logger}
}

type WebhookOutcome struct {
	EventID   string
	EventType string
	// Duplicate means the event id was already in the ledger; nothing ran.
	Duplicate bool
	// Ignored means the event type carries no transition for us.
	Ignored bool
	Issued  []string
}

// HandleWebhook runs the state machine for one provider notification:
// verify, ledger check, dispatch, record. Redelivery of a processed event
// is acknowledged without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, headers http.Header, rawBody []byte) (WebhookOutcome, error) {
	ev, err := s.provider.VerifyWebhook(ctx, headers, rawBody)
	if err != nil {
		return WebhookOutcome{}, fmt.Errorf("verify webhook: %w", err)
	}

	outcome := WebhookOutcome{EventID: ev.ID, EventType: ev.Type}

	processed, err := s.repo.HasProcessedEvent(ctx, ev.ID)
	if err != nil {
		return WebhookOutcome{}, fmt.Errorf("check event ledger: %w", err)
	}
	if processed {
		outcome.Duplicate = true
		return outcome, nil
	}

	switch ev.Type {
	case payment.EventCaptureCompleted:
		ref, err := s.resolveInternalRef(ctx, ev)
		if err != nil {
			return WebhookOutcome{}, err
		}
		issued, err := s.grant(ctx, ref, ev.CaptureID, ev.Amount)
		if err != nil {
			return WebhookOutcome{}, err
		}
		outcome.Issued = issued
	case payment.EventCaptureDenied:
		ref, err := s.resolveInternalRef(ctx, ev)
		if err != nil {
			return WebhookOutcome{}, err
		}
		if err := s.deny(ctx, ref, ev.CaptureID); err != nil {
			return WebhookOutcome{}, err
		}
	default:
		outcome.Ignored = true
	}

	if err := s.repo.RecordEvent(ctx, domain.WebhookEvent{
		EventID:     ev.ID,
		EventType:   ev.Type,
		ProcessedAt: s.clock.Now(),
	}); err != nil {
		return WebhookOutcome{}, fmt.Errorf("record event: %w", err)
	}

	return outcome, nil
}

// resolveInternalRef prefers the custom reference carried on the event and
// falls back to asking the provider for the parent order.
func (s *PaymentService) resolveInternalRef(ctx context.Context, ev payment.Event) (string, error) {
	if ev.InternalRef != "" {
		return ev.InternalRef, nil
	}
	if ev.ProviderOrderRef == "" {
		return "", fmt.Errorf("event %s has no resolvable order reference: %w", ev.ID, domain.ErrOrderNotFound)
	}
	order, err := s.provider.GetOrder(ctx, ev.ProviderOrderRef)
	if err != nil {
		return "", fmt.Errorf("recover order reference: %w", err)
	}
	if order.InternalRef == "" {
		return "", fmt.Errorf("provider order %s has no internal reference: %w", ev.ProviderOrderRef, domain.ErrOrderNotFound)
	}
	return order.InternalRef, nil
}

type CaptureResult struct {
	OrderID string
	Total   decimal.Decimal
	Issued  []string
	// AlreadyCompleted means the order had been reconciled before this
	// call; the response repeats the original result.
	AlreadyCompleted bool
}

// CaptureOrder is the synchronous confirmation path: the storefront calls
// it after the buyer returns from the provider. It is idempotent against
// the webhook having arrived first.
func (s *PaymentService) CaptureOrder(ctx context.Context, providerRef string) (CaptureResult, error) {
	po, err := s.repo.GetPendingOrderByProviderRef(ctx, providerRef)
	if err != nil {
		return CaptureResult{}, err
	}

	if po.Status == domain.OrderStatusCompleted {
		return CaptureResult{
			OrderID:          po.ID,
			Total:            po.Total,
			Issued:           itemFQDNs(po.Items),
			AlreadyCompleted: true,
		}, nil
	}

	capture, err := s.provider.CaptureOrder(ctx, providerRef)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("capture order: %w", err)
	}
	if capture.Status != payment.CaptureStatusCompleted {
		return CaptureResult{}, fmt.Errorf("capture status %s: %w", capture.Status, domain.ErrPaymentProvider)
	}

	issued, err := s.grant(ctx, po.ID, capture.ID, capture.Amount)
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{OrderID: po.ID, Total: po.Total, Issued: issued}, nil
}

// grant performs the atomic transition pending -> completed -> issued in
// one transaction: order status, committed order row, domain rows, audit.
// A lost insert race on a label is audited and skipped; the paid order
// stays completed (ops reconcile from the audit log).
func (s *PaymentService) grant(ctx context.Context, pendingID, captureID string, amount decimal.Decimal) ([]string, error) {
	now := s.clock.Now()
	var issued []string

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		po, err := s.repo.GetPendingOrderForUpdate(txCtx, pendingID)
		if err != nil {
			return err
		}
		if po.Status == domain.OrderStatusCompleted {
			// Concurrent delivery already reconciled this order.
			issued = itemFQDNs(po.Items)
			return nil
		}

		if err := s.repo.MarkPendingOrderCompleted(txCtx, po.ID, captureID); err != nil {
			return err
		}

		order := domain.Order{
			ID:            uuid.NewString(),
			UserID:        po.UserID,
			ProviderRef:   po.ProviderRef,
			CaptureID:     captureID,
			Amount:        po.Total,
			Currency:      po.Currency,
			PaymentMethod: "paypal",
			Status:        domain.OrderStatusCompleted,
			CreatedAt:     now,
		}
		if err := s.repo.InsertOrder(txCtx, order); err != nil {
			return err
		}
		if err := s.repo.AppendAudit(txCtx, domain.AuditRecord{
			Action:   domain.AuditOrderCompleted,
			Entity:   "order",
			EntityID: order.ID,
			Detail: map[string]any{
				"pending_order": po.ID,
				"capture_id":    captureID,
				"amount":        amount.String(),
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		for _, item := range po.Items {
			d := domain.Domain{
				ID:      uuid.NewString(),
				FQDN:    item.FQDN,
				Name:    item.Name,
				Class:   item.Class,
				OwnerID: po.UserID,
				Status:  domain.DomainStatusActive,

				CreatedAt: now,
			}
			if err := s.repo.InsertDomain(txCtx, d); err != nil {
				if errors.Is(err, domain.ErrDomainTaken) {
					// Lost the registration race between checkout and
					// capture. The order stays completed; the conflict is
					// recorded for out-of-band reconciliation.
					s.logger.Printf("WARN: domain %s already taken, order %s paid but not issued", item.FQDN, order.ID)
					if auditErr := s.repo.AppendAudit(txCtx, domain.AuditRecord{
						Action:   domain.AuditDomainIssueFailed,
						Entity:   "domain",
						EntityID: item.FQDN,
						Detail: map[string]any{
							"order":  order.ID,
							"reason": "fqdn already registered",
						},
						CreatedAt: now,
					}); auditErr != nil {
						return auditErr
					}
					continue
				}
				return err
			}
			if err := s.repo.AppendAudit(txCtx, domain.AuditRecord{
				Action:   domain.AuditDomainIssued,
				Entity:   "domain",
				EntityID: item.FQDN,
				Detail: map[string]any{
					"order": order.ID,
					"owner": po.UserID,
				},
				CreatedAt: now,
			}); err != nil {
				return err
			}
			issued = append(issued, item.FQDN)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// deny marks a pending order failed after a denied capture. No domain is
// ever created on this path.
func (s *PaymentService) deny(ctx context.Context, pendingID, captureID string) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		po, err := s.repo.GetPendingOrderForUpdate(txCtx, pendingID)
		if err != nil {
			return err
		}
		if po.Status != domain.OrderStatusPending {
			return nil
		}
		if err := s.repo.MarkPendingOrderFailed(txCtx, po.ID, "capture denied"); err != nil {
			return err
		}
		return s.repo.AppendAudit(txCtx, domain.AuditRecord{
			Action:   domain.AuditOrderFailed,
			Entity:   "pending_order",
			EntityID: po.ID,
			Detail: map[string]any{
				"capture_id": captureID,
				"reason":     "capture denied",
			},
			CreatedAt: now,
		})
	})
}

func itemFQDNs(items []domain.OrderItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.FQDN)
	}
	return out
}
