package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixglobal/registry/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// OrderRepository owns the purchase lifecycle tables: pending orders and
// their items, committed orders, the append-only audit log and the webhook
// idempotency ledger. All of them participate in one transaction through
// the context-carried tx.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreatePendingOrder(ctx context.Context, po domain.PendingOrder) error {
	return r.WithTx(ctx, func(txCtx context.Context) error {
		const stmt = `
INSERT INTO pending_orders (id, user_id, provider_ref, total, currency, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err := r.exec(txCtx, stmt,
			po.ID, po.UserID, po.ProviderRef, po.Total.String(),
			po.Currency.String(), po.Status, po.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("provider ref %s: %w", po.ProviderRef, domain.ErrOrderAlreadyExists)
			}
			return fmt.Errorf("create pending order: %w", err)
		}

		const itemStmt = `
INSERT INTO pending_order_items (pending_order_id, name, class, fqdn, unit_price)
VALUES ($1, $2, $3, $4, $5)`

		for _, item := range po.Items {
			if _, err := r.exec(txCtx, itemStmt,
				po.ID, item.Name, item.Class, item.FQDN, item.UnitPrice.String(),
			); err != nil {
				return fmt.Errorf("create pending order item %s: %w", item.FQDN, err)
			}
		}
		return nil
	})
}

func (r *OrderRepository) GetPendingOrderForUpdate(ctx context.Context, id string) (domain.PendingOrder, error) {
	const query = `
SELECT id, user_id, provider_ref, total::text, currency, status, COALESCE(error_message, ''), created_at, completed_at
FROM pending_orders
WHERE id = $1
FOR UPDATE`

	return r.getPendingOrder(ctx, query, id)
}

func (r *OrderRepository) GetPendingOrderByProviderRef(ctx context.Context, ref string) (domain.PendingOrder, error) {
	const query = `
SELECT id, user_id, provider_ref, total::text, currency, status, COALESCE(error_message, ''), created_at, completed_at
FROM pending_orders
WHERE provider_ref = $1`

	return r.getPendingOrder(ctx, query, ref)
}

func (r *OrderRepository) getPendingOrder(ctx context.Context, query, arg string) (domain.PendingOrder, error) {
	var (
		po     domain.PendingOrder
		total  string
		cur    string
		status string
	)
	err := r.queryRow(ctx, query, arg).
		Scan(&po.ID, &po.UserID, &po.ProviderRef, &total, &cur, &status,
			&po.ErrorMessage, &po.CreatedAt, &po.CompletedAt)
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return domain.PendingOrder{}, domain.ErrOrderNotFound
		}
		return domain.PendingOrder{}, fmt.Errorf("get pending order: %w", err)
	}

	po.Total, err = decimal.NewFromString(total)
	if err != nil {
		return domain.PendingOrder{}, fmt.Errorf("pending order total %q: %w", total, err)
	}
	po.Currency, err = currency.ParseISO(cur)
	if err != nil {
		return domain.PendingOrder{}, fmt.Errorf("pending order currency %q: %w", cur, err)
	}
	po.Status = domain.OrderStatus(status)

	po.Items, err = r.pendingOrderItems(ctx, po.ID)
	if err != nil {
		return domain.PendingOrder{}, err
	}
	return po, nil
}

func (r *OrderRepository) pendingOrderItems(ctx context.Context, pendingOrderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT name, class, fqdn, unit_price::text
FROM pending_order_items
WHERE pending_order_id = $1
ORDER BY id`

	rows, err := r.query(ctx, query, pendingOrderID)
	if err != nil {
		return nil, fmt.Errorf("get pending order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item  domain.OrderItem
			class string
			price string
		)
		if err := rows.Scan(&item.Name, &class, &item.FQDN, &price); err != nil {
			return nil, fmt.Errorf("scan pending order item: %w", err)
		}
		item.Class = domain.Class(class)
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("item price %q: %w", price, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending order items rows: %w", err)
	}
	return items, nil
}

func (r *OrderRepository) MarkPendingOrderCompleted(ctx context.Context, id, captureID string) error {
	const stmt = `
UPDATE pending_orders
SET status = 'completed', capture_id = $2, completed_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, captureID)
	if err != nil {
		return fmt.Errorf("mark pending order completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) MarkPendingOrderFailed(ctx context.Context, id, message string) error {
	const stmt = `
UPDATE pending_orders
SET status = 'failed', error_message = $2, completed_at = NOW()
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, message)
	if err != nil {
		return fmt.Errorf("mark pending order failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, user_id, provider_ref, capture_id, amount, currency, payment_method, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		order.ID, order.UserID, order.ProviderRef, order.CaptureID,
		order.Amount.String(), order.Currency.String(),
		order.PaymentMethod, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertDomain relies on ON CONFLICT DO NOTHING so a lost registration
// race maps to ErrDomainTaken without aborting the surrounding
// transaction.
func (r *OrderRepository) InsertDomain(ctx context.Context, d domain.Domain) error {
	const stmt = `
INSERT INTO domains (id, fqdn, name, class, owner_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (fqdn) DO NOTHING`

	tag, err := r.exec(ctx, stmt,
		d.ID, d.FQDN, d.Name, d.Class, d.OwnerID, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDomainTaken
	}
	return nil
}

func (r *OrderRepository) AppendAudit(ctx context.Context, rec domain.AuditRecord) error {
	detail, err := json.Marshal(rec.Detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	const stmt = `
INSERT INTO audit_log (action, entity, entity_id, detail, created_at)
VALUES ($1, $2, $3, $4, $5)`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := r.exec(ctx, stmt, rec.Action, rec.Entity, rec.EntityID, detail, createdAt); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (r *OrderRepository) HasProcessedEvent(ctx context.Context, eventID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)`

	var processed bool
	if err := r.queryRow(ctx, query, eventID).Scan(&processed); err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	return processed, nil
}

// RecordEvent tolerates a concurrent delivery recording the same id first.
func (r *OrderRepository) RecordEvent(ctx context.Context, ev domain.WebhookEvent) error {
	const stmt = `
INSERT INTO webhook_events (event_id, event_type, processed_at)
VALUES ($1, $2, $3)
ON CONFLICT (event_id) DO NOTHING`

	if _, err := r.exec(ctx, stmt, ev.EventID, ev.EventType, ev.ProcessedAt); err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
