package domain

import "time"

// Audit actions recorded on every state-changing operation.
const (
	AuditOrderCreated      = "order_created"
	AuditOrderCompleted    = "order_completed"
	AuditOrderFailed       = "order_failed"
	AuditDomainIssued      = "domain_issued"
	AuditDomainIssueFailed = "domain_issue_failed"
)

// AuditRecord is an append-only log entry; rows are never mutated or
// deleted.
type AuditRecord struct {
	ID        int64
	Action    string
	Entity    string
	EntityID  string
	Detail    map[string]any
	CreatedAt time.Time
}

// WebhookEvent is the idempotency ledger entry for a processed provider
// event. A redelivered event id found here is acknowledged without side
// effects.
type WebhookEvent struct {
	EventID     string
	EventType   string
	ProcessedAt time.Time
}
