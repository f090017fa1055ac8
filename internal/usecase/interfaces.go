package usecase

import (
	"context"
	"time"

	"github.com/deskline/billing/internal/domain"
)

// LedgerRepository defines data access for ledger entries. The ledger is
// append-only: there are deliberately no update or delete operations.
type LedgerRepository interface {
	// InsertEntry appends an entry. When the entry carries a stripe charge id
	// the insert is conditional on that id not being recorded yet; inserted is
	// false when the charge was already booked.
	InsertEntry(ctx context.Context, entry *domain.LedgerEntry) (inserted bool, err error)
	// GetByChargeID retrieves the tenant's entry for a stripe charge. Returns
	// domain.ErrEntryNotFound when the tenant has no entry for that charge,
	// even if another tenant does.
	GetByChargeID(ctx context.Context, tenantID, chargeID string) (*domain.LedgerEntry, error)
	// QueryEntries returns a tenant's entries recorded at or after since,
	// newest-first.
	QueryEntries(ctx context.Context, tenantID string, since time.Time) ([]*domain.LedgerEntry, error)
}

// AlertRepository defines data access for billing alerts.
type AlertRepository interface {
	// UpsertOpen inserts the alert, or refreshes message and metadata of the
	// open alert with the same (tenant, invoice, type) key.
	UpsertOpen(ctx context.Context, alert *domain.BillingAlert) error
	ListOpen(ctx context.Context, tenantID string) ([]*domain.BillingAlert, error)
	// Resolve closes an open alert, scoped by tenant. Returns
	// domain.ErrAlertNotFound when no open alert matched.
	Resolve(ctx context.Context, alertID, tenantID string, resolvedAt time.Time) error
}

// DunningRepository defines data access for dunning events.
type DunningRepository interface {
	// UpsertPending inserts the event with status pending; an existing row for
	// the same (tenant, invoice, step, channel) key is left untouched.
	UpsertPending(ctx context.Context, event *domain.DunningEvent) error
	ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*domain.DunningEvent, error)
	ListPending(ctx context.Context, limit int) ([]*domain.DunningEvent, error)
	// UpdateStatus moves a pending event to sent or failed. Returns
	// domain.ErrInvalidTransition when the event is no longer pending and
	// domain.ErrDunningEventNotFound when it does not exist.
	UpdateStatus(ctx context.Context, id string, status domain.DunningStatus, updatedAt time.Time) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines best-effort caching for summary reads.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key under a prefix, e.g. all cached summary
	// windows of one tenant.
	DeletePrefix(ctx context.Context, prefix string) error
}
