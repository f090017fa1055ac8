package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/billing/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository. The ledger_entries
// table is append-only; the only uniqueness beyond the primary key is a
// partial unique index over stripe_charge_id.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const insertEntrySQL = `
	INSERT INTO ledger_entries (
		id, tenant_id, source, amount_cents, currency, description,
		stripe_invoice_id, stripe_subscription_id, stripe_charge_id,
		service_period_start, service_period_end, metadata, recorded_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

// InsertEntry appends an entry. With a stripe charge id present the insert is
// conditional: a conflict on the charge id inserts nothing and reports
// inserted=false, which the caller treats as an idempotent no-op.
func (r *LedgerRepository) InsertEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return false, err
	}

	query := insertEntrySQL
	if entry.StripeChargeID != "" {
		query += ` ON CONFLICT (stripe_charge_id) WHERE stripe_charge_id IS NOT NULL DO NOTHING`
	}

	tag, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		string(entry.Source),
		entry.AmountCents,
		entry.Currency,
		entry.Description,
		nullIfEmpty(entry.StripeInvoiceID),
		nullIfEmpty(entry.StripeSubscriptionID),
		nullIfEmpty(entry.StripeChargeID),
		entry.ServicePeriodStart,
		entry.ServicePeriodEnd,
		metadata,
		entry.RecordedAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

const selectEntryColumns = `
	id, tenant_id, source, amount_cents, currency, description,
	stripe_invoice_id, stripe_subscription_id, stripe_charge_id,
	service_period_start, service_period_end, metadata, recorded_at
`

// GetByChargeID retrieves the tenant's entry for a stripe charge. The charge
// id index is global, but the lookup is tenant-scoped: a charge booked under
// another tenant reports domain.ErrEntryNotFound here.
func (r *LedgerRepository) GetByChargeID(ctx context.Context, tenantID, chargeID string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+selectEntryColumns+`
		 FROM ledger_entries
		 WHERE tenant_id = $1 AND stripe_charge_id = $2`,
		tenantID, chargeID,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// QueryEntries returns a tenant's entries recorded at or after since,
// newest-first.
func (r *LedgerRepository) QueryEntries(ctx context.Context, tenantID string, since time.Time) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectEntryColumns+`
		 FROM ledger_entries
		 WHERE tenant_id = $1 AND recorded_at >= $2
		 ORDER BY recorded_at DESC`,
		tenantID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry          domain.LedgerEntry
		invoiceID      *string
		subscriptionID *string
		chargeID       *string
		metadata       []byte
	)

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.Source,
		&entry.AmountCents,
		&entry.Currency,
		&entry.Description,
		&invoiceID,
		&subscriptionID,
		&chargeID,
		&entry.ServicePeriodStart,
		&entry.ServicePeriodEnd,
		&metadata,
		&entry.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.StripeInvoiceID = deref(invoiceID)
	entry.StripeSubscriptionID = deref(subscriptionID)
	entry.StripeChargeID = deref(chargeID)

	if metadata != nil {
		if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal entry metadata: %w", err)
		}
	}

	return &entry, nil
}
