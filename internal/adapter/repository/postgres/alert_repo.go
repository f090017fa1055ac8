package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/billing/internal/domain"
)

// AlertRepository implements usecase.AlertRepository. Uniqueness across open
// alerts is enforced by a partial unique index over
// (tenant_id, invoice_id, alert_type) WHERE resolved_at IS NULL; the upsert
// resolves a racing second writer to an update, never a duplicate.
type AlertRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// UpsertOpen inserts the alert or refreshes the message/metadata of the open
// alert with the same key. The upsert is idempotent, so deadlock and
// serialization failures are retried here.
func (r *AlertRepository) UpsertOpen(ctx context.Context, alert *domain.BillingAlert) error {
	metadata, err := marshalMetadata(alert.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO billing_alerts (id, tenant_id, invoice_id, alert_type, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, invoice_id, alert_type) WHERE resolved_at IS NULL
		DO UPDATE SET message = EXCLUDED.message, metadata = EXCLUDED.metadata
	`

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			alert.ID,
			alert.TenantID,
			nullIfEmpty(alert.InvoiceID),
			string(alert.Type),
			alert.Message,
			metadata,
			alert.CreatedAt,
		)
		return err
	})
}

// ListOpen returns a tenant's unresolved alerts, newest-first.
func (r *AlertRepository) ListOpen(ctx context.Context, tenantID string) ([]*domain.BillingAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, invoice_id, alert_type, message, metadata, created_at, resolved_at
		 FROM billing_alerts
		 WHERE tenant_id = $1 AND resolved_at IS NULL
		 ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*domain.BillingAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

func scanAlert(row pgx.Row) (*domain.BillingAlert, error) {
	var (
		alert     domain.BillingAlert
		invoiceID *string
		metadata  []byte
	)

	err := row.Scan(
		&alert.ID,
		&alert.TenantID,
		&invoiceID,
		&alert.Type,
		&alert.Message,
		&metadata,
		&alert.CreatedAt,
		&alert.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	alert.InvoiceID = deref(invoiceID)
	if metadata != nil {
		if err := json.Unmarshal(metadata, &alert.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal alert metadata: %w", err)
		}
	}

	return &alert, nil
}

// Resolve closes an open alert, scoped by tenant. A resolve against another
// tenant's alert matches zero rows and reports not-found; it never touches
// the row.
func (r *AlertRepository) Resolve(ctx context.Context, alertID, tenantID string, resolvedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE billing_alerts
		 SET resolved_at = $3
		 WHERE id = $1 AND tenant_id = $2 AND resolved_at IS NULL`,
		alertID, tenantID, resolvedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}

	return nil
}
