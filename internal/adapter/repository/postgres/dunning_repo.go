package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/billing/internal/domain"
)

// DunningRepository implements usecase.DunningRepository. The
// (tenant_id, invoice_id, step, channel) unique constraint is the concurrency
// primitive: two jobs racing to enqueue the same step both succeed without
// creating a duplicate work item.
type DunningRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewDunningRepository creates a new DunningRepository.
func NewDunningRepository(pool *pgxpool.Pool) *DunningRepository {
	return &DunningRepository{
		pool:    pool,
		retrier: NewRetrier(),
	}
}

// UpsertPending inserts the event with status pending. An existing row for
// the same key is left untouched, including its status.
func (r *DunningRepository) UpsertPending(ctx context.Context, event *domain.DunningEvent) error {
	query := `
		INSERT INTO dunning_events (id, tenant_id, invoice_id, step, channel, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, invoice_id, step, channel) DO NOTHING
	`

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query,
			event.ID,
			event.TenantID,
			event.InvoiceID,
			event.Step,
			string(event.Channel),
			string(event.Status),
			event.CreatedAt,
			event.UpdatedAt,
		)
		return err
	})
}

const selectDunningColumns = `id, tenant_id, invoice_id, step, channel, status, created_at, updated_at`

// ListByInvoice returns an invoice's dunning sequence in step order.
func (r *DunningRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*domain.DunningEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectDunningColumns+`
		 FROM dunning_events
		 WHERE tenant_id = $1 AND invoice_id = $2
		 ORDER BY step ASC`,
		tenantID, invoiceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDunningEvents(rows)
}

// ListPending returns pending events oldest-first for the notifier.
func (r *DunningRepository) ListPending(ctx context.Context, limit int) ([]*domain.DunningEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+selectDunningColumns+`
		 FROM dunning_events
		 WHERE status = 'pending'
		 ORDER BY created_at ASC, step ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDunningEvents(rows)
}

// UpdateStatus moves a pending event to sent or failed. The WHERE clause
// enforces the state machine; a matched-zero-rows outcome is disambiguated
// into not-found vs. invalid-transition.
func (r *DunningRepository) UpdateStatus(ctx context.Context, id string, status domain.DunningStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE dunning_events
		 SET status = $2, updated_at = $3
		 WHERE id = $1 AND status = 'pending'`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM dunning_events WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDunningEventNotFound
	}
	if err != nil {
		return err
	}

	return domain.ErrInvalidTransition
}

func scanDunningEvents(rows pgx.Rows) ([]*domain.DunningEvent, error) {
	events := make([]*domain.DunningEvent, 0)
	for rows.Next() {
		var event domain.DunningEvent

		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&event.InvoiceID,
			&event.Step,
			&event.Channel,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
