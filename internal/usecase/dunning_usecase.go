package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/infrastructure/metrics"
)

// DunningUseCase enqueues the ordered contact sequence for a failed invoice
// and records delivery outcomes written back by the notifier.
type DunningUseCase struct {
	dunningRepo DunningRepository
	idGen       IDGenerator
	schedule    domain.DunningSchedule
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewDunningUseCase creates a new DunningUseCase driven by the given schedule.
// metrics may be nil.
func NewDunningUseCase(dunningRepo DunningRepository, idGen IDGenerator, schedule domain.DunningSchedule, logger zerolog.Logger, metrics *metrics.Metrics) *DunningUseCase {
	return &DunningUseCase{
		dunningRepo: dunningRepo,
		idGen:       idGen,
		schedule:    schedule,
		logger:      logger,
		metrics:     metrics,
	}
}

// Enqueue upserts one pending event per schedule step for the invoice. Steps
// that already exist are untouched, so calling Enqueue again is a no-op for
// them. The first failed upsert aborts the invocation; a later call creates
// only the missing steps, which is how a partially enqueued sequence
// converges.
func (uc *DunningUseCase) Enqueue(ctx context.Context, tenantID, invoiceID string) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}

	if invoiceID == "" {
		return fmt.Errorf("%w: invoice id is required", domain.ErrValidation)
	}

	now := time.Now().UTC()

	for _, step := range uc.schedule.Steps {
		event := &domain.DunningEvent{
			ID:        uc.idGen.Generate(),
			TenantID:  tenantID,
			InvoiceID: invoiceID,
			Step:      step.Step,
			Channel:   step.Channel,
			Status:    domain.DunningPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := uc.dunningRepo.UpsertPending(ctx, event); err != nil {
			uc.logger.Error().Err(err).
				Str("tenant_id", tenantID).
				Str("invoice_id", invoiceID).
				Int("step", step.Step).
				Str("channel", string(step.Channel)).
				Msg("failed to enqueue dunning step")
			return fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
		}
	}

	if uc.metrics != nil {
		uc.metrics.DunningEnqueued.Add(float64(len(uc.schedule.Steps)))
	}

	return nil
}

// ListByInvoice returns the dunning sequence for an invoice in step order.
func (uc *DunningUseCase) ListByInvoice(ctx context.Context, tenantID, invoiceID string) ([]*domain.DunningEvent, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	events, err := uc.dunningRepo.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Str("invoice_id", invoiceID).
			Msg("failed to list dunning events")
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerRead, err)
	}

	return events, nil
}

// ListPending returns pending events for the notifier to dispatch.
func (uc *DunningUseCase) ListPending(ctx context.Context, limit int) ([]*domain.DunningEvent, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	if limit > MaxPendingLimit {
		limit = MaxPendingLimit
	}

	events, err := uc.dunningRepo.ListPending(ctx, limit)
	if err != nil {
		uc.logger.Error().Err(err).Msg("failed to list pending dunning events")
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerRead, err)
	}

	return events, nil
}

// MarkSent records that the notifier dispatched the event.
func (uc *DunningUseCase) MarkSent(ctx context.Context, eventID string) error {
	return uc.updateStatus(ctx, eventID, domain.DunningSent)
}

// MarkFailed records that the dispatch attempt failed. Re-driving a failed
// step is an operator decision, not an automatic transition.
func (uc *DunningUseCase) MarkFailed(ctx context.Context, eventID string) error {
	return uc.updateStatus(ctx, eventID, domain.DunningFailed)
}

func (uc *DunningUseCase) updateStatus(ctx context.Context, eventID string, status domain.DunningStatus) error {
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", domain.ErrValidation)
	}

	err := uc.dunningRepo.UpdateStatus(ctx, eventID, status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrDunningEventNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
			return err
		}

		uc.logger.Error().Err(err).
			Str("event_id", eventID).
			Str("status", string(status)).
			Msg("failed to update dunning event status")
		return fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
	}

	if uc.metrics != nil {
		uc.metrics.DunningTransitions.WithLabelValues(string(status)).Inc()
	}

	return nil
}
