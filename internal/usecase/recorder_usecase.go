package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/infrastructure/metrics"
)

// RecorderUseCase validates and persists a single financial event into the
// ledger. Plain inserts are not retried: a blind retry of a failed write can
// double-count revenue unless the caller supplied a stripe charge id.
type RecorderUseCase struct {
	ledgerRepo LedgerRepository
	cache      Cache
	idGen      IDGenerator
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewRecorderUseCase creates a new RecorderUseCase. cache and metrics may be nil.
func NewRecorderUseCase(ledgerRepo LedgerRepository, cache Cache, idGen IDGenerator, logger zerolog.Logger, metrics *metrics.Metrics) *RecorderUseCase {
	return &RecorderUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cache,
		idGen:      idGen,
		logger:     logger,
		metrics:    metrics,
	}
}

// RecordEntryInput represents input for recording a ledger entry. Amount is
// the charge in currency minor units (cents); fractional values are rounded,
// never truncated, before persistence.
type RecordEntryInput struct {
	TenantID             string
	Source               domain.EntrySource
	Amount               decimal.Decimal
	Currency             string
	Description          string
	StripeInvoiceID      string
	StripeSubscriptionID string
	StripeChargeID       string
	ServicePeriodStart   *time.Time
	ServicePeriodEnd     *time.Time
	Metadata             domain.JSON
}

func (in RecordEntryInput) validate() error {
	if err := domain.ValidateTenantID(in.TenantID); err != nil {
		return err
	}

	if !in.Source.Valid() {
		return fmt.Errorf("%w: unknown entry source %q", domain.ErrValidation, in.Source)
	}

	if err := domain.ValidateDescription(in.Description); err != nil {
		return err
	}

	if err := domain.ValidateCurrency(in.Currency); err != nil {
		return err
	}

	return domain.ValidateMetadata(in.Metadata)
}

// Record appends exactly one immutable entry to the ledger. When the input
// carries a stripe charge id the tenant already recorded, the call is an
// idempotent no-op and returns the previously recorded entry. A charge id
// booked under a different tenant is rejected with domain.ErrChargeConflict.
func (uc *RecorderUseCase) Record(ctx context.Context, input RecordEntryInput) (*domain.LedgerEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	entry := &domain.LedgerEntry{
		ID:                   uc.idGen.Generate(),
		TenantID:             input.TenantID,
		Source:               input.Source,
		AmountCents:          domain.NormalizeAmount(input.Amount),
		Currency:             currency,
		Description:          input.Description,
		StripeInvoiceID:      input.StripeInvoiceID,
		StripeSubscriptionID: input.StripeSubscriptionID,
		StripeChargeID:       input.StripeChargeID,
		ServicePeriodStart:   input.ServicePeriodStart,
		ServicePeriodEnd:     input.ServicePeriodEnd,
		Metadata:             input.Metadata,
		RecordedAt:           time.Now().UTC(),
	}

	inserted, err := uc.ledgerRepo.InsertEntry(ctx, entry)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("tenant_id", input.TenantID).
			Str("source", string(input.Source)).
			Msg("failed to record ledger entry")
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
	}

	if !inserted {
		existing, err := uc.ledgerRepo.GetByChargeID(ctx, input.TenantID, input.StripeChargeID)
		if errors.Is(err, domain.ErrEntryNotFound) {
			// The charge id collided but the tenant owns no entry for it, so
			// another tenant booked this charge. Never serve their entry.
			uc.logger.Warn().
				Str("tenant_id", input.TenantID).
				Str("stripe_charge_id", input.StripeChargeID).
				Msg("stripe charge already booked under another tenant")
			return nil, fmt.Errorf("%w: stripe charge %q", domain.ErrChargeConflict, input.StripeChargeID)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLedgerRead, err)
		}

		uc.logger.Info().
			Str("tenant_id", input.TenantID).
			Str("stripe_charge_id", input.StripeChargeID).
			Msg("charge already recorded, treating as no-op")

		if uc.metrics != nil {
			uc.metrics.DuplicateCharges.Inc()
		}

		return existing, nil
	}

	if uc.metrics != nil {
		uc.metrics.EntriesRecorded.WithLabelValues(string(entry.Source)).Inc()
		uc.metrics.EntryAmountCents.Observe(math.Abs(float64(entry.AmountCents)))
	}

	uc.invalidateSummary(ctx, input.TenantID)

	return entry, nil
}

// invalidateSummary drops every cached summary window for a tenant.
// Best-effort: a stale cache heals itself via TTL.
func (uc *RecorderUseCase) invalidateSummary(ctx context.Context, tenantID string) {
	if uc.cache == nil {
		return
	}

	if err := uc.cache.DeletePrefix(ctx, summaryCachePrefix(tenantID)); err != nil {
		uc.logger.Warn().Err(err).
			Str("tenant_id", tenantID).
			Msg("failed to invalidate summary cache")
	}
}
