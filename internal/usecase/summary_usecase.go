package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/infrastructure/metrics"
)

// SummaryUseCase reads a tenant's entries over a rolling window and produces
// reconciled totals.
type SummaryUseCase struct {
	ledgerRepo LedgerRepository
	cache      Cache
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewSummaryUseCase creates a new SummaryUseCase. cache and metrics may be nil.
func NewSummaryUseCase(ledgerRepo LedgerRepository, cache Cache, logger zerolog.Logger, metrics *metrics.Metrics) *SummaryUseCase {
	return &SummaryUseCase{
		ledgerRepo: ledgerRepo,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
	}
}

// Summarize computes billing totals for a tenant over the last windowDays
// days. A tenant with no entries yields all-zero totals and an empty list.
// The invariant TotalBilledCents == MRRCents + BookingFeesCents + CreditsCents
// holds for any mix of entries.
func (uc *SummaryUseCase) Summarize(ctx context.Context, tenantID string, windowDays int) (*domain.LedgerSummary, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	if windowDays <= 0 {
		windowDays = DefaultSummaryWindowDays
	}
	if windowDays > MaxSummaryWindowDays {
		windowDays = MaxSummaryWindowDays
	}

	if cached := uc.fromCache(ctx, tenantID, windowDays); cached != nil {
		if uc.metrics != nil {
			uc.metrics.SummaryCacheHits.Inc()
		}

		return cached, nil
	}

	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	entries, err := uc.ledgerRepo.QueryEntries(ctx, tenantID, since)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Int("window_days", windowDays).
			Msg("failed to load ledger entries")
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerRead, err)
	}

	summary := &domain.LedgerSummary{
		TenantID:   tenantID,
		WindowDays: windowDays,
		Entries:    entries,
	}

	for _, entry := range entries {
		switch entry.Source {
		case domain.SourceSubscription:
			summary.MRRCents += entry.AmountCents
		case domain.SourceBookingFee:
			summary.BookingFeesCents += entry.AmountCents
		case domain.SourceCreditAdjustment:
			summary.CreditsCents += entry.AmountCents
		}
		summary.TotalBilledCents += entry.AmountCents
	}

	if uc.metrics != nil {
		uc.metrics.SummariesComputed.Inc()
	}

	uc.toCache(ctx, summary)

	return summary, nil
}

func (uc *SummaryUseCase) fromCache(ctx context.Context, tenantID string, windowDays int) *domain.LedgerSummary {
	if uc.cache == nil {
		return nil
	}

	value, found, err := uc.cache.Get(ctx, summaryCacheKey(tenantID, windowDays))
	if err != nil {
		uc.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("summary cache read failed")
		return nil
	}
	if !found {
		return nil
	}

	var summary domain.LedgerSummary
	if err := json.Unmarshal(value, &summary); err != nil {
		return nil
	}

	return &summary
}

func (uc *SummaryUseCase) toCache(ctx context.Context, summary *domain.LedgerSummary) {
	if uc.cache == nil {
		return
	}

	value, err := json.Marshal(summary)
	if err != nil {
		return
	}

	key := summaryCacheKey(summary.TenantID, summary.WindowDays)
	if err := uc.cache.Set(ctx, key, value, SummaryCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("tenant_id", summary.TenantID).Msg("summary cache write failed")
	}
}

func summaryCacheKey(tenantID string, windowDays int) string {
	return fmt.Sprintf("summary:%s:%d", tenantID, windowDays)
}

// summaryCachePrefix covers every window key of one tenant.
func summaryCachePrefix(tenantID string) string {
	return fmt.Sprintf("summary:%s:", tenantID)
}
