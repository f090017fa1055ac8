package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/deskline/billing/internal/domain"
)

type fakeLedgerReader struct {
	entries []*domain.LedgerEntry
	err     error

	gotTenant string
	gotSince  time.Time
	queries   int
}

func (f *fakeLedgerReader) InsertEntry(ctx context.Context, entry *domain.LedgerEntry) (bool, error) {
	return true, nil
}

func (f *fakeLedgerReader) GetByChargeID(ctx context.Context, tenantID, chargeID string) (*domain.LedgerEntry, error) {
	return nil, domain.ErrEntryNotFound
}

func (f *fakeLedgerReader) QueryEntries(ctx context.Context, tenantID string, since time.Time) ([]*domain.LedgerEntry, error) {
	f.queries++
	f.gotTenant = tenantID
	f.gotSince = since
	return f.entries, f.err
}

func entry(source domain.EntrySource, cents int64) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:          "e",
		TenantID:    "t1",
		Source:      source,
		AmountCents: cents,
		Currency:    "usd",
		RecordedAt:  time.Now().UTC(),
	}
}

func TestSummaryUseCase_Summarize(t *testing.T) {
	tests := []struct {
		name        string
		entries     []*domain.LedgerEntry
		wantMRR     int64
		wantFees    int64
		wantCredits int64
		wantTotal   int64
	}{
		{
			name:    "no entries yields all zeros",
			entries: nil,
		},
		{
			name:      "first subscription charge",
			entries:   []*domain.LedgerEntry{entry(domain.SourceSubscription, 9900)},
			wantMRR:   9900,
			wantTotal: 9900,
		},
		{
			name: "credit offsets booking fee",
			entries: []*domain.LedgerEntry{
				entry(domain.SourceBookingFee, 5000),
				entry(domain.SourceCreditAdjustment, -5000),
			},
			wantFees:    5000,
			wantCredits: -5000,
			wantTotal:   0,
		},
		{
			name: "mixed sources reconcile",
			entries: []*domain.LedgerEntry{
				entry(domain.SourceSubscription, 9900),
				entry(domain.SourceSubscription, 9900),
				entry(domain.SourceBookingFee, 1250),
				entry(domain.SourceBookingFee, 1251),
				entry(domain.SourceCreditAdjustment, -500),
			},
			wantMRR:     19800,
			wantFees:    2501,
			wantCredits: -500,
			wantTotal:   21801,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeLedgerReader{entries: tt.entries}
			uc := NewSummaryUseCase(repo, nil, zerolog.Nop(), nil)

			summary, err := uc.Summarize(context.Background(), "t1", 30)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if summary.MRRCents != tt.wantMRR {
				t.Errorf("MRRCents = %d, want %d", summary.MRRCents, tt.wantMRR)
			}
			if summary.BookingFeesCents != tt.wantFees {
				t.Errorf("BookingFeesCents = %d, want %d", summary.BookingFeesCents, tt.wantFees)
			}
			if summary.CreditsCents != tt.wantCredits {
				t.Errorf("CreditsCents = %d, want %d", summary.CreditsCents, tt.wantCredits)
			}
			if summary.TotalBilledCents != tt.wantTotal {
				t.Errorf("TotalBilledCents = %d, want %d", summary.TotalBilledCents, tt.wantTotal)
			}

			// The core reconciliation property.
			sum := summary.MRRCents + summary.BookingFeesCents + summary.CreditsCents
			if summary.TotalBilledCents != sum {
				t.Errorf("total %d does not equal mrr+fees+credits %d", summary.TotalBilledCents, sum)
			}

			if len(summary.Entries) != len(tt.entries) {
				t.Errorf("expected %d entries in drill-down list, got %d", len(tt.entries), len(summary.Entries))
			}
		})
	}
}

func TestSummaryUseCase_WindowBounds(t *testing.T) {
	tests := []struct {
		name       string
		windowDays int
		want       int
	}{
		{"zero defaults", 0, DefaultSummaryWindowDays},
		{"negative defaults", -7, DefaultSummaryWindowDays},
		{"explicit window respected", 90, 90},
		{"oversized window capped", 4000, MaxSummaryWindowDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeLedgerReader{}
			uc := NewSummaryUseCase(repo, nil, zerolog.Nop(), nil)

			summary, err := uc.Summarize(context.Background(), "t1", tt.windowDays)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if summary.WindowDays != tt.want {
				t.Errorf("WindowDays = %d, want %d", summary.WindowDays, tt.want)
			}

			wantSince := time.Now().UTC().AddDate(0, 0, -tt.want)
			if diff := wantSince.Sub(repo.gotSince); diff < -time.Minute || diff > time.Minute {
				t.Errorf("query since = %v, want about %v", repo.gotSince, wantSince)
			}
		})
	}
}

func TestSummaryUseCase_ReadFailure(t *testing.T) {
	repo := &fakeLedgerReader{err: errors.New("db down")}
	uc := NewSummaryUseCase(repo, nil, zerolog.Nop(), nil)

	_, err := uc.Summarize(context.Background(), "t1", 30)
	if !errors.Is(err, domain.ErrLedgerRead) {
		t.Fatalf("expected ledger read error, got %v", err)
	}
}

func TestSummaryUseCase_InvalidTenant(t *testing.T) {
	uc := NewSummaryUseCase(&fakeLedgerReader{}, nil, zerolog.Nop(), nil)

	_, err := uc.Summarize(context.Background(), "", 30)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeSummaryCache struct {
	values map[string][]byte
	sets   int
}

func (c *fakeSummaryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *fakeSummaryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets++
	c.values[key] = value
	return nil
}

func (c *fakeSummaryCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *fakeSummaryCache) DeletePrefix(ctx context.Context, prefix string) error {
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

func TestSummaryUseCase_CacheHitSkipsStore(t *testing.T) {
	cached, _ := json.Marshal(&domain.LedgerSummary{TenantID: "t1", WindowDays: 30, MRRCents: 4200, TotalBilledCents: 4200})
	cache := &fakeSummaryCache{values: map[string][]byte{"summary:t1:30": cached}}
	repo := &fakeLedgerReader{entries: []*domain.LedgerEntry{entry(domain.SourceSubscription, 1)}}

	uc := NewSummaryUseCase(repo, cache, zerolog.Nop(), nil)

	summary, err := uc.Summarize(context.Background(), "t1", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.MRRCents != 4200 {
		t.Errorf("expected cached summary, got MRRCents = %d", summary.MRRCents)
	}
	if repo.queries != 0 {
		t.Errorf("expected no store query on cache hit, got %d", repo.queries)
	}
}

func TestSummaryUseCase_CacheMissPopulates(t *testing.T) {
	cache := &fakeSummaryCache{values: map[string][]byte{}}
	repo := &fakeLedgerReader{entries: []*domain.LedgerEntry{entry(domain.SourceSubscription, 9900)}}

	uc := NewSummaryUseCase(repo, cache, zerolog.Nop(), nil)

	if _, err := uc.Summarize(context.Background(), "t1", 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.sets != 1 {
		t.Errorf("expected summary to be cached once, got %d sets", cache.sets)
	}
}
