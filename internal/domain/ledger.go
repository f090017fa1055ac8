package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySource identifies the upstream origin of a ledger entry. The set is
// closed: adding a source is a schema change, not a runtime decision.
type EntrySource string

const (
	SourceSubscription     EntrySource = "subscription"
	SourceBookingFee       EntrySource = "booking_fee"
	SourceCreditAdjustment EntrySource = "credit_adjustment"
)

// Valid reports whether s is one of the known entry sources.
func (s EntrySource) Valid() bool {
	switch s {
	case SourceSubscription, SourceBookingFee, SourceCreditAdjustment:
		return true
	}
	return false
}

// LedgerEntry is an immutable financial fact. Entries are never updated or
// deleted; corrections are new credit_adjustment entries.
type LedgerEntry struct {
	ID                   string
	TenantID             string
	Source               EntrySource
	AmountCents          int64
	Currency             string
	Description          string
	StripeInvoiceID      string
	StripeSubscriptionID string
	StripeChargeID       string
	ServicePeriodStart   *time.Time
	ServicePeriodEnd     *time.Time
	Metadata             JSON
	RecordedAt           time.Time
}

// JSON is an open key/value bag carried for provenance. It is persisted
// verbatim and never interpreted.
type JSON map[string]any

// LedgerSummary holds reconciled totals for a tenant over a rolling window,
// plus the raw entries for drill-down.
type LedgerSummary struct {
	TenantID         string
	WindowDays       int
	MRRCents         int64
	BookingFeesCents int64
	CreditsCents     int64
	TotalBilledCents int64
	Entries          []*LedgerEntry
}

// NormalizeAmount rounds a cent amount to the nearest integer cent, half away
// from zero. Truncation would systematically under-bill.
func NormalizeAmount(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}
