package dto

import (
	"testing"
	"time"

	"github.com/deskline/billing/internal/domain"
)

func TestSummaryFromDomain(t *testing.T) {
	now := time.Now().UTC()

	summary := &domain.LedgerSummary{
		TenantID:         "tenant-1",
		WindowDays:       30,
		MRRCents:         9900,
		BookingFeesCents: 500,
		CreditsCents:     -200,
		TotalBilledCents: 10200,
		Entries: []*domain.LedgerEntry{
			{ID: "e1", TenantID: "tenant-1", Source: domain.SourceSubscription, AmountCents: 9900, Currency: "usd", RecordedAt: now},
			{ID: "e2", TenantID: "tenant-1", Source: domain.SourceBookingFee, AmountCents: 500, Currency: "usd", RecordedAt: now},
			{ID: "e3", TenantID: "tenant-1", Source: domain.SourceCreditAdjustment, AmountCents: -200, Currency: "usd", RecordedAt: now},
		},
	}

	got := SummaryFromDomain(summary)

	if got.TotalBilledCents != 10200 {
		t.Fatalf("expected total 10200, got %d", got.TotalBilledCents)
	}
	if len(got.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Source != "subscription" {
		t.Fatalf("expected subscription source string, got %q", got.Entries[0].Source)
	}
}

func TestAlertFromDomain(t *testing.T) {
	created := time.Now().UTC()
	resolved := created.Add(time.Hour)

	alert := &domain.BillingAlert{
		ID:         "a1",
		TenantID:   "tenant-1",
		InvoiceID:  "inv-1",
		Type:       domain.AlertPaymentFailed,
		Message:    "invoice payment failed",
		Metadata:   domain.JSON{"invoice_id": "inv-1"},
		CreatedAt:  created,
		ResolvedAt: &resolved,
	}

	got := AlertFromDomain(alert)

	if got.Type != "payment_failed" {
		t.Fatalf("expected payment_failed type string, got %q", got.Type)
	}
	if got.ResolvedAt == nil || !got.ResolvedAt.Equal(resolved) {
		t.Fatalf("expected resolved timestamp to carry over, got %v", got.ResolvedAt)
	}
}

func TestDunningEventsFromDomain(t *testing.T) {
	now := time.Now().UTC()

	events := []*domain.DunningEvent{
		{ID: "d1", TenantID: "tenant-1", InvoiceID: "inv-1", Step: 1, Channel: domain.ChannelEmail, Status: domain.DunningPending, CreatedAt: now, UpdatedAt: now},
		{ID: "d2", TenantID: "tenant-1", InvoiceID: "inv-1", Step: 2, Channel: domain.ChannelSMS, Status: domain.DunningSent, CreatedAt: now, UpdatedAt: now},
	}

	got := DunningEventsFromDomain(events)

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[1].Channel != "sms" || got[1].Status != "sent" {
		t.Fatalf("expected sms/sent, got %s/%s", got[1].Channel, got[1].Status)
	}
}
