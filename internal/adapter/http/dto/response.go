package dto

import (
	"time"

	"github.com/deskline/billing/internal/domain"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID                   string         `json:"id"`
	TenantID             string         `json:"tenant_id"`
	Source               string         `json:"source"`
	AmountCents          int64          `json:"amount_cents"`
	Currency             string         `json:"currency"`
	Description          string         `json:"description,omitempty"`
	StripeInvoiceID      string         `json:"stripe_invoice_id,omitempty"`
	StripeSubscriptionID string         `json:"stripe_subscription_id,omitempty"`
	StripeChargeID       string         `json:"stripe_charge_id,omitempty"`
	ServicePeriodStart   *time.Time     `json:"service_period_start,omitempty"`
	ServicePeriodEnd     *time.Time     `json:"service_period_end,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	RecordedAt           time.Time      `json:"recorded_at"`
}

// EntryFromDomain converts a domain ledger entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                   e.ID,
		TenantID:             e.TenantID,
		Source:               string(e.Source),
		AmountCents:          e.AmountCents,
		Currency:             e.Currency,
		Description:          e.Description,
		StripeInvoiceID:      e.StripeInvoiceID,
		StripeSubscriptionID: e.StripeSubscriptionID,
		StripeChargeID:       e.StripeChargeID,
		ServicePeriodStart:   e.ServicePeriodStart,
		ServicePeriodEnd:     e.ServicePeriodEnd,
		Metadata:             e.Metadata,
		RecordedAt:           e.RecordedAt,
	}
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// SummaryResponse represents reconciled billing totals in API responses.
type SummaryResponse struct {
	TenantID         string           `json:"tenant_id"`
	WindowDays       int              `json:"window_days"`
	MRRCents         int64            `json:"mrr_cents"`
	BookingFeesCents int64            `json:"booking_fees_cents"`
	CreditsCents     int64            `json:"credits_cents"`
	TotalBilledCents int64            `json:"total_billed_cents"`
	Entries          []*EntryResponse `json:"entries"`
}

// SummaryFromDomain converts a domain summary to a response.
func SummaryFromDomain(s *domain.LedgerSummary) *SummaryResponse {
	return &SummaryResponse{
		TenantID:         s.TenantID,
		WindowDays:       s.WindowDays,
		MRRCents:         s.MRRCents,
		BookingFeesCents: s.BookingFeesCents,
		CreditsCents:     s.CreditsCents,
		TotalBilledCents: s.TotalBilledCents,
		Entries:          EntriesFromDomain(s.Entries),
	}
}

// AlertResponse represents a billing alert in API responses.
type AlertResponse struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	InvoiceID  string         `json:"invoice_id,omitempty"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
}

// AlertFromDomain converts a domain alert to a response.
func AlertFromDomain(a *domain.BillingAlert) *AlertResponse {
	return &AlertResponse{
		ID:         a.ID,
		TenantID:   a.TenantID,
		InvoiceID:  a.InvoiceID,
		Type:       string(a.Type),
		Message:    a.Message,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt,
		ResolvedAt: a.ResolvedAt,
	}
}

// AlertsFromDomain converts domain alerts to responses.
func AlertsFromDomain(alerts []*domain.BillingAlert) []*AlertResponse {
	result := make([]*AlertResponse, len(alerts))
	for i, a := range alerts {
		result[i] = AlertFromDomain(a)
	}
	return result
}

// DunningEventResponse represents a dunning event in API responses.
type DunningEventResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	InvoiceID string    `json:"invoice_id"`
	Step      int       `json:"step"`
	Channel   string    `json:"channel"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DunningEventFromDomain converts a domain dunning event to a response.
func DunningEventFromDomain(e *domain.DunningEvent) *DunningEventResponse {
	return &DunningEventResponse{
		ID:        e.ID,
		TenantID:  e.TenantID,
		InvoiceID: e.InvoiceID,
		Step:      e.Step,
		Channel:   string(e.Channel),
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// DunningEventsFromDomain converts domain dunning events to responses.
func DunningEventsFromDomain(events []*domain.DunningEvent) []*DunningEventResponse {
	result := make([]*DunningEventResponse, len(events))
	for i, e := range events {
		result[i] = DunningEventFromDomain(e)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
