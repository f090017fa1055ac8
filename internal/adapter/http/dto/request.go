package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/usecase"
)

// RecordEntryRequest represents a request to record a ledger entry. Amount is
// in currency minor units and may carry a fractional part from proration.
type RecordEntryRequest struct {
	TenantID             string          `json:"tenant_id"`
	Source               string          `json:"source"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency,omitempty"`
	Description          string          `json:"description,omitempty"`
	StripeInvoiceID      string          `json:"stripe_invoice_id,omitempty"`
	StripeSubscriptionID string          `json:"stripe_subscription_id,omitempty"`
	StripeChargeID       string          `json:"stripe_charge_id,omitempty"`
	ServicePeriodStart   *time.Time      `json:"service_period_start,omitempty"`
	ServicePeriodEnd     *time.Time      `json:"service_period_end,omitempty"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordEntryRequest) ToUseCaseInput() usecase.RecordEntryInput {
	return usecase.RecordEntryInput{
		TenantID:             r.TenantID,
		Source:               domain.EntrySource(r.Source),
		Amount:               r.Amount,
		Currency:             r.Currency,
		Description:          r.Description,
		StripeInvoiceID:      r.StripeInvoiceID,
		StripeSubscriptionID: r.StripeSubscriptionID,
		StripeChargeID:       r.StripeChargeID,
		ServicePeriodStart:   r.ServicePeriodStart,
		ServicePeriodEnd:     r.ServicePeriodEnd,
		Metadata:             r.Metadata,
	}
}

// PaymentFailedRequest represents the webhook-relay notification that an
// invoice payment failed.
type PaymentFailedRequest struct {
	Reason string `json:"reason,omitempty"`
}
