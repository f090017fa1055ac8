package domain

import "time"

// AlertType classifies a billing anomaly. The type is part of the alert's
// uniqueness key, so reconciliation jobs may define their own types.
type AlertType string

const (
	AlertPaymentFailed  AlertType = "payment_failed"
	AlertLedgerMismatch AlertType = "ledger_mismatch"
)

// BillingAlert is an open/resolved flag on a billing anomaly. At most one
// open alert exists per (tenant, invoice, type); raising again refreshes the
// open row. Alerts are never deleted.
type BillingAlert struct {
	ID         string
	TenantID   string
	InvoiceID  string
	Type       AlertType
	Message    string
	Metadata   JSON
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Open reports whether the alert has not been resolved yet.
func (a *BillingAlert) Open() bool {
	return a.ResolvedAt == nil
}
