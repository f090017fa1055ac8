package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deskline/billing/internal/domain"
)

// ReconciliationUseCase handles anomalies detected by the billing
// reconciliation job. Every operation here is idempotent, so the job can be
// re-run for the same invoice without creating duplicate alerts or dunning
// work.
type ReconciliationUseCase struct {
	alerts  *AlertUseCase
	dunning *DunningUseCase
	logger  zerolog.Logger
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(alerts *AlertUseCase, dunning *DunningUseCase, logger zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		alerts:  alerts,
		dunning: dunning,
		logger:  logger,
	}
}

// HandleFailedInvoice raises a payment_failed alert and enqueues the dunning
// sequence for the invoice. Running it twice leaves exactly one open alert
// and one event per schedule step.
func (uc *ReconciliationUseCase) HandleFailedInvoice(ctx context.Context, tenantID, invoiceID, reason string) error {
	message := reason
	if message == "" {
		message = "invoice payment failed"
	}

	err := uc.alerts.Raise(ctx, RaiseAlertInput{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Type:      domain.AlertPaymentFailed,
		Message:   message,
		Metadata:  domain.JSON{"invoice_id": invoiceID},
	})
	if err != nil {
		return err
	}

	if err := uc.dunning.Enqueue(ctx, tenantID, invoiceID); err != nil {
		return err
	}

	uc.logger.Info().
		Str("tenant_id", tenantID).
		Str("invoice_id", invoiceID).
		Msg("failed invoice handled: alert raised, dunning enqueued")

	return nil
}
