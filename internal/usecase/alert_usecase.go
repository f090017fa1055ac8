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

// AlertUseCase raises and resolves billing alerts, enforcing at most one open
// alert per (tenant, invoice, type) key.
type AlertUseCase struct {
	alertRepo AlertRepository
	idGen     IDGenerator
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewAlertUseCase creates a new AlertUseCase. metrics may be nil.
func NewAlertUseCase(alertRepo AlertRepository, idGen IDGenerator, logger zerolog.Logger, metrics *metrics.Metrics) *AlertUseCase {
	return &AlertUseCase{
		alertRepo: alertRepo,
		idGen:     idGen,
		logger:    logger,
		metrics:   metrics,
	}
}

// RaiseAlertInput represents input for raising an alert. InvoiceID may be
// empty for anomalies not tied to a specific invoice.
type RaiseAlertInput struct {
	TenantID  string
	InvoiceID string
	Type      domain.AlertType
	Message   string
	Metadata  domain.JSON
}

// Raise opens an alert, or refreshes the message and metadata of the already
// open alert with the same key. Repeated reconciliation runs are safe.
func (uc *AlertUseCase) Raise(ctx context.Context, input RaiseAlertInput) error {
	if err := domain.ValidateTenantID(input.TenantID); err != nil {
		return err
	}

	if input.Type == "" {
		return fmt.Errorf("%w: alert type is required", domain.ErrValidation)
	}

	if input.Message == "" {
		return fmt.Errorf("%w: alert message is required", domain.ErrValidation)
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return err
	}

	alert := &domain.BillingAlert{
		ID:        uc.idGen.Generate(),
		TenantID:  input.TenantID,
		InvoiceID: input.InvoiceID,
		Type:      input.Type,
		Message:   input.Message,
		Metadata:  input.Metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.alertRepo.UpsertOpen(ctx, alert); err != nil {
		uc.logger.Error().Err(err).
			Str("tenant_id", input.TenantID).
			Str("invoice_id", input.InvoiceID).
			Str("alert_type", string(input.Type)).
			Msg("failed to raise billing alert")
		return fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
	}

	if uc.metrics != nil {
		uc.metrics.AlertsRaised.WithLabelValues(string(input.Type)).Inc()
	}

	return nil
}

// ListOpen returns a tenant's unresolved alerts, newest-first.
func (uc *AlertUseCase) ListOpen(ctx context.Context, tenantID string) ([]*domain.BillingAlert, error) {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	alerts, err := uc.alertRepo.ListOpen(ctx, tenantID)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Msg("failed to list billing alerts")
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerRead, err)
	}

	return alerts, nil
}

// Resolve closes an open alert, scoped by tenant. A tenant cannot resolve
// another tenant's alert; such a call reports not-found.
func (uc *AlertUseCase) Resolve(ctx context.Context, alertID, tenantID string) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}

	if alertID == "" {
		return fmt.Errorf("%w: alert id is required", domain.ErrValidation)
	}

	err := uc.alertRepo.Resolve(ctx, alertID, tenantID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAlertNotFound) {
			return err
		}

		uc.logger.Error().Err(err).
			Str("tenant_id", tenantID).
			Str("alert_id", alertID).
			Msg("failed to resolve billing alert")
		return fmt.Errorf("%w: %w", domain.ErrLedgerWrite, err)
	}

	if uc.metrics != nil {
		uc.metrics.AlertsResolved.Inc()
	}

	return nil
}
