package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deskline/billing/internal/domain"
	"github.com/deskline/billing/internal/usecase"
	"github.com/deskline/billing/internal/usecase/mocks"
)

func newReconciliationUC(alertRepo *mocks.FakeAlertRepository, dunningRepo *mocks.FakeDunningRepository) *usecase.ReconciliationUseCase {
	idGen := mocks.NewFakeIDGenerator()
	alerts := usecase.NewAlertUseCase(alertRepo, idGen, zerolog.Nop(), nil)
	dunning := usecase.NewDunningUseCase(dunningRepo, idGen, domain.DefaultDunningSchedule, zerolog.Nop(), nil)
	return usecase.NewReconciliationUseCase(alerts, dunning, zerolog.Nop())
}

func TestReconciliationUseCase_HandleFailedInvoice(t *testing.T) {
	alertRepo := mocks.NewFakeAlertRepository()
	dunningRepo := mocks.NewFakeDunningRepository()
	uc := newReconciliationUC(alertRepo, dunningRepo)
	ctx := context.Background()

	require.NoError(t, uc.HandleFailedInvoice(ctx, "t1", "inv_1", "card declined"))

	alerts, err := alertRepo.ListOpen(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, domain.AlertPaymentFailed, alerts[0].Type)
	require.Equal(t, "card declined", alerts[0].Message)
	require.Equal(t, "inv_1", alerts[0].InvoiceID)

	events, err := dunningRepo.ListByInvoice(ctx, "t1", "inv_1")
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestReconciliationUseCase_RepeatedRunIsIdempotent(t *testing.T) {
	alertRepo := mocks.NewFakeAlertRepository()
	dunningRepo := mocks.NewFakeDunningRepository()
	uc := newReconciliationUC(alertRepo, dunningRepo)
	ctx := context.Background()

	require.NoError(t, uc.HandleFailedInvoice(ctx, "t1", "inv_1", "card declined"))
	require.NoError(t, uc.HandleFailedInvoice(ctx, "t1", "inv_1", "card declined again"))

	require.Equal(t, 1, alertRepo.OpenCount(), "two runs must leave exactly one open alert")
	require.Equal(t, 3, dunningRepo.EventCount(), "two runs must leave exactly three dunning events")

	alerts, err := alertRepo.ListOpen(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "card declined again", alerts[0].Message)
}

func TestReconciliationUseCase_DefaultReason(t *testing.T) {
	alertRepo := mocks.NewFakeAlertRepository()
	uc := newReconciliationUC(alertRepo, mocks.NewFakeDunningRepository())
	ctx := context.Background()

	require.NoError(t, uc.HandleFailedInvoice(ctx, "t1", "inv_1", ""))

	alerts, err := alertRepo.ListOpen(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "invoice payment failed", alerts[0].Message)
}

func TestReconciliationUseCase_AlertFailureStopsDunning(t *testing.T) {
	alertRepo := mocks.NewFakeAlertRepository()
	alertRepo.UpsertOpenFunc = func(ctx context.Context, alert *domain.BillingAlert) error {
		return errors.New("db down")
	}
	dunningRepo := mocks.NewFakeDunningRepository()
	uc := newReconciliationUC(alertRepo, dunningRepo)

	err := uc.HandleFailedInvoice(context.Background(), "t1", "inv_1", "card declined")
	require.ErrorIs(t, err, domain.ErrLedgerWrite)
	require.Zero(t, dunningRepo.EventCount(), "dunning must not be enqueued when the alert write fails")
}
