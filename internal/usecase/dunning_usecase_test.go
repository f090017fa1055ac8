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

func newDunningUC(repo *mocks.FakeDunningRepository) *usecase.DunningUseCase {
	return usecase.NewDunningUseCase(repo, mocks.NewFakeIDGenerator(), domain.DefaultDunningSchedule, zerolog.Nop(), nil)
}

func TestDunningUseCase_EnqueueOrdering(t *testing.T) {
	repo := mocks.NewFakeDunningRepository()
	uc := newDunningUC(repo)
	ctx := context.Background()

	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))

	events, err := uc.ListByInvoice(ctx, "t1", "inv_1")
	require.NoError(t, err)
	require.Len(t, events, 3)

	wantChannels := []domain.DunningChannel{domain.ChannelEmail, domain.ChannelSMS, domain.ChannelEmail}
	for i, event := range events {
		require.Equal(t, i+1, event.Step)
		require.Equal(t, wantChannels[i], event.Channel)
		require.Equal(t, domain.DunningPending, event.Status)
	}
}

func TestDunningUseCase_EnqueueIsIdempotent(t *testing.T) {
	repo := mocks.NewFakeDunningRepository()
	uc := newDunningUC(repo)
	ctx := context.Background()

	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))
	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))

	require.Equal(t, 3, repo.EventCount(), "re-enqueueing must not duplicate steps")
}

func TestDunningUseCase_EnqueueConvergesAfterPartialFailure(t *testing.T) {
	repo := mocks.NewFakeDunningRepository()
	uc := newDunningUC(repo)
	ctx := context.Background()

	// Fail the second step's upsert on the first invocation.
	repo.UpsertPendingFunc = failStepTwo(repo)

	err := uc.Enqueue(ctx, "t1", "inv_1")
	require.ErrorIs(t, err, domain.ErrLedgerWrite)
	require.Equal(t, 1, repo.EventCount(), "steps after the failure must not be attempted")

	// A later invocation creates only the missing steps.
	repo.UpsertPendingFunc = nil
	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))
	require.Equal(t, 3, repo.EventCount())
}

// failStepTwo lets steps other than 2 through to the fake's default upsert.
func failStepTwo(repo *mocks.FakeDunningRepository) func(context.Context, *domain.DunningEvent) error {
	return func(ctx context.Context, event *domain.DunningEvent) error {
		if event.Step == 2 {
			return errors.New("deadlock detected")
		}
		orig := repo.UpsertPendingFunc
		repo.UpsertPendingFunc = nil
		err := repo.UpsertPending(ctx, event)
		repo.UpsertPendingFunc = orig
		return err
	}
}

func TestDunningUseCase_EnqueueValidation(t *testing.T) {
	uc := newDunningUC(mocks.NewFakeDunningRepository())
	ctx := context.Background()

	require.ErrorIs(t, uc.Enqueue(ctx, "", "inv_1"), domain.ErrValidation)
	require.ErrorIs(t, uc.Enqueue(ctx, "t1", ""), domain.ErrValidation)
}

func TestDunningUseCase_StatusTransitions(t *testing.T) {
	repo := mocks.NewFakeDunningRepository()
	uc := newDunningUC(repo)
	ctx := context.Background()

	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))

	events, err := uc.ListByInvoice(ctx, "t1", "inv_1")
	require.NoError(t, err)

	require.NoError(t, uc.MarkSent(ctx, events[0].ID))
	require.NoError(t, uc.MarkFailed(ctx, events[1].ID))

	// A dispatched step cannot change status again.
	require.ErrorIs(t, uc.MarkSent(ctx, events[0].ID), domain.ErrInvalidTransition)
	require.ErrorIs(t, uc.MarkFailed(ctx, events[0].ID), domain.ErrInvalidTransition)

	require.ErrorIs(t, uc.MarkSent(ctx, "missing"), domain.ErrDunningEventNotFound)
}

func TestDunningUseCase_ListPending(t *testing.T) {
	repo := mocks.NewFakeDunningRepository()
	uc := newDunningUC(repo)
	ctx := context.Background()

	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_1"))
	require.NoError(t, uc.Enqueue(ctx, "t1", "inv_2"))

	pending, err := uc.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 6)

	pending, err = uc.ListPending(ctx, 4)
	require.NoError(t, err)
	require.Len(t, pending, 4)

	require.NoError(t, uc.MarkSent(ctx, pending[0].ID))

	pending, err = uc.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 5)
}
