package resource

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

type stubConfirmer struct {
	err   error
	calls int
}

func (c *stubConfirmer) ConfirmPassword(ctx context.Context, password string) error {
	c.calls++
	return c.err
}

func TestDeleteFlowHappyPath(t *testing.T) {
	performed := 0
	flow := NewDeleteFlow(&stubConfirmer{}, func(ctx context.Context) error {
		performed++
		return nil
	})

	require.Equal(t, DeleteIdle, flow.State())
	require.NoError(t, flow.Begin())
	require.Equal(t, DeleteConfirming, flow.State())
	require.NoError(t, flow.Acknowledge())
	require.Equal(t, DeleteAwaitingPassword, flow.State())
	require.NoError(t, flow.Submit(context.Background(), "hunter2"))
	require.Equal(t, DeleteDone, flow.State())
	require.Equal(t, 1, performed)
}

func TestDeleteFlowWrongPasswordStaysOnPasswordStep(t *testing.T) {
	performed := 0
	confirmer := &stubConfirmer{err: fmt.Errorf("confirm password: %w", shared.ErrIncorrectPassword)}
	flow := NewDeleteFlow(confirmer, func(ctx context.Context) error {
		performed++
		return nil
	})

	require.NoError(t, flow.Begin())
	require.NoError(t, flow.Acknowledge())

	err := flow.Submit(context.Background(), "wrong")
	require.ErrorIs(t, err, shared.ErrIncorrectPassword)
	require.Equal(t, "Incorrect password", shared.UserSafeMessage(err))
	require.Equal(t, DeleteAwaitingPassword, flow.State())
	require.Zero(t, performed)

	// A corrected password can still complete the flow.
	confirmer.err = nil
	require.NoError(t, flow.Submit(context.Background(), "right"))
	require.Equal(t, DeleteDone, flow.State())
	require.Equal(t, 1, performed)
}

func TestDeleteFlowCannotSkipSteps(t *testing.T) {
	flow := NewDeleteFlow(&stubConfirmer{}, func(ctx context.Context) error { return nil })

	require.ErrorIs(t, flow.Acknowledge(), shared.ErrInvalidOperation)
	require.ErrorIs(t, flow.Submit(context.Background(), "x"), shared.ErrInvalidOperation)

	require.NoError(t, flow.Begin())
	require.ErrorIs(t, flow.Submit(context.Background(), "x"), shared.ErrInvalidOperation)
	require.ErrorIs(t, flow.Begin(), shared.ErrInvalidOperation)
}

func TestDeleteFlowFailureState(t *testing.T) {
	flow := NewDeleteFlow(&stubConfirmer{}, func(ctx context.Context) error {
		return &shared.NetworkError{Op: "delete supplier", Status: 500}
	})
	require.NoError(t, flow.Begin())
	require.NoError(t, flow.Acknowledge())
	err := flow.Submit(context.Background(), "hunter2")
	require.Error(t, err)
	require.Equal(t, DeleteFailed, flow.State())
	require.Equal(t, "Failed to delete supplier", shared.UserSafeMessage(flow.Err()))
}

func TestDeleteFlowCancelResets(t *testing.T) {
	flow := NewDeleteFlow(&stubConfirmer{}, func(ctx context.Context) error { return nil })
	require.NoError(t, flow.Begin())
	flow.Cancel()
	require.Equal(t, DeleteIdle, flow.State())
	require.NoError(t, flow.Begin())
}
