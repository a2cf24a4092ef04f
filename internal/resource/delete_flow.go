package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

// DeleteState enumerates the two-step delete confirmation states.
type DeleteState int

// Delete flow states.
const (
	DeleteIdle DeleteState = iota
	DeleteConfirming
	DeleteAwaitingPassword
	DeleteDeleting
	DeleteDone
	DeleteFailed
)

func (s DeleteState) String() string {
	switch s {
	case DeleteIdle:
		return "idle"
	case DeleteConfirming:
		return "confirming"
	case DeleteAwaitingPassword:
		return "awaiting_password"
	case DeleteDeleting:
		return "deleting"
	case DeleteDone:
		return "done"
	default:
		return "failed"
	}
}

// PasswordConfirmer re-validates the account password before a destructive
// action fires.
type PasswordConfirmer interface {
	ConfirmPassword(ctx context.Context, password string) error
}

// DeleteFlow drives a destructive action through the mandatory two-step
// confirmation: acknowledge the irreversible action, then re-enter the
// account password. The delete call cannot fire from any other state.
// Capability checks happen before construction, so an existing flow is
// always authorized.
type DeleteFlow struct {
	confirmer PasswordConfirmer
	perform   func(context.Context) error

	mu      sync.Mutex
	state   DeleteState
	lastErr error
}

// NewDeleteFlow builds an idle flow around the action to perform.
func NewDeleteFlow(confirmer PasswordConfirmer, perform func(context.Context) error) *DeleteFlow {
	return &DeleteFlow{confirmer: confirmer, perform: perform}
}

// State returns the current state.
func (f *DeleteFlow) State() DeleteState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error that moved the flow to its current state, if any.
func (f *DeleteFlow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Begin opens the intent-confirmation step.
func (f *DeleteFlow) Begin() error {
	return f.transition(DeleteIdle, DeleteConfirming)
}

// Acknowledge records the irreversible-action confirmation and moves on to
// the password step.
func (f *DeleteFlow) Acknowledge() error {
	return f.transition(DeleteConfirming, DeleteAwaitingPassword)
}

// Cancel abandons the flow from any non-terminal state.
func (f *DeleteFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != DeleteDone && f.state != DeleteDeleting {
		f.state = DeleteIdle
		f.lastErr = nil
	}
}

// Submit confirms the password and, on success, performs the delete. A
// wrong password keeps the flow on the password step with nothing deleted;
// any other failure moves it to DeleteFailed.
func (f *DeleteFlow) Submit(ctx context.Context, password string) error {
	if err := f.transition(DeleteAwaitingPassword, DeleteDeleting); err != nil {
		return err
	}

	if err := f.confirmer.ConfirmPassword(ctx, password); err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		if errors.Is(err, shared.ErrIncorrectPassword) {
			f.state = DeleteAwaitingPassword
		} else {
			f.state = DeleteFailed
		}
		f.lastErr = err
		return err
	}

	if err := f.perform(ctx); err != nil {
		f.mu.Lock()
		f.state = DeleteFailed
		f.lastErr = err
		f.mu.Unlock()
		return err
	}

	f.mu.Lock()
	f.state = DeleteDone
	f.lastErr = nil
	f.mu.Unlock()
	return nil
}

func (f *DeleteFlow) transition(from, to DeleteState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != from {
		return fmt.Errorf("delete flow is %s, not %s: %w", f.state, from, shared.ErrInvalidOperation)
	}
	f.state = to
	return nil
}
