// Package auth wraps the password re-confirmation step that gates
// destructive actions.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridian-erp/ledgercore/internal/shared"
)

// ConfirmTransport is the slice of the API client the confirmer depends on.
type ConfirmTransport interface {
	ConfirmPassword(ctx context.Context, password string) error
}

// Confirmer re-validates the account password against the auth endpoint.
// It satisfies the delete flow's PasswordConfirmer contract.
type Confirmer struct {
	logger    *slog.Logger
	transport ConfirmTransport
}

// NewConfirmer constructs a Confirmer.
func NewConfirmer(logger *slog.Logger, transport ConfirmTransport) *Confirmer {
	return &Confirmer{logger: logger, transport: transport}
}

// ConfirmPassword submits the typed password. An empty password is rejected
// without a round-trip; a server mismatch maps to ErrIncorrectPassword.
func (c *Confirmer) ConfirmPassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("confirm password: %w", shared.ErrIncorrectPassword)
	}
	if err := c.transport.ConfirmPassword(ctx, password); err != nil {
		if c.logger != nil && !shared.IsAborted(err) {
			c.logger.Warn("confirm password", slog.Any("error", err))
		}
		return err
	}
	return nil
}
