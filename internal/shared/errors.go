package shared

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrPermissionDenied indicates a required capability is absent.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidOperation indicates an action the current row state forbids.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrIncorrectPassword indicates the password re-confirmation step failed.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError carries field-level messages from a rejected write.
type ValidationError struct {
	Fields map[string][]string
}

// Error renders all field messages in field order.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages flattens field messages into a stable, field-sorted list.
func (e *ValidationError) Messages() []string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var out []string
	for _, f := range fields {
		for _, msg := range e.Fields[f] {
			out = append(out, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return out
}

// NetworkError wraps a transport or unexpected server failure, naming the
// operation that failed so the caller can decide whether to retry.
type NetworkError struct {
	Op     string
	Status int // zero when the request never completed
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAborted reports whether err stems from a canceled or expired context.
// Aborted requests are never surfaced to the user.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// UserSafeMessage converts err into a message safe to display.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "You don't have permission to perform this action"
	case errors.Is(err, ErrIncorrectPassword):
		return "Incorrect password"
	case errors.Is(err, ErrNotFound):
		return "Record not found"
	case errors.Is(err, ErrInvalidOperation):
		return err.Error()
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return strings.Join(verr.Messages(), "; ")
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return "Failed to " + nerr.Op
	}
	return "Something went wrong"
}
