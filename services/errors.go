package services

import (
	"errors"
	"fmt"
)

// Error kinds shared by all services. Handlers match on these with errors.Is
// to pick a transport status; the message carries the caller-facing detail.
var (
	// ErrInvalidInput — missing or out-of-range caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound — referenced quest/submission/reward does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — operation not valid for the entity's current state
	// (already completed, already reviewed, already claimed).
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientXP — reward claim below the XP threshold.
	ErrInsufficientXP = errors.New("insufficient xp")
	// ErrInternal — unexpected internal fault, distinct from caller errors.
	ErrInternal = errors.New("internal error")
)

// Errorf wraps one of the error kinds with a human-readable message.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}
