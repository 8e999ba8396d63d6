package claims

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds returned by Engine and Disputes. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrPermission       = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrNotification     = errors.New("notification failed")

	// ErrAlreadyResolved is returned for any transition on an approved or
	// rejected claim. It also matches ErrInvalidState.
	ErrAlreadyResolved = fmt.Errorf("%w: claim already resolved", ErrInvalidState)
)

var kinds = []error{ErrNotFound, ErrInvalidState, ErrPermission, ErrValidation, ErrStoreUnavailable}

// storeError classifies an error coming out of a store interaction. Kinds
// raised by the engine pass through; anything else is a persistence failure.
func storeError(op string, err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out: %w", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
