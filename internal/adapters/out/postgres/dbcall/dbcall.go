// Package dbcall holds the per-call plumbing shared by the postgres
// repositories: the store timeout and the mapping of driver failures onto the
// errs kinds.
package dbcall

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
)

// DefaultTimeout bounds a single store call when none is configured.
const DefaultTimeout = 3 * time.Second

// WithTimeout derives the context for one store call.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Translate passes domain errors through and reports everything else coming
// out of the driver (timeouts, refused connections, protocol errors) as
// *errs.StoreUnavailableError.
func Translate(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errs.IsValidation(err),
		errors.Is(err, errs.ErrObjectNotFound),
		errors.Is(err, errs.ErrObjectConflict),
		errors.Is(err, errs.ErrStoreUnavailable):
		return err
	default:
		return errs.NewStoreUnavailableError(operation, err)
	}
}
