// Package handoff passes a freshly scored result from the attempt flow to
// the result view. Entries are short-lived; the durable copy is the
// persisted result record, this store only bridges the redirect.
package handoff

import (
	"context"
	"errors"

	"github.com/prepdeck/examprep-service/internal/attempt"
)

// ErrNotFound is returned when no result is staged under the attempt id,
// either because it was never put, already taken, or expired.
var ErrNotFound = errors.New("no result staged for attempt")

// Store stages one scored result per attempt id.
type Store interface {
	Put(ctx context.Context, result *attempt.Result) error
	// Take retrieves and removes the staged result; a second Take for the
	// same attempt id fails with ErrNotFound.
	Take(ctx context.Context, attemptID string) (*attempt.Result, error)
}
