package visits

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no visit request exists for the given id.
var ErrNotFound = errors.New("visit request not found")

// ErrConflict is returned when an optimistic update lost against a concurrent
// writer. The caller must re-fetch current state before retrying.
var ErrConflict = errors.New("visit request was modified concurrently")

// ValidationError reports malformed or incomplete input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError reports an operation that is not legal from the request's
// current state. The server-side status is authoritative; the caller must
// re-fetch and pick the correct operation rather than retry.
type TransitionError struct {
	Op                  string
	Status              Status
	PermanentlyRejected bool
}

func (e *TransitionError) Error() string {
	if e.PermanentlyRejected {
		return fmt.Sprintf("%s not allowed: request is permanently rejected", e.Op)
	}
	return fmt.Sprintf("%s not allowed from status %s", e.Op, e.Status)
}
