// pkg/core/errors.go
package core

import "errors"

// Recoverable operation errors surfaced to the caller. The scheduler treats
// all of these as terminal results, not retryable failures.
var (
	// ErrNotFound indicates the referenced mine, ship or player does not
	// exist, is not owned by the caller, or is no longer active.
	ErrNotFound = errors.New("not found")

	// ErrLimitExceeded indicates the owner is at the live-mine cap.
	ErrLimitExceeded = errors.New("limit exceeded")

	// ErrInvalidArgument indicates an unknown mine type or pattern, or an
	// out-of-range target position.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation indicates the ship lacks the required capability.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrValidationFailed indicates a rejected balance parameter write.
	ErrValidationFailed = errors.New("validation failed")
)
