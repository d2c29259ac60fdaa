package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrStoreUnavailable wraps every persistence failure: unreachable
	// database, rejected write, constraint violation.
	ErrStoreUnavailable = errors.New("leads: store unavailable")

	// ErrInvalidStatus is returned when an operator sets an empty status label.
	ErrInvalidStatus = errors.New("leads: status is required")
)
