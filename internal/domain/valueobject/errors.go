package valueobject

import "errors"

// ---------------------------------------------------------------------------
// Domain error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrValidation covers missing or malformed input: an unselected client,
	// a blank name, a non-positive principal. The operation is aborted before
	// any state changes.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidAmount is returned for non-positive payment or expense amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrLimitExceeded is returned when the requested exposure is above the
	// client's current credit limit.
	ErrLimitExceeded = errors.New("requested amount exceeds credit limit")

	// ErrTermExceeded is returned when the requested term is longer than the
	// maximum for the chosen repayment frequency.
	ErrTermExceeded = errors.New("term exceeds maximum for frequency")

	// ErrNotFound is returned when a client, loan or expense id does not
	// resolve.
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps backing-store failures: the write did not happen
	// and in-memory state was left untouched.
	ErrPersistence = errors.New("persistence failed")

	// ErrBadBackup is returned when an imported backup document is missing
	// the required clients and loans collections.
	ErrBadBackup = errors.New("not a valid backup document")

	// ErrConfirmationRequired is returned when a destructive operation
	// (restore, clear) is attempted without an explicit confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
)
