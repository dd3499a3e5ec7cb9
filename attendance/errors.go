/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP handlers, CLIs) classify errors via the helpers at the
  bottom rather than matching sentinel identity directly.

ERROR CATEGORIES:
  1. Input errors - missing identity, location, or reason; invalid status
  2. Not-found errors - exit without entry, unknown record id
  3. Rule errors - reason on a verified record, non-reviewer status change

There is deliberately no conflict error: upserts resolve conflicting
writes by overwrite after a fresh read.

SEE ALSO:
  - engine.go: Returns these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingIdentity is returned when the acting user could not be
	// resolved to an employee id.
	ErrMissingIdentity = errors.New("user identity is incomplete")

	// ErrMissingLocation is returned when an entry/exit mark arrives
	// without coordinates.
	ErrMissingLocation = errors.New("location information is required")

	// ErrMissingReason is returned when a reason submission is empty.
	ErrMissingReason = errors.New("reason text is required")

	// ErrInvalidStatus is returned for a status outside the state machine.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrNoEntryRecord is returned when marking exit with no entry
	// record for the day.
	ErrNoEntryRecord = errors.New("no entry record for today")

	// ErrRecordNotFound is returned when a record id resolves to nothing.
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrNotReviewer is returned when a non-reviewer attempts a status change.
	ErrNotReviewer = errors.New("status changes require a reviewer role")

	// ErrReasonNotAllowed is returned when attaching a location reason to
	// a record whose location is not unverified.
	ErrReasonNotAllowed = errors.New("location reason only applies to unverified records")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoEntryError reports a missing entry record for a specific day.
type NoEntryError struct {
	EmployeeID string
	Date       string
}

func (e *NoEntryError) Error() string {
	return fmt.Sprintf("no entry record for %s on %s", e.EmployeeID, e.Date)
}

func (e *NoEntryError) Unwrap() error { return ErrNoEntryRecord }

// RecordNotFoundError reports an unknown record id.
type RecordNotFoundError struct {
	RecordID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("attendance record %s not found", e.RecordID)
}

func (e *RecordNotFoundError) Unwrap() error { return ErrRecordNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if the error is due to invalid caller input.
// Input errors fail synchronously before any mutation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingIdentity) ||
		errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrMissingReason) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrReasonNotAllowed)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoEntryRecord) ||
		errors.Is(err, ErrRecordNotFound)
}
