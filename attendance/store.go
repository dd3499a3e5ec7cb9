/*
store.go - Persistence interfaces for attendance records

PURPOSE:
  Defines the interface between the lifecycle engine and storage.
  Different implementations can use SQLite or in-memory storage.

UPSERT CONTRACT:
  Upsert is the ONLY write operation on records: it inserts when the id
  is absent and replaces in full when present. Because record ids are
  derived from (date, employeeID), an implementation that honors
  upsert-by-id can never hold two records for the same employee and day.
  Implementations must still serialize upserts so that concurrent
  writers cannot interleave partial field writes on one record.

LOOKUPS:
  Find* and All return copies; callers may mutate results freely and
  commit changes only through Upsert. Absent records are (nil, nil),
  not an error - the engine decides whether absence is a failure.

IMPLEMENTATIONS:
  - attendance/store/memory.go: In-memory, mutex-serialized
  - store/sqlite/sqlite.go: SQLite with ON CONFLICT upsert

SEE ALSO:
  - engine.go: The only component that writes through this interface
  - query.go: Read views built on All
*/
package attendance

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Record persistence
// =============================================================================

type Store interface {
	// FindByEmployeeAndDate returns the record for (employeeID, date),
	// or (nil, nil) when none exists.
	FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Record, error)

	// Get returns the record with the given id, or (nil, nil).
	Get(ctx context.Context, id string) (*Record, error)

	// Upsert inserts or fully replaces the record with a matching id.
	Upsert(ctx context.Context, rec Record) error

	// All returns every record. Order is unspecified; all consumers
	// re-filter and re-sort.
	All(ctx context.Context) ([]Record, error)

	// Reset wipes every record. Administrative bulk operation only;
	// the engine never calls it.
	Reset(ctx context.Context) error
}

// =============================================================================
// AUDIT LOG - Append-only trail of reviewer actions
// =============================================================================

type AuditAction string

const (
	AuditStatusChanged   AuditAction = "status_changed"
	AuditReasonSubmitted AuditAction = "reason_submitted"
)

// AuditEntry records who changed what on which record.
type AuditEntry struct {
	ID         string
	At         time.Time
	ActorID    string
	Action     AuditAction
	RecordID   string
	FromStatus Status
	ToStatus   Status
	Note       string
}

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	Entries(ctx context.Context) ([]AuditEntry, error)
}
