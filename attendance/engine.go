/*
engine.go - Attendance lifecycle engine

PURPOSE:
  The sole component with business rules. Orchestrates entry/exit
  marking, automatic status derivation from geofence verification,
  reviewer status overrides, and location-reason attachment.

STATE MACHINE (per record):
  no record        --mark entry, verified--->    pending
  no record        --mark entry, unverified-->   half-day
  entry recorded   --mark exit, both legs ok-->  status unchanged
  entry recorded   --mark exit, any leg bad-->   half-day (forced)
  pending          --reviewer-->                 approved | rejected | half-day

  Reviewer transitions are re-enterable: an approved or rejected record
  may be re-set at any time. The audit log keeps every change traceable.
  The engine itself never sets "rejected"; reviewers own that path.

VERIFICATION:
  Entry verification checks the entry leg alone. Exit verification is
  conjunctive: previous AND exit leg, so one bad leg taints the record.

LATENCY MODEL:
  Mutations validate input synchronously, then sleep a configured
  simulated commit latency, then read-merge-upsert. Once the delay has
  been entered the operation always completes; there is no cancellation
  and no rollback. The fresh read immediately before merging guards
  against committing a stale snapshot.

SEE ALSO:
  - geofence.go: WithinRange
  - store.go: Upsert contract
  - query.go: Read side
*/
package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Clock provides the current time. Injected so tests pin the day.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Engine owns all record mutations. Every write path reads the current
// record, computes the next state, and commits a single Upsert.
type Engine struct {
	Store Store
	Audit AuditLog // optional; nil disables the trail

	// ThresholdMeters is the geofence radius. Zero means DefaultThresholdMeters.
	ThresholdMeters float64

	// Latency simulates network/storage delay between validation and
	// commit. Zero in tests.
	Latency time.Duration

	Clock Clock
}

// NewEngine creates an engine with default clock and threshold.
func NewEngine(store Store) *Engine {
	return &Engine{
		Store:           store,
		ThresholdMeters: DefaultThresholdMeters,
		Clock:           realClock{},
	}
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

// commitDelay simulates the storage round-trip. No cancellation: once
// entered, the surrounding operation always completes.
func (e *Engine) commitDelay() {
	if e.Latency > 0 {
		time.Sleep(e.Latency)
	}
}

// Today returns the current calendar day in ISO form.
func (e *Engine) Today() string {
	return e.now().Format("2006-01-02")
}

// =============================================================================
// MARK ENTRY
// =============================================================================

// MarkEntry records the acting employee's entry for today, verifying the
// captured location against their home coordinate. Verified entries
// start as pending; unverified entries are downgraded to half-day and
// expect a reason. Creates the day's record on first mark; marking again
// with the entry already set is an idempotent no-op.
func (e *Engine) MarkEntry(ctx context.Context, actor Identity, location *Coordinates) (*Record, error) {
	if actor.EmployeeID == "" {
		return nil, ErrMissingIdentity
	}
	if location == nil {
		return nil, ErrMissingLocation
	}

	e.commitDelay()

	now := e.now()
	date := now.Format("2006-01-02")
	hhmm := now.Format("15:04")

	verified := WithinRange(*location, actor.HomeLocation(), e.ThresholdMeters)
	status := StatusPending
	if !verified {
		status = StatusHalfDay
	}

	// Re-read right before merging; never mutate a stale snapshot.
	rec, err := e.Store.FindByEmployeeAndDate(ctx, actor.EmployeeID, date)
	if err != nil {
		return nil, err
	}

	if rec != nil && rec.EntryTime != nil {
		// Entry time is set at most once.
		return rec, nil
	}

	if rec == nil {
		rec = &Record{
			ID:           RecordID(date, actor.EmployeeID),
			EmployeeID:   actor.EmployeeID,
			EmployeeName: actor.Name,
			Date:         date,
			TeamID:       actor.TeamID(),
		}
	}

	loc := *location
	rec.EntryTime = &hhmm
	rec.EntryLocation = &loc
	rec.LocationVerified = &verified
	rec.Status = status

	if err := e.Store.Upsert(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// MARK EXIT
// =============================================================================

// MarkExit records the exit leg on today's record. Verification is
// conjunctive with the entry leg; a combined failure forces half-day
// regardless of the record's current status, while a combined pass
// leaves the status for reviewer action. Exit with no entry record for
// the day fails without mutating anything; exit with the exit already
// set is an idempotent no-op.
func (e *Engine) MarkExit(ctx context.Context, actor Identity, location *Coordinates) (*Record, error) {
	if actor.EmployeeID == "" {
		return nil, ErrMissingIdentity
	}
	if location == nil {
		return nil, ErrMissingLocation
	}

	e.commitDelay()

	now := e.now()
	date := now.Format("2006-01-02")
	hhmm := now.Format("15:04")

	rec, err := e.Store.FindByEmployeeAndDate(ctx, actor.EmployeeID, date)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.EntryTime == nil {
		return nil, &NoEntryError{EmployeeID: actor.EmployeeID, Date: date}
	}
	if rec.ExitTime != nil {
		return rec, nil
	}

	exitOK := WithinRange(*location, actor.HomeLocation(), e.ThresholdMeters)
	combined := rec.Verified() && exitOK

	loc := *location
	rec.ExitTime = &hhmm
	rec.ExitLocation = &loc
	rec.LocationVerified = &combined
	if !combined {
		rec.Status = StatusHalfDay
	}

	if err := e.Store.Upsert(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// REVIEWER STATUS OVERRIDE
// =============================================================================

// UpdateStatus sets a record's status on behalf of a reviewer, optionally
// attaching notes. Transitions are permissive: an already approved or
// rejected record may be re-set, and every change lands in the audit log.
func (e *Engine) UpdateStatus(ctx context.Context, reviewer Identity, recordID string, status Status, notes *string) (*Record, error) {
	if !reviewer.IsReviewer() {
		return nil, ErrNotReviewer
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	e.commitDelay()

	rec, err := e.Store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &RecordNotFoundError{RecordID: recordID}
	}

	from := rec.Status
	rec.Status = status
	if notes != nil && *notes != "" {
		rec.Notes = notes
	}

	if err := e.Store.Upsert(ctx, *rec); err != nil {
		return nil, err
	}

	e.audit(ctx, AuditEntry{
		ActorID:    reviewer.EmployeeID,
		Action:     AuditStatusChanged,
		RecordID:   rec.ID,
		FromStatus: from,
		ToStatus:   status,
		Note:       deref(notes),
	})
	return rec, nil
}

// =============================================================================
// LOCATION REASON
// =============================================================================

// UpdateReason attaches the employee's justification to a record whose
// location verification failed. Never alters status or verification.
func (e *Engine) UpdateReason(ctx context.Context, actor Identity, recordID, reason string) (*Record, error) {
	if reason == "" {
		return nil, ErrMissingReason
	}

	e.commitDelay()

	rec, err := e.Store.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &RecordNotFoundError{RecordID: recordID}
	}
	if rec.LocationVerified == nil || *rec.LocationVerified {
		return nil, ErrReasonNotAllowed
	}

	rec.LocationReason = &reason

	if err := e.Store.Upsert(ctx, *rec); err != nil {
		return nil, err
	}

	e.audit(ctx, AuditEntry{
		ActorID:  actor.EmployeeID,
		Action:   AuditReasonSubmitted,
		RecordID: rec.ID,
		Note:     reason,
	})
	return rec, nil
}

// audit appends an entry when a log is configured. Audit failures do
// not fail the mutation; the record write already committed.
func (e *Engine) audit(ctx context.Context, entry AuditEntry) {
	if e.Audit == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.At = e.now()
	_ = e.Audit.Append(ctx, entry)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
