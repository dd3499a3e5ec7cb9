/*
Package attendance implements the attendance record lifecycle engine.

PURPOSE:
  This package contains the domain model and business rules for daily
  attendance tracking: one record per employee per calendar day, entry
  and exit marking with geofence verification, reviewer approval flow,
  and derived read views.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: The per-employee-per-day attendance entity
  - Status: The record state machine values (pending/approved/rejected/half-day)
  - Coordinates: A latitude/longitude pair
  - Identity/Role: The acting user, with role-specific payload per variant

DESIGN PRINCIPLES:
  1. Single record invariant: the record id is derived from (date, employee),
     so the store can never hold two records for the same day
  2. Nullable fields are pointers: entry/exit times and locations are
     absent until the corresponding action happens
  3. Verification is computed, never assigned: LocationVerified only
     changes through the engine's geofence evaluation
  4. Role payloads live on the variant, not on one struct of optionals

SEE ALSO:
  - engine.go: State transitions and mutation rules
  - geofence.go: Distance computation and range checks
  - store.go: Persistence interfaces
  - query.go: Derived read views
*/
package attendance

import "fmt"

// =============================================================================
// STATUS - Record state machine values
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusHalfDay  Status = "half-day"
)

// ValidStatus reports whether s is one of the four record states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusHalfDay:
		return true
	}
	return false
}

// =============================================================================
// COORDINATES
// =============================================================================

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// =============================================================================
// RECORD - One attendance entity per (employee, calendar day)
// =============================================================================

// Record tracks a single employee's attendance for a single calendar day.
// Date is an ISO day ("2006-01-02") and is immutable after creation.
// EntryTime and ExitTime are wall-clock "HH:MM" strings; each is set at
// most once by the owning employee's own action.
type Record struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Date         string
	TeamID       *string

	EntryTime     *string
	ExitTime      *string
	EntryLocation *Coordinates
	ExitLocation  *Coordinates

	// LocationVerified is tri-state: nil until a location has been
	// evaluated, then true only while every captured leg is inside the
	// geofence.
	LocationVerified *bool
	LocationReason   *string

	Status Status
	Notes  *string
}

// RecordID derives the stable record identifier from (date, employeeID).
// Because the id is deterministic, at most one record can exist per
// employee per day.
func RecordID(date, employeeID string) string {
	return fmt.Sprintf("att-%s-%s", date, employeeID)
}

// Verified reports the tri-state verification as a plain bool, treating
// "not yet evaluated" as unverified.
func (r *Record) Verified() bool {
	return r.LocationVerified != nil && *r.LocationVerified
}

// =============================================================================
// IDENTITY - The acting user, supplied by the directory collaborator
// =============================================================================

// Identity is the read-only view of an authenticated user that the
// engine consumes. Role carries the role-specific payload.
type Identity struct {
	EmployeeID string
	Name       string
	Role       Role
}

// Role is a closed variant over the three user roles. Fields that only
// make sense for one role (an employee's home location, a team lead's
// team) live on the concrete variant.
type Role interface {
	RoleName() string
}

// EmployeeRole is a regular employee who marks attendance.
type EmployeeRole struct {
	TeamID       string
	TeamLeadID   string
	HomeLocation *Coordinates
}

func (EmployeeRole) RoleName() string { return "employee" }

// TeamLeadRole reviews pending records for one team.
type TeamLeadRole struct {
	TeamID string
}

func (TeamLeadRole) RoleName() string { return "teamlead" }

// HRRole reviews pending records company-wide.
type HRRole struct{}

func (HRRole) RoleName() string { return "hr" }

// TeamID returns the team grouping for record denormalization, or nil
// for roles without one.
func (id Identity) TeamID() *string {
	switch r := id.Role.(type) {
	case EmployeeRole:
		if r.TeamID == "" {
			return nil
		}
		t := r.TeamID
		return &t
	case TeamLeadRole:
		if r.TeamID == "" {
			return nil
		}
		t := r.TeamID
		return &t
	}
	return nil
}

// HomeLocation returns the registered office/home coordinate for
// geofence checks, or nil when the role carries none.
func (id Identity) HomeLocation() *Coordinates {
	if r, ok := id.Role.(EmployeeRole); ok {
		return r.HomeLocation
	}
	return nil
}

// IsReviewer reports whether the identity may change record status.
func (id Identity) IsReviewer() bool {
	switch id.Role.(type) {
	case TeamLeadRole, HRRole:
		return true
	}
	return false
}
