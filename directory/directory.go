/*
Package directory is the identity/directory collaborator: the roster of
employees with their role, team, and registered home location.

PURPOSE:
  The attendance engine treats authentication as external; what it needs
  is a read of the acting user's Identity and, for HR views, the full
  roster. This package defines that contract and an in-memory
  implementation. store/sqlite provides the persistent one.

ROLE-GATING:
  The directory does not enforce authorization. It only reports each
  identity's role variant; callers gate navigation and reviewer actions
  on it.

SEE ALSO:
  - attendance/types.go: Identity and the role variants
  - store/sqlite/sqlite.go: Persistent roster
*/
package directory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// ErrNotFound is returned when an employee id is not in the roster.
var ErrNotFound = errors.New("employee not found in directory")

// Directory supplies identities for acting users and the HR roster.
type Directory interface {
	// Lookup resolves an employee id to its identity.
	Lookup(ctx context.Context, employeeID string) (*attendance.Identity, error)

	// List returns the full roster, ordered by employee id.
	List(ctx context.Context) ([]attendance.Identity, error)

	// Save inserts or replaces a roster entry.
	Save(ctx context.Context, id attendance.Identity) error

	// Delete removes a roster entry.
	Delete(ctx context.Context, employeeID string) error
}

// =============================================================================
// MEMORY DIRECTORY
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries map[string]attendance.Identity
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]attendance.Identity)}
}

func (m *Memory) Lookup(_ context.Context, employeeID string) (*attendance.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.entries[employeeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &id, nil
}

func (m *Memory) List(_ context.Context) ([]attendance.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]attendance.Identity, 0, len(m.entries))
	for _, id := range m.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *Memory) Save(_ context.Context, id attendance.Identity) error {
	if id.EmployeeID == "" {
		return attendance.ErrMissingIdentity
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id.EmployeeID] = id
	return nil
}

func (m *Memory) Delete(_ context.Context, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[employeeID]; !ok {
		return ErrNotFound
	}
	delete(m.entries, employeeID)
	return nil
}

// =============================================================================
// DEMO ROSTER
// =============================================================================

// DemoRoster returns the demo identities: one team of three plus a
// second team, a team lead for team1, and an HR reviewer. Coordinates
// cluster around the lower-Manhattan office.
func DemoRoster() []attendance.Identity {
	office := func(lat, lng float64) *attendance.Coordinates {
		return &attendance.Coordinates{Lat: lat, Lng: lng}
	}
	return []attendance.Identity{
		{EmployeeID: "EMP001", Name: "Employee User", Role: attendance.EmployeeRole{
			TeamID: "team1", TeamLeadID: "LEAD001", HomeLocation: office(40.7128, -74.0060)}},
		{EmployeeID: "EMP002", Name: "John Doe", Role: attendance.EmployeeRole{
			TeamID: "team1", TeamLeadID: "LEAD001", HomeLocation: office(40.7178, -74.0160)}},
		{EmployeeID: "EMP003", Name: "Jane Smith", Role: attendance.EmployeeRole{
			TeamID: "team1", TeamLeadID: "LEAD001", HomeLocation: office(40.7148, -74.0090)}},
		{EmployeeID: "EMP004", Name: "Mike Johnson", Role: attendance.EmployeeRole{
			TeamID: "team2", TeamLeadID: "LEAD002", HomeLocation: office(40.7238, -74.0020)}},
		{EmployeeID: "EMP005", Name: "Sara Williams", Role: attendance.EmployeeRole{
			TeamID: "team2", TeamLeadID: "LEAD002", HomeLocation: office(40.7198, -73.9980)}},
		{EmployeeID: "LEAD001", Name: "Team Lead", Role: attendance.TeamLeadRole{TeamID: "team1"}},
		{EmployeeID: "HR001", Name: "HR Manager", Role: attendance.HRRole{}},
	}
}

// SeedDemo loads the demo roster into a directory, skipping nothing:
// existing entries are replaced.
func SeedDemo(ctx context.Context, dir Directory) error {
	for _, id := range DemoRoster() {
		if err := dir.Save(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
