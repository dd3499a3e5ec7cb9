/*
query.go - Derived read views over the record store

PURPOSE:
  Pure projections recomputed from Store.All on every call. The store is
  the single source of truth; there is no caching layer to invalidate,
  so every view reflects the latest committed state.

SCOPING:
  PendingFor encodes the reviewer visibility rules: a team lead sees
  pending records for their own team, HR sees every pending record, and
  anyone else sees nothing.

SEE ALSO:
  - store.go: All contract (order unspecified, re-filtered here)
  - summary.go: Aggregations built on these views
*/
package attendance

import (
	"context"
	"sort"
)

// Queries exposes the read side. Safe for concurrent use; holds no
// state beyond its dependencies.
type Queries struct {
	Store Store
	Clock Clock
}

// NewQueries creates the read view with a real clock.
func NewQueries(store Store) *Queries {
	return &Queries{Store: store, Clock: realClock{}}
}

// ByEmployee returns every record for one employee, newest day first.
func (q *Queries) ByEmployee(ctx context.Context, employeeID string) ([]Record, error) {
	return q.filtered(ctx, func(r Record) bool {
		return r.EmployeeID == employeeID
	})
}

// ByTeam returns every record whose team matches.
func (q *Queries) ByTeam(ctx context.Context, teamID string) ([]Record, error) {
	return q.filtered(ctx, func(r Record) bool {
		return r.TeamID != nil && *r.TeamID == teamID
	})
}

// All returns every record, for HR-wide views.
func (q *Queries) All(ctx context.Context) ([]Record, error) {
	return q.filtered(ctx, func(Record) bool { return true })
}

// PendingFor returns the pending records the viewer may review.
func (q *Queries) PendingFor(ctx context.Context, viewer Identity) ([]Record, error) {
	switch role := viewer.Role.(type) {
	case TeamLeadRole:
		return q.filtered(ctx, func(r Record) bool {
			return r.Status == StatusPending && r.TeamID != nil && *r.TeamID == role.TeamID
		})
	case HRRole:
		return q.filtered(ctx, func(r Record) bool {
			return r.Status == StatusPending
		})
	}
	return nil, nil
}

// TodayFor returns the viewer's record for the current calendar day, or
// nil when the day has not been marked yet.
func (q *Queries) TodayFor(ctx context.Context, employeeID string) (*Record, error) {
	clock := q.Clock
	if clock == nil {
		clock = realClock{}
	}
	date := clock.Now().Format("2006-01-02")
	return q.Store.FindByEmployeeAndDate(ctx, employeeID, date)
}

func (q *Queries) filtered(ctx context.Context, keep func(Record) bool) ([]Record, error) {
	all, err := q.Store.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	// Stable presentation order: newest day first, then by employee.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}
