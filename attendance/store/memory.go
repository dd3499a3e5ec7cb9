// Package store provides in-memory Store and AuditLog implementations
// for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory record store
// =============================================================================

// Memory keeps records keyed by id with a (employee, date) index. The
// mutex serializes upserts per the single-logical-writer model: an
// upsert fully replaces the record, so no interleaved partial writes
// are possible.
type Memory struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
	byDay   map[dayKey]string
}

type dayKey struct {
	EmployeeID string
	Date       string
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]attendance.Record),
		byDay:   make(map[dayKey]string),
	}
}

func (m *Memory) FindByEmployeeAndDate(_ context.Context, employeeID, date string) (*attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byDay[dayKey{EmployeeID: employeeID, Date: date}]
	if !ok {
		return nil, nil
	}
	rec := m.records[id]
	return &rec, nil
}

func (m *Memory) Get(_ context.Context, id string) (*attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Upsert inserts or replaces by id. If a different id already occupies
// the same (employee, date) slot it is evicted, preserving the
// one-record-per-day invariant even for hand-built ids.
func (m *Memory) Upsert(_ context.Context, rec attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dayKey{EmployeeID: rec.EmployeeID, Date: rec.Date}
	if prev, ok := m.byDay[k]; ok && prev != rec.ID {
		delete(m.records, prev)
	}
	m.records[rec.ID] = rec
	m.byDay[k] = rec.ID
	return nil
}

func (m *Memory) All(_ context.Context) ([]attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]attendance.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]attendance.Record)
	m.byDay = make(map[dayKey]string)
	return nil
}

// =============================================================================
// MEMORY AUDIT LOG
// =============================================================================

type MemoryAudit struct {
	mu      sync.RWMutex
	entries []attendance.AuditEntry
}

func NewMemoryAudit() *MemoryAudit {
	return &MemoryAudit{}
}

func (a *MemoryAudit) Append(_ context.Context, entry attendance.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *MemoryAudit) Entries(_ context.Context) ([]attendance.AuditEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]attendance.AuditEntry, len(a.entries))
	copy(out, a.entries)
	return out, nil
}
