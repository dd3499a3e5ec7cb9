/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements attendance.Store, attendance.AuditLog, and
  directory.Directory using one SQLite database. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

UPSERT ENFORCEMENT:
  Records are written with INSERT ... ON CONFLICT(id) DO UPDATE, and a
  UNIQUE(employee_id, date) index backs the one-record-per-day invariant
  at the schema level as well as through the derived id.

KEY TABLES:
  attendance_records: One row per (employee, calendar day)
  employees:          Roster with role variant columns
  audit_log:          Append-only reviewer action trail

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time, which matches the engine's write model
  - Better crash recovery

USAGE:
  st, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/directory"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Attendance records: one per employee per calendar day
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL,
		date TEXT NOT NULL,
		team_id TEXT,
		entry_time TEXT,
		exit_time TEXT,
		entry_lat REAL,
		entry_lng REAL,
		exit_lat REAL,
		exit_lng REAL,
		location_verified INTEGER,
		location_reason TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		updated_at TEXT NOT NULL
	);

	-- Backs the one-record-per-day invariant at the schema level
	CREATE UNIQUE INDEX IF NOT EXISTS idx_records_employee_date
		ON attendance_records(employee_id, date);
	CREATE INDEX IF NOT EXISTS idx_records_team
		ON attendance_records(team_id) WHERE team_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_records_status
		ON attendance_records(status);

	-- Roster (identity/directory collaborator)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		team_id TEXT,
		team_lead_id TEXT,
		home_lat REAL,
		home_lng REAL,
		created_at TEXT NOT NULL
	);

	-- Append-only reviewer action trail
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		record_id TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_record
		ON audit_log(record_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

const recordColumns = `id, employee_id, employee_name, date, team_id,
	entry_time, exit_time, entry_lat, entry_lng, exit_lat, exit_lng,
	location_verified, location_reason, status, notes`

func (s *Store) FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE employee_id = ? AND date = ?`,
		employeeID, date)
	return scanRecord(row)
}

func (s *Store) Get(ctx context.Context, id string) (*attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records WHERE id = ?`, id)
	return scanRecord(row)
}

func (s *Store) Upsert(ctx context.Context, rec attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entryLat, entryLng, exitLat, exitLng *float64
	if rec.EntryLocation != nil {
		entryLat, entryLng = &rec.EntryLocation.Lat, &rec.EntryLocation.Lng
	}
	if rec.ExitLocation != nil {
		exitLat, exitLng = &rec.ExitLocation.Lat, &rec.ExitLocation.Lng
	}
	var verified *int
	if rec.LocationVerified != nil {
		v := 0
		if *rec.LocationVerified {
			v = 1
		}
		verified = &v
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records (
			id, employee_id, employee_name, date, team_id,
			entry_time, exit_time, entry_lat, entry_lng, exit_lat, exit_lng,
			location_verified, location_reason, status, notes, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_name = excluded.employee_name,
			team_id = excluded.team_id,
			entry_time = excluded.entry_time,
			exit_time = excluded.exit_time,
			entry_lat = excluded.entry_lat,
			entry_lng = excluded.entry_lng,
			exit_lat = excluded.exit_lat,
			exit_lng = excluded.exit_lng,
			location_verified = excluded.location_verified,
			location_reason = excluded.location_reason,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		rec.ID, rec.EmployeeID, rec.EmployeeName, rec.Date, rec.TeamID,
		rec.EntryTime, rec.ExitTime, entryLat, entryLng, exitLat, exitLng,
		verified, rec.LocationReason, string(rec.Status), rec.Notes,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]attendance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.Record
	for rows.Next() {
		rec, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Reset wipes all records and the audit trail. Roster is preserved.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM audit_log`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row *sql.Row) (*attendance.Record, error) {
	rec, err := scanRecordRows(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func scanRecordRows(row rowScanner) (*attendance.Record, error) {
	var rec attendance.Record
	var entryLat, entryLng, exitLat, exitLng sql.NullFloat64
	var verified sql.NullInt64
	var status string

	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.Date, &rec.TeamID,
		&rec.EntryTime, &rec.ExitTime, &entryLat, &entryLng, &exitLat, &exitLng,
		&verified, &rec.LocationReason, &status, &rec.Notes)
	if err != nil {
		return nil, err
	}

	rec.Status = attendance.Status(status)
	if entryLat.Valid && entryLng.Valid {
		rec.EntryLocation = &attendance.Coordinates{Lat: entryLat.Float64, Lng: entryLng.Float64}
	}
	if exitLat.Valid && exitLng.Valid {
		rec.ExitLocation = &attendance.Coordinates{Lat: exitLat.Float64, Lng: exitLng.Float64}
	}
	if verified.Valid {
		v := verified.Int64 == 1
		rec.LocationVerified = &v
	}
	return &rec, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) Lookup(ctx context.Context, employeeID string) (*attendance.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, team_id, team_lead_id, home_lat, home_lng
		FROM employees WHERE id = ?`, employeeID)
	id, err := scanIdentity(row)
	if err == sql.ErrNoRows {
		return nil, directory.ErrNotFound
	}
	return id, err
}

func (s *Store) List(ctx context.Context) ([]attendance.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, team_id, team_lead_id, home_lat, home_lng
		FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.Identity
	for rows.Next() {
		id, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *id)
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, id attendance.Identity) error {
	if id.EmployeeID == "" {
		return attendance.ErrMissingIdentity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var teamID, teamLeadID *string
	var homeLat, homeLng *float64
	role := "employee"
	switch r := id.Role.(type) {
	case attendance.EmployeeRole:
		if r.TeamID != "" {
			teamID = &r.TeamID
		}
		if r.TeamLeadID != "" {
			teamLeadID = &r.TeamLeadID
		}
		if r.HomeLocation != nil {
			homeLat, homeLng = &r.HomeLocation.Lat, &r.HomeLocation.Lng
		}
	case attendance.TeamLeadRole:
		role = "teamlead"
		if r.TeamID != "" {
			teamID = &r.TeamID
		}
	case attendance.HRRole:
		role = "hr"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, team_id, team_lead_id, home_lat, home_lng, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			team_id = excluded.team_id,
			team_lead_id = excluded.team_lead_id,
			home_lat = excluded.home_lat,
			home_lng = excluded.home_lng`,
		id.EmployeeID, id.Name, role, teamID, teamLeadID, homeLat, homeLng,
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Delete(ctx context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, employeeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return directory.ErrNotFound
	}
	return nil
}

func scanIdentity(row rowScanner) (*attendance.Identity, error) {
	var id attendance.Identity
	var role string
	var teamID, teamLeadID sql.NullString
	var homeLat, homeLng sql.NullFloat64

	if err := row.Scan(&id.EmployeeID, &id.Name, &role, &teamID, &teamLeadID, &homeLat, &homeLng); err != nil {
		return nil, err
	}

	switch role {
	case "teamlead":
		id.Role = attendance.TeamLeadRole{TeamID: teamID.String}
	case "hr":
		id.Role = attendance.HRRole{}
	default:
		r := attendance.EmployeeRole{TeamID: teamID.String, TeamLeadID: teamLeadID.String}
		if homeLat.Valid && homeLng.Valid {
			r.HomeLocation = &attendance.Coordinates{Lat: homeLat.Float64, Lng: homeLng.Float64}
		}
		id.Role = r
	}
	return &id, nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (s *Store) Append(ctx context.Context, entry attendance.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, at, actor_id, action, record_id, from_status, to_status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.At.UTC().Format(time.RFC3339), entry.ActorID, string(entry.Action),
		entry.RecordID, string(entry.FromStatus), string(entry.ToStatus), entry.Note)
	return err
}

func (s *Store) Entries(ctx context.Context) ([]attendance.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, actor_id, action, record_id, from_status, to_status, note
		FROM audit_log ORDER BY at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.AuditEntry
	for rows.Next() {
		var e attendance.AuditEntry
		var at, action, from, to string
		if err := rows.Scan(&e.ID, &at, &e.ActorID, &action, &e.RecordID, &from, &to, &e.Note); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		e.Action = attendance.AuditAction(action)
		e.FromStatus = attendance.Status(from)
		e.ToStatus = attendance.Status(to)
		out = append(out, e)
	}
	return out, rows.Err()
}
