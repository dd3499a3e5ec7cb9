package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
	"github.com/warp/attendance-engine/directory"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// testDay pins every test to Monday 2025-03-10 09:05.
var testDay = time.Date(2025, time.March, 10, 9, 5, 0, 0, time.UTC)

type fixture struct {
	server  *httptest.Server
	records *store.Memory
	audit   *store.MemoryAudit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	records := store.NewMemory()
	audit := store.NewMemoryAudit()
	dir := directory.NewMemory()
	require.NoError(t, directory.SeedDemo(context.Background(), dir))

	engine := attendance.NewEngine(records)
	engine.Audit = audit
	engine.Clock = fixedClock{t: testDay}

	queries := attendance.NewQueries(records)
	queries.Clock = engine.Clock

	h := api.NewHandler(engine, queries, dir)
	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)

	return &fixture{server: srv, records: records, audit: audit}
}

// do issues a request with the acting user header and decodes the JSON
// response into out (when out is non-nil).
func (f *fixture) do(t *testing.T, method, path, actor string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	if actor != "" {
		req.Header.Set("X-Employee-ID", actor)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func markBody(lat, lng float64) map[string]float64 {
	return map[string]float64{"lat": lat, "lng": lng}
}

// =============================================================================
// MARKING
// =============================================================================

func TestAPI_MarkEntry(t *testing.T) {
	f := newFixture(t)

	var rec map[string]any
	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), &rec)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "att-2025-03-10-EMP001", rec["id"])
	assert.Equal(t, "pending", rec["status"])
	assert.Equal(t, true, rec["location_verified"])
	assert.Equal(t, "09:05", rec["entry_time"])
}

func TestAPI_MarkEntry_UnknownActor_Unauthorized(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "STRANGER", markBody(40.7128, -74.0060), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/attendance/entry", "", markBody(40.7128, -74.0060), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_MarkEntry_MissingCoordinates_BadRequest(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", map[string]float64{"lat": 40.7128}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_MarkExit_WithoutEntry_NotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/exit", "EMP001", markBody(40.7128, -74.0060), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_MarkExit_FarAway_HalfDay(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec map[string]any
	resp = f.do(t, http.MethodPost, "/api/attendance/exit", "EMP001", markBody(40.9000, -74.0060), &rec)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "half-day", rec["status"])
	assert.Equal(t, false, rec["location_verified"])
}

// =============================================================================
// READS
// =============================================================================

func TestAPI_GetToday(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/attendance/today", "EMP001", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "unmarked day is a 404")

	resp = f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec map[string]any
	resp = f.do(t, http.MethodGet, "/api/attendance/today", "EMP001", nil, &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "att-2025-03-10-EMP001", rec["id"])
}

func TestAPI_Pending_ScopedByRole(t *testing.T) {
	// EMP001 (team1) and EMP004 (team2) both mark verified entries.
	f := newFixture(t)
	for _, mark := range []struct {
		id       string
		lat, lng float64
	}{
		{"EMP001", 40.7128, -74.0060},
		{"EMP004", 40.7238, -74.0020},
	} {
		resp := f.do(t, http.MethodPost, "/api/attendance/entry", mark.id, markBody(mark.lat, mark.lng), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var leadView []map[string]any
	resp := f.do(t, http.MethodGet, "/api/attendance/pending", "LEAD001", nil, &leadView)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, leadView, 1, "team1's lead sees only team1")
	assert.Equal(t, "EMP001", leadView[0]["employee_id"])

	var hrView []map[string]any
	resp = f.do(t, http.MethodGet, "/api/attendance/pending", "HR001", nil, &hrView)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, hrView, 2)

	var empView []map[string]any
	resp = f.do(t, http.MethodGet, "/api/attendance/pending", "EMP002", nil, &empView)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, empView)
}

func TestAPI_AllRecords_HROnly(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/attendance/", "EMP001", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/attendance/", "HR001", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// =============================================================================
// REVIEW FLOW
// =============================================================================

func TestAPI_UpdateStatus(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec map[string]any
	resp = f.do(t, http.MethodPost, "/api/attendance/att-2025-03-10-EMP001/status", "LEAD001",
		map[string]string{"status": "approved", "notes": "ok"}, &rec)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", rec["status"])
	assert.Equal(t, "ok", rec["notes"])
}

func TestAPI_UpdateStatus_NonReviewer_Forbidden(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/attendance/att-2025-03-10-EMP001/status", "EMP002",
		map[string]string{"status": "approved"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_UpdateStatus_InvalidStatus_BadRequest(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/att-x/status", "HR001",
		map[string]string{"status": "vacation"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ReasonFlow(t *testing.T) {
	// Far-away entry yields an unverified half-day record; the employee
	// attaches a reason, which must not touch status or verification.
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.9000, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec map[string]any
	resp = f.do(t, http.MethodPost, "/api/attendance/att-2025-03-10-EMP001/reason", "EMP001",
		map[string]string{"reason": "client site visit"}, &rec)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "client site visit", rec["location_reason"])
	assert.Equal(t, "half-day", rec["status"])
	assert.Equal(t, false, rec["location_verified"])
}

func TestAPI_Reason_VerifiedRecord_BadRequest(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/attendance/att-2025-03-10-EMP001/reason", "EMP001",
		map[string]string{"reason": "why not"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// ANALYTICS
// =============================================================================

func TestAPI_Summary(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		Breakdown struct {
			Pending int `json:"pending"`
		} `json:"breakdown"`
		Trend []struct {
			Date    string `json:"date"`
			Pending int    `json:"pending"`
		} `json:"trend"`
	}
	resp = f.do(t, http.MethodGet, "/api/attendance/summary?window=7", "HR001", nil, &summary)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, summary.Breakdown.Pending)
	require.Len(t, summary.Trend, 7)
	last := summary.Trend[6]
	assert.Equal(t, "2025-03-10", last.Date)
	assert.Equal(t, 1, last.Pending)
}

func TestAPI_Overview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Eleven approved full days for EMP001: exactly half the assumed month.
	for i := 1; i <= 11; i++ {
		date := fmt.Sprintf("2025-03-%02d", i)
		entry, exit := "09:00", "17:00"
		require.NoError(t, f.records.Upsert(ctx, attendance.Record{
			ID: attendance.RecordID(date, "EMP001"), EmployeeID: "EMP001", Date: date,
			EntryTime: &entry, ExitTime: &exit, Status: attendance.StatusApproved,
		}))
	}

	var o map[string]any
	resp := f.do(t, http.MethodGet, "/api/attendance/overview/EMP001", "HR001", nil, &o)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(11), o["present_days"])
	assert.Equal(t, "50", o["attendance_rate"])
	assert.Equal(t, "8", o["avg_worked_hours"])
}

// =============================================================================
// ROSTER AND ADMIN
// =============================================================================

func TestAPI_Employees_CRUD(t *testing.T) {
	f := newFixture(t)

	var roster []map[string]any
	resp := f.do(t, http.MethodGet, "/api/employees/", "HR001", nil, &roster)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, roster, 7)

	var created map[string]any
	resp = f.do(t, http.MethodPost, "/api/employees/", "HR001", map[string]any{
		"employee_id": "EMP006", "name": "New Hire", "role": "employee",
		"team_id": "team2", "home_location": map[string]float64{"lat": 40.72, "lng": -74.01},
	}, &created)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EMP006", created["employee_id"])

	resp = f.do(t, http.MethodDelete, "/api/employees/EMP006", "HR001", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/employees/EMP006", "HR001", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Employees_NonHR_Forbidden(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/employees/", "LEAD001", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_Audit(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/attendance/entry", "EMP001", markBody(40.7128, -74.0060), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/api/attendance/att-2025-03-10-EMP001/status", "HR001",
		map[string]string{"status": "approved"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []map[string]any
	resp = f.do(t, http.MethodGet, "/api/audit", "HR001", nil, &entries)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, entries, 1)
	assert.Equal(t, "status_changed", entries[0]["action"])
	assert.Equal(t, "HR001", entries[0]["actor_id"])
}

func TestAPI_SeedAndReset(t *testing.T) {
	f := newFixture(t)

	var seeded map[string]int
	resp := f.do(t, http.MethodPost, "/api/admin/seed", "HR001", nil, &seeded)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, seeded["records"], 0)

	resp = f.do(t, http.MethodPost, "/api/admin/reset", "HR001", nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	all, err := f.records.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAPI_Export_HROnly(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/attendance/export", "EMP001", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/attendance/export", "HR001", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attendance.xlsx")
}
