/*
handlers.go - HTTP API handlers for the attendance dashboard

PURPOSE:
  Exposes the attendance engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ACTING USER:
  Authentication is external; the acting user arrives as an opaque
  X-Employee-ID header which is resolved through the directory. Role
  gating here is navigation-level only - the engine re-checks the rules
  that matter (reviewer-only status changes).

ERROR HANDLING:
  Domain errors map to HTTP statuses:
  - 400: Input errors (missing location, invalid status, reason rules)
  - 401: Unresolvable acting user
  - 403: Reviewer-only operation attempted by a non-reviewer
  - 404: Record not found, exit without entry
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - export.go: Spreadsheet export
  - seed.go: Demo data loading
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/directory"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine    *attendance.Engine
	Queries   *attendance.Queries
	Directory directory.Directory
	Audit     attendance.AuditLog // optional
	Records   attendance.Store    // admin reset and seeding
}

// NewHandler wires a handler around an engine and its collaborators.
func NewHandler(engine *attendance.Engine, queries *attendance.Queries, dir directory.Directory) *Handler {
	return &Handler{
		Engine:    engine,
		Queries:   queries,
		Directory: dir,
		Audit:     engine.Audit,
		Records:   engine.Store,
	}
}

// =============================================================================
// ACTING USER
// =============================================================================

const actorHeader = "X-Employee-ID"

func (h *Handler) actor(r *http.Request) (attendance.Identity, error) {
	employeeID := r.Header.Get(actorHeader)
	if employeeID == "" {
		return attendance.Identity{}, attendance.ErrMissingIdentity
	}
	id, err := h.Directory.Lookup(r.Context(), employeeID)
	if err != nil {
		return attendance.Identity{}, err
	}
	return *id, nil
}

// =============================================================================
// MARKING ENDPOINTS
// =============================================================================

// MarkEntry records today's entry for the acting employee.
// POST /api/attendance/entry
func (h *Handler) MarkEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	loc, err := decodeLocation(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec, err := h.Engine.MarkEntry(r.Context(), actor, loc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

// MarkExit records today's exit for the acting employee.
// POST /api/attendance/exit
func (h *Handler) MarkExit(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	loc, err := decodeLocation(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec, err := h.Engine.MarkExit(r.Context(), actor, loc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

func decodeLocation(r *http.Request) (*attendance.Coordinates, error) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, attendance.ErrMissingLocation
	}
	if req.Lat == nil || req.Lng == nil {
		return nil, attendance.ErrMissingLocation
	}
	return &attendance.Coordinates{Lat: *req.Lat, Lng: *req.Lng}, nil
}

// =============================================================================
// REVIEW ENDPOINTS
// =============================================================================

// UpdateStatus sets a record's status on behalf of a reviewer.
// POST /api/attendance/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reviewer, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Engine.UpdateStatus(r.Context(), reviewer,
		chi.URLParam(r, "id"), attendance.Status(req.Status), req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

// UpdateReason attaches a location-mismatch justification.
// POST /api/attendance/{id}/reason
func (h *Handler) UpdateReason(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req UpdateReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Engine.UpdateReason(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

// =============================================================================
// READ ENDPOINTS
// =============================================================================

// GetToday returns the acting employee's record for today, 404 if the
// day has not been marked yet.
// GET /api/attendance/today
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rec, err := h.Queries.TodayFor(r.Context(), actor.EmployeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load today's record", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "No record for today", nil)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(*rec))
}

// EmployeeRecords returns every record for one employee.
// GET /api/attendance/employee/{id}
func (h *Handler) EmployeeRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Queries.ByEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// TeamRecords returns every record for one team.
// GET /api/attendance/team/{id}
func (h *Handler) TeamRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Queries.ByTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// PendingRecords returns the pending records the acting reviewer may see.
// GET /api/attendance/pending
func (h *Handler) PendingRecords(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recs, err := h.Queries.PendingFor(r.Context(), actor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load pending records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// AllRecords returns every record, for HR-wide views.
// GET /api/attendance
func (h *Handler) AllRecords(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}

	recs, err := h.Queries.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(recs))
}

// =============================================================================
// ANALYTICS ENDPOINTS
// =============================================================================

// Summary returns the status breakdown and daily trend for the acting
// reviewer's scope (team for a lead, company-wide for HR).
// GET /api/attendance/summary?window=30
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var recs []attendance.Record
	switch role := actor.Role.(type) {
	case attendance.TeamLeadRole:
		recs, err = h.Queries.ByTeam(r.Context(), role.TeamID)
	case attendance.HRRole:
		recs, err = h.Queries.All(r.Context())
	default:
		recs, err = h.Queries.ByEmployee(r.Context(), actor.EmployeeID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	window := 30
	if raw := r.URL.Query().Get("window"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 366 {
			window = n
		}
	}

	trend := attendance.DailyTrend(recs, h.Engine.Clock.Now(), window)
	points := make([]TrendPointDTO, len(trend))
	for i, p := range trend {
		points[i] = TrendPointDTO{Date: p.Date, BreakdownDTO: toBreakdownDTO(p.StatusBreakdown)}
	}

	writeJSON(w, http.StatusOK, SummaryDTO{
		Breakdown: toBreakdownDTO(attendance.BreakdownOf(recs)),
		Trend:     points,
	})
}

// Overview returns one employee's monthly overview.
// GET /api/attendance/overview/{employeeId}
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Queries.ByEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	o := attendance.OverviewOf(recs)
	writeJSON(w, http.StatusOK, OverviewDTO{
		WorkingDays:    o.WorkingDays,
		PresentDays:    o.PresentDays,
		HalfDays:       o.HalfDays,
		AbsentDays:     o.AbsentDays,
		AttendanceRate: o.AttendanceRate.String(),
		AvgWorkedHours: o.AvgWorkedHours.String(),
	})
}

// =============================================================================
// ROSTER ENDPOINTS (HR)
// =============================================================================

// ListEmployees returns the roster.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}

	ids, err := h.Directory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(ids))
	for i, id := range ids {
		dtos[i] = toEmployeeDTO(id)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEmployee creates or updates a roster entry.
// POST /api/employees, PUT /api/employees/{id}
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}

	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if fromPath := chi.URLParam(r, "id"); fromPath != "" {
		req.EmployeeID = fromPath
	}

	id, err := identityFromRequest(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Directory.Save(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(id))
}

// DeleteEmployee removes a roster entry.
// DELETE /api/employees/{id}
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func identityFromRequest(req SaveEmployeeRequest) (attendance.Identity, error) {
	id := attendance.Identity{EmployeeID: req.EmployeeID, Name: req.Name}
	if id.EmployeeID == "" {
		return id, attendance.ErrMissingIdentity
	}

	switch req.Role {
	case "teamlead":
		id.Role = attendance.TeamLeadRole{TeamID: req.TeamID}
	case "hr":
		id.Role = attendance.HRRole{}
	case "", "employee":
		role := attendance.EmployeeRole{TeamID: req.TeamID, TeamLeadID: req.TeamLeadID}
		if req.HomeLocation != nil {
			role.HomeLocation = &attendance.Coordinates{Lat: req.HomeLocation.Lat, Lng: req.HomeLocation.Lng}
		}
		id.Role = role
	default:
		return id, attendance.ErrMissingIdentity
	}
	return id, nil
}

// =============================================================================
// AUDIT AND ADMIN ENDPOINTS
// =============================================================================

// ListAudit returns the reviewer action trail.
// GET /api/audit
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}
	if h.Audit == nil {
		writeJSON(w, http.StatusOK, []AuditEntryDTO{})
		return
	}

	entries, err := h.Audit.Entries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load audit log", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SeedDemo loads the demo roster and ~30 days of plausible records.
// POST /api/admin/seed
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	n, err := SeedDemoData(r.Context(), h.Records, h.Directory, h.Engine.Clock.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": n})
}

// ResetAll wipes every attendance record (bulk administrative reset).
// POST /api/admin/reset
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Records.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset records", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireHR(r *http.Request) (attendance.Identity, error) {
	actor, err := h.actor(r)
	if err != nil {
		return actor, err
	}
	if _, ok := actor.Role.(attendance.HRRole); !ok {
		return actor, attendance.ErrNotReviewer
	}
	return actor, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attendance.ErrMissingIdentity), errors.Is(err, directory.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "Unknown acting user", err)
	case errors.Is(err, attendance.ErrNotReviewer):
		writeError(w, http.StatusForbidden, "Reviewer role required", err)
	case attendance.IsInputError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
