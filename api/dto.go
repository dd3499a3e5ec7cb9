/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are
  pure data carriers; request location fields are pointers so a missing
  coordinate is distinguishable from zero.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CoordinatesDTO is a lat/lng pair on the wire.
type CoordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MarkRequest is the body for entry/exit marking. Both fields are
// required; absence means the client has no location fix.
type MarkRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UpdateStatusRequest is the reviewer's status override.
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// UpdateReasonRequest carries the location-mismatch justification.
type UpdateReasonRequest struct {
	Reason string `json:"reason"`
}

// RecordDTO represents an attendance record in API responses.
type RecordDTO struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name"`
	Date             string          `json:"date"`
	TeamID           *string         `json:"team_id,omitempty"`
	EntryTime        *string         `json:"entry_time,omitempty"`
	ExitTime         *string         `json:"exit_time,omitempty"`
	EntryLocation    *CoordinatesDTO `json:"entry_location,omitempty"`
	ExitLocation     *CoordinatesDTO `json:"exit_location,omitempty"`
	LocationVerified *bool           `json:"location_verified,omitempty"`
	LocationReason   *string         `json:"location_reason,omitempty"`
	Status           string          `json:"status"`
	Notes            *string         `json:"notes,omitempty"`
}

// EmployeeDTO represents a roster entry.
type EmployeeDTO struct {
	EmployeeID   string          `json:"employee_id"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	TeamID       string          `json:"team_id,omitempty"`
	TeamLeadID   string          `json:"team_lead_id,omitempty"`
	HomeLocation *CoordinatesDTO `json:"home_location,omitempty"`
}

// SaveEmployeeRequest creates or updates a roster entry.
type SaveEmployeeRequest struct {
	EmployeeID   string          `json:"employee_id"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	TeamID       string          `json:"team_id,omitempty"`
	TeamLeadID   string          `json:"team_lead_id,omitempty"`
	HomeLocation *CoordinatesDTO `json:"home_location,omitempty"`
}

// SummaryDTO is the dashboard aggregation response.
type SummaryDTO struct {
	Breakdown BreakdownDTO    `json:"breakdown"`
	Trend     []TrendPointDTO `json:"trend"`
}

type BreakdownDTO struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	HalfDay int `json:"half_day"`
	Pending int `json:"pending"`
}

type TrendPointDTO struct {
	Date string `json:"date"`
	BreakdownDTO
}

// OverviewDTO is the per-employee monthly overview.
type OverviewDTO struct {
	WorkingDays    int    `json:"working_days"`
	PresentDays    int    `json:"present_days"`
	HalfDays       int    `json:"half_days"`
	AbsentDays     int    `json:"absent_days"`
	AttendanceRate string `json:"attendance_rate"`
	AvgWorkedHours string `json:"avg_worked_hours"`
}

// AuditEntryDTO represents one audit trail entry.
type AuditEntryDTO struct {
	ID         string `json:"id"`
	At         string `json:"at"`
	ActorID    string `json:"actor_id"`
	Action     string `json:"action"`
	RecordID   string `json:"record_id"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Note       string `json:"note,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCoordinatesDTO(c *attendance.Coordinates) *CoordinatesDTO {
	if c == nil {
		return nil
	}
	return &CoordinatesDTO{Lat: c.Lat, Lng: c.Lng}
}

func toRecordDTO(rec attendance.Record) RecordDTO {
	return RecordDTO{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		EmployeeName:     rec.EmployeeName,
		Date:             rec.Date,
		TeamID:           rec.TeamID,
		EntryTime:        rec.EntryTime,
		ExitTime:         rec.ExitTime,
		EntryLocation:    toCoordinatesDTO(rec.EntryLocation),
		ExitLocation:     toCoordinatesDTO(rec.ExitLocation),
		LocationVerified: rec.LocationVerified,
		LocationReason:   rec.LocationReason,
		Status:           string(rec.Status),
		Notes:            rec.Notes,
	}
}

func toRecordDTOs(recs []attendance.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toRecordDTO(rec)
	}
	return dtos
}

func toEmployeeDTO(id attendance.Identity) EmployeeDTO {
	dto := EmployeeDTO{
		EmployeeID: id.EmployeeID,
		Name:       id.Name,
		Role:       id.Role.RoleName(),
	}
	switch r := id.Role.(type) {
	case attendance.EmployeeRole:
		dto.TeamID = r.TeamID
		dto.TeamLeadID = r.TeamLeadID
		dto.HomeLocation = toCoordinatesDTO(r.HomeLocation)
	case attendance.TeamLeadRole:
		dto.TeamID = r.TeamID
	}
	return dto
}

func toBreakdownDTO(b attendance.StatusBreakdown) BreakdownDTO {
	return BreakdownDTO{Present: b.Present, Absent: b.Absent, HalfDay: b.HalfDay, Pending: b.Pending}
}

func toAuditEntryDTO(e attendance.AuditEntry) AuditEntryDTO {
	return AuditEntryDTO{
		ID:         e.ID,
		At:         e.At.Format(time.RFC3339),
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		RecordID:   e.RecordID,
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		Note:       e.Note,
	}
}
