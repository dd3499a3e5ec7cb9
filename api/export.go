/*
export.go - Spreadsheet export of attendance records

PURPOSE:
  Streams an .xlsx workbook of attendance records for HR reporting:
  one "Attendance" sheet with a row per record, plus a "Summary" sheet
  with the status breakdown.
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/warp/attendance-engine/attendance"
)

// Export streams every record as an .xlsx workbook.
// GET /api/attendance/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireHR(r); err != nil {
		writeDomainError(w, err)
		return
	}

	recs, err := h.Queries.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	f, err := buildWorkbook(recs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.xlsx"`)
	if err := f.Write(w); err != nil {
		// Headers are already out; nothing sensible left to send.
		return
	}
}

func buildWorkbook(recs []attendance.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := []any{"Date", "Employee ID", "Employee Name", "Team",
		"Entry", "Exit", "Location Verified", "Location Reason", "Status", "Notes"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, rec := range recs {
		row := []any{
			rec.Date,
			rec.EmployeeID,
			rec.EmployeeName,
			cellString(rec.TeamID),
			cellString(rec.EntryTime),
			cellString(rec.ExitTime),
			verifiedCell(rec.LocationVerified),
			cellString(rec.LocationReason),
			string(rec.Status),
			cellString(rec.Notes),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	if err := addSummarySheet(f, recs); err != nil {
		return nil, err
	}
	return f, nil
}

func addSummarySheet(f *excelize.File, recs []attendance.Record) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	b := attendance.BreakdownOf(recs)
	rows := [][]any{
		{"Status", "Count"},
		{"Present (approved)", b.Present},
		{"Absent (rejected)", b.Absent},
		{"Half-day", b.HalfDay},
		{"Pending", b.Pending},
		{"Total", b.Total()},
	}
	for i, row := range rows {
		r := row
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}
	return nil
}

func cellString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func verifiedCell(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "yes"
	default:
		return "no"
	}
}
