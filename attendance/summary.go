/*
summary.go - Aggregate analytics over attendance records

PURPOSE:
  The computations behind the dashboard charts and the monthly overview
  card: status breakdowns, per-day trend series, and per-employee
  monthly statistics.

PRECISION:
  Rates and averages use decimal.Decimal so that percentages shown to
  HR are exact (22 working days does not divide cleanly into binary
  floats).

CONVENTIONS:
  "Present" counts approved records; half-days count separately but are
  included as presence in the monthly overview, matching how reviewers
  read the numbers. The 22 working-day month is an assumption carried
  from the reporting conventions, not derived from a calendar.
*/
package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssumedWorkingDays is the working-day count a month is normalized to.
const AssumedWorkingDays = 22

// =============================================================================
// STATUS BREAKDOWN
// =============================================================================

// StatusBreakdown counts records per state.
type StatusBreakdown struct {
	Present int // approved
	Absent  int // rejected
	HalfDay int
	Pending int
}

func (b StatusBreakdown) Total() int {
	return b.Present + b.Absent + b.HalfDay + b.Pending
}

// BreakdownOf tallies records by status.
func BreakdownOf(records []Record) StatusBreakdown {
	var b StatusBreakdown
	for _, r := range records {
		switch r.Status {
		case StatusApproved:
			b.Present++
		case StatusRejected:
			b.Absent++
		case StatusHalfDay:
			b.HalfDay++
		case StatusPending:
			b.Pending++
		}
	}
	return b
}

// =============================================================================
// DAILY TREND
// =============================================================================

// TrendPoint is one day's breakdown in a trend series.
type TrendPoint struct {
	Date string
	StatusBreakdown
}

// DailyTrend produces one point per day for the `days` days ending at
// `end` (inclusive), oldest first. Days without records yield zero
// points so chart axes stay continuous.
func DailyTrend(records []Record, end time.Time, days int) []TrendPoint {
	if days <= 0 {
		return nil
	}
	byDate := make(map[string][]Record)
	for _, r := range records {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, TrendPoint{
			Date:            date,
			StatusBreakdown: BreakdownOf(byDate[date]),
		})
	}
	return out
}

// =============================================================================
// MONTHLY OVERVIEW
// =============================================================================

// Overview summarizes one employee's month. PresentDays includes
// half-days; AttendanceRate is PresentDays over the assumed working
// days, as an exact percentage.
type Overview struct {
	WorkingDays    int
	PresentDays    int
	HalfDays       int
	AbsentDays     int
	AttendanceRate decimal.Decimal
	AvgWorkedHours decimal.Decimal
}

// OverviewOf computes the monthly overview for a set of one employee's
// records.
func OverviewOf(records []Record) Overview {
	o := Overview{WorkingDays: AssumedWorkingDays}

	totalMinutes := decimal.Zero
	completed := 0
	for _, r := range records {
		switch r.Status {
		case StatusApproved:
			o.PresentDays++
		case StatusHalfDay:
			o.PresentDays++
			o.HalfDays++
		case StatusRejected:
			o.AbsentDays++
		}
		if m, ok := workedMinutes(r); ok {
			totalMinutes = totalMinutes.Add(decimal.NewFromInt(int64(m)))
			completed++
		}
	}

	o.AttendanceRate = decimal.NewFromInt(int64(o.PresentDays)).
		Div(decimal.NewFromInt(AssumedWorkingDays)).
		Mul(decimal.NewFromInt(100)).
		Round(1)

	if completed > 0 {
		o.AvgWorkedHours = totalMinutes.
			Div(decimal.NewFromInt(int64(completed))).
			Div(decimal.NewFromInt(60)).
			Round(2)
	}
	return o
}

// workedMinutes derives the worked span from the HH:MM entry and exit
// times. Records without both legs, or with an exit before entry
// (should not happen given the engine's monotonic rule), report false.
func workedMinutes(r Record) (int, bool) {
	if r.EntryTime == nil || r.ExitTime == nil {
		return 0, false
	}
	entry, err1 := parseHHMM(*r.EntryTime)
	exit, err2 := parseHHMM(*r.ExitTime)
	if err1 != nil || err2 != nil || exit < entry {
		return 0, false
	}
	return exit - entry, true
}

func parseHHMM(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}
