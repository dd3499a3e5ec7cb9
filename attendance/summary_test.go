package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
)

func rec(date string, status attendance.Status, entry, exit string) attendance.Record {
	r := attendance.Record{
		ID:         attendance.RecordID(date, "EMP001"),
		EmployeeID: "EMP001",
		Date:       date,
		Status:     status,
	}
	if entry != "" {
		r.EntryTime = strptr(entry)
	}
	if exit != "" {
		r.ExitTime = strptr(exit)
	}
	return r
}

func TestBreakdownOf(t *testing.T) {
	records := []attendance.Record{
		rec("2025-03-03", attendance.StatusApproved, "", ""),
		rec("2025-03-04", attendance.StatusApproved, "", ""),
		rec("2025-03-05", attendance.StatusRejected, "", ""),
		rec("2025-03-06", attendance.StatusHalfDay, "", ""),
		rec("2025-03-07", attendance.StatusPending, "", ""),
	}

	b := attendance.BreakdownOf(records)

	assert.Equal(t, 2, b.Present)
	assert.Equal(t, 1, b.Absent)
	assert.Equal(t, 1, b.HalfDay)
	assert.Equal(t, 1, b.Pending)
	assert.Equal(t, 5, b.Total())
}

func TestDailyTrend_ContinuousWindow(t *testing.T) {
	// GIVEN: records on two of the last four days
	// THEN: four points come back oldest first, gaps zero-filled
	end := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	records := []attendance.Record{
		rec("2025-03-10", attendance.StatusPending, "", ""),
		rec("2025-03-08", attendance.StatusApproved, "", ""),
		rec("2025-03-01", attendance.StatusApproved, "", ""), // outside window
	}

	points := attendance.DailyTrend(records, end, 4)

	require.Len(t, points, 4)
	assert.Equal(t, "2025-03-07", points[0].Date)
	assert.Equal(t, "2025-03-08", points[1].Date)
	assert.Equal(t, "2025-03-09", points[2].Date)
	assert.Equal(t, "2025-03-10", points[3].Date)

	assert.Equal(t, 0, points[0].Total())
	assert.Equal(t, 1, points[1].Present)
	assert.Equal(t, 0, points[2].Total())
	assert.Equal(t, 1, points[3].Pending)
}

func TestDailyTrend_ZeroDays(t *testing.T) {
	assert.Nil(t, attendance.DailyTrend(nil, time.Now(), 0))
}

func TestOverviewOf_RateAndHours(t *testing.T) {
	// 10 approved + 1 half-day = 11 present days over the assumed 22,
	// which must come out as exactly 50%.
	var records []attendance.Record
	for i := 1; i <= 10; i++ {
		records = append(records, rec(time.Date(2025, time.March, i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			attendance.StatusApproved, "09:00", "17:00"))
	}
	records = append(records, rec("2025-03-11", attendance.StatusHalfDay, "09:00", "13:00"))
	records = append(records, rec("2025-03-12", attendance.StatusRejected, "", ""))
	records = append(records, rec("2025-03-13", attendance.StatusPending, "09:00", ""))

	o := attendance.OverviewOf(records)

	assert.Equal(t, 22, o.WorkingDays)
	assert.Equal(t, 11, o.PresentDays)
	assert.Equal(t, 1, o.HalfDays)
	assert.Equal(t, 1, o.AbsentDays)
	assert.Equal(t, "50", o.AttendanceRate.String())

	// 10 days of 8h plus one of 4h over 11 completed days: 84/11 = 7.64h.
	assert.Equal(t, "7.64", o.AvgWorkedHours.String())
}

func TestOverviewOf_NoCompletedDays(t *testing.T) {
	records := []attendance.Record{
		rec("2025-03-10", attendance.StatusPending, "09:00", ""),
	}

	o := attendance.OverviewOf(records)

	assert.True(t, o.AvgWorkedHours.IsZero())
	assert.Equal(t, "0", o.AttendanceRate.String())
}
