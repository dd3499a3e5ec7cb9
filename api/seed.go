/*
seed.go - Demo data loading

PURPOSE:
  Populates the store with the demo roster and roughly thirty days of
  plausible attendance history so the dashboard has something to show.
  Generation is seeded, so reloading produces the same data set.

SHAPE OF THE DATA:
  Weekends are skipped and each employee misses about one workday in
  ten. Past days carry completed records (entry 08:xx-09:xx, exit
  17:xx-18:xx, reviewed status weighted toward approved, locations
  jittered around the employee's home coordinate). Today is left
  unmarked so entry/exit can be demonstrated live.
*/
package api

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/directory"
)

const seedDays = 30

// SeedDemoData loads the demo roster into dir and generates attendance
// history into records. Returns the number of records written.
func SeedDemoData(ctx context.Context, records attendance.Store, dir directory.Directory, now time.Time) (int, error) {
	if err := directory.SeedDemo(ctx, dir); err != nil {
		return 0, fmt.Errorf("seed roster: %w", err)
	}

	rng := rand.New(rand.NewSource(42))
	reviewed := []attendance.Status{
		attendance.StatusApproved, attendance.StatusApproved, attendance.StatusApproved,
		attendance.StatusHalfDay, attendance.StatusRejected,
	}

	written := 0
	for i := seedDays; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := day.Format("2006-01-02")

		for _, id := range directory.DemoRoster() {
			role, ok := id.Role.(attendance.EmployeeRole)
			if !ok || rng.Float64() > 0.9 {
				continue
			}

			entry := fmt.Sprintf("%02d:%02d", 8+rng.Intn(2), rng.Intn(60))
			exit := fmt.Sprintf("%02d:%02d", 17+rng.Intn(2), rng.Intn(60))
			verified := true
			teamID := role.TeamID

			rec := attendance.Record{
				ID:               attendance.RecordID(date, id.EmployeeID),
				EmployeeID:       id.EmployeeID,
				EmployeeName:     id.Name,
				Date:             date,
				TeamID:           &teamID,
				EntryTime:        &entry,
				ExitTime:         &exit,
				EntryLocation:    jitter(rng, role.HomeLocation),
				ExitLocation:     jitter(rng, role.HomeLocation),
				LocationVerified: &verified,
				Status:           reviewed[rng.Intn(len(reviewed))],
			}
			if err := records.Upsert(ctx, rec); err != nil {
				return written, fmt.Errorf("seed record %s: %w", rec.ID, err)
			}
			written++
		}
	}
	return written, nil
}

// jitter offsets a coordinate by up to ~50 m, keeping it inside the geofence.
func jitter(rng *rand.Rand, home *attendance.Coordinates) *attendance.Coordinates {
	if home == nil {
		return nil
	}
	return &attendance.Coordinates{
		Lat: home.Lat + (rng.Float64()*0.0008 - 0.0004),
		Lng: home.Lng + (rng.Float64()*0.0008 - 0.0004),
	}
}
