/*
geofence.go - Great-circle distance and proximity verification

PURPOSE:
  Pure functions deciding whether a captured coordinate falls inside the
  circular geofence around an employee's registered home/office location.
  No side effects, fully deterministic.

THE RULE:
  A location verifies when its haversine distance to the home coordinate
  is less than or equal to the threshold (default 100 m). The comparison
  is inclusive: two points exactly at threshold distance verify. A
  missing home coordinate never verifies.

SEE ALSO:
  - engine.go: Applies verification during entry/exit marking
*/
package attendance

import "math"

// DefaultThresholdMeters is the geofence radius used when no override
// is configured.
const DefaultThresholdMeters = 100

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// DistanceMeters computes the great-circle (haversine) distance between
// two coordinates in meters.
func DistanceMeters(a, b Coordinates) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// WithinRange reports whether current is inside the geofence centered on
// home. Inclusive at exactly thresholdMeters. False when home is absent;
// a thresholdMeters of zero or less falls back to DefaultThresholdMeters.
func WithinRange(current Coordinates, home *Coordinates, thresholdMeters float64) bool {
	if home == nil {
		return false
	}
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultThresholdMeters
	}
	return DistanceMeters(current, *home) <= thresholdMeters
}
