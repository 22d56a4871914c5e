package service

import (
	"math"
	"time"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/geo"
)

// Progress-engine thresholds.
const (
	// proximityRadiusKM pins progress to 0.5 near a waypoint so the
	// rendered position does not jitter around a stop.
	proximityRadiusKM = 50.0
	// visibilityRadiusKM hides positions that drift too far off-route.
	visibilityRadiusKM = 500.0
	// movementWindow is the maximum elapsed time between two results for
	// a movement comparison to still be conclusive.
	movementWindow = time.Hour
	// movementProgressDelta is the minimum progress change that counts as
	// movement when the nearest waypoint did not change.
	movementProgressDelta = 0.1
	// centeredProgress is used inside the proximity dead zone and when
	// there is no next waypoint to interpolate toward.
	centeredProgress = 0.5
)

// Derive maps a sample, the ordered itinerary, and the previous derived
// result into a new DerivedPosition. It never fails and never mutates its
// inputs: an absent sample, an empty itinerary, or an itinerary without
// any located waypoint all degrade to a hidden, non-moving default.
func Derive(sample *domain.Sample, waypoints []domain.Waypoint, previous *domain.DerivedPosition) domain.DerivedPosition {
	if sample == nil || len(waypoints) == 0 {
		return domain.DerivedPosition{ObservedAt: time.Now().UTC()}
	}

	nearestIdx := 0
	nearestDist := math.Inf(1)
	for i, wp := range waypoints {
		if !wp.HasCoordinates() {
			continue
		}
		d := geo.HaversineKM(
			sample.Coordinates.Lat, sample.Coordinates.Lng,
			wp.Coordinates.Lat, wp.Coordinates.Lng,
		)
		// strict less-than keeps the earliest waypoint on ties
		if d < nearestDist {
			nearestDist = d
			nearestIdx = i
		}
	}
	if math.IsInf(nearestDist, 1) {
		// no waypoint carries coordinates; nothing to rank against
		return domain.DerivedPosition{ObservedAt: sample.CapturedAt}
	}

	progress := centeredProgress
	if nearestDist > proximityRadiusKM {
		progress = interpolate(sample, waypoints, nearestIdx, nearestDist)
	}

	pos := domain.DerivedPosition{
		Visible:              visibleAt(nearestDist),
		NearestWaypointIndex: nearestIdx,
		Progress:             progress,
		ObservedAt:           sample.CapturedAt,
	}
	pos.Moving = detectMovement(pos, previous)
	return pos
}

// visibleAt reports whether a position this far from its nearest waypoint
// is shown at all. The threshold is inclusive.
func visibleAt(distKM float64) bool {
	return distKM <= visibilityRadiusKM
}

// interpolate places the sample between the nearest waypoint and the next
// one in itinerary order as d1/(d1+d2), clamped to [0,1]. Past the end of
// the itinerary (or toward an unlocated waypoint) there is nothing to
// interpolate against, so the position stays centered.
func interpolate(sample *domain.Sample, waypoints []domain.Waypoint, nearestIdx int, nearestDist float64) float64 {
	next := nearestIdx + 1
	if next >= len(waypoints) || !waypoints[next].HasCoordinates() {
		return centeredProgress
	}

	nextDist := geo.HaversineKM(
		sample.Coordinates.Lat, sample.Coordinates.Lng,
		waypoints[next].Coordinates.Lat, waypoints[next].Coordinates.Lng,
	)

	total := nearestDist + nextDist
	if total == 0 {
		return centeredProgress
	}

	p := nearestDist / total
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// detectMovement compares the new result against the previous one. No
// previous result, an out-of-order sample, or too much elapsed time are
// all inconclusive and report not moving.
func detectMovement(pos domain.DerivedPosition, previous *domain.DerivedPosition) bool {
	if previous == nil {
		return false
	}

	elapsed := pos.ObservedAt.Sub(previous.ObservedAt)
	if elapsed <= 0 || elapsed > movementWindow {
		return false
	}

	if pos.NearestWaypointIndex != previous.NearestWaypointIndex {
		return true
	}
	return math.Abs(pos.Progress-previous.Progress) > movementProgressDelta
}
