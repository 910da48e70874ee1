// Package availability implements the conflict and live-status rules for
// station bookings. Everything here is pure: results are derived from the
// supplied bookings and clock, nothing is cached or stored.
package availability

import (
	"time"

	"stationbook/internal/models"
)

// Status is the derived point-in-time occupancy of a station.
type Status struct {
	Available        bool
	Occupying        *models.Booking
	RemainingMinutes int
}

// HasConflict reports whether the candidate interval [start, end) overlaps
// any confirmed booking in existing. Bookings in other states never block,
// and touching intervals (end == other start) are not a conflict.
func HasConflict(start, end time.Time, existing []models.Booking) bool {
	candidate := models.Booking{StartTime: start, EndTime: end}
	for i := range existing {
		if existing[i].Status != models.StatusConfirmed {
			continue
		}
		if candidate.OverlapsWith(&existing[i]) {
			return true
		}
	}
	return false
}

// LiveStatus computes the occupancy of a station at the given instant from
// its bookings for that day. A completed booking never occupies, even if
// now still falls inside its original interval. If invariant-violating data
// yields several containing bookings, the earliest start wins.
func LiveStatus(now time.Time, bookings []models.Booking) Status {
	var occupying *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.Status != models.StatusConfirmed || !b.ContainsTime(now) {
			continue
		}
		if occupying == nil || b.StartTime.Before(occupying.StartTime) {
			occupying = b
		}
	}

	if occupying == nil {
		return Status{Available: true}
	}

	remaining := occupying.EndTime.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Available:        false,
		Occupying:        occupying,
		RemainingMinutes: int(remaining.Minutes()),
	}
}

// WindowFree reports whether [start, end) is free of confirmed bookings.
func WindowFree(start, end time.Time, bookings []models.Booking) bool {
	return !HasConflict(start, end, bookings)
}
