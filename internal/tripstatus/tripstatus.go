// Package tripstatus derives a trip's lifecycle phase from its dates and
// active booking count. The phase is never persisted; callers recompute it
// on every read with a single now snapshot per batch so that trips straddling
// a boundary stay consistent within one response.
package tripstatus

import "time"

// Status is a derived trip lifecycle phase
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusSoldOut   Status = "SOLD_OUT"
	StatusOnTrip    Status = "ON_TRIP"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Calculate derives the trip status from dates, capacity and the number of
// active (non-cancelled) bookings.
//
// A trip whose start date arrives with zero bookings is cancelled, and stays
// cancelled after the end date passes: it never ran, so it never completed.
func Calculate(startDate, endDate time.Time, activeBookings, pax int, now time.Time) Status {
	if !now.Before(startDate) {
		if activeBookings == 0 {
			return StatusCancelled
		}
		if now.After(endDate) {
			return StatusCompleted
		}
		return StatusOnTrip
	}

	if activeBookings >= pax {
		return StatusSoldOut
	}
	return StatusUpcoming
}