package services

import (
	"time"

	"fleet-management/internal/models"
)

// intervalsOverlap reports whether two closed intervals intersect.
// Intervals that merely touch at an endpoint count as overlapping, so
// back-to-back bookings on the same instant are rejected rather than
// risking a double-booked vehicle.
func intervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// findConflict scans the vehicle's active trips for one whose window
// intersects the candidate window. A trip without an end time occupies
// the zero-width instant at its start.
func findConflict(active []*models.Trip, start, end time.Time) *models.Trip {
	for _, trip := range active {
		existingStart, existingEnd := trip.Window()
		if intervalsOverlap(existingStart, existingEnd, start, end) {
			return trip
		}
	}
	return nil
}

// candidateWindow normalizes a proposed trip window. A missing end time
// collapses the window to its start instant.
func candidateWindow(start time.Time, end *time.Time) (time.Time, time.Time) {
	if end != nil {
		return start, *end
	}
	return start, start
}
