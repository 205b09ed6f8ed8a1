package scheduling

import (
	"fmt"

	"github.com/Dosada05/courtsched/models"
)

// Admissible reports whether candidate may be booked next to existing, which must
// already be narrowed to a single court and date. Cancelled bookings are skipped
// here, so callers pass every booking they loaded.
func Admissible(existing []models.Booking, candidate Interval) (bool, error) {
	clashes, err := ConflictingBookings(existing, candidate)
	if err != nil {
		return false, err
	}
	return len(clashes) == 0, nil
}

// ConflictingBookings returns the confirmed bookings that overlap candidate.
func ConflictingBookings(existing []models.Booking, candidate Interval) ([]models.Booking, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var clashes []models.Booking
	for _, b := range existing {
		if !b.IsConfirmed() {
			continue
		}
		iv, err := BookingInterval(b)
		if err != nil {
			return nil, fmt.Errorf("stored booking %s: %w", b.ID, err)
		}
		if Overlaps(iv, candidate) {
			clashes = append(clashes, b)
		}
	}
	return clashes, nil
}
