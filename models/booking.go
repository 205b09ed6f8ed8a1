package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// DateLayout is the wire and storage format of a booking's calendar date.
const DateLayout = "2006-01-02"

// Booking is a court reservation. Bookings are never deleted; cancellation only flips Status.
type Booking struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	CourtID   uuid.UUID     `json:"court_id" db:"court_id"`
	UserID    int           `json:"user_id" db:"user_id"`
	Date      time.Time     `json:"-" db:"date"`
	StartTime TimeOfDay     `json:"start_time" db:"start_time"`
	EndTime   TimeOfDay     `json:"end_time" db:"end_time"`
	Status    BookingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`

	Court *Court `json:"court,omitempty" db:"-"`
}

// DateString renders Date in DateLayout, the way clients send it.
func (b Booking) DateString() string {
	return b.Date.Format(DateLayout)
}

func (b Booking) IsConfirmed() bool {
	return b.Status == BookingConfirmed
}

// ParseDate parses a calendar date in DateLayout as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		Date string `json:"date"`
	}{plain: plain(b), Date: b.DateString()})
}
