// Package scheduling holds the pure booking and schedule evaluation rules:
// the half-open interval overlap check used for court reservations and the
// quality report (utilization, rest violations, conflicts) computed over a
// proposed match schedule. Nothing here performs I/O.
package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/courtsched/models"
)

var ErrInvalidInterval = errors.New("interval start must be before its end")

const clockLayout = "15:04"

// Interval is the half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: [%s, %s)", ErrInvalidInterval,
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

func (iv Interval) Duration() time.Duration {
	if !iv.Start.Before(iv.End) {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Overlaps reports whether iv and other share at least one instant.
// Touching intervals (iv.End == other.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv, other)
}

func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Clip returns the part of iv that lies inside window; ok is false when nothing does.
func (iv Interval) Clip(window Interval) (Interval, bool) {
	start, end := iv.Start, iv.End
	if window.Start.After(start) {
		start = window.Start
	}
	if window.End.Before(end) {
		end = window.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// String renders the interval as wall-clock times, e.g. "09:00-09:30".
func (iv Interval) String() string {
	return iv.Start.Format(clockLayout) + "-" + iv.End.Format(clockLayout)
}

// BookingInterval places a booking's start and end time of day on its date.
func BookingInterval(b models.Booking) (Interval, error) {
	return DayInterval(b.Date, b.StartTime, b.EndTime)
}

// DayInterval builds the interval [start, end) on the given calendar date.
func DayInterval(date time.Time, start, end models.TimeOfDay) (Interval, error) {
	return NewInterval(start.On(date), end.On(date))
}

// MatchInterval returns the scheduled window of a match without validating it.
func MatchInterval(m models.ScheduledMatch) Interval {
	return Interval{Start: m.ScheduledStart, End: m.ScheduledEnd}
}
