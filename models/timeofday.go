package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
// 24:00 is accepted so that a booking may end at midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay(hour*60 + minute)
	if hour < 0 || minute < 0 || minute > 59 || t > minutesPerDay {
		return 0, fmt.Errorf("time of day %02d:%02d out of range", hour, minute)
	}
	return t, nil
}

var clockPattern = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2}))?$`)

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS" (seconds are dropped).
// The whole input must match; "24:00" is the only value past 23:59.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := clockPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	hour, _ := strconv.Atoi(parts[1])
	minute, _ := strconv.Atoi(parts[2])
	second := 0
	if parts[3] != "" {
		second, _ = strconv.Atoi(parts[3])
	}
	if second > 59 {
		return 0, fmt.Errorf("invalid time of day %q: seconds out of range", s)
	}
	if hour == 24 && (minute != 0 || second != 0) {
		return 0, fmt.Errorf("invalid time of day %q: only 24:00 is allowed past 23:59", s)
	}
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t, nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places the time of day on the given calendar date, in the date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t) * time.Minute)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan reads a postgres TIME column. lib/pq delivers it as time.Time on 0000-01-01.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		parsed, err := NewTimeOfDay(v.Hour(), v.Minute())
		if err != nil {
			return err
		}
		if v.Day() != 1 && v.Hour() == 0 && v.Minute() == 0 {
			parsed = minutesPerDay
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		return fmt.Errorf("cannot scan NULL into TimeOfDay")
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String() + ":00", nil
}
