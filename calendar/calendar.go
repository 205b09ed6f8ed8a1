// Package calendar renders approved schedules as iCalendar feeds.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Dosada05/courtsched/models"
)

const productID = "-//courtsched//schedule export//EN"

// Build returns one VEVENT per match. Event UIDs are stable per schedule and match,
// so re-importing a feed updates events instead of duplicating them.
func Build(s *models.Schedule, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if s.Name != "" {
		cal.SetXWRCalName(s.Name)
	}

	for _, m := range s.Matches {
		ev := cal.AddEvent(fmt.Sprintf("%s-%s@courtsched", s.ID, m.ID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(m.ScheduledStart.UTC())
		ev.SetEndAt(m.ScheduledEnd.UTC())
		ev.SetSummary(summary(m))
		ev.SetLocation(courtLabel(m.Court))
		if desc := description(m); desc != "" {
			ev.SetDescription(desc)
		}
	}
	return cal.Serialize()
}

func summary(m models.ScheduledMatch) string {
	return fmt.Sprintf("%s vs %s", m.Player1.DisplayName(), m.Player2.DisplayName())
}

func courtLabel(c models.CourtRef) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

func description(m models.ScheduledMatch) string {
	var parts []string
	parts = append(parts, "Match "+m.ID)
	for _, p := range m.Players() {
		if p.Club != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", p.DisplayName(), p.Club))
		}
	}
	return strings.Join(parts, "\n")
}
