package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/courtsched/fixtures"
	"github.com/Dosada05/courtsched/models"
)

func TestBuildRoundTrips(t *testing.T) {
	start := fixtures.Day.Add(9 * time.Hour)
	s := &models.Schedule{
		ID:   uuid.MustParse("6a1f3c2e-1b2d-4e5f-8a9b-0c1d2e3f4a5b"),
		Name: "Club Open",
		Matches: []models.ScheduledMatch{{
			ID:             "M1",
			Court:          models.CourtRef{ID: "C1", Name: "Centre Court"},
			Player1:        models.Player{Name: "Ann", Club: "North"},
			Player2:        models.Player{Name: "Bo"},
			ScheduledStart: start,
			ScheduledEnd:   start.Add(30 * time.Minute),
		}},
	}

	out := Build(s, fixtures.Day)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "6a1f3c2e-1b2d-4e5f-8a9b-0c1d2e3f4a5b-M1@courtsched", ev.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Ann vs Bo", ev.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Centre Court", ev.GetProperty(ical.ComponentPropertyLocation).Value)

	gotStart, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, gotStart.Equal(start))
	gotEnd, err := ev.GetEndAt()
	require.NoError(t, err)
	assert.True(t, gotEnd.Equal(start.Add(30*time.Minute)))
}

func TestBuildEmptySchedule(t *testing.T) {
	out := Build(&models.Schedule{ID: uuid.New()}, time.Now())
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
}
