// Package fixtures generates seeded sample courts, players, bookings and
// schedules. It is injected wherever development or test data is needed so no
// production code path carries hard-coded sample records.
package fixtures

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/Dosada05/courtsched/models"
)

// Day is the fixed calendar date generated data is placed on.
var Day = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

type Provider struct {
	faker *gofakeit.Faker
	Seed  uint64
}

func New(seed uint64) *Provider {
	return &Provider{faker: gofakeit.New(seed), Seed: seed}
}

func (p *Provider) Courts(n int) []models.Court {
	clubID := p.uuid()
	courts := make([]models.Court, n)
	for i := range courts {
		typ := models.CourtIndoor
		if p.faker.Bool() {
			typ = models.CourtOutdoor
		}
		courts[i] = models.Court{
			ID:        p.uuid(),
			ClubID:    clubID,
			Name:      fmt.Sprintf("Court %d", i+1),
			Type:      typ,
			CreatedAt: Day,
		}
	}
	return courts
}

func (p *Provider) Players(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:   fmt.Sprintf("P%d", i+1),
			Name: p.faker.Name(),
			Club: p.faker.Company(),
		}
	}
	return players
}

// Interval returns a random start and a duration of 15..120 minutes within the day.
func (p *Provider) Interval() (time.Time, time.Time) {
	startMin := p.faker.Number(6*60, 20*60)
	length := p.faker.Number(1, 8) * 15
	start := Day.Add(time.Duration(startMin) * time.Minute)
	return start, start.Add(time.Duration(length) * time.Minute)
}

// Booking returns a booking of the given status on court at [start, end) of Day.
func (p *Provider) Booking(courtID uuid.UUID, start, end models.TimeOfDay, status models.BookingStatus) models.Booking {
	return models.Booking{
		ID:        p.uuid(),
		CourtID:   courtID,
		UserID:    p.faker.Number(1, 1000),
		Date:      Day,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		CreatedAt: Day,
	}
}

// RoundRobinSchedule lays a round robin between players onto courts in
// back-to-back slots of the given length starting at first, with restGap
// between consecutive slots.
func (p *Provider) RoundRobinSchedule(courts []models.CourtRef, players []models.Player, first time.Time, slot, restGap time.Duration) []models.ScheduledMatch {
	var matches []models.ScheduledMatch
	n := 0
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			round := n / len(courts)
			start := first.Add(time.Duration(round) * (slot + restGap))
			matches = append(matches, models.ScheduledMatch{
				ID:             fmt.Sprintf("M%d", n+1),
				Court:          courts[n%len(courts)],
				Player1:        players[i],
				Player2:        players[j],
				ScheduledStart: start,
				ScheduledEnd:   start.Add(slot),
				Penalty:        p.faker.Number(0, 2),
				Status:         models.MatchScheduled,
			})
			n++
		}
	}
	return matches
}

func (p *Provider) uuid() uuid.UUID {
	id, err := uuid.Parse(p.faker.UUID())
	if err != nil {
		return uuid.New()
	}
	return id
}
