package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCanceled   MatchStatus = "canceled"
)

// Player identifies one side of a match. ID may be empty for walk-in players, in
// which case Name is the identity.
type Player struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Club string `json:"club,omitempty"`
}

// Key is the identity used when grouping a player's matches.
func (p Player) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

func (p Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// ScheduledMatch is a match bound to a court and a time window by the external generator.
// Penalty is produced upstream and is only displayed.
type ScheduledMatch struct {
	ID             string      `json:"id"`
	Court          CourtRef    `json:"court"`
	Player1        Player      `json:"player1"`
	Player2        Player      `json:"player2"`
	ScheduledStart time.Time   `json:"scheduled_start_time"`
	ScheduledEnd   time.Time   `json:"scheduled_end_time"`
	Penalty        int         `json:"penalty"`
	Status         MatchStatus `json:"status"`
}

func (m ScheduledMatch) Players() [2]Player {
	return [2]Player{m.Player1, m.Player2}
}

type ScheduleStatus string

const (
	ScheduleApproved ScheduleStatus = "approved"
)

// Schedule is a persisted, human-approved set of scheduled matches.
type Schedule struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	TournamentID *int             `json:"tournament_id,omitempty" db:"tournament_id"`
	Name         string           `json:"name" db:"name"`
	MinRestMins  int              `json:"min_rest_minutes" db:"min_rest_minutes"`
	WindowStart  *time.Time       `json:"window_start,omitempty" db:"window_start"`
	WindowEnd    *time.Time       `json:"window_end,omitempty" db:"window_end"`
	Status       ScheduleStatus   `json:"status" db:"status"`
	CreatedBy    int              `json:"created_by" db:"created_by"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	ArchiveKey   *string          `json:"-" db:"archive_key"`
	ArchiveURL   string           `json:"archive_url,omitempty" db:"-"`
	Courts       []CourtRef       `json:"courts" db:"-"`
	Matches      []ScheduledMatch `json:"matches" db:"-"`
}

func (s Schedule) MinRest() time.Duration {
	return time.Duration(s.MinRestMins) * time.Minute
}
