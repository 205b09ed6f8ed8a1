package algorithms

import (
	"time"

	"github.com/Dosada05/courtsched/models"
)

// Session carries the caller's credentials to the scheduling service.
type Session struct {
	Token string
}

type UnscheduledMatch struct {
	ID       string `json:"id"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	Duration *int   `json:"duration,omitempty"`
}

// SchedulingRequest is the body of POST /api/algorithms/scheduling.
// Durations and rest are minutes, StartTime is an RFC 3339 instant.
type SchedulingRequest struct {
	Matches       []UnscheduledMatch `json:"matches"`
	Courts        []models.CourtRef  `json:"courts"`
	MatchDuration *int               `json:"match_duration,omitempty"`
	RestTime      *int               `json:"rest_time,omitempty"`
	StartTime     string             `json:"start_time,omitempty"`
}

type WirePlayer struct {
	Name string `json:"name"`
	Club string `json:"club,omitempty"`
}

type WireMatchData struct {
	Player1 WirePlayer `json:"player1"`
	Player2 WirePlayer `json:"player2"`
	Penalty int        `json:"penalty"`
}

type WireScheduledMatch struct {
	ID             string          `json:"id"`
	Court          models.CourtRef `json:"court"`
	Match          WireMatchData   `json:"match"`
	ScheduledStart time.Time       `json:"scheduled_start_time"`
	ScheduledEnd   time.Time       `json:"scheduled_end_time"`
	Status         string          `json:"status,omitempty"`
}

// SchedulingResponse carries upstream summaries too; callers recompute them and treat these as advisory.
type SchedulingResponse struct {
	ScheduledMatches     []WireScheduledMatch `json:"scheduled_matches"`
	TotalScheduleTime    float64              `json:"total_schedule_time"`
	CourtUtilization     map[string]float64   `json:"court_utilization"`
	PlayerRestViolations []string             `json:"player_rest_violations"`
	SchedulingConflicts  []string             `json:"scheduling_conflicts"`
}

func (w WireScheduledMatch) ToModel() models.ScheduledMatch {
	status := models.MatchStatus(w.Status)
	if status == "" {
		status = models.MatchScheduled
	}
	return models.ScheduledMatch{
		ID:             w.ID,
		Court:          w.Court,
		Player1:        models.Player{Name: w.Match.Player1.Name, Club: w.Match.Player1.Club},
		Player2:        models.Player{Name: w.Match.Player2.Name, Club: w.Match.Player2.Club},
		ScheduledStart: w.ScheduledStart,
		ScheduledEnd:   w.ScheduledEnd,
		Penalty:        w.Match.Penalty,
		Status:         status,
	}
}

// Matches converts every scheduled match, preserving order.
func (r *SchedulingResponse) Matches() []models.ScheduledMatch {
	out := make([]models.ScheduledMatch, len(r.ScheduledMatches))
	for i, w := range r.ScheduledMatches {
		out[i] = w.ToModel()
	}
	return out
}
