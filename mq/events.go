package mq

import (
	"time"

	"github.com/google/uuid"
)

type BookingEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	CourtID   uuid.UUID `json:"court_id"`
	UserID    int       `json:"user_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

type ScheduleApprovedEvent struct {
	ScheduleID   uuid.UUID `json:"schedule_id"`
	TournamentID *int      `json:"tournament_id,omitempty"`
	ApprovedBy   int       `json:"approved_by"`
	MatchCount   int       `json:"match_count"`
	At           time.Time `json:"at"`
}
