package models

import (
	"time"

	"github.com/google/uuid"
)

type CourtType string

const (
	CourtIndoor  CourtType = "indoor"
	CourtOutdoor CourtType = "outdoor"
)

// Court is a bookable playing surface belonging to a club.
type Court struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ClubID    uuid.UUID `json:"club_id" db:"club_id"`
	Name      string    `json:"name" db:"name"`
	Type      CourtType `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CourtRef is the short court form carried on scheduled matches.
type CourtRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c Court) Ref() CourtRef {
	return CourtRef{ID: c.ID.String(), Name: c.Name}
}
