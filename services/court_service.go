package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/courtsched/models"
	"github.com/Dosada05/courtsched/repositories"
	"github.com/google/uuid"
)

var ErrCourtNameConflict = errors.New("court name already exists in this club")

type CourtService interface {
	CreateCourt(ctx context.Context, input CreateCourtInput) (*models.Court, error)
	GetCourt(ctx context.Context, id uuid.UUID) (*models.Court, error)
	ListCourts(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error)
}

type CreateCourtInput struct {
	ClubID uuid.UUID        `json:"club_id"`
	Name   string           `json:"name"`
	Type   models.CourtType `json:"type"`
}

type courtService struct {
	courtRepo repositories.CourtRepository
}

func NewCourtService(courtRepo repositories.CourtRepository) CourtService {
	return &courtService{courtRepo: courtRepo}
}

func (s *courtService) CreateCourt(ctx context.Context, input CreateCourtInput) (*models.Court, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: court name is required", ErrValidationFailed)
	}
	if input.ClubID == uuid.Nil {
		return nil, fmt.Errorf("%w: club_id is required", ErrValidationFailed)
	}
	if input.Type != models.CourtIndoor && input.Type != models.CourtOutdoor {
		return nil, fmt.Errorf("%w: type must be %q or %q", ErrValidationFailed, models.CourtIndoor, models.CourtOutdoor)
	}

	court := &models.Court{
		ID:     uuid.New(),
		ClubID: input.ClubID,
		Name:   name,
		Type:   input.Type,
	}
	if err := s.courtRepo.Create(ctx, court); err != nil {
		if errors.Is(err, repositories.ErrCourtNameConflict) {
			return nil, ErrCourtNameConflict
		}
		return nil, fmt.Errorf("failed to create court: %w", err)
	}
	return court, nil
}

func (s *courtService) GetCourt(ctx context.Context, id uuid.UUID) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %s: %w", id, err)
	}
	return court, nil
}

func (s *courtService) ListCourts(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error) {
	courts, err := s.courtRepo.List(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	return courts, nil
}
