package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/courtsched/models"
	"github.com/google/uuid"
)

var (
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrScheduleDuplicateMatch = errors.New("duplicate match id in schedule")
	ErrScheduleDuplicateCourt = errors.New("duplicate court in schedule roster")
	ErrScheduleInvalidData    = errors.New("schedule violates a table constraint")
)

type ScheduleRepository interface {
	// Create stores the schedule header, its roster and its matches. Pass a transaction as exec
	// to make it atomic with other writes; with a nil exec Create manages its own transaction.
	Create(ctx context.Context, exec SQLExecutor, schedule *models.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Schedule, error)
	UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

const scheduleColumns = `id, tournament_id, name, min_rest_minutes, window_start, window_end, status, created_by, archive_key, created_at`

func (r *postgresScheduleRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Schedule) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.ScheduleApproved
	}

	executor := exec
	if executor == nil {
		tx, beginErr := r.db.BeginTx(ctx, nil)
		if beginErr != nil {
			return fmt.Errorf("failed to begin schedule transaction: %w", beginErr)
		}
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			} else if err != nil {
				_ = tx.Rollback()
			} else {
				err = tx.Commit()
			}
		}()
		executor = tx
	}

	query := `
		INSERT INTO schedules (id, tournament_id, name, min_rest_minutes, window_start, window_end, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	err = executor.QueryRowContext(ctx, query,
		s.ID, s.TournamentID, s.Name, s.MinRestMins, s.WindowStart, s.WindowEnd, s.Status, s.CreatedBy,
	).Scan(&s.CreatedAt)
	if err != nil {
		return r.handleScheduleError(err)
	}

	for i, c := range s.Courts {
		_, err = executor.ExecContext(ctx,
			`INSERT INTO schedule_courts (schedule_id, court_id, court_name, position) VALUES ($1, $2, $3, $4)`,
			s.ID, c.ID, c.Name, i)
		if err != nil {
			return fmt.Errorf("failed to store schedule court %s: %w", c.ID, r.handleScheduleError(err))
		}
	}

	for _, m := range s.Matches {
		_, err = executor.ExecContext(ctx, `
			INSERT INTO scheduled_matches (
				schedule_id, match_id, court_id, court_name,
				player1_id, player1_name, player1_club, player2_id, player2_name, player2_club,
				scheduled_start, scheduled_end, penalty, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			s.ID, m.ID, m.Court.ID, m.Court.Name,
			m.Player1.ID, m.Player1.Name, m.Player1.Club, m.Player2.ID, m.Player2.Name, m.Player2.Club,
			m.ScheduledStart, m.ScheduledEnd, m.Penalty, m.Status)
		if err != nil {
			return fmt.Errorf("failed to store scheduled match %s: %w", m.ID, r.handleScheduleError(err))
		}
	}
	return nil
}

func (r *postgresScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	s := &models.Schedule{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.TournamentID, &s.Name, &s.MinRestMins, &s.WindowStart, &s.WindowEnd,
		&s.Status, &s.CreatedBy, &s.ArchiveKey, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule %s: %w", id, err)
	}

	if s.Courts, err = r.listCourts(ctx, id); err != nil {
		return nil, err
	}
	if s.Matches, err = r.listMatches(ctx, id); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTournament returns schedule headers only; Courts and Matches are left empty.
func (r *postgresScheduleRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE tournament_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	schedules := make([]models.Schedule, 0)
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(
			&s.ID, &s.TournamentID, &s.Name, &s.MinRestMins, &s.WindowStart, &s.WindowEnd,
			&s.Status, &s.CreatedBy, &s.ArchiveKey, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *postgresScheduleRepository) UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE schedules SET archive_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update archive key for schedule %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrScheduleNotFound)
}

func (r *postgresScheduleRepository) listCourts(ctx context.Context, id uuid.UUID) ([]models.CourtRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT court_id, court_name FROM schedule_courts WHERE schedule_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts of schedule %s: %w", id, err)
	}
	defer rows.Close()

	courts := make([]models.CourtRef, 0)
	for rows.Next() {
		var c models.CourtRef
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan schedule court: %w", err)
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (r *postgresScheduleRepository) listMatches(ctx context.Context, id uuid.UUID) ([]models.ScheduledMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT match_id, court_id, court_name,
		       player1_id, player1_name, player1_club, player2_id, player2_name, player2_club,
		       scheduled_start, scheduled_end, penalty, status
		FROM scheduled_matches
		WHERE schedule_id = $1
		ORDER BY scheduled_start, match_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of schedule %s: %w", id, err)
	}
	defer rows.Close()

	matches := make([]models.ScheduledMatch, 0)
	for rows.Next() {
		var m models.ScheduledMatch
		if err := rows.Scan(
			&m.ID, &m.Court.ID, &m.Court.Name,
			&m.Player1.ID, &m.Player1.Name, &m.Player1.Club, &m.Player2.ID, &m.Player2.Name, &m.Player2.Club,
			&m.ScheduledStart, &m.ScheduledEnd, &m.Penalty, &m.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresScheduleRepository) handleScheduleError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqCode(err); ok {
		switch code {
		case pqUniqueViolation:
			switch constraint {
			case "scheduled_matches_pkey":
				return ErrScheduleDuplicateMatch
			case "schedule_courts_pkey":
				return ErrScheduleDuplicateCourt
			}
		case pqCheckViolation:
			return ErrScheduleInvalidData
		}
	}
	return err
}
