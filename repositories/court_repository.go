package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/courtsched/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtNameConflict = errors.New("court name conflict for this club")
)

type CourtRepository interface {
	Create(ctx context.Context, court *models.Court) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Court, error)
	// LockByID takes a row lock on the court for the lifetime of exec, which must be a transaction.
	LockByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Court, error)
	List(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Court, error)
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const courtColumns = `id, club_id, name, type, created_at`

func (r *postgresCourtRepository) Create(ctx context.Context, c *models.Court) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Type == "" {
		c.Type = models.CourtIndoor
	}
	query := `INSERT INTO courts (id, club_id, name, type) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.ClubID, c.Name, c.Type).Scan(&c.CreatedAt)
	if code, _, ok := pqCode(err); ok && code == pqUniqueViolation {
		return ErrCourtNameConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}
	return nil
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Court, error) {
	return r.getOne(ctx, r.db, `SELECT `+courtColumns+` FROM courts WHERE id = $1`, id)
}

func (r *postgresCourtRepository) LockByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Court, error) {
	return r.getOne(ctx, r.getExecutor(exec), `SELECT `+courtColumns+` FROM courts WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresCourtRepository) getOne(ctx context.Context, executor SQLExecutor, query string, id uuid.UUID) (*models.Court, error) {
	c := &models.Court{}
	err := executor.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.ClubID, &c.Name, &c.Type, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %s: %w", id, err)
	}
	return c, nil
}

func (r *postgresCourtRepository) List(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts`
	args := []interface{}{}
	if clubID != nil {
		query += ` WHERE club_id = $1`
		args = append(args, *clubID)
	}
	query += ` ORDER BY name, id`
	return r.list(ctx, query, args...)
}

// ListByIDs returns the courts in the order of ids; unknown ids are skipped.
func (r *postgresCourtRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Court, error) {
	if len(ids) == 0 {
		return []models.Court{}, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = ANY($1::uuid[])`
	found, err := r.list(ctx, query, pq.Array(strIDs))
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Court, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	courts := make([]models.Court, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			courts = append(courts, c)
			delete(byID, id)
		}
	}
	return courts, nil
}

func (r *postgresCourtRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Court, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var c models.Court
		if err := rows.Scan(&c.ID, &c.ClubID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}
