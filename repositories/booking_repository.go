package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/courtsched/models"
	"github.com/google/uuid"
)

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingInvalidCourt = errors.New("invalid court reference")
	ErrBookingInvalidData  = errors.New("booking violates a table constraint")
)

// BookingRepository returns bookings of every status. Filtering cancelled ones is up to the caller's checker.
type BookingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, booking *models.Booking) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Booking, error)
	ListByCourtAndDate(ctx context.Context, exec SQLExecutor, courtID uuid.UUID, date time.Time) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID int) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.BookingStatus) error
}

type postgresBookingRepository struct {
	db *sql.DB
}

func NewPostgresBookingRepository(db *sql.DB) BookingRepository {
	return &postgresBookingRepository{db: db}
}

func (r *postgresBookingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const bookingColumns = `id, court_id, user_id, date, start_time, end_time, status, created_at`

func (r *postgresBookingRepository) Create(ctx context.Context, exec SQLExecutor, b *models.Booking) error {
	executor := r.getExecutor(exec)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = models.BookingConfirmed
	}
	query := `
		INSERT INTO court_bookings (id, court_id, user_id, date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		b.ID, b.CourtID, b.UserID, b.DateString(), b.StartTime, b.EndTime, b.Status,
	).Scan(&b.CreatedAt)
	return r.handleBookingError(err)
}

func (r *postgresBookingRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Booking, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + bookingColumns + ` FROM court_bookings WHERE id = $1`

	b, err := scanBooking(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %s: %w", id, err)
	}
	return b, nil
}

func (r *postgresBookingRepository) ListByCourtAndDate(ctx context.Context, exec SQLExecutor, courtID uuid.UUID, date time.Time) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM court_bookings
		WHERE court_id = $1 AND date = $2
		ORDER BY start_time, created_at`
	return r.list(ctx, r.getExecutor(exec), query, courtID, date.Format(models.DateLayout))
}

func (r *postgresBookingRepository) ListByUser(ctx context.Context, userID int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM court_bookings
		WHERE user_id = $1
		ORDER BY date DESC, start_time DESC`
	return r.list(ctx, r.db, query, userID)
}

func (r *postgresBookingRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.BookingStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE court_bookings SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleBookingError(err)
	}
	return checkAffectedRows(result, ErrBookingNotFound)
}

func (r *postgresBookingRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, scanErr := scanBooking(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", scanErr)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during booking rows iteration: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	if err := row.Scan(&b.ID, &b.CourtID, &b.UserID, &b.Date, &b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Date = time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, time.UTC)
	return &b, nil
}

func (r *postgresBookingRepository) handleBookingError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqCode(err); ok {
		switch code {
		case pqForeignKeyViolation:
			if constraint == "court_bookings_court_id_fkey" {
				return ErrBookingInvalidCourt
			}
		case pqCheckViolation, pqInvalidTextRepr:
			return ErrBookingInvalidData
		}
	}
	return err
}
