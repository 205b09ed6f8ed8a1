package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/courtsched/metrics"
	"github.com/Dosada05/courtsched/models"
	"github.com/Dosada05/courtsched/mq"
	"github.com/Dosada05/courtsched/repositories"
	"github.com/Dosada05/courtsched/scheduling"
	"github.com/google/uuid"
)

type CreateBookingInput struct {
	CourtID   uuid.UUID        `json:"court_id"`
	Date      string           `json:"date"`
	StartTime models.TimeOfDay `json:"start_time"`
	EndTime   models.TimeOfDay `json:"end_time"`
}

// BookingOverlapError carries the confirmed bookings that block a request.
type BookingOverlapError struct {
	Conflicts []models.Booking
}

func (e *BookingOverlapError) Error() string {
	return fmt.Sprintf("%s (%d conflicting)", ErrBookingOverlap, len(e.Conflicts))
}

func (e *BookingOverlapError) Unwrap() error { return ErrBookingOverlap }

type BookingService interface {
	CheckAvailability(ctx context.Context, courtID uuid.UUID, date string, start, end models.TimeOfDay) (bool, error)
	CreateBooking(ctx context.Context, userID int, input CreateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID int, role models.UserRole, bookingID uuid.UUID) (*models.Booking, error)
	GetBooking(ctx context.Context, userID int, role models.UserRole, bookingID uuid.UUID) (*models.Booking, error)
	ListCourtBookings(ctx context.Context, courtID uuid.UUID, date string) ([]models.Booking, error)
	ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error)
}

type bookingService struct {
	tx          repositories.Transactor
	bookingRepo repositories.BookingRepository
	courtRepo   repositories.CourtRepository
	publisher   mq.EventPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewBookingService(
	tx repositories.Transactor,
	bookingRepo repositories.BookingRepository,
	courtRepo repositories.CourtRepository,
	publisher mq.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) BookingService {
	return &bookingService{
		tx:          tx,
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, courtID uuid.UUID, date string, start, end models.TimeOfDay) (bool, error) {
	day, candidate, err := parseSlot(date, start, end)
	if err != nil {
		return false, err
	}
	if _, err := s.getCourt(ctx, courtID); err != nil {
		return false, err
	}

	existing, err := s.bookingRepo.ListByCourtAndDate(ctx, nil, courtID, day)
	if err != nil {
		return false, fmt.Errorf("failed to list bookings for court %s on %s: %w", courtID, date, err)
	}
	ok, err := scheduling.Admissible(existing, candidate)
	if err != nil {
		return false, fmt.Errorf("availability check for court %s: %w", courtID, err)
	}
	return ok, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, userID int, input CreateBookingInput) (*models.Booking, error) {
	day, candidate, err := parseSlot(input.Date, input.StartTime, input.EndTime)
	if err != nil {
		s.metrics.BookingAttempt("invalid")
		return nil, err
	}
	if input.CourtID == uuid.Nil {
		s.metrics.BookingAttempt("invalid")
		return nil, fmt.Errorf("%w: court_id is required", ErrValidationFailed)
	}

	booking := &models.Booking{
		CourtID:   input.CourtID,
		UserID:    userID,
		Date:      day,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    models.BookingConfirmed,
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		court, err := s.courtRepo.LockByID(ctx, exec, input.CourtID)
		if err != nil {
			if errors.Is(err, repositories.ErrCourtNotFound) {
				return ErrCourtNotFound
			}
			return fmt.Errorf("failed to lock court %s: %w", input.CourtID, err)
		}
		booking.Court = court

		existing, err := s.bookingRepo.ListByCourtAndDate(ctx, exec, input.CourtID, day)
		if err != nil {
			return fmt.Errorf("failed to list bookings for court %s: %w", input.CourtID, err)
		}
		conflicts, err := scheduling.ConflictingBookings(existing, candidate)
		if err != nil {
			return fmt.Errorf("overlap check for court %s: %w", input.CourtID, err)
		}
		if len(conflicts) > 0 {
			return &BookingOverlapError{Conflicts: conflicts}
		}

		if err := s.bookingRepo.Create(ctx, exec, booking); err != nil {
			return mapBookingRepoError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingOverlap) {
			s.metrics.BookingAttempt("overlap")
		}
		return nil, err
	}

	s.metrics.BookingAttempt("created")
	s.publishBooking(ctx, mq.KeyBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID int, role models.UserRole, bookingID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		booking, err = s.bookingRepo.GetByID(ctx, exec, bookingID)
		if err != nil {
			return mapBookingRepoError(err)
		}
		if booking.UserID != userID && role != models.RoleAdmin {
			return ErrForbiddenOperation
		}
		if booking.Status == models.BookingCancelled {
			return ErrBookingAlreadyCancelled
		}
		if err := s.bookingRepo.UpdateStatus(ctx, exec, bookingID, models.BookingCancelled); err != nil {
			return mapBookingRepoError(err)
		}
		booking.Status = models.BookingCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishBooking(ctx, mq.KeyBookingCancelled, booking)
	return booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, userID int, role models.UserRole, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, nil, bookingID)
	if err != nil {
		return nil, mapBookingRepoError(err)
	}
	if booking.UserID != userID && role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	return booking, nil
}

func (s *bookingService) ListCourtBookings(ctx context.Context, courtID uuid.UUID, date string) ([]models.Booking, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidationFailed)
	}
	if _, err := s.getCourt(ctx, courtID); err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.ListByCourtAndDate(ctx, nil, courtID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for court %s: %w", courtID, err)
	}
	return bookings, nil
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of user %d: %w", userID, err)
	}
	return bookings, nil
}

func (s *bookingService) getCourt(ctx context.Context, courtID uuid.UUID) (*models.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %s: %w", courtID, err)
	}
	return court, nil
}

// publishBooking never fails the request; the booking is already committed.
func (s *bookingService) publishBooking(ctx context.Context, key string, b *models.Booking) {
	event := mq.BookingEvent{
		BookingID: b.ID,
		CourtID:   b.CourtID,
		UserID:    b.UserID,
		Date:      b.DateString(),
		StartTime: b.StartTime.String(),
		EndTime:   b.EndTime.String(),
		Status:    string(b.Status),
		At:        time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, event); err != nil {
		s.logger.Warn("failed to publish booking event",
			slog.String("key", key), slog.String("booking_id", b.ID.String()), slog.Any("error", err))
	}
}

func parseSlot(date string, start, end models.TimeOfDay) (time.Time, scheduling.Interval, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return time.Time{}, scheduling.Interval{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidationFailed)
	}
	candidate, err := scheduling.DayInterval(day, start, end)
	if err != nil {
		return time.Time{}, scheduling.Interval{}, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return day, candidate, nil
}

func mapBookingRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, repositories.ErrBookingInvalidCourt):
		return ErrCourtNotFound
	case errors.Is(err, repositories.ErrBookingInvalidData):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return err
}
