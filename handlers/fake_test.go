package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/Dosada05/courtsched/algorithms"
	"github.com/Dosada05/courtsched/models"
	"github.com/Dosada05/courtsched/services"
)

type FakeCourtService struct {
	CreateCourtFunc func(ctx context.Context, input services.CreateCourtInput) (*models.Court, error)
	GetCourtFunc    func(ctx context.Context, id uuid.UUID) (*models.Court, error)
	ListCourtsFunc  func(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error)
}

func (f *FakeCourtService) CreateCourt(ctx context.Context, input services.CreateCourtInput) (*models.Court, error) {
	return f.CreateCourtFunc(ctx, input)
}

func (f *FakeCourtService) GetCourt(ctx context.Context, id uuid.UUID) (*models.Court, error) {
	return f.GetCourtFunc(ctx, id)
}

func (f *FakeCourtService) ListCourts(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error) {
	return f.ListCourtsFunc(ctx, clubID)
}

type FakeBookingService struct {
	CheckAvailabilityFunc func(ctx context.Context, courtID uuid.UUID, date string, start, end models.TimeOfDay) (bool, error)
	CreateBookingFunc     func(ctx context.Context, userID int, input services.CreateBookingInput) (*models.Booking, error)
	CancelBookingFunc     func(ctx context.Context, userID int, role models.UserRole, id uuid.UUID) (*models.Booking, error)
	GetBookingFunc        func(ctx context.Context, userID int, role models.UserRole, id uuid.UUID) (*models.Booking, error)
	ListCourtBookingsFunc func(ctx context.Context, courtID uuid.UUID, date string) ([]models.Booking, error)
	ListUserBookingsFunc  func(ctx context.Context, userID int) ([]models.Booking, error)
}

func (f *FakeBookingService) CheckAvailability(ctx context.Context, courtID uuid.UUID, date string, start, end models.TimeOfDay) (bool, error) {
	return f.CheckAvailabilityFunc(ctx, courtID, date, start, end)
}

func (f *FakeBookingService) CreateBooking(ctx context.Context, userID int, input services.CreateBookingInput) (*models.Booking, error) {
	return f.CreateBookingFunc(ctx, userID, input)
}

func (f *FakeBookingService) CancelBooking(ctx context.Context, userID int, role models.UserRole, id uuid.UUID) (*models.Booking, error) {
	return f.CancelBookingFunc(ctx, userID, role, id)
}

func (f *FakeBookingService) GetBooking(ctx context.Context, userID int, role models.UserRole, id uuid.UUID) (*models.Booking, error) {
	return f.GetBookingFunc(ctx, userID, role, id)
}

func (f *FakeBookingService) ListCourtBookings(ctx context.Context, courtID uuid.UUID, date string) ([]models.Booking, error) {
	return f.ListCourtBookingsFunc(ctx, courtID, date)
}

func (f *FakeBookingService) ListUserBookings(ctx context.Context, userID int) ([]models.Booking, error) {
	return f.ListUserBookingsFunc(ctx, userID)
}

type FakeScheduleService struct {
	GenerateFunc                func(ctx context.Context, session algorithms.Session, input services.GenerateInput) (*services.Review, error)
	EvaluateFunc                func(ctx context.Context, input services.EvaluateInput) (*services.Review, error)
	SaveFunc                    func(ctx context.Context, userID int, input services.SaveInput) (*services.ScheduleView, error)
	GetScheduleFunc             func(ctx context.Context, id uuid.UUID) (*services.ScheduleView, error)
	ListTournamentSchedulesFunc func(ctx context.Context, tournamentID int) ([]models.Schedule, error)
	CalendarFunc                func(ctx context.Context, id uuid.UUID) (string, error)
}

func (f *FakeScheduleService) Generate(ctx context.Context, session algorithms.Session, input services.GenerateInput) (*services.Review, error) {
	return f.GenerateFunc(ctx, session, input)
}

func (f *FakeScheduleService) Evaluate(ctx context.Context, input services.EvaluateInput) (*services.Review, error) {
	return f.EvaluateFunc(ctx, input)
}

func (f *FakeScheduleService) Save(ctx context.Context, userID int, input services.SaveInput) (*services.ScheduleView, error) {
	return f.SaveFunc(ctx, userID, input)
}

func (f *FakeScheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*services.ScheduleView, error) {
	return f.GetScheduleFunc(ctx, id)
}

func (f *FakeScheduleService) ListTournamentSchedules(ctx context.Context, tournamentID int) ([]models.Schedule, error) {
	return f.ListTournamentSchedulesFunc(ctx, tournamentID)
}

func (f *FakeScheduleService) Calendar(ctx context.Context, id uuid.UUID) (string, error) {
	return f.CalendarFunc(ctx, id)
}
