package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Dosada05/courtsched/algorithms"
	"github.com/Dosada05/courtsched/config"
	"github.com/Dosada05/courtsched/metrics"
	"github.com/Dosada05/courtsched/models"
	"github.com/Dosada05/courtsched/realtime"
	"github.com/Dosada05/courtsched/repositories"
	"github.com/Dosada05/courtsched/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ------------------------
// Fake Transactor
// ------------------------

type FakeTx struct {
	calls int
}

func (f *FakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// ------------------------
// Fake Court Repo
// ------------------------

type FakeCourtRepo struct {
	trace  []string
	courts map[uuid.UUID]models.Court

	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Court, error)
}

func NewFakeCourtRepo(courts ...models.Court) *FakeCourtRepo {
	f := &FakeCourtRepo{courts: make(map[uuid.UUID]models.Court)}
	for _, c := range courts {
		f.courts[c.ID] = c
	}
	return f
}

func (f *FakeCourtRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeCourtRepo) Create(ctx context.Context, c *models.Court) error {
	f.record("Create")
	f.courts[c.ID] = *c
	return nil
}

func (f *FakeCourtRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Court, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	c, ok := f.courts[id]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	return &c, nil
}

func (f *FakeCourtRepo) LockByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Court, error) {
	f.record("LockByID")
	c, ok := f.courts[id]
	if !ok {
		return nil, repositories.ErrCourtNotFound
	}
	return &c, nil
}

func (f *FakeCourtRepo) List(ctx context.Context, clubID *uuid.UUID) ([]models.Court, error) {
	f.record("List")
	out := make([]models.Court, 0, len(f.courts))
	for _, c := range f.courts {
		if clubID == nil || c.ClubID == *clubID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeCourtRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Court, error) {
	f.record("ListByIDs")
	out := make([]models.Court, 0, len(ids))
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if c, ok := f.courts[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// ------------------------
// Fake Booking Repo
// ------------------------

type FakeBookingRepo struct {
	trace    []string
	bookings []models.Booking

	CreateFunc             func(ctx context.Context, exec repositories.SQLExecutor, b *models.Booking) error
	ListByCourtAndDateFunc func(ctx context.Context, exec repositories.SQLExecutor, courtID uuid.UUID, date time.Time) ([]models.Booking, error)
}

func NewFakeBookingRepo(bookings ...models.Booking) *FakeBookingRepo {
	return &FakeBookingRepo{bookings: bookings}
}

func (f *FakeBookingRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeBookingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, b *models.Booking) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, b)
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	f.bookings = append(f.bookings, *b)
	return nil
}

func (f *FakeBookingRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Booking, error) {
	f.record("GetByID")
	for _, b := range f.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repositories.ErrBookingNotFound
}

func (f *FakeBookingRepo) ListByCourtAndDate(ctx context.Context, exec repositories.SQLExecutor, courtID uuid.UUID, date time.Time) ([]models.Booking, error) {
	f.record("ListByCourtAndDate")
	if f.ListByCourtAndDateFunc != nil {
		return f.ListByCourtAndDateFunc(ctx, exec, courtID, date)
	}
	out := make([]models.Booking, 0)
	for _, b := range f.bookings {
		if b.CourtID == courtID && b.Date.Equal(date) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *FakeBookingRepo) ListByUser(ctx context.Context, userID int) ([]models.Booking, error) {
	f.record("ListByUser")
	out := make([]models.Booking, 0)
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *FakeBookingRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, status models.BookingStatus) error {
	f.record("UpdateStatus")
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
			return nil
		}
	}
	return repositories.ErrBookingNotFound
}

// ------------------------
// Fake Schedule Repo
// ------------------------

type FakeScheduleRepo struct {
	mu        sync.Mutex
	trace     []string
	schedules map[uuid.UUID]models.Schedule

	CreateFunc           func(ctx context.Context, exec repositories.SQLExecutor, s *models.Schedule) error
	UpdateArchiveKeyFunc func(ctx context.Context, id uuid.UUID, key *string) error
}

func NewFakeScheduleRepo() *FakeScheduleRepo {
	return &FakeScheduleRepo{schedules: make(map[uuid.UUID]models.Schedule)}
}

func (f *FakeScheduleRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeScheduleRepo) Create(ctx context.Context, exec repositories.SQLExecutor, s *models.Schedule) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, exec, s)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	f.mu.Lock()
	f.schedules[s.ID] = *s
	f.mu.Unlock()
	return nil
}

func (f *FakeScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	f.record("GetByID")
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[id]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	return &s, nil
}

func (f *FakeScheduleRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Schedule, error) {
	f.record("ListByTournament")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Schedule, 0)
	for _, s := range f.schedules {
		if s.TournamentID != nil && *s.TournamentID == tournamentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeScheduleRepo) UpdateArchiveKey(ctx context.Context, id uuid.UUID, key *string) error {
	f.record("UpdateArchiveKey")
	if f.UpdateArchiveKeyFunc != nil {
		return f.UpdateArchiveKeyFunc(ctx, id, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[id]
	if !ok {
		return repositories.ErrScheduleNotFound
	}
	s.ArchiveKey = key
	f.schedules[id] = s
	return nil
}

// ------------------------
// Fake collaborators
// ------------------------

type FakeScheduler struct {
	ScheduleFunc func(ctx context.Context, session algorithms.Session, req algorithms.SchedulingRequest) (*algorithms.SchedulingResponse, error)
	lastSession  algorithms.Session
	lastRequest  algorithms.SchedulingRequest
}

func (f *FakeScheduler) Schedule(ctx context.Context, session algorithms.Session, req algorithms.SchedulingRequest) (*algorithms.SchedulingResponse, error) {
	f.lastSession, f.lastRequest = session, req
	if f.ScheduleFunc != nil {
		return f.ScheduleFunc(ctx, session, req)
	}
	return &algorithms.SchedulingResponse{}, nil
}

type FakeArchiver struct {
	ArchiveFunc func(ctx context.Context, s *models.Schedule) (*storage.UploadResult, error)
}

func (f *FakeArchiver) Archive(ctx context.Context, s *models.Schedule) (*storage.UploadResult, error) {
	if f.ArchiveFunc != nil {
		return f.ArchiveFunc(ctx, s)
	}
	return nil, storage.ErrStorageDisabled
}

func (f *FakeArchiver) URL(key *string) string {
	if key == nil {
		return ""
	}
	return "https://archive.test/" + *key
}

type publishedEvent struct {
	Key   string
	Value any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (f *FakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Key: key, Value: v})
	return f.Err
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, len(f.events))
	for i, e := range f.events {
		keys[i] = e.Key
	}
	return keys
}

type FakeBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]realtime.Message
}

func NewFakeBroadcaster() *FakeBroadcaster {
	return &FakeBroadcaster{messages: make(map[string][]realtime.Message)}
}

func (f *FakeBroadcaster) BroadcastToRoom(roomID string, message realtime.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[roomID] = append(f.messages[roomID], message)
}

// scheduleFixture wires a schedule service over fakes.
type scheduleFixture struct {
	tx          *FakeTx
	schedules   *FakeScheduleRepo
	courts      *FakeCourtRepo
	scheduler   *FakeScheduler
	archiver    *FakeArchiver
	publisher   *FakePublisher
	broadcaster *FakeBroadcaster
	svc         *scheduleService
}

func newScheduleFixture(defaults config.SchedulingDefaults, courts ...models.Court) *scheduleFixture {
	f := &scheduleFixture{
		tx:          &FakeTx{},
		schedules:   NewFakeScheduleRepo(),
		courts:      NewFakeCourtRepo(courts...),
		scheduler:   &FakeScheduler{},
		archiver:    &FakeArchiver{},
		publisher:   &FakePublisher{},
		broadcaster: NewFakeBroadcaster(),
	}
	svc := NewScheduleService(ScheduleServiceDeps{
		Tx:           f.tx,
		ScheduleRepo: f.schedules,
		CourtRepo:    f.courts,
		Scheduler:    f.scheduler,
		Archiver:     f.archiver,
		Publisher:    f.publisher,
		Broadcaster:  f.broadcaster,
		Metrics:      metrics.New(nil),
		Tracer:       noop.NewTracerProvider().Tracer("test"),
		Logger:       discardLogger(),
		Defaults:     defaults,
	}).(*scheduleService)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}
