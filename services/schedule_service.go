package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/courtsched/algorithms"
	"github.com/Dosada05/courtsched/calendar"
	"github.com/Dosada05/courtsched/config"
	"github.com/Dosada05/courtsched/metrics"
	"github.com/Dosada05/courtsched/models"
	"github.com/Dosada05/courtsched/mq"
	"github.com/Dosada05/courtsched/realtime"
	"github.com/Dosada05/courtsched/repositories"
	"github.com/Dosada05/courtsched/scheduling"
	"github.com/Dosada05/courtsched/storage"
)

const postCommitTimeout = 30 * time.Second

// Scheduler produces draft schedules. It is implemented by *algorithms.Client.
type Scheduler interface {
	Schedule(ctx context.Context, session algorithms.Session, req algorithms.SchedulingRequest) (*algorithms.SchedulingResponse, error)
}

type Archiver interface {
	Archive(ctx context.Context, s *models.Schedule) (*storage.UploadResult, error)
	URL(key *string) string
}

// ReviewOptions override the configured scheduling defaults for one evaluation.
type ReviewOptions struct {
	MinRestMinutes *int       `json:"min_rest_minutes,omitempty"`
	WindowStart    *time.Time `json:"window_start,omitempty"`
	WindowEnd      *time.Time `json:"window_end,omitempty"`
}

// EvaluateInput is a draft as edited by an organizer. The roster is taken from Courts,
// else loaded by CourtIDs, else derived from the matches.
type EvaluateInput struct {
	Matches  []models.ScheduledMatch `json:"matches"`
	Courts   []models.CourtRef       `json:"courts,omitempty"`
	CourtIDs []uuid.UUID             `json:"court_ids,omitempty"`
	ReviewOptions
}

type GenerateInput struct {
	TournamentID  *int                          `json:"tournament_id,omitempty"`
	CourtIDs      []uuid.UUID                   `json:"court_ids"`
	Matches       []algorithms.UnscheduledMatch `json:"matches"`
	MatchDuration *int                          `json:"match_duration,omitempty"`
	RestTime      *int                          `json:"rest_time,omitempty"`
	StartTime     *time.Time                    `json:"start_time,omitempty"`
	ReviewOptions
}

type SaveInput struct {
	TournamentID *int   `json:"tournament_id,omitempty"`
	Name         string `json:"name"`
	EvaluateInput
}

// Review is a draft schedule with a report computed locally.
type Review struct {
	Matches        []models.ScheduledMatch `json:"scheduled_matches"`
	Courts         []models.CourtRef       `json:"courts"`
	MinRestMinutes int                     `json:"min_rest_minutes"`
	Report         *scheduling.Report      `json:"report"`
	CourtUsage     []scheduling.CourtUsage `json:"court_usage"`
}

type ScheduleView struct {
	Schedule   *models.Schedule        `json:"schedule"`
	Report     *scheduling.Report      `json:"report"`
	CourtUsage []scheduling.CourtUsage `json:"court_usage"`
}

// ScheduleConflictError rejects a save and carries the report that explains why.
type ScheduleConflictError struct {
	Report *scheduling.Report
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: %d conflicts", ErrScheduleHasConflicts, len(e.Report.Conflicts))
}

func (e *ScheduleConflictError) Unwrap() error { return ErrScheduleHasConflicts }

type ScheduleService interface {
	Generate(ctx context.Context, session algorithms.Session, input GenerateInput) (*Review, error)
	Evaluate(ctx context.Context, input EvaluateInput) (*Review, error)
	Save(ctx context.Context, userID int, input SaveInput) (*ScheduleView, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*ScheduleView, error)
	ListTournamentSchedules(ctx context.Context, tournamentID int) ([]models.Schedule, error)
	Calendar(ctx context.Context, id uuid.UUID) (string, error)
}

type ScheduleServiceDeps struct {
	Tx           repositories.Transactor
	ScheduleRepo repositories.ScheduleRepository
	CourtRepo    repositories.CourtRepository
	Scheduler    Scheduler
	Archiver     Archiver
	Publisher    mq.EventPublisher
	Broadcaster  realtime.Broadcaster
	Metrics      *metrics.Metrics
	Tracer       trace.Tracer
	Logger       *slog.Logger
	Defaults     config.SchedulingDefaults
}

type scheduleService struct {
	ScheduleServiceDeps
	now func() time.Time
}

func NewScheduleService(deps ScheduleServiceDeps) ScheduleService {
	return &scheduleService{ScheduleServiceDeps: deps, now: time.Now}
}

func (s *scheduleService) Generate(ctx context.Context, session algorithms.Session, input GenerateInput) (*Review, error) {
	ctx, span := s.Tracer.Start(ctx, "ScheduleService.Generate")
	defer span.End()

	if len(input.Matches) == 0 {
		return nil, fmt.Errorf("%w: at least one match is required", ErrValidationFailed)
	}
	if len(input.CourtIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one court is required", ErrValidationFailed)
	}
	courts, err := s.loadRoster(ctx, input.CourtIDs)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("schedule.courts", len(courts)), attribute.Int("schedule.matches", len(input.Matches)))

	req := algorithms.SchedulingRequest{
		Matches:       input.Matches,
		Courts:        courts,
		MatchDuration: input.MatchDuration,
		RestTime:      input.RestTime,
	}
	if input.StartTime != nil {
		req.StartTime = input.StartTime.UTC().Format(time.RFC3339)
	}

	resp, err := s.Scheduler.Schedule(ctx, session, req)
	if err != nil {
		s.Metrics.SchedulerCall("error")
		return nil, s.fail(span, mapSchedulerError(err))
	}
	s.Metrics.SchedulerCall("ok")

	opts := input.ReviewOptions
	if opts.MinRestMinutes == nil && input.RestTime != nil {
		opts.MinRestMinutes = input.RestTime
	}
	review, err := s.review(resp.Matches(), courts, opts)
	if err != nil {
		return nil, s.fail(span, err)
	}
	s.compareUpstream(ctx, resp, review.Report)

	if input.TournamentID != nil {
		s.Broadcaster.BroadcastToRoom(realtime.TournamentRoom(*input.TournamentID),
			realtime.Message{Type: realtime.MessageScheduleReview, Payload: review})
	}
	return review, nil
}

func (s *scheduleService) Evaluate(ctx context.Context, input EvaluateInput) (*Review, error) {
	ctx, span := s.Tracer.Start(ctx, "ScheduleService.Evaluate")
	defer span.End()

	courts, err := s.resolveRoster(ctx, input)
	if err != nil {
		return nil, s.fail(span, err)
	}
	review, err := s.review(input.Matches, courts, input.ReviewOptions)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return review, nil
}

func (s *scheduleService) Save(ctx context.Context, userID int, input SaveInput) (*ScheduleView, error) {
	ctx, span := s.Tracer.Start(ctx, "ScheduleService.Save")
	defer span.End()

	if len(input.Matches) == 0 {
		return nil, fmt.Errorf("%w: a schedule needs at least one match", ErrValidationFailed)
	}
	courts, err := s.resolveRoster(ctx, input.EvaluateInput)
	if err != nil {
		return nil, s.fail(span, err)
	}
	review, err := s.review(input.Matches, courts, input.ReviewOptions)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if review.Report.HasConflicts() {
		return nil, &ScheduleConflictError{Report: review.Report}
	}

	window := review.Report.Window
	schedule := &models.Schedule{
		TournamentID: input.TournamentID,
		Name:         input.Name,
		MinRestMins:  review.MinRestMinutes,
		Status:       models.ScheduleApproved,
		CreatedBy:    userID,
		Courts:       courts,
		Matches:      input.Matches,
	}
	if !window.IsZero() {
		schedule.WindowStart, schedule.WindowEnd = &window.Start, &window.End
	}

	err = s.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.ScheduleRepo.Create(ctx, exec, schedule)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleDuplicateMatch) {
			return nil, ErrScheduleDuplicateMatch
		}
		if errors.Is(err, repositories.ErrScheduleInvalidData) || errors.Is(err, repositories.ErrScheduleDuplicateCourt) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, s.fail(span, fmt.Errorf("failed to save schedule: %w", err))
	}
	s.Metrics.ScheduleApproved()
	span.SetAttributes(attribute.String("schedule.id", schedule.ID.String()))

	s.afterCommit(ctx, schedule)

	if schedule.TournamentID != nil {
		s.Broadcaster.BroadcastToRoom(realtime.TournamentRoom(*schedule.TournamentID),
			realtime.Message{Type: realtime.MessageScheduleApproved, Payload: schedule})
	}
	return &ScheduleView{Schedule: schedule, Report: review.Report, CourtUsage: review.CourtUsage}, nil
}

// afterCommit archives and announces a saved schedule. Failures are logged; the save stands.
func (s *scheduleService) afterCommit(ctx context.Context, schedule *models.Schedule) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		res, err := s.Archiver.Archive(ctx, schedule)
		if errors.Is(err, storage.ErrStorageDisabled) {
			return nil
		}
		if err != nil {
			s.postCommitFailed("archive", schedule.ID, err)
			return nil
		}
		key := res.Key
		if err := s.ScheduleRepo.UpdateArchiveKey(ctx, schedule.ID, &key); err != nil {
			s.postCommitFailed("archive_key", schedule.ID, err)
			return nil
		}
		schedule.ArchiveKey = &key
		schedule.ArchiveURL = res.Location
		return nil
	})
	g.Go(func() error {
		event := mq.ScheduleApprovedEvent{
			ScheduleID:   schedule.ID,
			TournamentID: schedule.TournamentID,
			ApprovedBy:   schedule.CreatedBy,
			MatchCount:   len(schedule.Matches),
			At:           s.now().UTC(),
		}
		if err := s.Publisher.PublishJSON(ctx, mq.KeyScheduleApproved, event); err != nil {
			s.postCommitFailed("publish", schedule.ID, err)
		}
		return nil
	})
	_ = g.Wait()
}

func (s *scheduleService) postCommitFailed(step string, id uuid.UUID, err error) {
	s.Metrics.PostCommitFailure(step)
	s.Logger.Warn("post-commit step failed",
		slog.String("step", step), slog.String("schedule_id", id.String()), slog.Any("error", err))
}

func (s *scheduleService) GetSchedule(ctx context.Context, id uuid.UUID) (*ScheduleView, error) {
	schedule, err := s.ScheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule %s: %w", id, err)
	}
	schedule.ArchiveURL = s.Archiver.URL(schedule.ArchiveKey)

	opts := scheduling.Options{MinRest: schedule.MinRest()}
	if schedule.WindowStart != nil && schedule.WindowEnd != nil {
		opts.Window = &scheduling.Interval{Start: *schedule.WindowStart, End: *schedule.WindowEnd}
	}
	report, err := s.evaluate(schedule.Matches, schedule.Courts, opts)
	if err != nil {
		return nil, fmt.Errorf("stored schedule %s: %w", id, err)
	}
	return &ScheduleView{Schedule: schedule, Report: report, CourtUsage: scheduling.CourtUsages(report, schedule.Courts)}, nil
}

func (s *scheduleService) ListTournamentSchedules(ctx context.Context, tournamentID int) ([]models.Schedule, error) {
	schedules, err := s.ScheduleRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules of tournament %d: %w", tournamentID, err)
	}
	return schedules, nil
}

func (s *scheduleService) Calendar(ctx context.Context, id uuid.UUID) (string, error) {
	view, err := s.GetSchedule(ctx, id)
	if err != nil {
		return "", err
	}
	return calendar.Build(view.Schedule, s.now()), nil
}

func (s *scheduleService) review(matches []models.ScheduledMatch, courts []models.CourtRef, ro ReviewOptions) (*Review, error) {
	if matches == nil {
		matches = []models.ScheduledMatch{}
	}
	if len(courts) == 0 {
		courts = scheduling.CourtsFromMatches(matches)
	}
	opts, err := s.options(matches, ro)
	if err != nil {
		return nil, err
	}
	report, err := s.evaluate(matches, courts, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return &Review{
		Matches:        matches,
		Courts:         courts,
		MinRestMinutes: int(opts.MinRest / time.Minute),
		Report:         report,
		CourtUsage:     scheduling.CourtUsages(report, courts),
	}, nil
}

func (s *scheduleService) evaluate(matches []models.ScheduledMatch, courts []models.CourtRef, opts scheduling.Options) (*scheduling.Report, error) {
	started := time.Now()
	defer func() { s.Metrics.ObserveEvaluation(time.Since(started)) }()
	return scheduling.Evaluate(matches, courts, opts)
}

// options fills what the request leaves out from the configured defaults. Configured operating
// hours become the reference window on the club-local day of the earliest match.
func (s *scheduleService) options(matches []models.ScheduledMatch, ro ReviewOptions) (scheduling.Options, error) {
	opts := scheduling.Options{MinRest: s.Defaults.MinRest}
	if ro.MinRestMinutes != nil {
		if *ro.MinRestMinutes < 0 {
			return opts, fmt.Errorf("%w: min_rest_minutes must not be negative", ErrValidationFailed)
		}
		opts.MinRest = time.Duration(*ro.MinRestMinutes) * time.Minute
	}

	switch {
	case ro.WindowStart != nil && ro.WindowEnd != nil:
		window, err := scheduling.NewInterval(*ro.WindowStart, *ro.WindowEnd)
		if err != nil {
			return opts, fmt.Errorf("%w: reference window: %w", ErrValidationFailed, err)
		}
		opts.Window = &window
	case ro.WindowStart != nil || ro.WindowEnd != nil:
		return opts, fmt.Errorf("%w: window_start and window_end must be given together", ErrValidationFailed)
	case s.Defaults.HasOperatingHours() && len(matches) > 0:
		earliest := matches[0].ScheduledStart
		for _, m := range matches[1:] {
			if m.ScheduledStart.Before(earliest) {
				earliest = m.ScheduledStart
			}
		}
		local := earliest.In(s.Defaults.Zone())
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
		window, err := scheduling.DayInterval(day, s.Defaults.DayStart, s.Defaults.DayEnd)
		if err != nil {
			return opts, err
		}
		opts.Window = &window
	}
	return opts, nil
}

func (s *scheduleService) resolveRoster(ctx context.Context, input EvaluateInput) ([]models.CourtRef, error) {
	if len(input.Courts) > 0 {
		return uniqueRoster(input.Courts), nil
	}
	if len(input.CourtIDs) > 0 {
		return s.loadRoster(ctx, input.CourtIDs)
	}
	return scheduling.CourtsFromMatches(input.Matches), nil
}

func (s *scheduleService) loadRoster(ctx context.Context, ids []uuid.UUID) ([]models.CourtRef, error) {
	courts, err := s.CourtRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load courts: %w", err)
	}
	if len(courts) != len(uniqueIDs(ids)) {
		return nil, ErrCourtNotFound
	}
	refs := make([]models.CourtRef, len(courts))
	for i, c := range courts {
		refs[i] = c.Ref()
	}
	return refs, nil
}

// compareUpstream logs where the scheduler's own summary disagrees with the local report.
func (s *scheduleService) compareUpstream(ctx context.Context, resp *algorithms.SchedulingResponse, report *scheduling.Report) {
	var drift []string
	for court, pct := range resp.CourtUtilization {
		local, ok := report.Utilization[court]
		if !ok || math.Abs(local-pct) > 0.01 {
			drift = append(drift, court)
		}
	}
	if len(drift) == 0 &&
		len(resp.SchedulingConflicts) == len(report.Conflicts) &&
		len(resp.PlayerRestViolations) == len(report.Violations) {
		return
	}
	s.Logger.InfoContext(ctx, "scheduler summary differs from local evaluation",
		slog.Any("utilization_drift_courts", drift),
		slog.Int("upstream_conflicts", len(resp.SchedulingConflicts)),
		slog.Int("local_conflicts", len(report.Conflicts)),
		slog.Int("upstream_violations", len(resp.PlayerRestViolations)),
		slog.Int("local_violations", len(report.Violations)),
	)
}

func (s *scheduleService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func mapSchedulerError(err error) error {
	var apiErr *algorithms.APIError
	switch {
	case errors.Is(err, algorithms.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrSchedulerUnauthorized, err)
	case errors.Is(err, algorithms.ErrUnavailable), errors.Is(err, algorithms.ErrNotConfigured):
		return fmt.Errorf("%w: %w", ErrSchedulerUnavailable, err)
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: %s", ErrSchedulerRejected, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", ErrSchedulerUnavailable, err)
}

// uniqueRoster drops repeated court ids, keeping the first entry for each.
func uniqueRoster(courts []models.CourtRef) []models.CourtRef {
	seen := make(map[string]struct{}, len(courts))
	out := make([]models.CourtRef, 0, len(courts))
	for _, c := range courts {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
