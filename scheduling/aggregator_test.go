package scheduling

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/courtsched/fixtures"
	"github.com/Dosada05/courtsched/models"
)

var (
	courtA = models.CourtRef{ID: "A", Name: "A"}
	courtB = models.CourtRef{ID: "B", Name: "B"}
)

func player(id string) models.Player {
	return models.Player{ID: id, Name: id}
}

func match(id string, court models.CourtRef, iv Interval, p1, p2 string) models.ScheduledMatch {
	return models.ScheduledMatch{
		ID:             id,
		Court:          court,
		Player1:        player(p1),
		Player2:        player(p2),
		ScheduledStart: iv.Start,
		ScheduledEnd:   iv.End,
		Status:         models.MatchScheduled,
	}
}

func TestEvaluateBackToBackScenario(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 9, 30), "P1", "P2"),
		match("M2", courtA, span(9, 30, 10, 0), "P1", "P3"),
	}
	window := span(9, 0, 10, 0)

	report, err := Evaluate(matches, []models.CourtRef{courtA, courtB}, Options{MinRest: 15 * time.Minute, Window: &window})
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"A": 100.0, "B": 0.0}, report.Utilization)
	assert.Empty(t, report.Conflicts)
	require.Len(t, report.Violations, 1)
	assert.Equal(t,
		"Player P1: 0m rest between match M1 (09:00-09:30) and match M2 (09:30-10:00), minimum 15m",
		report.Violations[0])
	assert.Equal(t, 50.0, report.AverageUtilization)
	assert.Equal(t, 60.0, report.TotalScheduleMinutes)
	assert.Equal(t, 2, report.MatchCount)
	assert.Equal(t, 2, report.CourtCount)
}

func TestEvaluateOverlapScenario(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 9, 30), "P1", "P2"),
		match("M2", courtA, span(9, 15, 9, 45), "P1", "P3"),
	}
	window := span(9, 0, 10, 0)

	report, err := Evaluate(matches, []models.CourtRef{courtA, courtB}, Options{MinRest: 15 * time.Minute, Window: &window})
	require.NoError(t, err)

	require.Len(t, report.Conflicts, 1)
	assert.Equal(t, "Court A: match M1 (09:00-09:30) overlaps match M2 (09:15-09:45)", report.Conflicts[0])
	assert.Empty(t, report.Violations)
}

func TestEvaluateSingleMatchUtilization(t *testing.T) {
	window := span(8, 0, 16, 0)
	matches := []models.ScheduledMatch{match("M1", courtA, span(10, 0, 11, 0), "P1", "P2")}

	report, err := Evaluate(matches, []models.CourtRef{courtA}, Options{Window: &window})
	require.NoError(t, err)
	assert.Equal(t, 12.5, report.Utilization["A"])
}

func TestEvaluateIdleCourtReportsZero(t *testing.T) {
	matches := []models.ScheduledMatch{match("M1", courtA, span(10, 0, 11, 0), "P1", "P2")}

	report, err := Evaluate(matches, []models.CourtRef{courtA, courtB}, Options{})
	require.NoError(t, err)

	pct, ok := report.Utilization["B"]
	require.True(t, ok, "idle court must be present")
	assert.Equal(t, 0.0, pct)
}

func TestEvaluateRestBoundary(t *testing.T) {
	minRest := 15 * time.Minute
	tests := []struct {
		name       string
		secondFrom Interval
		want       int
	}{
		{"gap equal to minimum", span(9, 45, 10, 15), 0},
		{"gap one minute short", span(9, 44, 10, 14), 1},
		{"gap well above minimum", span(11, 0, 11, 30), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := []models.ScheduledMatch{
				match("M1", courtA, span(9, 0, 9, 30), "P1", "P2"),
				match("M2", courtB, tt.secondFrom, "P1", "P3"),
			}
			report, err := Evaluate(matches, []models.CourtRef{courtA, courtB}, Options{MinRest: minRest})
			require.NoError(t, err)
			assert.Len(t, report.Violations, tt.want)
		})
	}
}

func TestEvaluatePlayerOverlapAcrossCourtsIsNotRestViolation(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 9, 30), "P1", "P2"),
		match("M2", courtB, span(9, 15, 9, 45), "P1", "P3"),
	}
	report, err := Evaluate(matches, []models.CourtRef{courtA, courtB}, Options{MinRest: 10 * time.Minute})
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Conflicts)
}

func TestEvaluateReportsEveryOverlappingPair(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 10, 0), "P1", "P2"),
		match("M3", courtA, span(9, 30, 9, 40), "P5", "P6"),
		match("M2", courtA, span(9, 10, 9, 20), "P3", "P4"),
	}
	report, err := Evaluate(matches, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Court A: match M1 (09:00-10:00) overlaps match M2 (09:10-09:20)",
		"Court A: match M1 (09:00-10:00) overlaps match M3 (09:30-09:40)",
	}, report.Conflicts)
	assert.Equal(t, 100.0, report.Utilization["A"], "double booking is capped")
}

func TestEvaluateUnknownCourt(t *testing.T) {
	stray := models.CourtRef{ID: "X", Name: "Annex"}
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 10, 0), "P1", "P2"),
		match("M2", stray, span(9, 0, 9, 30), "P3", "P4"),
	}
	report, err := Evaluate(matches, []models.CourtRef{courtA}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"X"}, report.UnknownCourts)
	assert.Equal(t, 50.0, report.Utilization["X"])
	assert.Equal(t, 100.0, report.Utilization["A"])
}

func TestEvaluateEmptyInputs(t *testing.T) {
	report, err := Evaluate(nil, nil, Options{MinRest: time.Minute})
	require.NoError(t, err)

	assert.Empty(t, report.Utilization)
	assert.NotNil(t, report.Violations)
	assert.NotNil(t, report.Conflicts)
	assert.Equal(t, 0.0, report.AverageUtilization)
	assert.Equal(t, 0.0, report.TotalScheduleMinutes)
}

func TestEvaluateRosterWithoutMatches(t *testing.T) {
	report, err := Evaluate(nil, []models.CourtRef{courtA, courtB}, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"A": 0, "B": 0}, report.Utilization)
}

func TestEvaluateDerivesWindowFromMatches(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtA, span(9, 0, 9, 30), "P1", "P2"),
		match("M2", courtB, span(10, 30, 11, 0), "P3", "P4"),
	}
	report, err := Evaluate(matches, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, span(9, 0, 11, 0), report.Window)
	assert.Equal(t, 25.0, report.Utilization["A"])
	assert.Equal(t, 25.0, report.Utilization["B"])
}

func TestEvaluateInputErrors(t *testing.T) {
	good := []models.ScheduledMatch{match("M1", courtA, span(9, 0, 9, 30), "P1", "P2")}

	_, err := Evaluate(good, nil, Options{MinRest: -time.Minute})
	assert.ErrorIs(t, err, ErrInvalidMinRest)

	reversed := span(10, 0, 9, 0)
	_, err = Evaluate(good, nil, Options{Window: &reversed})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	bad := []models.ScheduledMatch{match("M9", courtA, span(9, 30, 9, 30), "P1", "P2")}
	_, err = Evaluate(bad, nil, Options{})
	assert.ErrorIs(t, err, ErrInvalidInterval)
	assert.Contains(t, err.Error(), "M9")
}

func TestEvaluateDoesNotMutateInputAndIsRepeatable(t *testing.T) {
	p := fixtures.New(99)
	courts := []models.CourtRef{courtA, courtB}
	matches := p.RoundRobinSchedule(courts, p.Players(5), at(9, 0), 25*time.Minute, 5*time.Minute)
	// reverse so the evaluator has to sort
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	before := append([]models.ScheduledMatch(nil), matches...)

	first, err := Evaluate(matches, courts, Options{MinRest: 10 * time.Minute})
	require.NoError(t, err)
	second, err := Evaluate(matches, courts, Options{MinRest: 10 * time.Minute})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-evaluation differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, before, matches)
	assert.Empty(t, first.Conflicts)
}

func TestEvaluatePenaltyDoesNotAffectReport(t *testing.T) {
	matches := []models.ScheduledMatch{match("M1", courtA, span(9, 0, 9, 30), "P1", "P2")}
	plain, err := Evaluate(matches, nil, Options{MinRest: time.Hour})
	require.NoError(t, err)

	matches[0].Penalty = 5
	penalized, err := Evaluate(matches, nil, Options{MinRest: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, plain, penalized)
}

func TestAverageUtilization(t *testing.T) {
	assert.Equal(t, 0.0, AverageUtilization(nil))
	assert.Equal(t, 0.0, AverageUtilization(map[string]float64{}))
	assert.InDelta(t, 40.0, AverageUtilization(map[string]float64{"A": 100, "B": 20, "C": 0}), 1e-9)
}

func TestCourtsFromMatches(t *testing.T) {
	matches := []models.ScheduledMatch{
		match("M1", courtB, span(9, 0, 9, 30), "P1", "P2"),
		match("M2", courtA, span(9, 0, 9, 30), "P3", "P4"),
		match("M3", courtB, span(10, 0, 10, 30), "P1", "P3"),
	}
	assert.Equal(t, []models.CourtRef{courtB, courtA}, CourtsFromMatches(matches))
}

func TestUtilizationLevel(t *testing.T) {
	assert.Equal(t, LevelHigh, UtilizationLevel(80))
	assert.Equal(t, LevelMedium, UtilizationLevel(79.9))
	assert.Equal(t, LevelMedium, UtilizationLevel(50))
	assert.Equal(t, LevelLow, UtilizationLevel(49.9))

	report := &Report{Utilization: map[string]float64{"A": 90}}
	usages := CourtUsages(report, []models.CourtRef{courtA, courtB})
	require.Len(t, usages, 2)
	assert.Equal(t, LevelHigh, usages[0].Level)
	assert.Equal(t, 0.0, usages[1].Percentage)
	assert.Equal(t, LevelLow, usages[1].Level)
}
