package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/courtsched/models"
)

var ErrInvalidMinRest = errors.New("minimum rest must not be negative")

// Options tunes an evaluation. A nil Window is derived from the matches.
type Options struct {
	MinRest time.Duration
	Window  *Interval
}

// Report summarizes a proposed schedule for human review.
type Report struct {
	Utilization          map[string]float64 `json:"court_utilization"`
	AverageUtilization   float64            `json:"average_utilization"`
	Violations           []string           `json:"player_rest_violations"`
	Conflicts            []string           `json:"scheduling_conflicts"`
	UnknownCourts        []string           `json:"unknown_courts"`
	Window               Interval           `json:"reference_window"`
	TotalScheduleMinutes float64            `json:"total_schedule_time"`
	MatchCount           int                `json:"match_count"`
	CourtCount           int                `json:"court_count"`
}

// HasConflicts reports whether any court is double booked.
func (r *Report) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Evaluate computes per-court utilization, rest violations and court conflicts.
// Inputs are only read; calling it again with the same inputs yields the same report.
func Evaluate(matches []models.ScheduledMatch, courts []models.CourtRef, opts Options) (*Report, error) {
	if opts.MinRest < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMinRest, opts.MinRest)
	}
	for _, m := range matches {
		if err := MatchInterval(m).Validate(); err != nil {
			return nil, fmt.Errorf("match %s: %w", m.ID, err)
		}
	}

	window, err := referenceWindow(matches, opts.Window)
	if err != nil {
		return nil, err
	}

	byCourt, order, unknown := groupByCourt(matches, courts)

	report := &Report{
		Utilization:          make(map[string]float64, len(order)),
		Violations:           []string{},
		Conflicts:            []string{},
		UnknownCourts:        unknown,
		Window:               window,
		TotalScheduleMinutes: window.Duration().Minutes(),
		MatchCount:           len(matches),
		CourtCount:           len(order),
	}

	names := courtNames(courts, matches)
	for _, courtID := range order {
		courtMatches := sortedByStart(byCourt[courtID])
		report.Utilization[courtID] = utilization(courtMatches, window)
		report.Conflicts = append(report.Conflicts, courtConflicts(names[courtID], courtMatches)...)
	}
	report.Violations = restViolations(matches, opts.MinRest)
	report.AverageUtilization = AverageUtilization(report.Utilization)

	return report, nil
}

// AverageUtilization is the arithmetic mean of the per-court percentages, 0 when empty.
func AverageUtilization(utilization map[string]float64) float64 {
	if len(utilization) == 0 {
		return 0
	}
	var sum float64
	for _, pct := range utilization {
		sum += pct
	}
	return sum / float64(len(utilization))
}

// CourtsFromMatches derives a roster from the courts the matches are assigned to,
// in first-seen order.
func CourtsFromMatches(matches []models.ScheduledMatch) []models.CourtRef {
	seen := make(map[string]bool)
	courts := make([]models.CourtRef, 0)
	for _, m := range matches {
		if seen[m.Court.ID] {
			continue
		}
		seen[m.Court.ID] = true
		courts = append(courts, m.Court)
	}
	return courts
}

func referenceWindow(matches []models.ScheduledMatch, supplied *Interval) (Interval, error) {
	if supplied != nil {
		if err := supplied.Validate(); err != nil {
			return Interval{}, fmt.Errorf("reference window: %w", err)
		}
		return *supplied, nil
	}
	if len(matches) == 0 {
		return Interval{}, nil
	}
	window := MatchInterval(matches[0])
	for _, m := range matches[1:] {
		if m.ScheduledStart.Before(window.Start) {
			window.Start = m.ScheduledStart
		}
		if m.ScheduledEnd.After(window.End) {
			window.End = m.ScheduledEnd
		}
	}
	return window, nil
}

// groupByCourt buckets matches per court id. order lists every roster court first,
// then courts referenced only by matches; those are also returned as unknown.
func groupByCourt(matches []models.ScheduledMatch, courts []models.CourtRef) (map[string][]models.ScheduledMatch, []string, []string) {
	byCourt := make(map[string][]models.ScheduledMatch)
	order := make([]string, 0, len(courts))
	known := make(map[string]bool, len(courts))
	for _, c := range courts {
		if known[c.ID] {
			continue
		}
		known[c.ID] = true
		order = append(order, c.ID)
	}

	unknown := []string{}
	for _, m := range matches {
		id := m.Court.ID
		if !known[id] {
			known[id] = true
			order = append(order, id)
			unknown = append(unknown, id)
		}
		byCourt[id] = append(byCourt[id], m)
	}
	return byCourt, order, unknown
}

func courtNames(courts []models.CourtRef, matches []models.ScheduledMatch) map[string]string {
	names := make(map[string]string, len(courts))
	for _, m := range matches {
		if m.Court.Name != "" {
			names[m.Court.ID] = m.Court.Name
		}
	}
	for _, c := range courts {
		if c.Name != "" {
			names[c.ID] = c.Name
		}
	}
	for _, c := range courts {
		if names[c.ID] == "" {
			names[c.ID] = c.ID
		}
	}
	for _, m := range matches {
		if names[m.Court.ID] == "" {
			names[m.Court.ID] = m.Court.ID
		}
	}
	return names
}

// sortedByStart returns a copy ordered by start, then id.
func sortedByStart(matches []models.ScheduledMatch) []models.ScheduledMatch {
	out := make([]models.ScheduledMatch, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledStart.Equal(out[j].ScheduledStart) {
			return out[i].ScheduledStart.Before(out[j].ScheduledStart)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func utilization(matches []models.ScheduledMatch, window Interval) float64 {
	total := window.Duration()
	if total <= 0 {
		return 0
	}
	var busy time.Duration
	for _, m := range matches {
		if part, ok := MatchInterval(m).Clip(window); ok {
			busy += part.Duration()
		}
	}
	pct := float64(busy) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// courtConflicts expects matches sorted by start. Every overlapping pair is reported.
func courtConflicts(courtName string, matches []models.ScheduledMatch) []string {
	var out []string
	for i := range matches {
		a := MatchInterval(matches[i])
		for j := i + 1; j < len(matches); j++ {
			b := MatchInterval(matches[j])
			if !b.Start.Before(a.End) {
				break
			}
			if Overlaps(a, b) {
				out = append(out, fmt.Sprintf("Court %s: match %s (%s) overlaps match %s (%s)",
					courtName, matches[i].ID, a, matches[j].ID, b))
			}
		}
	}
	return out
}

func restViolations(matches []models.ScheduledMatch, minRest time.Duration) []string {
	byPlayer := make(map[string][]models.ScheduledMatch)
	names := make(map[string]string)
	var order []string
	for _, m := range matches {
		for _, p := range m.Players() {
			key := p.Key()
			if key == "" {
				continue
			}
			if _, ok := byPlayer[key]; !ok {
				order = append(order, key)
				names[key] = p.DisplayName()
			}
			byPlayer[key] = append(byPlayer[key], m)
		}
	}

	out := []string{}
	for _, key := range order {
		played := sortedByStart(byPlayer[key])
		for i := 0; i+1 < len(played); i++ {
			cur, next := played[i], played[i+1]
			gap := next.ScheduledStart.Sub(cur.ScheduledEnd)
			if gap < 0 || gap >= minRest {
				continue
			}
			out = append(out, fmt.Sprintf("Player %s: %s rest between match %s (%s) and match %s (%s), minimum %s",
				names[key], formatRest(gap), cur.ID, MatchInterval(cur), next.ID, MatchInterval(next), formatRest(minRest)))
		}
	}
	return out
}

func formatRest(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return d.String()
}
