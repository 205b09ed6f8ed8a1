package scheduling

import "github.com/Dosada05/courtsched/models"

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// UtilizationLevel buckets a utilization percentage for display.
func UtilizationLevel(pct float64) Level {
	switch {
	case pct >= 80:
		return LevelHigh
	case pct >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// CourtUsage is one row of the court utilization panel.
type CourtUsage struct {
	CourtID    string  `json:"court_id"`
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Level      Level   `json:"level"`
}

// CourtUsages lists utilization for every roster court, in roster order.
// Courts absent from the utilization map report 0.
func CourtUsages(report *Report, courts []models.CourtRef) []CourtUsage {
	out := make([]CourtUsage, 0, len(courts))
	for _, c := range courts {
		pct := report.Utilization[c.ID]
		out = append(out, CourtUsage{
			CourtID:    c.ID,
			Name:       c.Name,
			Percentage: pct,
			Level:      UtilizationLevel(pct),
		})
	}
	return out
}
