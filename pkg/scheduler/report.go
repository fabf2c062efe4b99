package scheduler

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// Report builds the weekly workload record of every horse in roster order.
// A horse with a positive max that did more active hours is flagged with
// the excess rounded to two decimals.
func (r *Run) Report() []models.WorkloadRecord {
	records := make([]models.WorkloadRecord, 0, len(r.horses))
	for _, h := range r.horses {
		w := r.work[h.Name]
		rec := models.WorkloadRecord{
			Horse:        h.Name,
			ActiveHours:  round2(w.active),
			PassiveHours: round2(w.passive),
			MaxHours:     h.MaxHours,
		}
		if h.MaxHours > 0 && w.active > h.MaxHours {
			rec.Overtime = true
			rec.OvertimeHours = round2(w.active - h.MaxHours)
		}
		records = append(records, rec)
	}
	return records
}

// Stats counts the week's entries and scores how evenly active hours are
// spread across the horses allowed to work
func (r *Run) Stats() models.WeeklyStats {
	stats := models.WeeklyStats{Horses: len(r.horses)}
	for _, h := range r.horses {
		for _, day := range r.days {
			for _, e := range r.schedule[h.Name][day] {
				switch e.Type {
				case models.ActivityActiveCourse:
					stats.ActiveCourses++
				case models.ActivityPassiveCourse:
					stats.PassiveCourses++
				case models.ActivityTurnout:
					stats.Turnouts++
				}
			}
		}
	}
	stats.FairnessScore = round2(r.FairnessScore())
	return stats
}

// FairnessScore returns a percentage (0-100) representing how evenly
// active hours are distributed. 100% is perfectly fair (standard deviation 0).
func (r *Run) FairnessScore() float64 {
	var hours []float64
	for _, h := range r.horses {
		if h.MaxHours > 0 {
			hours = append(hours, r.work[h.Name].active)
		}
	}
	if len(hours) == 0 {
		return 100.0
	}

	mean, stdDev := stat.PopMeanStdDev(hours, nil)
	if mean == 0 {
		return 100.0
	}

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
