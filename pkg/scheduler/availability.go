package scheduler

import "github.com/arnavshah/stable-scheduler-go/pkg/models"

// IsAvailable reports whether the horse has nothing scheduled on day that
// overlaps [start, end). Touching boundaries are not conflicts.
func IsAvailable(schedule models.Schedule, horse, day string, start, end models.Clock) bool {
	for _, existing := range schedule[horse][day] {
		if existing.Overlaps(start, end) {
			return false
		}
	}
	return true
}
