package scheduler

import (
	"sort"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// candidate is a horse eligible for a course slot
type candidate struct {
	horse *models.Horse
	rank  int
	load  float64
}

// courseKind captures what differs between the active and passive phases
type courseKind struct {
	activity models.ActivityType
	eligible func(h *models.Horse) bool
	load     func(w *workload) float64
	record   func(w *workload, hours float64)
}

var activeCourseKind = courseKind{
	activity: models.ActivityActiveCourse,
	eligible: func(h *models.Horse) bool { return h.MaxHours > 0 },
	load:     func(w *workload) float64 { return w.active },
	record:   func(w *workload, hours float64) { w.active += hours },
}

var passiveCourseKind = courseKind{
	activity: models.ActivityPassiveCourse,
	eligible: func(*models.Horse) bool { return true },
	load:     func(w *workload) float64 { return w.active + w.passive },
	record:   func(w *workload, hours float64) { w.passive += hours },
}

// AssignActiveCourses fills arena lessons with qualified horses that still
// have active hours allowed, least loaded first
func (r *Run) AssignActiveCourses(courses []models.CourseSlot) {
	r.assignCourses(courses, activeCourseKind)
}

// AssignPassiveCourses fills the remaining sessions, balancing on combined
// active and passive hours. It must run after turnout so that turnout blocks
// are respected.
func (r *Run) AssignPassiveCourses(courses []models.CourseSlot) {
	r.assignCourses(courses, passiveCourseKind)
}

func (r *Run) assignCourses(courses []models.CourseSlot, kind courseKind) {
	placed, skipped, underfilled := 0, 0, 0

	for _, course := range sortCourses(courses) {
		day := models.CanonicalDay(course.Day)
		if course.Required <= 0 || course.Skill == "" || course.Start == course.End || !r.active[day] {
			skipped++
			continue
		}

		// Build the candidate pool: eligible, free for the slot, qualified
		var candidates []candidate
		for _, h := range r.horses {
			if !kind.eligible(h) || !r.isAvailable(h.Name, day, course.Start, course.End) {
				continue
			}
			q := h.Qualification(course.Skill)
			if !q.Eligible() {
				continue
			}
			candidates = append(candidates, candidate{horse: h, rank: q.Rank(), load: kind.load(r.work[h.Name])})
		}

		// Stable: equal candidates keep roster order
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].rank != candidates[j].rank {
				return candidates[i].rank < candidates[j].rank
			}
			return candidates[i].load < candidates[j].load
		})

		take := course.Required
		if len(candidates) < take {
			take = len(candidates)
			underfilled++
			r.logger.Debug().
				Str("course", course.Name).
				Str("day", day).
				Str("start", course.Start.String()).
				Int("required", course.Required).
				Int("assigned", take).
				Msg("course under-filled")
		}

		hours := course.Hours()
		for _, c := range candidates[:take] {
			r.place(c.horse.Name, models.ScheduleEntry{
				Type:  kind.activity,
				Day:   day,
				Start: course.Start,
				End:   course.End,
				Label: course.Name,
				Key:   course.Key(),
			})
			kind.record(r.work[c.horse.Name], hours)
			placed++
		}
	}

	r.logger.Debug().
		Str("phase", string(kind.activity)).
		Int("placed", placed).
		Int("skipped", skipped).
		Int("underfilled", underfilled).
		Msg("course phase complete")
}

// sortCourses orders slots by day of week then start time, keeping input
// order for ties. Unknown days sort last.
func sortCourses(courses []models.CourseSlot) []models.CourseSlot {
	sorted := append([]models.CourseSlot(nil), courses...)
	dayPos := func(d string) int {
		if i := models.DayIndex(d); i >= 0 {
			return i
		}
		return len(models.Week)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := dayPos(sorted[i].Day), dayPos(sorted[j].Day)
		if di != dj {
			return di < dj
		}
		return sorted[i].Start < sorted[j].Start
	})
	return sorted
}
