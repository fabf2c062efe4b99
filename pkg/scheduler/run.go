package scheduler

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// workload holds the running hour totals for one horse
type workload struct {
	active  float64
	passive float64
}

// Run is the mutable state of one generation: the per-horse schedule, the
// workload accumulators and the conflict log. Each phase reads and writes it
// in turn, so phases must run in order on a single goroutine.
type Run struct {
	horses    []*models.Horse
	byName    map[string]*models.Horse
	days      []string
	active    map[string]bool
	opts      models.PlanningOptions
	schedule  models.Schedule
	work      map[string]*workload
	conflicts []models.Conflict
	logger    zerolog.Logger
}

// NewRun prepares an empty week for the roster
func NewRun(horses []*models.Horse, opts models.PlanningOptions, logger zerolog.Logger) (*Run, error) {
	days, err := activeDays(opts)
	if err != nil {
		return nil, err
	}
	r := &Run{
		horses:   horses,
		byName:   make(map[string]*models.Horse, len(horses)),
		days:     days,
		active:   make(map[string]bool, len(days)),
		opts:     opts,
		schedule: make(models.Schedule, len(horses)),
		work:     make(map[string]*workload, len(horses)),
		logger:   logger,
	}
	for _, d := range days {
		r.active[d] = true
	}
	for _, h := range horses {
		r.byName[h.Name] = h
		r.work[h.Name] = &workload{}
		r.schedule[h.Name] = make(map[string][]models.ScheduleEntry, len(days))
		for _, d := range days {
			r.schedule[h.Name][d] = []models.ScheduleEntry{}
		}
	}
	return r, nil
}

// Days returns the planned days in week order
func (r *Run) Days() []string {
	return r.days
}

// Schedule returns the schedule built so far
func (r *Run) Schedule() models.Schedule {
	return r.schedule
}

// Conflicts returns the conflict log in the order it was written
func (r *Run) Conflicts() []models.Conflict {
	return r.conflicts
}

// ActiveHours returns the accumulated active-course hours for horse
func (r *Run) ActiveHours(horse string) float64 {
	if w, ok := r.work[horse]; ok {
		return w.active
	}
	return 0
}

// PassiveHours returns the accumulated passive-course hours for horse
func (r *Run) PassiveHours(horse string) float64 {
	if w, ok := r.work[horse]; ok {
		return w.passive
	}
	return 0
}

func (r *Run) isAvailable(horse, day string, start, end models.Clock) bool {
	return IsAvailable(r.schedule, horse, day, start, end)
}

// place appends an entry; entries are never edited once placed
func (r *Run) place(horse string, entry models.ScheduleEntry) {
	r.schedule[horse][entry.Day] = append(r.schedule[horse][entry.Day], entry)
}

// sortEntries orders every day by start time
func (r *Run) sortEntries() {
	for _, days := range r.schedule {
		for _, entries := range days {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Start < entries[j].Start
			})
		}
	}
}
