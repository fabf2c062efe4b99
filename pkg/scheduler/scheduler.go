package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// Scheduler handles the logic of assigning horses to courses and turnout
type Scheduler struct {
	Input   models.ScheduleInput
	Options models.PlanningOptions
	logger  zerolog.Logger
}

// NewScheduler creates a new scheduler instance. Options in the input
// override opts.
func NewScheduler(input models.ScheduleInput, opts models.PlanningOptions, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Input:   input,
		Options: MergeOptions(opts, input.Options),
		logger:  logger.With().Str("component", "scheduler").Logger(),
	}
}

// Validate checks the input without generating anything
func (s *Scheduler) Validate() error {
	if _, err := activeDays(s.Options); err != nil {
		return err
	}
	_, err := BuildRoster(s.Input, s.Options, s.logger)
	return err
}

// Generate runs the three phases in order (active courses, turnout,
// passive courses) and returns the finished week. Any failure returns an
// error and no result.
func (s *Scheduler) Generate() (resp *models.ScheduleResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = fmt.Errorf("%w: %v", ErrGeneration, rec)
		}
	}()

	horses, err := BuildRoster(s.Input, s.Options, s.logger)
	if err != nil {
		return nil, err
	}
	run, err := NewRun(horses, s.Options, s.logger)
	if err != nil {
		return nil, err
	}

	run.AssignActiveCourses(s.Input.ActiveCourses)
	run.AssignTurnout()
	run.AssignPassiveCourses(s.Input.PassiveCourses)
	run.sortEntries()

	resp = &models.ScheduleResponse{
		Days:      run.Days(),
		Schedule:  run.Schedule(),
		Conflicts: run.Conflicts(),
		Workload:  run.Report(),
		Stats:     run.Stats(),
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []models.Conflict{}
	}

	s.logger.Info().
		Int("horses", resp.Stats.Horses).
		Int("active_courses", resp.Stats.ActiveCourses).
		Int("passive_courses", resp.Stats.PassiveCourses).
		Int("turnouts", resp.Stats.Turnouts).
		Int("conflicts", len(resp.Conflicts)).
		Msg("schedule generated")
	return resp, nil
}
