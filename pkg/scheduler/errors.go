package scheduler

import "errors"

var (
	// ErrInvalidHorse is returned for a horse row that cannot be used
	ErrInvalidHorse = errors.New("invalid horse")
	// ErrDuplicateHorse is returned when two horse rows share a name
	ErrDuplicateHorse = errors.New("duplicate horse")
	// ErrUnknownHorse is returned when a table references a horse missing from the roster
	ErrUnknownHorse = errors.New("unknown horse")
	// ErrUnknownDay is returned when an active day is not a day of the week
	ErrUnknownDay = errors.New("unknown day")
	// ErrGeneration wraps unexpected failures during the assignment phases
	ErrGeneration = errors.New("schedule generation failed")
)
