package scheduler

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// BuildRoster turns the parsed tables into the ordered horse roster and
// applies the solo, special paddock and must-pair flags from opts.
// Skill or friendship rows that name a horse outside the roster are fatal.
func BuildRoster(input models.ScheduleInput, opts models.PlanningOptions, logger zerolog.Logger) ([]*models.Horse, error) {
	horses := make([]*models.Horse, 0, len(input.Horses))
	byName := make(map[string]*models.Horse, len(input.Horses))

	for i, rec := range input.Horses {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d has no name", ErrInvalidHorse, i+1)
		}
		if rec.MaxHours < 0 {
			return nil, fmt.Errorf("%w: %s has negative max hours", ErrInvalidHorse, name)
		}
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateHorse, name)
		}
		h := &models.Horse{
			Name:           name,
			MaxHours:       rec.MaxHours,
			Qualifications: make(map[string]models.Qualification),
		}
		horses = append(horses, h)
		byName[name] = h
	}

	for _, s := range input.Skills {
		h, ok := byName[strings.TrimSpace(s.Horse)]
		if !ok {
			return nil, fmt.Errorf("%w: skill row for %q", ErrUnknownHorse, s.Horse)
		}
		h.Qualifications[strings.TrimSpace(s.Skill)] = s.Qualification
	}

	for _, f := range input.Friendships {
		friend := strings.TrimSpace(f.Friend)
		if friend == "" {
			continue
		}
		h, ok := byName[strings.TrimSpace(f.Horse)]
		if !ok {
			return nil, fmt.Errorf("%w: friendship row for %q", ErrUnknownHorse, f.Horse)
		}
		if _, known := byName[friend]; !known {
			logger.Warn().Str("horse", h.Name).Str("friend", friend).Msg("friend is not in the roster and will never be paired")
		}
		h.Friends = append(h.Friends, friend)
	}

	applyFlag(byName, opts.SoloHorses, "solo", logger, func(h *models.Horse) { h.Solo = true })
	applyFlag(byName, opts.SpecialPaddockHorses, "special_paddock", logger, func(h *models.Horse) { h.SpecialPaddock = true })
	applyFlag(byName, opts.MustPairHorses, "must_pair", logger, func(h *models.Horse) { h.MustPair = true })

	return horses, nil
}

func applyFlag(byName map[string]*models.Horse, names []string, flag string, logger zerolog.Logger, set func(*models.Horse)) {
	for _, n := range names {
		h, ok := byName[strings.TrimSpace(n)]
		if !ok {
			logger.Debug().Str("horse", n).Str("flag", flag).Msg("flagged horse not in roster")
			continue
		}
		set(h)
	}
}
