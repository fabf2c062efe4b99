package scheduler

import (
	"fmt"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// DefaultOptions returns the stable's usual planning configuration
func DefaultOptions() models.PlanningOptions {
	return models.PlanningOptions{
		ActiveDays:           append([]string{}, models.DefaultActiveDays...),
		SoloHorses:           []string{"Mykola", "Manhattan", "Bully"},
		SpecialPaddockHorses: []string{"Mykola", "Manhattan"},
		MustPairHorses:       []string{"Pepper", "Cooper"},
		StandardPaddocks:     9,
		SpecialPaddocks:      2,
	}
}

// MergeOptions overlays override on base. A nil list keeps the base list,
// an empty list clears it; zero paddock counts keep the base count.
func MergeOptions(base models.PlanningOptions, override *models.PlanningOptions) models.PlanningOptions {
	if override == nil {
		return base
	}
	out := base
	if override.ActiveDays != nil {
		out.ActiveDays = override.ActiveDays
	}
	if override.SoloHorses != nil {
		out.SoloHorses = override.SoloHorses
	}
	if override.SpecialPaddockHorses != nil {
		out.SpecialPaddockHorses = override.SpecialPaddockHorses
	}
	if override.MustPairHorses != nil {
		out.MustPairHorses = override.MustPairHorses
	}
	if override.StandardPaddocks > 0 {
		out.StandardPaddocks = override.StandardPaddocks
	}
	if override.SpecialPaddocks > 0 {
		out.SpecialPaddocks = override.SpecialPaddocks
	}
	return out
}

// activeDays returns the configured days in week order, deduplicated
func activeDays(opts models.PlanningOptions) ([]string, error) {
	selected := make(map[int]bool, len(opts.ActiveDays))
	for _, d := range opts.ActiveDays {
		i := models.DayIndex(d)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDay, d)
		}
		selected[i] = true
	}
	days := make([]string, 0, len(selected))
	for i, d := range models.Week {
		if selected[i] {
			days = append(days, d)
		}
	}
	return days, nil
}
