package scheduler

import (
	"fmt"
	"strings"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

const (
	turnoutMinutes = 60
	turnoutStep    = 30
	courseBuffer   = 60
)

type window struct {
	start models.Clock
	end   models.Clock
}

var (
	morningWindow   = window{start: models.NewClock(7, 0), end: models.NewClock(12, 0)}
	afternoonWindow = window{start: models.NewClock(13, 0), end: models.NewClock(15, 30)}
	noon            = models.NewClock(12, 0)
)

// AssignTurnout places one hour of free turnout per horse on every active
// day. Solo horses go first and take a whole paddock; the others try to go
// out with a friend and otherwise share a paddock. Horses left over are
// logged as conflicts.
func (r *Run) AssignTurnout() {
	for _, day := range r.days {
		r.assignTurnoutDay(day)
	}
}

func (r *Run) assignTurnoutDay(day string) {
	pool := NewPaddockPool(r.opts.StandardPaddocks, r.opts.SpecialPaddocks)
	pending := make(map[string]bool, len(r.horses))
	for _, h := range r.horses {
		pending[h.Name] = true
	}

	order := r.turnoutOrder()

	for _, h := range order {
		if !pending[h.Name] {
			continue
		}
		r.placeTurnout(day, h, pool, pending)
	}

	// A horse that failed its own search may still have been taken out by a
	// friend later, so conflicts are only known once the day is done.
	for _, h := range r.horses {
		if !pending[h.Name] {
			continue
		}
		msg := fmt.Sprintf("Turnout could not be placed for %s on %s.", h.Name, day)
		if h.Solo {
			msg = fmt.Sprintf("Turnout could not be placed for %s (solo) on %s.", h.Name, day)
		}
		r.conflicts = append(r.conflicts, models.Conflict{Horse: h.Name, Day: day, Solo: h.Solo, Message: msg})
		r.logger.Info().Str("horse", h.Name).Str("day", day).Msg("turnout conflict")
	}
}

// turnoutOrder lists solo horses in the configured solo order, then any
// other solo horse, then everyone else in roster order
func (r *Run) turnoutOrder() []*models.Horse {
	order := make([]*models.Horse, 0, len(r.horses))
	seen := make(map[string]bool, len(r.horses))
	for _, name := range r.opts.SoloHorses {
		h, ok := r.byName[strings.TrimSpace(name)]
		if !ok || !h.Solo || seen[h.Name] {
			continue
		}
		seen[h.Name] = true
		order = append(order, h)
	}
	for _, h := range r.horses {
		if h.Solo && !seen[h.Name] {
			seen[h.Name] = true
			order = append(order, h)
		}
	}
	for _, h := range r.horses {
		if !h.Solo {
			order = append(order, h)
		}
	}
	return order
}

// placeTurnout scans the horse's windows in half-hour steps and takes the
// first slot that works
func (r *Run) placeTurnout(day string, h *models.Horse, pool *PaddockPool, pending map[string]bool) bool {
	forbidden, afternoonCourse := r.forbiddenIntervals(h.Name, day)

	windows := []window{afternoonWindow, morningWindow}
	if afternoonCourse {
		windows = []window{morningWindow, afternoonWindow}
	}

	for _, w := range windows {
		for start := w.start; start.Add(turnoutMinutes) <= w.end; start = start.Add(turnoutStep) {
			end := start.Add(turnoutMinutes)
			if intersectsAny(forbidden, start, end) || !r.isAvailable(h.Name, day, start, end) {
				continue
			}

			if h.Solo {
				p := pool.Find(h.SpecialPaddock, start, end, PaddockCapacity)
				if p == nil {
					continue
				}
				r.placeTurnoutEntry(h.Name, day, start, end, p, "")
				pool.Occupy(p, start, end, PaddockCapacity)
				delete(pending, h.Name)
				return true
			}

			friend := r.findFriend(h, day, start, end, pending)
			if friend == nil {
				if h.MustPair {
					continue
				}
				p := pool.Find(false, start, end, 1)
				if p == nil {
					continue
				}
				r.placeTurnoutEntry(h.Name, day, start, end, p, "")
				pool.Occupy(p, start, end, 1)
				delete(pending, h.Name)
				return true
			}

			p := pool.Find(false, start, end, PaddockCapacity)
			if p == nil {
				continue
			}
			r.placeTurnoutEntry(h.Name, day, start, end, p, friend.Name)
			r.placeTurnoutEntry(friend.Name, day, start, end, p, h.Name)
			pool.Occupy(p, start, end, PaddockCapacity)
			delete(pending, h.Name)
			delete(pending, friend.Name)
			return true
		}
	}
	return false
}

// forbiddenIntervals returns the buffered blocks around the horse's active
// courses and whether any of them starts at or after noon
func (r *Run) forbiddenIntervals(horse, day string) ([]window, bool) {
	var forbidden []window
	afternoon := false
	for _, e := range r.schedule[horse][day] {
		if e.Type != models.ActivityActiveCourse {
			continue
		}
		if e.Start >= noon {
			afternoon = true
		}
		start := e.Start.Add(-courseBuffer)
		if start < 0 {
			start = 0
		}
		forbidden = append(forbidden, window{start: start, end: e.End.Add(courseBuffer)})
	}
	return forbidden, afternoon
}

// findFriend returns the first friend, in declared order, who still needs
// turnout, is not solo and is free for the slot
func (r *Run) findFriend(h *models.Horse, day string, start, end models.Clock, pending map[string]bool) *models.Horse {
	for _, name := range h.Friends {
		if name == h.Name || !pending[name] {
			continue
		}
		friend, ok := r.byName[name]
		if !ok || friend.Solo {
			continue
		}
		if r.isAvailable(name, day, start, end) {
			return friend
		}
	}
	return nil
}

func (r *Run) placeTurnoutEntry(horse, day string, start, end models.Clock, p *Paddock, partner string) {
	label := fmt.Sprintf("Alone, %s", p.Name)
	if partner != "" {
		label = fmt.Sprintf("With %s, %s", partner, p.Name)
	}
	r.place(horse, models.ScheduleEntry{
		Type:    models.ActivityTurnout,
		Day:     day,
		Start:   start,
		End:     end,
		Label:   label,
		Paddock: p.Name,
		Partner: partner,
	})
}

func intersectsAny(blocks []window, start, end models.Clock) bool {
	for _, b := range blocks {
		if models.Overlap(b.start, b.end, start, end) {
			return true
		}
	}
	return false
}
