package scheduler

import (
	"fmt"

	"github.com/arnavshah/stable-scheduler-go/pkg/models"
)

// PaddockCapacity is the number of occupancy units per paddock. A paired
// turnout or a solo turnout takes both units; a fallback turnout takes one.
const PaddockCapacity = 2

type occupancy struct {
	start models.Clock
	end   models.Clock
}

// Paddock is a capacity-limited turnout field
type Paddock struct {
	Name    string
	Special bool
	units   []occupancy
}

// Occupied counts the units held during any part of [start, end)
func (p *Paddock) Occupied(start, end models.Clock) int {
	n := 0
	for _, u := range p.units {
		if models.Overlap(u.start, u.end, start, end) {
			n++
		}
	}
	return n
}

// PaddockPool is the set of paddocks for one day
type PaddockPool struct {
	standard []*Paddock
	special  []*Paddock
}

// NewPaddockPool creates an empty pool for a day
func NewPaddockPool(standard, special int) *PaddockPool {
	pool := &PaddockPool{}
	for i := 1; i <= standard; i++ {
		pool.standard = append(pool.standard, &Paddock{Name: fmt.Sprintf("Paddock %d", i)})
	}
	for i := 1; i <= special; i++ {
		pool.special = append(pool.special, &Paddock{Name: fmt.Sprintf("Paddock S%d", i), Special: true})
	}
	return pool
}

// Find returns the first paddock in the chosen pool with room for units
// more occupancy units over [start, end), or nil
func (pp *PaddockPool) Find(special bool, start, end models.Clock, units int) *Paddock {
	pool := pp.standard
	if special {
		pool = pp.special
	}
	for _, p := range pool {
		if p.Occupied(start, end)+units <= PaddockCapacity {
			return p
		}
	}
	return nil
}

// Occupy records units of occupancy on p over [start, end)
func (pp *PaddockPool) Occupy(p *Paddock, start, end models.Clock, units int) {
	for i := 0; i < units; i++ {
		p.units = append(p.units, occupancy{start: start, end: end})
	}
}

// Paddocks returns every paddock, standard first
func (pp *PaddockPool) Paddocks() []*Paddock {
	all := make([]*Paddock, 0, len(pp.standard)+len(pp.special))
	all = append(all, pp.standard...)
	return append(all, pp.special...)
}
