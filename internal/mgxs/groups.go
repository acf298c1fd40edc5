package mgxs

import (
	"math"
	"sort"
)

// GroupStructure is the energy discretization shared by all tables of a
// library. Libraries list boundaries from high to low energy, and group 0 is
// the highest-energy group; the structure also keeps an ascending copy for
// searching.
type GroupStructure struct {
	descending []float64
	ascending  []float64
	averages   []float64
}

// NewGroupStructure builds a structure from G+1 strictly decreasing boundaries.
func NewGroupStructure(boundaries []float64) (*GroupStructure, error) {
	if len(boundaries) < 2 {
		return nil, malformed("group structure needs at least 2 boundaries, got %d", len(boundaries))
	}
	for i, e := range boundaries {
		if math.IsNaN(e) || math.IsInf(e, 0) || e < 0 {
			return nil, malformed("group boundary %d is %g", i, e)
		}
		if i > 0 && e >= boundaries[i-1] {
			return nil, malformed("group structure not strictly decreasing at boundary %d (%g >= %g)", i, e, boundaries[i-1])
		}
	}

	n := len(boundaries)
	gs := &GroupStructure{
		descending: append([]float64(nil), boundaries...),
		ascending:  make([]float64, n),
		averages:   make([]float64, n-1),
	}
	for i, e := range boundaries {
		gs.ascending[n-1-i] = e
	}
	for i := 0; i < n-1; i++ {
		gs.averages[i] = 0.5 * (gs.ascending[i] + gs.ascending[i+1])
	}
	return gs, nil
}

// Groups returns the number of energy groups.
func (gs *GroupStructure) Groups() int {
	return len(gs.averages)
}

// Boundaries returns the G+1 boundaries in ascending order.
func (gs *GroupStructure) Boundaries() []float64 {
	return append([]float64(nil), gs.ascending...)
}

// LibraryBoundaries returns the boundaries as stored in the library (descending).
func (gs *GroupStructure) LibraryBoundaries() []float64 {
	return append([]float64(nil), gs.descending...)
}

// Averages returns the midpoint energy of each ascending bin.
func (gs *GroupStructure) Averages() []float64 {
	return append([]float64(nil), gs.averages...)
}

// Find returns the group containing energy, using library group order. The
// upper boundary of the top group is inclusive. NaN is in no group.
func (gs *GroupStructure) Find(energy float64) (int, bool) {
	n := len(gs.ascending)
	if math.IsNaN(energy) || energy < gs.ascending[0] || energy > gs.ascending[n-1] {
		return 0, false
	}
	bin := sort.SearchFloat64s(gs.ascending, energy)
	if bin == n || gs.ascending[bin] != energy {
		bin--
	}
	if bin == n-1 {
		bin--
	}
	return gs.Groups() - 1 - bin, true
}
