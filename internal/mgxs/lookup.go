package mgxs

import "math"

// BoltzmannEV is the Boltzmann constant in eV/K.
const BoltzmannEV = 8.617333262e-5

// KelvinFromSqrtKT converts sqrt(kT) in sqrt(eV) to a temperature in K.
func KelvinFromSqrtKT(sqrtKT float64) float64 {
	return sqrtKT * sqrtKT / BoltzmannEV
}

// SqrtKTFromKelvin converts a temperature in K to sqrt(kT) in sqrt(eV).
func SqrtKTFromKelvin(kelvin float64) float64 {
	return math.Sqrt(BoltzmannEV * kelvin)
}

// nearest returns the index of the entry of xs closest to x. Ties go to the
// lower index.
func nearest(xs []float64, x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range xs {
		if d := math.Abs(x - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Direction is a unit vector of travel.
type Direction struct {
	U, V, W float64
}

// AngleGrid is an equal-width polar x azimuthal binning of directions. Polar
// angles span [0, pi] measured from +z; azimuthal angles span [-pi, pi].
type AngleGrid struct {
	Polar     int
	Azimuthal int
}

// Bins returns the number of angle bins; isotropic grids have one.
func (g AngleGrid) Bins() int {
	if g.Polar < 1 || g.Azimuthal < 1 {
		return 1
	}
	return g.Polar * g.Azimuthal
}

func (g AngleGrid) Isotropic() bool {
	return g.Bins() == 1
}

// Index returns the bin whose centre is nearest to d. A direction on a bin
// edge belongs to the lower bin.
func (g AngleGrid) Index(d Direction) int {
	if g.Isotropic() {
		return 0
	}
	w := math.Max(-1, math.Min(1, d.W))
	p := binIndex(math.Acos(w), math.Pi, g.Polar)
	a := binIndex(math.Atan2(d.V, d.U)+math.Pi, 2*math.Pi, g.Azimuthal)
	return g.Azimuthal*p + a
}

func binIndex(x, span float64, n int) int {
	i := int(math.Ceil(x*float64(n)/span)) - 1
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// State is a resolved lookup position: indices into a table's temperatures
// and angle bins.
type State struct {
	Temperature int
	Angle       int
}

// Phase describes how much of a Cursor has been bound.
type Phase uint8

const (
	Unbound Phase = iota
	TemperatureBound
	FullyBound
)

func (p Phase) String() string {
	switch p {
	case TemperatureBound:
		return "temperature-bound"
	case FullyBound:
		return "fully-bound"
	}
	return "unbound"
}

// Cursor caches the state a table was last selected at. Selecting a new
// temperature always returns the cursor to TemperatureBound; the angle index
// is kept until the next angle selection.
type Cursor struct {
	state State
	phase Phase
}

func (c Cursor) State() State { return c.state }
func (c Cursor) Phase() Phase { return c.phase }

func (c *Cursor) bindTemperature(i int) {
	c.state.Temperature = i
	c.phase = TemperatureBound
}

func (c *Cursor) bindAngle(i int) {
	c.state.Angle = i
	if c.phase != Unbound {
		c.phase = FullyBound
	}
}

func (c *Cursor) ready() error {
	if c.phase == Unbound {
		return violation("query before a temperature was selected")
	}
	return nil
}

// legendre evaluates sum_l (2l+1)/2 * c[l] * P_l(mu).
func legendre(c []float64, mu float64) float64 {
	if len(c) == 0 {
		return 0
	}
	sum := 0.5 * c[0]
	pPrev, p := 1.0, mu
	for l := 1; l < len(c); l++ {
		sum += 0.5 * float64(2*l+1) * c[l] * p
		pPrev, p = p, (float64(2*l+1)*mu*p-float64(l)*pPrev)/float64(l+1)
	}
	return sum
}
