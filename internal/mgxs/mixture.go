package mgxs

import "sort"

type constituent struct {
	handle  Handle
	nuc     *Nuclide
	density float64
	// temperature index of the nuclide for each mixture temperature
	temps []int
}

// Mixture is the macroscopic view of a material: the atom-density-weighted
// sum of its constituents' microscopic data. It references nuclides owned by
// an Arena and never copies their tables.
type Mixture struct {
	name         string
	kelvins      []float64
	constituents []constituent
	shape        shape
	angles       AngleGrid
	fissionable  bool

	cursor Cursor
}

// Placeholder returns the mixture used for a material without tracked
// temperatures. Every query on it returns zero. NewMixture still marks a
// placeholder fissionable when one of its nuclides is.
func Placeholder(name string) *Mixture {
	return &Mixture{name: name}
}

// NewMixture builds the mixture of material name at the given temperatures
// (K) from the nuclides at handles with matching atom densities (atom/b-cm).
// No temperatures or no nuclides yield a Placeholder.
func NewMixture(name string, temperatures []float64, arena *Arena, handles []Handle, densities []float64) (*Mixture, error) {
	if len(handles) != len(densities) {
		return nil, violation("material %s: %d nuclides but %d densities", name, len(handles), len(densities))
	}
	if len(temperatures) == 0 || len(handles) == 0 {
		m := Placeholder(name)
		for _, h := range handles {
			n, err := arena.Get(h)
			if err != nil {
				return nil, err
			}
			m.fissionable = m.fissionable || n.Fissionable()
		}
		return m, nil
	}

	kelvins := append([]float64(nil), temperatures...)
	sort.Float64s(kelvins)
	kelvins = dedupe(kelvins)

	m := &Mixture{
		name:         name,
		kelvins:      kelvins,
		constituents: make([]constituent, len(handles)),
	}
	for i, h := range handles {
		n, err := arena.Get(h)
		if err != nil {
			return nil, err
		}
		if densities[i] < 0 {
			return nil, violation("material %s: negative density %g for %s", name, densities[i], n.Name())
		}
		if i == 0 {
			m.shape.groups = n.Groups()
		} else if n.Groups() != m.shape.groups {
			return nil, malformed("material %s: %s has %d groups, want %d", name, n.Name(), n.Groups(), m.shape.groups)
		}
		if !n.angles.Isotropic() {
			if !m.angles.Isotropic() && m.angles != n.angles {
				return nil, malformed("material %s: %s angle grid %dx%d differs from %dx%d", name, n.Name(),
					n.angles.Polar, n.angles.Azimuthal, m.angles.Polar, m.angles.Azimuthal)
			}
			m.angles = n.angles
		}
		m.shape.delayed = max(m.shape.delayed, n.DelayedGroups())
		m.shape.order = max(m.shape.order, n.Order())
		m.fissionable = m.fissionable || n.Fissionable()

		c := constituent{handle: h, nuc: n, density: densities[i], temps: make([]int, len(kelvins))}
		for t, k := range kelvins {
			c.temps[t] = n.TemperatureIndex(k)
		}
		m.constituents[i] = c
	}
	return m, nil
}

func dedupe(sorted []float64) []float64 {
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func (m *Mixture) Name() string      { return m.name }
func (m *Mixture) Fissionable() bool { return m.fissionable }
func (m *Mixture) Empty() bool       { return len(m.constituents) == 0 }
func (m *Mixture) Groups() int       { return m.shape.groups }
func (m *Mixture) Angles() AngleGrid { return m.angles }
func (m *Mixture) Cursor() Cursor    { return m.cursor }
func (m *Mixture) Temperatures() []float64 {
	return append([]float64(nil), m.kelvins...)
}

// Handles lists the constituents' arena handles in construction order.
func (m *Mixture) Handles() []Handle {
	out := make([]Handle, len(m.constituents))
	for i, c := range m.constituents {
		out[i] = c.handle
	}
	return out
}

// Densities lists the constituents' atom densities in construction order.
func (m *Mixture) Densities() []float64 {
	out := make([]float64, len(m.constituents))
	for i, c := range m.constituents {
		out[i] = c.density
	}
	return out
}

// TemperatureIndex returns the mixture temperature nearest to kelvin.
func (m *Mixture) TemperatureIndex(kelvin float64) int {
	return nearest(m.kelvins, kelvin)
}

func (m *Mixture) AngleIndex(d Direction) int {
	return m.angles.Index(d)
}

// Evaluate returns the macroscopic total, absorption and nu-fission cross
// sections in group g for a particle at sqrt(kT) travelling along d. The
// mixture temperature nearest to the particle's selects the data, exactly as
// SelectTemperature does for Query. Evaluate does not allocate and does not touch any cursor; g
// must be a valid group.
func (m *Mixture) Evaluate(g int, sqrtKT float64, d Direction) (total, absorption, nuFission float64) {
	if len(m.constituents) == 0 {
		return 0, 0, 0
	}
	t := nearest(m.kelvins, KelvinFromSqrtKT(sqrtKT))
	a := m.angles.Index(d)
	for i := range m.constituents {
		c := &m.constituents[i]
		n := c.nuc
		ai := a
		if n.angles.Isotropic() {
			ai = 0
		}
		ad := &n.blocks[c.temps[t]].angles[ai]
		total += c.density * ad.total[g]
		absorption += c.density * ad.absorption[g]
		nuFission += c.density * ad.nuFission[g]
	}
	return total, absorption, nuFission
}

// XS returns the requested macroscopic cross section at st, where
// st.Temperature indexes the mixture's own temperatures.
func (m *Mixture) XS(st State, r Request) (float64, error) {
	if len(m.constituents) == 0 {
		return 0, nil
	}
	if st.Temperature < 0 || st.Temperature >= len(m.kelvins) {
		return 0, violation("%s: temperature index %d outside [0, %d)", m.name, st.Temperature, len(m.kelvins))
	}
	if st.Angle < 0 || st.Angle >= m.angles.Bins() {
		return 0, violation("%s: angle index %d outside [0, %d)", m.name, st.Angle, m.angles.Bins())
	}
	if err := m.shape.check(r); err != nil {
		return 0, err
	}

	if r.Kind == Chi {
		return m.chi(st, r), nil
	}
	sum := 0.0
	for i := range m.constituents {
		c := &m.constituents[i]
		sum += c.density * c.nuc.value(c.state(st), r)
	}
	return sum, nil
}

func (c *constituent) state(st State) State {
	ns := State{Temperature: c.temps[st.Temperature], Angle: st.Angle}
	if c.nuc.angles.Isotropic() {
		ns.Angle = 0
	}
	return ns
}

// chi weights each constituent's spectrum by its nu-fission production in
// the incoming group.
func (m *Mixture) chi(st State, r Request) float64 {
	var num, den float64
	prod := NewRequest(NuFission, r.In)
	for i := range m.constituents {
		c := &m.constituents[i]
		ns := c.state(st)
		w := c.density * c.nuc.value(ns, prod)
		if w == 0 {
			continue
		}
		num += w * c.nuc.value(ns, r)
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// SelectTemperature binds the cursor to the mixture temperature nearest to kelvin.
func (m *Mixture) SelectTemperature(kelvin float64) {
	m.cursor.bindTemperature(m.TemperatureIndex(kelvin))
}

func (m *Mixture) SelectAngle(d Direction) {
	m.cursor.bindAngle(m.AngleIndex(d))
}

// Query answers r at the cursor's state. Placeholders always answer zero.
func (m *Mixture) Query(r Request) (float64, error) {
	if len(m.constituents) == 0 {
		return 0, nil
	}
	if err := m.cursor.ready(); err != nil {
		return 0, err
	}
	return m.XS(m.cursor.state, r)
}
