package mgxs

import (
	"math"
	"sort"
)

// TemperatureData is the raw content of one tabulated temperature. Every
// field is indexed by angle bin first; isotropic tables have a single bin.
type TemperatureData struct {
	Kelvin float64

	Total      [][]float64 // [angle][group]
	Absorption [][]float64 // [angle][group]

	// Fission data; ignored for non-fissionable nuclides.
	Fission          [][]float64   // [angle][group], optional
	NuFission        [][]float64   // [angle][group], prompt + delayed
	DelayedNuFission [][][]float64 // [angle][delayed][group], optional
	Chi              [][]float64   // [angle][group], optional

	Scatter      [][][][]float64 // [angle][in][out][legendre moment]
	Multiplicity [][][]float64   // [angle][in][out], optional (defaults to 1)
}

// NuclideData describes a nuclide to be built by NewNuclide.
type NuclideData struct {
	Name          string
	AWR           float64
	Fissionable   bool
	Groups        int
	DelayedGroups int
	Order         int
	Angles        AngleGrid
	Temperatures  []TemperatureData
}

type angleData struct {
	total           []float64
	absorption      []float64
	fission         []float64
	nuFission       []float64
	promptNuFission []float64
	delayed         [][]float64
	chi             []float64

	scatter      [][][]float64
	multiplicity [][]float64
	outScatter   []float64
	nuOutScatter []float64
}

type block struct {
	angles []angleData
}

// Nuclide holds the microscopic multigroup data of one nuclide (or one
// pre-mixed library material) across its tabulated temperatures.
type Nuclide struct {
	name        string
	awr         float64
	fissionable bool
	shape       shape
	angles      AngleGrid
	kelvins     []float64
	blocks      []block

	cursor Cursor
}

// NewNuclide validates raw data and builds a Nuclide. Temperatures are sorted
// ascending.
func NewNuclide(d NuclideData) (*Nuclide, error) {
	if d.Groups < 1 {
		return nil, malformed("%s: %d energy groups", d.Name, d.Groups)
	}
	if d.Order < 0 || d.DelayedGroups < 0 {
		return nil, malformed("%s: negative scattering order or delayed group count", d.Name)
	}
	if len(d.Temperatures) == 0 {
		return nil, malformed("%s: no tabulated temperatures", d.Name)
	}
	awr := d.AWR
	if awr == 0 {
		awr = 1
	}
	if !d.Fissionable {
		d.DelayedGroups = 0
	}

	temps := append([]TemperatureData(nil), d.Temperatures...)
	sort.SliceStable(temps, func(i, j int) bool { return temps[i].Kelvin < temps[j].Kelvin })

	n := &Nuclide{
		name:        d.Name,
		awr:         awr,
		fissionable: d.Fissionable,
		shape:       shape{groups: d.Groups, delayed: d.DelayedGroups, order: d.Order},
		angles:      d.Angles,
		kelvins:     make([]float64, len(temps)),
		blocks:      make([]block, len(temps)),
	}
	for t, td := range temps {
		if t > 0 && td.Kelvin == temps[t-1].Kelvin {
			return nil, malformed("%s: temperature %gK tabulated twice", d.Name, td.Kelvin)
		}
		b, err := n.buildBlock(td)
		if err != nil {
			return nil, err
		}
		n.kelvins[t] = td.Kelvin
		n.blocks[t] = b
	}
	return n, nil
}

func (n *Nuclide) buildBlock(td TemperatureData) (block, error) {
	bins := n.angles.Bins()
	g := n.shape.groups
	b := block{angles: make([]angleData, bins)}

	vector := func(name string, src [][]float64, required bool) ([][]float64, error) {
		if src == nil && !required {
			out := make([][]float64, bins)
			for a := range out {
				out[a] = make([]float64, g)
			}
			return out, nil
		}
		if len(src) != bins {
			return nil, malformed("%s %gK: %s has %d angle bins, want %d", n.name, td.Kelvin, name, len(src), bins)
		}
		for a := range src {
			if len(src[a]) != g {
				return nil, malformed("%s %gK: %s has %d groups, want %d", n.name, td.Kelvin, name, len(src[a]), g)
			}
		}
		return src, nil
	}

	total, err := vector("total", td.Total, true)
	if err != nil {
		return b, err
	}
	absorption, err := vector("absorption", td.Absorption, true)
	if err != nil {
		return b, err
	}
	var fission, nuFission, chi [][]float64
	if n.fissionable {
		if fission, err = vector("fission", td.Fission, false); err != nil {
			return b, err
		}
		if nuFission, err = vector("nu-fission", td.NuFission, true); err != nil {
			return b, err
		}
		if chi, err = vector("chi", td.Chi, false); err != nil {
			return b, err
		}
	} else {
		fission, _ = vector("fission", nil, false)
		nuFission, _ = vector("nu-fission", nil, false)
		chi, _ = vector("chi", nil, false)
	}

	if len(td.Scatter) != bins {
		return b, malformed("%s %gK: scatter matrix has %d angle bins, want %d", n.name, td.Kelvin, len(td.Scatter), bins)
	}
	if td.Multiplicity != nil && len(td.Multiplicity) != bins {
		return b, malformed("%s %gK: multiplicity matrix has %d angle bins, want %d", n.name, td.Kelvin, len(td.Multiplicity), bins)
	}
	if n.shape.delayed > 0 && td.DelayedNuFission != nil && len(td.DelayedNuFission) != bins {
		return b, malformed("%s %gK: delayed nu-fission has %d angle bins, want %d", n.name, td.Kelvin, len(td.DelayedNuFission), bins)
	}

	for a := 0; a < bins; a++ {
		ad := angleData{
			total:      total[a],
			absorption: absorption[a],
			fission:    fission[a],
			nuFission:  nuFission[a],
			chi:        chi[a],
		}

		ad.delayed = make([][]float64, n.shape.delayed)
		ad.promptNuFission = append([]float64(nil), ad.nuFission...)
		for dg := 0; dg < n.shape.delayed; dg++ {
			ad.delayed[dg] = make([]float64, g)
			if td.DelayedNuFission == nil {
				continue
			}
			src := td.DelayedNuFission[a]
			if len(src) != n.shape.delayed || len(src[dg]) != g {
				return b, malformed("%s %gK: delayed nu-fission shape mismatch", n.name, td.Kelvin)
			}
			copy(ad.delayed[dg], src[dg])
			for gi := range ad.promptNuFission {
				ad.promptNuFission[gi] -= src[dg][gi]
			}
		}

		sm := td.Scatter[a]
		if len(sm) != g {
			return b, malformed("%s %gK: scatter matrix has %d incoming groups, want %d", n.name, td.Kelvin, len(sm), g)
		}
		ad.scatter = sm
		ad.outScatter = make([]float64, g)
		ad.nuOutScatter = make([]float64, g)
		if td.Multiplicity != nil {
			ad.multiplicity = td.Multiplicity[a]
			if len(ad.multiplicity) != g {
				return b, malformed("%s %gK: multiplicity matrix has %d incoming groups, want %d", n.name, td.Kelvin, len(ad.multiplicity), g)
			}
		}
		for gin := 0; gin < g; gin++ {
			if len(sm[gin]) != g {
				return b, malformed("%s %gK: scatter matrix row %d has %d outgoing groups, want %d", n.name, td.Kelvin, gin, len(sm[gin]), g)
			}
			if ad.multiplicity != nil && len(ad.multiplicity[gin]) != g {
				return b, malformed("%s %gK: multiplicity row %d has %d outgoing groups, want %d", n.name, td.Kelvin, gin, len(ad.multiplicity[gin]), g)
			}
			for gout := 0; gout < g; gout++ {
				if len(sm[gin][gout]) != n.shape.order+1 {
					return b, malformed("%s %gK: scatter moments for %d->%d have %d entries, want %d", n.name, td.Kelvin, gin, gout, len(sm[gin][gout]), n.shape.order+1)
				}
				s0 := sm[gin][gout][0]
				ad.outScatter[gin] += s0
				ad.nuOutScatter[gin] += s0 * ad.mult(gin, gout)
			}
		}
		for _, v := range ad.total {
			if math.IsNaN(v) || v < 0 {
				return b, malformed("%s %gK: invalid total cross section %g", n.name, td.Kelvin, v)
			}
		}
		b.angles[a] = ad
	}
	return b, nil
}

func (ad *angleData) mult(gin, gout int) float64 {
	if ad.multiplicity == nil {
		return 1
	}
	return ad.multiplicity[gin][gout]
}

func (n *Nuclide) Name() string       { return n.name }
func (n *Nuclide) AWR() float64       { return n.awr }
func (n *Nuclide) Fissionable() bool  { return n.fissionable }
func (n *Nuclide) Groups() int        { return n.shape.groups }
func (n *Nuclide) DelayedGroups() int { return n.shape.delayed }
func (n *Nuclide) Order() int         { return n.shape.order }
func (n *Nuclide) Angles() AngleGrid  { return n.angles }
func (n *Nuclide) Cursor() Cursor     { return n.cursor }
func (n *Nuclide) Temperatures() []float64 {
	return append([]float64(nil), n.kelvins...)
}

// TemperatureIndex returns the tabulated temperature nearest to kelvin.
func (n *Nuclide) TemperatureIndex(kelvin float64) int {
	return nearest(n.kelvins, kelvin)
}

// AngleIndex returns the angle bin for d; always 0 for isotropic tables.
func (n *Nuclide) AngleIndex(d Direction) int {
	return n.angles.Index(d)
}

// XS returns the requested microscopic cross section at st.
func (n *Nuclide) XS(st State, r Request) (float64, error) {
	if st.Temperature < 0 || st.Temperature >= len(n.blocks) {
		return 0, violation("%s: temperature index %d outside [0, %d)", n.name, st.Temperature, len(n.blocks))
	}
	if st.Angle < 0 || st.Angle >= n.angles.Bins() {
		return 0, violation("%s: angle index %d outside [0, %d)", n.name, st.Angle, n.angles.Bins())
	}
	if err := n.shape.check(r); err != nil {
		return 0, err
	}
	return n.value(st, r), nil
}

// value computes a query that has already been validated against a shape
// at least as large as the nuclide's own.
func (n *Nuclide) value(st State, r Request) float64 {
	ad := &n.blocks[st.Temperature].angles[st.Angle]
	switch r.Kind {
	case Total:
		return ad.total[r.In]
	case Absorption:
		return ad.absorption[r.In]
	case Fission:
		return ad.fission[r.In]
	case NuFission:
		return ad.nuFission[r.In]
	case PromptNuFission:
		return ad.promptNuFission[r.In]
	case DelayedNuFission:
		if r.Delayed == AllDelayed {
			sum := 0.0
			for _, d := range ad.delayed {
				sum += d[r.In]
			}
			return sum
		}
		if r.Delayed >= len(ad.delayed) {
			return 0
		}
		return ad.delayed[r.Delayed][r.In]
	case Chi:
		if r.Out == AnyGroup {
			sum := 0.0
			for _, c := range ad.chi {
				sum += c
			}
			return sum
		}
		return ad.chi[r.Out]
	case Scatter, NuScatter:
		return ad.scatterValue(r)
	}
	return 0
}

func (ad *angleData) scatterValue(r Request) float64 {
	nu := r.Kind == NuScatter
	if !r.Angular {
		if r.Out == AnyGroup {
			if nu {
				return ad.nuOutScatter[r.In]
			}
			return ad.outScatter[r.In]
		}
		v := ad.scatter[r.In][r.Out][0]
		if nu {
			v *= ad.mult(r.In, r.Out)
		}
		return v
	}

	lo, hi := r.Out, r.Out+1
	if r.Out == AnyGroup {
		lo, hi = 0, len(ad.scatter[r.In])
	}
	sum := 0.0
	for gout := lo; gout < hi; gout++ {
		v := legendre(ad.scatter[r.In][gout], r.Mu)
		if nu {
			v *= ad.mult(r.In, gout)
		}
		sum += v
	}
	return sum
}

// SelectTemperature binds the cursor to the tabulated temperature nearest to kelvin.
func (n *Nuclide) SelectTemperature(kelvin float64) {
	n.cursor.bindTemperature(n.TemperatureIndex(kelvin))
}

// SelectAngle binds the cursor to the angle bin of d. It only records the
// index for isotropic tables.
func (n *Nuclide) SelectAngle(d Direction) {
	n.cursor.bindAngle(n.AngleIndex(d))
}

// Query answers r at the cursor's state.
func (n *Nuclide) Query(r Request) (float64, error) {
	if err := n.cursor.ready(); err != nil {
		return 0, err
	}
	return n.XS(n.cursor.state, r)
}
