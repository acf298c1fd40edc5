// Package query is the boundary between the transport code and the cross
// section engine. Every handle and group index it accepts is 1-based; they
// are translated to 0-based indices here and nowhere else.
//
// The Set*/NuclideXS/MacroXS methods go through each table's cursor and are
// not safe for concurrent use on the same handle. CalculateXS is stateless.
package query

import (
	"fmt"

	"github.com/san-kum/mgxs/internal/engine"
	"github.com/san-kum/mgxs/internal/mgxs"
)

// Request is a cross-section query in external numbering. Zero Out and
// Delayed mean "integrated over outgoing groups" and "summed over delayed
// groups"; a nil Cosine means angle-integrated.
type Request struct {
	Kind    mgxs.Kind
	Group   int
	Out     int
	Delayed int
	Cosine  *float64
}

func (r Request) internal() mgxs.Request {
	ir := mgxs.NewRequest(r.Kind, r.Group-1)
	if r.Out != 0 {
		ir = ir.To(r.Out - 1)
	}
	if r.Delayed != 0 {
		ir = ir.ForDelayed(r.Delayed - 1)
	}
	if r.Cosine != nil {
		ir = ir.WithCosine(*r.Cosine)
	}
	return ir
}

type Facade struct {
	eng *engine.Engine
}

func New(e *engine.Engine) *Facade {
	return &Facade{eng: e}
}

// nuclide resolves h, a 1-based index into the ingested nuclide names.
func (f *Facade) nuclide(h int) (*mgxs.Nuclide, error) {
	if h < 1 || h > f.eng.NumNames() {
		return nil, fmt.Errorf("%w: nuclide handle %d outside [1, %d]", mgxs.ErrContractViolation, h, f.eng.NumNames())
	}
	ah, ok := f.eng.Handle(h - 1)
	if !ok {
		return nil, fmt.Errorf("%w: nuclide handle %d is not used by any material", mgxs.ErrContractViolation, h)
	}
	return f.eng.Nuclide(ah)
}

func (f *Facade) material(m int) (*mgxs.Mixture, error) {
	if m < 1 || m > f.eng.NumMaterials() {
		return nil, fmt.Errorf("%w: material %d outside [1, %d]", mgxs.ErrContractViolation, m, f.eng.NumMaterials())
	}
	return f.eng.Mixture(m - 1)
}

func (f *Facade) group(g int) (int, error) {
	n := f.eng.GroupStructure().Groups()
	if g < 1 || g > n {
		return 0, fmt.Errorf("%w: group %d outside [1, %d]", mgxs.ErrContractViolation, g, n)
	}
	return g - 1, nil
}

// CalculateXS returns the macroscopic total, absorption and nu-fission cross
// sections of material m in group g for a particle at sqrtKT (sqrt(eV))
// moving along d.
func (f *Facade) CalculateXS(m, g int, sqrtKT float64, d mgxs.Direction) (total, absorption, nuFission float64, err error) {
	mix, err := f.material(m)
	if err != nil {
		return 0, 0, 0, err
	}
	gi, err := f.group(g)
	if err != nil {
		return 0, 0, 0, err
	}
	total, absorption, nuFission = mix.Evaluate(gi, sqrtKT, d)
	return total, absorption, nuFission, nil
}

func (f *Facade) SetNuclideTemperature(h int, sqrtKT float64) error {
	n, err := f.nuclide(h)
	if err != nil {
		return err
	}
	n.SelectTemperature(mgxs.KelvinFromSqrtKT(sqrtKT))
	return nil
}

func (f *Facade) SetNuclideAngle(h int, d mgxs.Direction) error {
	n, err := f.nuclide(h)
	if err != nil {
		return err
	}
	n.SelectAngle(d)
	return nil
}

// NuclideXS answers r for nuclide h at its selected temperature and angle.
func (f *Facade) NuclideXS(h int, r Request) (float64, error) {
	n, err := f.nuclide(h)
	if err != nil {
		return 0, err
	}
	return n.Query(r.internal())
}

func (f *Facade) SetMacroTemperature(m int, sqrtKT float64) error {
	mix, err := f.material(m)
	if err != nil {
		return err
	}
	mix.SelectTemperature(mgxs.KelvinFromSqrtKT(sqrtKT))
	return nil
}

func (f *Facade) SetMacroAngle(m int, d mgxs.Direction) error {
	mix, err := f.material(m)
	if err != nil {
		return err
	}
	mix.SelectAngle(d)
	return nil
}

// MacroXS answers r for material m at its selected temperature and angle.
func (f *Facade) MacroXS(m int, r Request) (float64, error) {
	mix, err := f.material(m)
	if err != nil {
		return 0, err
	}
	return mix.Query(r.internal())
}

func (f *Facade) NuclideName(h int) (string, error) {
	n, err := f.nuclide(h)
	if err != nil {
		return "", err
	}
	return n.Name(), nil
}

func (f *Facade) AtomicWeightRatio(h int) (float64, error) {
	n, err := f.nuclide(h)
	if err != nil {
		return 0, err
	}
	return n.AWR(), nil
}

// Fissionable reports whether any of the given nuclides is fissionable.
func (f *Facade) Fissionable(handles ...int) (bool, error) {
	fissionable := false
	for _, h := range handles {
		n, err := f.nuclide(h)
		if err != nil {
			return false, err
		}
		fissionable = fissionable || n.Fissionable()
	}
	return fissionable, nil
}

func (f *Facade) MaterialFissionable(m int) (bool, error) {
	mix, err := f.material(m)
	if err != nil {
		return false, err
	}
	return mix.Fissionable(), nil
}

func (f *Facade) Groups() int { return f.eng.GroupStructure().Groups() }

// EnergyBoundaries returns the group boundaries in ascending energy (eV).
func (f *Facade) EnergyBoundaries() []float64 { return f.eng.GroupStructure().Boundaries() }

// EnergyAverages returns the midpoint energy of each ascending bin (eV).
func (f *Facade) EnergyAverages() []float64 { return f.eng.GroupStructure().Averages() }

// FindGroup returns the 1-based group containing energy (eV).
func (f *Facade) FindGroup(energy float64) (int, bool) {
	g, ok := f.eng.GroupStructure().Find(energy)
	if !ok {
		return 0, false
	}
	return g + 1, true
}
