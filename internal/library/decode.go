package library

import (
	"fmt"

	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/mgxs"
)

func optionalInt(g *container.Node, name string, def int) (int, error) {
	if !g.HasAttr(name) {
		return def, nil
	}
	v, err := g.IntAttr(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
	}
	return v, nil
}

// decode converts a data set group into NuclideData at the selected temperatures.
func decode(name string, g *container.Node, groups int, requested []float64, tolerance float64) (mgxs.NuclideData, error) {
	d := mgxs.NuclideData{Name: name, Groups: groups, AWR: 1}

	if g.HasAttr("atomic_weight_ratio") {
		awr, err := g.FloatAttr("atomic_weight_ratio")
		if err != nil {
			return d, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
		}
		d.AWR = awr
	}
	fissionable, err := optionalInt(g, "fissionable", 0)
	if err != nil {
		return d, err
	}
	d.Fissionable = fissionable != 0
	if d.Order, err = optionalInt(g, "order", 0); err != nil {
		return d, err
	}
	if d.DelayedGroups, err = optionalInt(g, "num_delayed_groups", 0); err != nil {
		return d, err
	}
	if d.Angles, err = parseRepresentation(g); err != nil {
		return d, err
	}

	avail, err := tabulated(g)
	if err != nil {
		return d, err
	}
	temps, err := selectTemperatures(name, avail, requested, tolerance)
	if err != nil {
		return d, err
	}

	r := reader{groups: groups, lead: lead(d.Angles)}
	for _, t := range temps {
		tg, err := g.Group(t.name)
		if err != nil {
			return d, fmt.Errorf("%w: %s listed in kTs has no data group", mgxs.ErrMalformed, t.name)
		}
		td, err := r.temperature(tg, t.kelvin, d)
		if err != nil {
			return d, fmt.Errorf("%s: %w", t.name, err)
		}
		d.Temperatures = append(d.Temperatures, td)
	}
	return d, nil
}

func lead(a mgxs.AngleGrid) []int {
	if a.Isotropic() {
		return nil
	}
	return []int{a.Polar, a.Azimuthal}
}

type reader struct {
	groups int
	lead   []int
}

func (r reader) bins() int {
	n := 1
	for _, l := range r.lead {
		n *= l
	}
	return n
}

// dataset fetches a dataset and checks it has shape lead+tail; nil when absent and optional.
func (r reader) dataset(g *container.Node, name string, required bool, tail ...int) ([]float64, error) {
	if !g.Exists(name) {
		if required {
			return nil, fmt.Errorf("%w: missing dataset %s", mgxs.ErrMalformed, name)
		}
		return nil, nil
	}
	ds, err := g.Dataset(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
	}
	want := append(append([]int(nil), r.lead...), tail...)
	if !ds.HasShape(want...) {
		return nil, fmt.Errorf("%w: dataset %s has shape %v, want %v", mgxs.ErrMalformed, name, ds.Shape, want)
	}
	return ds.Data, nil
}

func (r reader) vectors(g *container.Node, name string, required bool) ([][]float64, error) {
	flat, err := r.dataset(g, name, required, r.groups)
	if err != nil || flat == nil {
		return nil, err
	}
	return split(flat, r.bins(), r.groups), nil
}

func (r reader) temperature(g *container.Node, kelvin float64, d mgxs.NuclideData) (mgxs.TemperatureData, error) {
	td := mgxs.TemperatureData{Kelvin: kelvin}
	var err error
	G := r.groups
	bins := r.bins()

	if td.Total, err = r.vectors(g, "total", true); err != nil {
		return td, err
	}
	if td.Absorption, err = r.vectors(g, "absorption", true); err != nil {
		return td, err
	}

	order := d.Order + 1
	flat, err := r.dataset(g, "scatter_matrix", true, G, G, order)
	if err != nil {
		return td, err
	}
	td.Scatter = make([][][][]float64, bins)
	for a, rows := range split(flat, bins, G*G*order) {
		td.Scatter[a] = make([][][]float64, G)
		for gin, row := range split(rows, G, G*order) {
			td.Scatter[a][gin] = split(row, G, order)
		}
	}

	if flat, err = r.dataset(g, "multiplicity_matrix", false, G, G); err != nil {
		return td, err
	}
	if flat != nil {
		td.Multiplicity = make([][][]float64, bins)
		for a, m := range split(flat, bins, G*G) {
			td.Multiplicity[a] = split(m, G, G)
		}
	}

	if !d.Fissionable {
		return td, nil
	}
	if td.Fission, err = r.vectors(g, "fission", false); err != nil {
		return td, err
	}
	if td.NuFission, err = r.vectors(g, "nu-fission", true); err != nil {
		return td, err
	}
	if td.Chi, err = r.vectors(g, "chi", false); err != nil {
		return td, err
	}
	if d.DelayedGroups > 0 {
		flat, err := r.dataset(g, "delayed-nu-fission", false, d.DelayedGroups, G)
		if err != nil {
			return td, err
		}
		if flat != nil {
			td.DelayedNuFission = make([][][]float64, bins)
			for a, m := range split(flat, bins, d.DelayedGroups*G) {
				td.DelayedNuFission[a] = split(m, d.DelayedGroups, G)
			}
		}
	}
	return td, nil
}

// split cuts flat into n consecutive rows of width w.
func split(flat []float64, n, w int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = flat[i*w : (i+1)*w : (i+1)*w]
	}
	return out
}
