package library

import (
	"fmt"

	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/mgxs"
)

// Encode builds a library container from descending group boundaries and
// raw data sets. It is the inverse of Open/ReadHeader/Load.
func Encode(boundaries []float64, sets ...mgxs.NuclideData) (*container.Node, error) {
	if _, err := mgxs.NewGroupStructure(boundaries); err != nil {
		return nil, err
	}
	groups := len(boundaries) - 1

	root := container.NewNode()
	root.SetAttr("filetype", FileType)
	root.SetAttr("version", []int{Version[0], Version[1]})
	root.SetAttr("energy_groups", groups)
	root.SetAttr("group structure", append([]float64(nil), boundaries...))

	for _, d := range sets {
		if d.Groups != groups {
			return nil, fmt.Errorf("%w: %s has %d groups, library has %d", mgxs.ErrMalformed, d.Name, d.Groups, groups)
		}
		if root.Exists(d.Name) {
			return nil, fmt.Errorf("%w: data set %s encoded twice", mgxs.ErrMalformed, d.Name)
		}
		if err := encodeSet(root.AddGroup(d.Name), d); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func encodeSet(g *container.Node, d mgxs.NuclideData) error {
	awr := d.AWR
	if awr == 0 {
		awr = 1
	}
	g.SetAttr("atomic_weight_ratio", awr)
	fissionable := 0
	if d.Fissionable {
		fissionable = 1
	}
	g.SetAttr("fissionable", fissionable)
	g.SetAttr("order", d.Order)
	g.SetAttr("num_delayed_groups", d.DelayedGroups)
	if d.Angles.Isotropic() {
		g.SetAttr("representation", "isotropic")
	} else {
		g.SetAttr("representation", "angle")
		g.SetAttr("num_polar", d.Angles.Polar)
		g.SetAttr("num_azimuthal", d.Angles.Azimuthal)
	}

	ld := lead(d.Angles)
	shape := func(tail ...int) []int { return append(append([]int(nil), ld...), tail...) }
	G := d.Groups

	for _, td := range d.Temperatures {
		name := TemperatureName(td.Kelvin)
		if g.Exists(name) {
			return fmt.Errorf("%w: %s temperature %s encoded twice", mgxs.ErrMalformed, d.Name, name)
		}
		g.SetDataset("kTs/"+name, nil, []float64{td.Kelvin * mgxs.BoltzmannEV})
		tg := g.AddGroup(name)

		tg.SetDataset("total", shape(G), flatten2(td.Total))
		tg.SetDataset("absorption", shape(G), flatten2(td.Absorption))
		tg.SetDataset("scatter_matrix", shape(G, G, d.Order+1), flatten4(td.Scatter))
		if td.Multiplicity != nil {
			tg.SetDataset("multiplicity_matrix", shape(G, G), flatten3(td.Multiplicity))
		}
		if !d.Fissionable {
			continue
		}
		tg.SetDataset("nu-fission", shape(G), flatten2(td.NuFission))
		if td.Fission != nil {
			tg.SetDataset("fission", shape(G), flatten2(td.Fission))
		}
		if td.Chi != nil {
			tg.SetDataset("chi", shape(G), flatten2(td.Chi))
		}
		if d.DelayedGroups > 0 && td.DelayedNuFission != nil {
			tg.SetDataset("delayed-nu-fission", shape(d.DelayedGroups, G), flatten3(td.DelayedNuFission))
		}
	}
	return nil
}

func flatten2(xs [][]float64) []float64 {
	var out []float64
	for _, x := range xs {
		out = append(out, x...)
	}
	return out
}

func flatten3(xs [][][]float64) []float64 {
	var out []float64
	for _, x := range xs {
		out = append(out, flatten2(x)...)
	}
	return out
}

func flatten4(xs [][][][]float64) []float64 {
	var out []float64
	for _, x := range xs {
		out = append(out, flatten3(x)...)
	}
	return out
}
