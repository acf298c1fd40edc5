package library

import (
	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/mgxs"
)

// DemoBoundaries is the two-group structure of the demo library (eV).
var DemoBoundaries = []float64{2.0e7, 0.625, 1.0e-5}

// DemoTemperatures are the temperatures tabulated for every demo data set.
var DemoTemperatures = []float64{294, 600, 900}

type demoSet struct {
	name        string
	awr         float64
	fissionable bool
	absorption  [2]float64
	nuFission   [2]float64
	nu          float64
	scatter     [2][2]float64
	// per kelvin fractional change of the thermal absorption
	doppler     float64
}

var demoSets = []demoSet{
	{
		name: "U235", awr: 233.0248, fissionable: true,
		absorption: [2]float64{1.6, 680.0},
		nuFission:  [2]float64{3.1, 1420.0},
		nu:         2.43,
		scatter:    [2][2]float64{{9.79, 0.01}, {0.0, 20.0}},
		doppler:    -1.0e-4,
	},
	{
		name: "U238", awr: 236.0058, fissionable: true,
		absorption: [2]float64{0.9, 2.7},
		nuFission:  [2]float64{0.75, 0.0},
		nu:         2.60,
		scatter:    [2][2]float64{{9.29, 0.01}, {0.0, 9.2}},
		doppler:    2.0e-4,
	},
	{
		name: "O16", awr: 15.8575,
		absorption: [2]float64{0.0002, 0.0002},
		scatter:    [2][2]float64{{3.85, 0.0498}, {0.0, 3.7998}},
	},
	{
		name: "H1", awr: 0.9992,
		absorption: [2]float64{0.0003, 0.33},
		scatter:    [2][2]float64{{3.9, 0.5997}, {0.0, 43.67}},
		doppler:    -5.0e-5,
	},
	{
		name: "Zr90", awr: 89.1324,
		absorption: [2]float64{0.001, 0.011},
		scatter:    [2][2]float64{{6.59, 0.009}, {0.0, 6.489}},
	},
}

// Demo returns a small two-group pin-cell library (fuel, water and clad
// nuclides at 294, 600 and 900 K).
func Demo() *container.Node {
	sets := make([]mgxs.NuclideData, len(demoSets))
	for i, s := range demoSets {
		sets[i] = s.data()
	}
	root, err := Encode(DemoBoundaries, sets...)
	if err != nil {
		panic(err)
	}
	return root
}

func (s demoSet) data() mgxs.NuclideData {
	d := mgxs.NuclideData{
		Name:        s.name,
		AWR:         s.awr,
		Fissionable: s.fissionable,
		Groups:      2,
	}
	for _, k := range DemoTemperatures {
		f := 1 + s.doppler*(k-DemoTemperatures[0])
		abs := []float64{s.absorption[0], s.absorption[1] * f}
		nuF := []float64{s.nuFission[0], s.nuFission[1] * f}
		tot := []float64{
			s.scatter[0][0] + s.scatter[0][1] + abs[0],
			s.scatter[1][0] + s.scatter[1][1] + abs[1],
		}
		td := mgxs.TemperatureData{
			Kelvin:     k,
			Total:      [][]float64{tot},
			Absorption: [][]float64{abs},
			Scatter: [][][][]float64{{
				{{s.scatter[0][0]}, {s.scatter[0][1]}},
				{{s.scatter[1][0]}, {s.scatter[1][1]}},
			}},
		}
		if s.fissionable {
			td.NuFission = [][]float64{nuF}
			td.Fission = [][]float64{{nuF[0] / s.nu, nuF[1] / s.nu}}
			td.Chi = [][]float64{{1, 0}}
		}
		d.Temperatures = append(d.Temperatures, td)
	}
	return d
}
