package mgxs

import "testing"

// tempXS is a compact two-group isotropic temperature block for tests.
type tempXS struct {
	kelvin     float64
	total      []float64
	absorption []float64
	nuFission  []float64
	scatter    [][]float64 // P0 matrix [in][out]
}

func isotropic(t testing.TB, name string, fissionable bool, temps ...tempXS) *Nuclide {
	t.Helper()
	d := NuclideData{Name: name, AWR: 1, Fissionable: fissionable, Groups: len(temps[0].total)}
	for _, tx := range temps {
		td := TemperatureData{
			Kelvin:     tx.kelvin,
			Total:      [][]float64{tx.total},
			Absorption: [][]float64{tx.absorption},
			Scatter:    [][][][]float64{p0(tx.scatter)},
		}
		if fissionable {
			td.NuFission = [][]float64{tx.nuFission}
			td.Fission = [][]float64{scale(tx.nuFission, 1/2.4)}
			td.Chi = [][]float64{{1, 0}}
		}
		d.Temperatures = append(d.Temperatures, td)
	}
	n, err := NewNuclide(d)
	if err != nil {
		t.Fatalf("NewNuclide(%s): %v", name, err)
	}
	return n
}

func p0(m [][]float64) [][][]float64 {
	out := make([][][]float64, len(m))
	for i := range m {
		out[i] = make([][]float64, len(m[i]))
		for j := range m[i] {
			out[i][j] = []float64{m[i][j]}
		}
	}
	return out
}

func scale(xs []float64, f float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * f
	}
	return out
}

func fuel(t testing.TB) *Nuclide {
	return isotropic(t, "U235", true,
		tempXS{300, []float64{10, 20}, []float64{4, 12}, []float64{5, 25}, [][]float64{{5, 1}, {0, 8}}},
		tempXS{600, []float64{11, 21}, []float64{4.5, 12.5}, []float64{5.5, 25.5}, [][]float64{{5.5, 1}, {0, 8.5}}},
		tempXS{900, []float64{12, 22}, []float64{5, 13}, []float64{6, 26}, [][]float64{{6, 1}, {0, 9}}},
	)
}

func water(t testing.TB) *Nuclide {
	return isotropic(t, "H1", false,
		tempXS{kelvin: 300, total: []float64{2, 30}, absorption: []float64{0.1, 0.3}, scatter: [][]float64{{1.2, 0.7}, {0, 29.7}}},
		tempXS{kelvin: 600, total: []float64{2.5, 31}, absorption: []float64{0.2, 0.4}, scatter: [][]float64{{1.5, 0.8}, {0, 30.6}}},
	)
}
