package mgxs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNearest(t *testing.T) {
	temps := []float64{300, 600, 900}
	tests := []struct {
		name  string
		query float64
		want  int
	}{
		{"below range", 10, 0},
		{"exact", 600, 1},
		{"closer to 600", 650, 1},
		{"closer to 900", 760, 2},
		{"midpoint 600/900", 750, 1},
		{"midpoint 300/600", 450, 0},
		{"above range", 5000, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				assert.Equal(t, tt.want, nearest(temps, tt.query))
			}
		})
	}
	assert.Equal(t, 0, nearest([]float64{294}, 1200))
}

func TestAngleGrid_Index(t *testing.T) {
	iso := AngleGrid{}
	assert.True(t, iso.Isotropic())
	assert.Equal(t, 0, iso.Index(Direction{0, 0, 1}))

	g := AngleGrid{Polar: 2, Azimuthal: 2}
	assert.Equal(t, 4, g.Bins())

	tests := []struct {
		name string
		dir  Direction
		want int
	}{
		{"up", Direction{0, 0, 1}, 0},
		{"down", Direction{0, 0, -1}, 2},
		{"down, -y", Direction{0, -0.6, -0.8}, 2},
		{"down, +y", Direction{0, 0.6, -0.8}, 3},
		// Horizontal +x sits on both the polar and the azimuthal bin edge.
		{"polar and azimuthal edge", Direction{1, 0, 0}, 0},
		{"up, +y", Direction{0, 0.6, 0.8}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Index(tt.dir))
		})
	}
}

func TestTemperatureConversion(t *testing.T) {
	for _, k := range []float64{0, 293.6, 600, 2500} {
		assert.InDelta(t, k, KelvinFromSqrtKT(SqrtKTFromKelvin(k)), 1e-9)
	}
	assert.InDelta(t, 0.025852, SqrtKTFromKelvin(300)*SqrtKTFromKelvin(300), 1e-6)
}

func TestCursor_Phases(t *testing.T) {
	var c Cursor
	assert.Equal(t, Unbound, c.Phase())
	assert.Error(t, c.ready())

	c.bindAngle(3)
	assert.Equal(t, Unbound, c.Phase())

	c.bindTemperature(1)
	assert.Equal(t, TemperatureBound, c.Phase())
	assert.NoError(t, c.ready())

	c.bindAngle(2)
	assert.Equal(t, FullyBound, c.Phase())
	assert.Equal(t, State{Temperature: 1, Angle: 2}, c.State())

	c.bindTemperature(0)
	assert.Equal(t, TemperatureBound, c.Phase())
	assert.Equal(t, State{Temperature: 0, Angle: 2}, c.State())
	assert.Equal(t, "temperature-bound", c.Phase().String())
}

func TestLegendre(t *testing.T) {
	assert.InDelta(t, 1.0, legendre([]float64{2}, 0.3), 1e-12)
	// P1 term: 3/2 * c1 * mu
	assert.InDelta(t, 1.0+1.5*0.5*0.3, legendre([]float64{2, 0.5}, 0.3), 1e-12)
	// P2(mu) = (3mu^2-1)/2
	mu := -0.7
	want := 0.5*2 + 1.5*0.5*mu + 2.5*0.25*(3*mu*mu-1)/2
	assert.InDelta(t, want, legendre([]float64{2, 0.5, 0.25}, mu), 1e-12)
	assert.Equal(t, 0.0, legendre(nil, 0.1))
	assert.False(t, math.IsNaN(legendre([]float64{1, 1, 1, 1, 1}, 1)))
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("kappa-fission")
	assert.Error(t, err)
	assert.Equal(t, "kind(42)", Kind(42).String())
}
