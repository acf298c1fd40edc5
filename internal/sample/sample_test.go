package sample

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/san-kum/mgxs/internal/engine"
	"github.com/san-kum/mgxs/internal/library"
	"github.com/san-kum/mgxs/internal/metrics"
	"github.com/san-kum/mgxs/internal/mgxs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(t testing.TB, opts ...engine.Option) *engine.Engine {
	t.Helper()
	lib, err := library.FromNode("demo", library.Demo())
	require.NoError(t, err)
	require.NoError(t, lib.ReadHeader())
	e, err := engine.Build(context.Background(), lib, engine.Ingest{
		NuclideNames: []string{"U235", "U238", "O16", "H1"},
		Materials: []engine.Material{
			{Name: "fuel", Nuclides: []int{0, 1, 2}, Densities: []float64{7e-4, 2.2e-2, 4.6e-2}, Temperatures: []float64{600, 900}},
			{Name: "water", Nuclides: []int{3, 2}, Densities: []float64{6.7e-2, 3.3e-2}, Temperatures: []float64{600}},
			{Name: "gap"},
		},
		Tolerance: 1,
	}, opts...)
	require.NoError(t, err)
	return e
}

func TestRunCountsEveryParticle(t *testing.T) {
	e := newEngine(t)
	res, err := Run(context.Background(), e, Config{Particles: 10001, Workers: 4, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, []string{"fuel", "water", "gap"}, res.Materials)
	rows := res.Rows()
	require.Len(t, rows, 3*2)

	n := 0
	for _, r := range rows {
		n += r.Samples
	}
	assert.Equal(t, 10001, n)
	assert.Equal(t, 1, rows[0].Group)
	assert.Equal(t, 2, rows[1].Group)
}

func TestRunIsReproducible(t *testing.T) {
	e := newEngine(t)
	cfg := Config{Particles: 5000, Workers: 3, Seed: 42}

	a, err := Run(context.Background(), e, cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), e, cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Rows(), b.Rows()); diff != "" {
		t.Errorf("same seed gave different tallies (-first +second):\n%s", diff)
	}

	cfg.Seed = 43
	c, err := Run(context.Background(), e, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Rows(), c.Rows())
}

func TestRunMatchesEvaluate(t *testing.T) {
	e := newEngine(t)
	res, err := Run(context.Background(), e, Config{Particles: 2000, Workers: 2, Seed: 1})
	require.NoError(t, err)

	// water has a single temperature, so every sample in a group is identical
	water, err := e.Mixture(1)
	require.NoError(t, err)
	for _, r := range res.Rows() {
		switch r.Material {
		case "water":
			total, abs, nuf := water.Evaluate(r.Group-1, mgxs.SqrtKTFromKelvin(600), mgxs.Direction{W: 1})
			assert.InDelta(t, total, r.Total, 1e-12)
			assert.InDelta(t, abs, r.Absorption, 1e-12)
			assert.Zero(t, nuf)
		case "gap":
			assert.Zero(t, r.Total)
		case "fuel":
			assert.Positive(t, r.NuFission)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, e, Config{Particles: 1 << 20, Workers: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDefaults(t *testing.T) {
	res, err := Run(context.Background(), newEngine(t), Config{Particles: 10})
	require.NoError(t, err)
	assert.Positive(t, res.Workers)

	_, err = Run(context.Background(), newEngine(t), Config{Particles: -1})
	assert.ErrorIs(t, err, mgxs.ErrContractViolation)
}

func TestRunRecordsLookups(t *testing.T) {
	c := metrics.NewCollector()
	e := newEngine(t, engine.WithMetrics(c))
	_, err := Run(context.Background(), e, Config{Particles: 300, Workers: 2, Seed: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))
	assert.Contains(t, buf.String(), `mgxs_lookups_total{material="fuel"}`)
	assert.Contains(t, buf.String(), "mgxs_sampling_run_seconds_count 1")
}

func BenchmarkRun(b *testing.B) {
	e := newEngine(b)
	cfg := Config{Particles: 100000, Seed: 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(context.Background(), e, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
