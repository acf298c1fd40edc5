// Package sample drives many independent particle lookups through the
// stateless mixture evaluation, the way transport workers do during the
// simulation phase.
package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mgxs/internal/engine"
	"github.com/san-kum/mgxs/internal/metrics"
	"github.com/san-kum/mgxs/internal/mgxs"
)

// checkEvery is how many particles a worker tracks between context checks.
const checkEvery = 1024

// Config controls a sampling run. Workers <= 0 uses one worker per CPU.
type Config struct {
	Particles int
	Workers   int
	Seed      int64
}

type Result struct {
	Particles int
	Workers   int
	Seed      int64
	Duration  time.Duration
	Materials []string
	Tallies   [][]*metrics.Tally // [material][group]
}

// Row is one (material, group) cell of a result. Group is 1-based.
type Row struct {
	Material   string
	Group      int
	Samples    int
	Total      float64
	Absorption float64
	NuFission  float64
}

// Rows flattens the tallies in material then group order.
func (r *Result) Rows() []Row {
	var rows []Row
	for m, groups := range r.Tallies {
		for g, t := range groups {
			total, abs, nuf := t.Means()
			rows = append(rows, Row{
				Material:   r.Materials[m],
				Group:      g + 1,
				Samples:    t.Samples(),
				Total:      total,
				Absorption: abs,
				NuFission:  nuf,
			})
		}
	}
	return rows
}

// Run tracks cfg.Particles particles split over cfg.Workers workers. Worker
// i draws from its own generator seeded with cfg.Seed+i and tallies locally;
// tallies are merged in worker order, so a run is reproducible for a given
// seed and worker count.
func Run(ctx context.Context, e *engine.Engine, cfg Config) (*Result, error) {
	if cfg.Particles < 0 {
		return nil, fmt.Errorf("%w: %d particles", mgxs.ErrContractViolation, cfg.Particles)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	mixtures := e.Mixtures()
	if len(mixtures) == 0 {
		return nil, fmt.Errorf("%w: no materials to sample", mgxs.ErrContractViolation)
	}
	groups := e.GroupStructure().Groups()
	ranges := make([][2]float64, len(mixtures))
	for m, mix := range mixtures {
		ranges[m] = span(mix.Temperatures())
	}

	start := time.Now()
	local := make([][][]*metrics.Tally, cfg.Workers)
	eg, egCtx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		n := cfg.Particles / cfg.Workers
		if w < cfg.Particles%cfg.Workers {
			n++
		}
		local[w] = newTallies(mixtures, groups)
		tallies := local[w]
		rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
		eg.Go(func() error {
			return track(egCtx, rng, mixtures, ranges, groups, n, tallies)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Particles: cfg.Particles,
		Workers:   cfg.Workers,
		Seed:      cfg.Seed,
		Duration:  time.Since(start),
		Materials: make([]string, len(mixtures)),
		Tallies:   newTallies(mixtures, groups),
	}
	for m, mix := range mixtures {
		res.Materials[m] = mix.Name()
		count := 0
		for g := range res.Tallies[m] {
			for w := range local {
				res.Tallies[m][g].Merge(local[w][m][g])
			}
			count += res.Tallies[m][g].Samples()
		}
		e.Metrics().Lookups(mix.Name(), count)
	}
	e.Metrics().RunFinished(res.Duration)
	return res, nil
}

func newTallies(mixtures []*mgxs.Mixture, groups int) [][]*metrics.Tally {
	out := make([][]*metrics.Tally, len(mixtures))
	for m, mix := range mixtures {
		out[m] = make([]*metrics.Tally, groups)
		for g := range out[m] {
			out[m][g] = metrics.NewTally(fmt.Sprintf("%s/%d", mix.Name(), g+1))
		}
	}
	return out
}

func track(ctx context.Context, rng *rand.Rand, mixtures []*mgxs.Mixture, ranges [][2]float64, groups, n int, tallies [][]*metrics.Tally) error {
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		m := rng.Intn(len(mixtures))
		g := rng.Intn(groups)
		mix := mixtures[m]
		r := ranges[m]
		kelvin := r[0] + rng.Float64()*(r[1]-r[0])
		total, abs, nuf := mix.Evaluate(g, mgxs.SqrtKTFromKelvin(kelvin), isotropic(rng))
		tallies[m][g].Observe(total, abs, nuf)
	}
	return nil
}

// span returns the lowest and highest of ascending temperatures. Particles
// are drawn uniformly in between.
func span(kelvins []float64) [2]float64 {
	if len(kelvins) == 0 {
		return [2]float64{}
	}
	return [2]float64{kelvins[0], kelvins[len(kelvins)-1]}
}

func isotropic(rng *rand.Rand) mgxs.Direction {
	mu := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - mu*mu)
	return mgxs.Direction{U: s * math.Cos(phi), V: s * math.Sin(phi), W: mu}
}
