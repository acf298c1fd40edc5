// Package engine owns the cross-section data of one run: the nuclide arena
// and the per-material mixtures built from it.
//
// An Engine is built once from the resolved material list, before any
// lookup, and torn down with Close when the run ends:
//
//	eng, err := engine.Open(ctx, path, ingest, engine.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
// Every load failure aborts the build; a partially built Engine is never
// returned.
//
// # Thread Safety
//
// After Build returns, the arena and mixture list are read-only.
// [mgxs.Mixture.Evaluate] and the XS methods may be called concurrently;
// the cursor methods reached through [Engine.Mixture] and [Engine.Nuclide]
// may not.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/mgxs/internal/library"
	"github.com/san-kum/mgxs/internal/metrics"
	"github.com/san-kum/mgxs/internal/mgxs"
	"go.uber.org/zap"
)

// Material is one resolved material of the ingest boundary. Nuclides are
// 0-based indices into Ingest.NuclideNames, each listed once.
type Material struct {
	Name         string
	Nuclides     []int
	Densities    []float64
	Temperatures []float64 // K; empty for a material without tracked temperature
}

// Ingest is the resolved material list handed over by the run setup.
type Ingest struct {
	NuclideNames []string
	Materials    []Material
	Tolerance    float64 // K
}

// Loader supplies nuclide tables. *library.Library implements it.
type Loader interface {
	GroupStructure() *mgxs.GroupStructure
	Load(name string, temperatures []float64, tolerance float64) (*mgxs.Nuclide, error)
}

var _ Loader = (*library.Library)(nil)

type Engine struct {
	groups   *mgxs.GroupStructure
	arena    *mgxs.Arena
	handles  []mgxs.Handle // by nuclide name index; -1 when never referenced
	mixtures []*mgxs.Mixture
	closer   func() error

	log     *zap.Logger
	metrics *metrics.Collector
}

type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// Open opens the library at path, reads its header and builds an Engine
// from it. Close releases the library as well.
func Open(ctx context.Context, path string, in Ingest, opts ...Option) (*Engine, error) {
	probe := &Engine{log: zap.NewNop()}
	for _, opt := range opts {
		opt(probe)
	}
	lib, err := library.Open(path, library.WithLogger(probe.log))
	if err != nil {
		return nil, err
	}
	if err := lib.ReadHeader(); err != nil {
		lib.Close()
		return nil, err
	}
	e, err := Build(ctx, lib, in, opts...)
	if err != nil {
		lib.Close()
		return nil, err
	}
	e.closer = lib.Close
	return e, nil
}

// Build loads every nuclide referenced by in exactly once, in order of first
// appearance, and builds one mixture per material in material order.
// Materials without temperatures become placeholders.
func Build(ctx context.Context, loader Loader, in Ingest, opts ...Option) (*Engine, error) {
	e := &Engine{
		groups:  loader.GroupStructure(),
		log:     zap.NewNop(),
		handles: make([]mgxs.Handle, len(in.NuclideNames)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.groups == nil {
		return nil, fmt.Errorf("%w: library header not read", mgxs.ErrContractViolation)
	}
	for i := range e.handles {
		e.handles[i] = -1
	}

	order, temps, err := plan(in)
	if err != nil {
		return nil, err
	}

	e.arena = mgxs.NewArena(len(order))
	for _, idx := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := in.NuclideNames[idx]
		start := time.Now()
		n, err := loader.Load(name, temps[idx], in.Tolerance)
		if err != nil {
			return nil, err
		}
		if n.Groups() != e.groups.Groups() {
			return nil, &mgxs.LoadError{Entry: name, Wrapped: fmt.Errorf("%w: %d groups, library has %d",
				mgxs.ErrMalformed, n.Groups(), e.groups.Groups())}
		}
		h, err := e.arena.Add(n)
		if err != nil {
			return nil, err
		}
		e.handles[idx] = h
		e.metrics.NuclideLoaded(time.Since(start))
	}

	placeholders := 0
	e.mixtures = make([]*mgxs.Mixture, len(in.Materials))
	for i, mat := range in.Materials {
		hs := make([]mgxs.Handle, len(mat.Nuclides))
		for j, idx := range mat.Nuclides {
			hs[j] = e.handles[idx]
		}
		m, err := mgxs.NewMixture(mat.Name, mat.Temperatures, e.arena, hs, mat.Densities)
		if err != nil {
			return nil, err
		}
		if m.Empty() {
			placeholders++
		}
		e.mixtures[i] = m
	}

	e.metrics.Ingested(len(e.mixtures), placeholders)
	e.log.Info("cross sections ingested",
		zap.Int("nuclides", e.arena.Len()),
		zap.Int("materials", len(e.mixtures)),
		zap.Int("placeholders", placeholders),
		zap.Int("groups", e.groups.Groups()))
	return e, nil
}

// plan returns the nuclide indices in load order and, per index, the union of
// the temperatures of the materials referencing it.
func plan(in Ingest) ([]int, [][]float64, error) {
	seen := make([]bool, len(in.NuclideNames))
	temps := make([][]float64, len(in.NuclideNames))
	var order []int
	for _, mat := range in.Materials {
		if len(mat.Nuclides) != len(mat.Densities) {
			return nil, nil, fmt.Errorf("%w: material %s has %d nuclides but %d densities",
				mgxs.ErrContractViolation, mat.Name, len(mat.Nuclides), len(mat.Densities))
		}
		local := make(map[int]bool, len(mat.Nuclides))
		for _, idx := range mat.Nuclides {
			if idx < 0 || idx >= len(in.NuclideNames) {
				return nil, nil, fmt.Errorf("%w: material %s references nuclide %d of %d",
					mgxs.ErrContractViolation, mat.Name, idx, len(in.NuclideNames))
			}
			if local[idx] {
				return nil, nil, fmt.Errorf("%w: material %s lists %s twice",
					mgxs.ErrContractViolation, mat.Name, in.NuclideNames[idx])
			}
			local[idx] = true
			if !seen[idx] {
				seen[idx] = true
				order = append(order, idx)
			}
			temps[idx] = union(temps[idx], mat.Temperatures)
		}
	}
	return order, temps, nil
}

func union(a, b []float64) []float64 {
	for _, x := range b {
		found := false
		for _, y := range a {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			a = append(a, x)
		}
	}
	return a
}

func (e *Engine) GroupStructure() *mgxs.GroupStructure { return e.groups }
func (e *Engine) Arena() *mgxs.Arena                    { return e.arena }
func (e *Engine) Metrics() *metrics.Collector           { return e.metrics }

// NumNuclides is the number of loaded nuclide tables.
func (e *Engine) NumNuclides() int { return e.arena.Len() }

// NumMaterials is the number of mixtures, one per ingested material.
func (e *Engine) NumMaterials() int { return len(e.mixtures) }

// Nuclide returns the table at handle h (0-based).
func (e *Engine) Nuclide(h mgxs.Handle) (*mgxs.Nuclide, error) {
	return e.arena.Get(h)
}

// NumNames is the length of Ingest.NuclideNames.
func (e *Engine) NumNames() int { return len(e.handles) }

// Handle maps an index of Ingest.NuclideNames to its arena handle. Names no
// material references have no handle.
func (e *Engine) Handle(nameIndex int) (mgxs.Handle, bool) {
	if nameIndex < 0 || nameIndex >= len(e.handles) || e.handles[nameIndex] < 0 {
		return 0, false
	}
	return e.handles[nameIndex], true
}

// Mixture returns the mixture of material i (0-based).
func (e *Engine) Mixture(i int) (*mgxs.Mixture, error) {
	if i < 0 || i >= len(e.mixtures) {
		return nil, fmt.Errorf("%w: material %d outside [0, %d)", mgxs.ErrContractViolation, i, len(e.mixtures))
	}
	return e.mixtures[i], nil
}

func (e *Engine) Mixtures() []*mgxs.Mixture {
	return append([]*mgxs.Mixture(nil), e.mixtures...)
}

// Close releases every table. The Engine must not be used afterwards.
func (e *Engine) Close() error {
	e.mixtures = nil
	e.handles = nil
	if e.arena != nil {
		e.arena.Release()
	}
	if e.closer != nil {
		return e.closer()
	}
	return nil
}
