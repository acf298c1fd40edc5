// Package library reads multigroup cross-section libraries.
//
// A library is a container file whose root carries the file type, format
// version and energy group structure, and whose top-level groups are the
// data sets (nuclides or pre-mixed materials) it provides:
//
//	lib, err := library.Open(path, library.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	if err := lib.ReadHeader(); err != nil {
//	    return err
//	}
//	u235, err := lib.Load("U235", []float64{600}, 10)
//
// Every failure is returned as a [*mgxs.LoadError] wrapping one of the mgxs
// sentinel errors. Nothing is partially loaded.
package library

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/mgxs/internal/container"
	"github.com/san-kum/mgxs/internal/mgxs"
	"go.uber.org/zap"
)

// FileType is the value of the root "filetype" attribute.
const FileType = "mgxs"

// Version is the supported (major, minor) library format version.
var Version = [2]int{1, 0}

// Category classifies a catalog entry.
type Category int

const (
	Neutron Category = iota
)

func (c Category) String() string {
	if c == Neutron {
		return "neutron"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Entry is one catalog record.
type Entry struct {
	Name      string
	Category  Category
	Materials []string
}

type Library struct {
	path    string
	root    *container.Node
	groups  *mgxs.GroupStructure
	entries []Entry
	loaded  map[string]bool
	log     *zap.Logger
}

type Option func(*Library)

func WithLogger(log *zap.Logger) Option {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// Open reads the library at path and checks its file type and version.
func Open(path string, opts ...Option) (*Library, error) {
	l := &Library{path: path, loaded: make(map[string]bool), log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	if !container.FileExists(path) {
		return nil, l.fail("", fmt.Errorf("%w: cross sections file does not exist", mgxs.ErrConfiguration))
	}
	l.log.Info("loading cross section data", zap.String("path", path))

	root, err := container.Read(path)
	if err != nil {
		return nil, l.fail("", fmt.Errorf("%w: %v", mgxs.ErrConfiguration, err))
	}
	return l.attach(root)
}

// FromNode wraps an already decoded container. It applies the same checks as Open.
func FromNode(name string, root *container.Node, opts ...Option) (*Library, error) {
	l := &Library{path: name, loaded: make(map[string]bool), log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l.attach(root)
}

func (l *Library) attach(root *container.Node) (*Library, error) {
	typ, err := root.StringAttr("filetype")
	if err != nil || typ != FileType {
		return nil, l.fail("", fmt.Errorf("%w: not an MGXS library file (filetype %q)", mgxs.ErrConfiguration, typ))
	}
	version, err := root.IntsAttr("version")
	if err != nil || len(version) != 2 || version[0] != Version[0] || version[1] != Version[1] {
		return nil, l.fail("", fmt.Errorf("%w: library version %v does not match supported version %v",
			mgxs.ErrConfiguration, version, Version))
	}
	l.root = root
	return l, nil
}

func (l *Library) fail(entry string, err error) error {
	return &mgxs.LoadError{Path: l.path, Entry: entry, Wrapped: err}
}

// ReadHeader reads the group structure and builds the catalog.
func (l *Library) ReadHeader() error {
	groups, err := l.root.IntAttr("energy_groups")
	if err != nil {
		return l.fail("", fmt.Errorf("%w: %v", mgxs.ErrMalformed, err))
	}
	bounds, err := l.root.FloatsAttr("group structure")
	if err != nil {
		return l.fail("", fmt.Errorf("%w: %v", mgxs.ErrMalformed, err))
	}
	if len(bounds) != groups+1 {
		return l.fail("", fmt.Errorf("%w: %d group boundaries for %d groups", mgxs.ErrMalformed, len(bounds), groups))
	}
	gs, err := mgxs.NewGroupStructure(bounds)
	if err != nil {
		return l.fail("", err)
	}

	names := l.root.GroupNames()
	if len(names) == 0 {
		return l.fail("", fmt.Errorf("%w: at least one data set must be present", mgxs.ErrEmptyLibrary))
	}
	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, Category: Neutron, Materials: []string{name}}
	}

	l.groups = gs
	l.entries = entries
	l.log.Debug("read library header",
		zap.Int("groups", gs.Groups()),
		zap.Int("entries", len(entries)))
	return nil
}

func (l *Library) Path() string { return l.path }

// GroupStructure returns the energy grid; nil before ReadHeader.
func (l *Library) GroupStructure() *mgxs.GroupStructure { return l.groups }

// Entries returns the catalog in name order.
func (l *Library) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Has reports whether the library provides a data set called name.
func (l *Library) Has(name string) bool {
	return l.root != nil && l.root.Exists(name)
}

// Temperatures returns the tabulated temperatures (K) of a data set.
func (l *Library) Temperatures(name string) ([]float64, error) {
	g, err := l.root.Group(name)
	if err != nil {
		return nil, l.fail(name, fmt.Errorf("%w: data for %s does not exist in library", mgxs.ErrDataAbsent, name))
	}
	temps, err := tabulated(g)
	if err != nil {
		return nil, l.fail(name, err)
	}
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = t.kelvin
	}
	return out, nil
}

// Loaded reports whether name has been loaded from this library.
func (l *Library) Loaded(name string) bool { return l.loaded[name] }

// Load reads one data set at the tabulated temperatures nearest to the
// requested ones. Every requested temperature must be matched within
// tolerance (K); an empty request loads every tabulated temperature. A data
// set may be loaded only once per library.
func (l *Library) Load(name string, temperatures []float64, tolerance float64) (*mgxs.Nuclide, error) {
	if l.groups == nil {
		return nil, l.fail(name, fmt.Errorf("%w: header not read", mgxs.ErrContractViolation))
	}
	if l.loaded[name] {
		return nil, l.fail(name, fmt.Errorf("%w: %s already loaded", mgxs.ErrContractViolation, name))
	}
	l.log.Debug("loading nuclide", zap.String("name", name), zap.Float64s("temperatures", temperatures))

	g, err := l.root.Group(name)
	if err != nil {
		return nil, l.fail(name, fmt.Errorf("%w: data for %s does not exist in library", mgxs.ErrDataAbsent, name))
	}
	data, err := decode(name, g, l.groups.Groups(), temperatures, tolerance)
	if err != nil {
		return nil, l.fail(name, err)
	}
	n, err := mgxs.NewNuclide(data)
	if err != nil {
		return nil, l.fail(name, err)
	}
	l.loaded[name] = true
	return n, nil
}

// Close releases the decoded container.
func (l *Library) Close() error {
	l.root = nil
	l.entries = nil
	return nil
}

type tabulatedTemp struct {
	name   string
	kelvin float64
}

// tabulated lists the temperatures in a data set's kTs group in ascending order.
func tabulated(g *container.Node) ([]tabulatedTemp, error) {
	kts, err := g.Group("kTs")
	if err != nil {
		return nil, fmt.Errorf("%w: no kTs group", mgxs.ErrMalformed)
	}
	var out []tabulatedTemp
	for _, name := range kts.DatasetNames() {
		kT, err := kts.Scalar(name)
		if err != nil {
			return nil, fmt.Errorf("%w: kTs/%s: %v", mgxs.ErrMalformed, name, err)
		}
		out = append(out, tabulatedTemp{name: name, kelvin: kT / mgxs.BoltzmannEV})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no tabulated temperatures", mgxs.ErrMalformed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].kelvin < out[j].kelvin })
	return out, nil
}

// selectTemperatures picks the tabulated temperature nearest each request.
func selectTemperatures(name string, avail []tabulatedTemp, requested []float64, tolerance float64) ([]tabulatedTemp, error) {
	if len(requested) == 0 {
		return avail, nil
	}
	picked := make(map[int]bool)
	for _, t := range requested {
		best := 0
		for i := range avail {
			if math.Abs(avail[i].kelvin-t) < math.Abs(avail[best].kelvin-t) {
				best = i
			}
		}
		if math.Abs(avail[best].kelvin-t) > tolerance {
			return nil, fmt.Errorf("%w: %s has no data within %gK of %gK (nearest %gK)",
				mgxs.ErrDataAbsent, name, tolerance, t, avail[best].kelvin)
		}
		picked[best] = true
	}
	out := make([]tabulatedTemp, 0, len(picked))
	for i := range avail {
		if picked[i] {
			out = append(out, avail[i])
		}
	}
	return out, nil
}

// TemperatureName formats the group name used for a tabulated temperature.
func TemperatureName(kelvin float64) string {
	return strconv.Itoa(int(math.Round(kelvin))) + "K"
}

func parseRepresentation(g *container.Node) (mgxs.AngleGrid, error) {
	rep := "isotropic"
	if g.HasAttr("representation") {
		r, err := g.StringAttr("representation")
		if err != nil {
			return mgxs.AngleGrid{}, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
		}
		rep = strings.ToLower(r)
	}
	switch rep {
	case "isotropic":
		return mgxs.AngleGrid{}, nil
	case "angle":
		np, err := g.IntAttr("num_polar")
		if err != nil {
			return mgxs.AngleGrid{}, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
		}
		na, err := g.IntAttr("num_azimuthal")
		if err != nil {
			return mgxs.AngleGrid{}, fmt.Errorf("%w: %v", mgxs.ErrMalformed, err)
		}
		if np < 1 || na < 1 {
			return mgxs.AngleGrid{}, fmt.Errorf("%w: angle grid %dx%d", mgxs.ErrMalformed, np, na)
		}
		return mgxs.AngleGrid{Polar: np, Azimuthal: na}, nil
	}
	return mgxs.AngleGrid{}, fmt.Errorf("%w: unknown representation %q", mgxs.ErrMalformed, rep)
}
