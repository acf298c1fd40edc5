package mgxs

import "fmt"

// Handle addresses a nuclide registered in an Arena. Handles are 0-based and
// stay valid for the lifetime of the arena.
type Handle int

// Arena is the append-only nuclide registry of a run. Registered nuclides
// are never moved or removed until Release, so mixtures may keep references
// to them.
type Arena struct {
	tables []*Nuclide
	byName map[string]Handle
}

func NewArena(capacity int) *Arena {
	return &Arena{
		tables: make([]*Nuclide, 0, capacity),
		byName: make(map[string]Handle, capacity),
	}
}

// Add registers n under its name. Each name may be registered once.
func (a *Arena) Add(n *Nuclide) (Handle, error) {
	if n == nil {
		return 0, violation("nil nuclide")
	}
	if h, ok := a.byName[n.Name()]; ok {
		return h, violation("nuclide %q already registered as handle %d", n.Name(), h)
	}
	h := Handle(len(a.tables))
	a.tables = append(a.tables, n)
	a.byName[n.Name()] = h
	return h, nil
}

// Lookup returns the handle registered for name.
func (a *Arena) Lookup(name string) (Handle, bool) {
	h, ok := a.byName[name]
	return h, ok
}

// Get returns the nuclide at h.
func (a *Arena) Get(h Handle) (*Nuclide, error) {
	if h < 0 || int(h) >= len(a.tables) {
		return nil, violation("nuclide handle %d outside [0, %d)", h, len(a.tables))
	}
	return a.tables[h], nil
}

func (a *Arena) Len() int {
	return len(a.tables)
}

// Names lists registered nuclides in registration order.
func (a *Arena) Names() []string {
	names := make([]string, len(a.tables))
	for i, n := range a.tables {
		names[i] = n.Name()
	}
	return names
}

// Release drops every registered nuclide. Handles are invalid afterwards.
func (a *Arena) Release() {
	a.tables = nil
	a.byName = map[string]Handle{}
}

func (a *Arena) String() string {
	return fmt.Sprintf("arena(%d nuclides)", len(a.tables))
}
