// Package container implements the hierarchical binary container used for
// multigroup cross-section libraries.
//
// A container is a tree of [Node] values. Every node carries named
// attributes, named n-dimensional float datasets and named child groups:
//
//	root := container.NewNode()
//	root.SetAttr("filetype", "mgxs")
//	u235 := root.AddGroup("U235")
//	u235.SetDataset("294K/total", []int{2}, []float64{1.2, 3.4})
//
// Files ending in .yaml or .yml are read and written as YAML; everything else
// uses deterministic CBOR.
package container

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates a missing attribute, dataset or group.
	ErrNotFound = errors.New("container: object not found")

	// ErrType indicates an attribute or dataset of an unexpected type or shape.
	ErrType = errors.New("container: unexpected type")
)

// Dataset is a dense row-major array.
type Dataset struct {
	Shape []int     `cbor:"shape" yaml:"shape,flow"`
	Data  []float64 `cbor:"data" yaml:"data,flow"`
}

// Len returns the number of elements implied by the shape.
func (d *Dataset) Len() int {
	n := 1
	for _, s := range d.Shape {
		n *= s
	}
	return n
}

// HasShape reports whether the dataset has exactly the given dimensions.
func (d *Dataset) HasShape(shape ...int) bool {
	if len(d.Shape) != len(shape) {
		return false
	}
	for i := range shape {
		if d.Shape[i] != shape[i] {
			return false
		}
	}
	return true
}

type Node struct {
	Attrs    map[string]any      `cbor:"attrs,omitempty" yaml:"attrs,omitempty"`
	Datasets map[string]*Dataset `cbor:"datasets,omitempty" yaml:"datasets,omitempty"`
	Groups   map[string]*Node    `cbor:"groups,omitempty" yaml:"groups,omitempty"`
}

func NewNode() *Node {
	return &Node{
		Attrs:    make(map[string]any),
		Datasets: make(map[string]*Dataset),
		Groups:   make(map[string]*Node),
	}
}

// SetAttr stores a string, integer, float or slice attribute.
func (n *Node) SetAttr(name string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[name] = value
}

// SetDataset stores a dataset. Slash-separated names create intermediate groups.
func (n *Node) SetDataset(path string, shape []int, data []float64) {
	parent, name := n.mkdirs(path)
	if parent.Datasets == nil {
		parent.Datasets = make(map[string]*Dataset)
	}
	parent.Datasets[name] = &Dataset{Shape: append([]int(nil), shape...), Data: data}
}

// AddGroup returns the child group at path, creating it (and its parents) if needed.
func (n *Node) AddGroup(path string) *Node {
	parent, name := n.mkdirs(path)
	if parent.Groups == nil {
		parent.Groups = make(map[string]*Node)
	}
	if g, ok := parent.Groups[name]; ok {
		return g
	}
	g := NewNode()
	parent.Groups[name] = g
	return g
}

func (n *Node) mkdirs(path string) (*Node, string) {
	parts := strings.Split(path, "/")
	cur := n
	for _, p := range parts[:len(parts)-1] {
		cur = cur.AddGroup(p)
	}
	return cur, parts[len(parts)-1]
}

// Exists reports whether a group or dataset exists at the slash-separated path.
func (n *Node) Exists(path string) bool {
	parts := strings.Split(path, "/")
	cur := n
	for i, p := range parts {
		if i == len(parts)-1 {
			if _, ok := cur.Datasets[p]; ok {
				return true
			}
			_, ok := cur.Groups[p]
			return ok
		}
		next, ok := cur.Groups[p]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attrs[name]
	return ok
}

// Group returns the child group at the slash-separated path.
func (n *Node) Group(path string) (*Node, error) {
	cur := n
	for _, p := range strings.Split(path, "/") {
		next, ok := cur.Groups[p]
		if !ok || next == nil {
			return nil, fmt.Errorf("%w: group %q", ErrNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// GroupNames lists direct child groups in name order.
func (n *Node) GroupNames() []string {
	names := make([]string, 0, len(n.Groups))
	for name := range n.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DatasetNames lists direct datasets in name order.
func (n *Node) DatasetNames() []string {
	names := make([]string, 0, len(n.Datasets))
	for name := range n.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dataset returns the dataset at the slash-separated path.
func (n *Node) Dataset(path string) (*Dataset, error) {
	parent := n
	name := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		g, err := n.Group(path[:i])
		if err != nil {
			return nil, fmt.Errorf("%w: dataset %q", ErrNotFound, path)
		}
		parent, name = g, path[i+1:]
	}
	d, ok := parent.Datasets[name]
	if !ok || d == nil {
		return nil, fmt.Errorf("%w: dataset %q", ErrNotFound, path)
	}
	if d.Len() != len(d.Data) {
		return nil, fmt.Errorf("%w: dataset %q has %d values for shape %v", ErrType, path, len(d.Data), d.Shape)
	}
	return d, nil
}

// Scalar returns the single value of a zero- or one-element dataset.
func (n *Node) Scalar(path string) (float64, error) {
	d, err := n.Dataset(path)
	if err != nil {
		return 0, err
	}
	if len(d.Data) != 1 {
		return 0, fmt.Errorf("%w: dataset %q is not a scalar", ErrType, path)
	}
	return d.Data[0], nil
}
