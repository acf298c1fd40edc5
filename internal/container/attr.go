package container

import (
	"fmt"
	"math"
)

func (n *Node) attr(name string) (any, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q", ErrNotFound, name)
	}
	return v, nil
}

func (n *Node) StringAttr(name string) (string, error) {
	v, err := n.attr(name)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("%w: attribute %q is %T, want string", ErrType, name, v)
}

func (n *Node) IntAttr(name string) (int, error) {
	v, err := n.attr(name)
	if err != nil {
		return 0, err
	}
	if vs, ok := v.([]any); ok && len(vs) == 1 {
		v = vs[0]
	}
	i, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q is %T, want integer", ErrType, name, v)
	}
	return i, nil
}

func (n *Node) IntsAttr(name string) ([]int, error) {
	v, err := n.attr(name)
	if err != nil {
		return nil, err
	}
	switch vs := v.(type) {
	case []int:
		return append([]int(nil), vs...), nil
	case []any:
		out := make([]int, len(vs))
		for i, e := range vs {
			x, ok := toInt(e)
			if !ok {
				return nil, fmt.Errorf("%w: attribute %q element %d is %T, want integer", ErrType, name, i, e)
			}
			out[i] = x
		}
		return out, nil
	}
	if x, ok := toInt(v); ok {
		return []int{x}, nil
	}
	return nil, fmt.Errorf("%w: attribute %q is %T, want integer array", ErrType, name, v)
}

func (n *Node) FloatAttr(name string) (float64, error) {
	v, err := n.attr(name)
	if err != nil {
		return 0, err
	}
	if vs, ok := v.([]any); ok && len(vs) == 1 {
		v = vs[0]
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: attribute %q is %T, want float", ErrType, name, v)
	}
	return f, nil
}

func (n *Node) FloatsAttr(name string) ([]float64, error) {
	v, err := n.attr(name)
	if err != nil {
		return nil, err
	}
	switch vs := v.(type) {
	case []float64:
		return append([]float64(nil), vs...), nil
	case []any:
		out := make([]float64, len(vs))
		for i, e := range vs {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("%w: attribute %q element %d is %T, want float", ErrType, name, i, e)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: attribute %q is %T, want float array", ErrType, name, v)
}

// toInt accepts the integer types produced by the YAML and CBOR decoders.
func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
