package mgxs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_StableHandles(t *testing.T) {
	arena := NewArena(1)
	first := fuel(t)
	h0, err := arena.Add(first)
	require.NoError(t, err)
	assert.Equal(t, Handle(0), h0)

	m, err := NewMixture("m", []float64{300}, arena, []Handle{h0}, []float64{1})
	require.NoError(t, err)
	before, _, _ := m.Evaluate(0, SqrtKTFromKelvin(300), Direction{0, 0, 1})

	// grow well past the initial capacity
	for i := 0; i < 100; i++ {
		n := isotropic(t, fmt.Sprintf("X%d", i), false,
			tempXS{kelvin: 300, total: []float64{1, 1}, absorption: []float64{0, 0}, scatter: [][]float64{{1, 0}, {0, 1}}})
		_, err := arena.Add(n)
		require.NoError(t, err)
	}

	got, err := arena.Get(h0)
	require.NoError(t, err)
	assert.Same(t, first, got)
	after, _, _ := m.Evaluate(0, SqrtKTFromKelvin(300), Direction{0, 0, 1})
	assert.Equal(t, before, after)
	assert.Equal(t, 101, arena.Len())
	assert.Equal(t, "U235", arena.Names()[0])
}

func TestArena_Duplicates(t *testing.T) {
	arena := NewArena(2)
	h, err := arena.Add(fuel(t))
	require.NoError(t, err)

	dup, err := arena.Add(fuel(t))
	assert.True(t, errors.Is(err, ErrContractViolation))
	assert.Equal(t, h, dup)
	assert.Equal(t, 1, arena.Len())

	got, ok := arena.Lookup("U235")
	assert.True(t, ok)
	assert.Equal(t, h, got)
	_, ok = arena.Lookup("Pu239")
	assert.False(t, ok)
}

func TestArena_Release(t *testing.T) {
	arena := NewArena(1)
	h, _ := arena.Add(fuel(t))
	arena.Release()
	assert.Zero(t, arena.Len())
	_, err := arena.Get(h)
	assert.True(t, errors.Is(err, ErrContractViolation))
	_, err = arena.Add(nil)
	assert.Error(t, err)
}
