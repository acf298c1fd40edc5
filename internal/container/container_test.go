package container

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	root := NewNode()
	root.SetAttr("filetype", "mgxs")
	root.SetAttr("version", []int{1, 0})
	root.SetAttr("energy_groups", 2)
	root.SetAttr("group structure", []float64{2e7, 0.625, 1e-5})
	h1 := root.AddGroup("H1")
	h1.SetAttr("fissionable", 0)
	h1.SetAttr("atomic_weight_ratio", 0.99917)
	h1.SetDataset("kTs/294K", nil, []float64{0.025})
	h1.SetDataset("294K/total", []int{2}, []float64{1.5, 4.0})
	h1.SetDataset("294K/scatter_matrix", []int{2, 2, 1}, []float64{1.0, 0.4, 0.0, 3.5})
	return root
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{CBOR, YAML} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Marshal(sampleTree(), f)
			require.NoError(t, err)

			root, err := Unmarshal(data, f)
			require.NoError(t, err)

			typ, err := root.StringAttr("filetype")
			require.NoError(t, err)
			assert.Equal(t, "mgxs", typ)

			version, err := root.IntsAttr("version")
			require.NoError(t, err)
			assert.Equal(t, []int{1, 0}, version)

			groups, err := root.IntAttr("energy_groups")
			require.NoError(t, err)
			assert.Equal(t, 2, groups)

			bounds, err := root.FloatsAttr("group structure")
			require.NoError(t, err)
			assert.Equal(t, []float64{2e7, 0.625, 1e-5}, bounds)

			assert.Equal(t, []string{"H1"}, root.GroupNames())
			h1, err := root.Group("H1")
			require.NoError(t, err)

			awr, err := h1.FloatAttr("atomic_weight_ratio")
			require.NoError(t, err)
			assert.InDelta(t, 0.99917, awr, 1e-12)

			kT, err := h1.Scalar("kTs/294K")
			require.NoError(t, err)
			assert.InDelta(t, 0.025, kT, 1e-12)

			sm, err := h1.Dataset("294K/scatter_matrix")
			require.NoError(t, err)
			assert.True(t, sm.HasShape(2, 2, 1))
			assert.Equal(t, []float64{1.0, 0.4, 0.0, 3.5}, sm.Data)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	root := sampleTree()

	_, err := root.Group("U235")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = root.Dataset("H1/300K/total")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = root.IntAttr("filetype")
	assert.True(t, errors.Is(err, ErrType))

	_, err = root.StringAttr("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	h1, _ := root.Group("H1")
	h1.Datasets["bad"] = &Dataset{Shape: []int{3}, Data: []float64{1}}
	_, err = h1.Dataset("bad")
	assert.True(t, errors.Is(err, ErrType))
}

func TestExists(t *testing.T) {
	root := sampleTree()
	assert.True(t, root.Exists("H1"))
	assert.True(t, root.Exists("H1/294K"))
	assert.True(t, root.Exists("H1/294K/total"))
	assert.False(t, root.Exists("H1/600K"))
	assert.False(t, root.Exists("U235/294K"))
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"lib.cbor", "lib.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Write(path, sampleTree()))
		assert.True(t, FileExists(path))

		root, err := Read(path)
		require.NoError(t, err)
		assert.True(t, root.Exists("H1/294K/total"))
	}
	assert.False(t, FileExists(filepath.Join(dir, "absent.cbor")))
	assert.False(t, FileExists(dir))
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, YAML, FormatFor("a/b/lib.YML"))
	assert.Equal(t, YAML, FormatFor("lib.yaml"))
	assert.Equal(t, CBOR, FormatFor("mgxs.h5"))
	assert.Equal(t, CBOR, FormatFor("mgxs"))
}
