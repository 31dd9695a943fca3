package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphStore_ProjectDefaultWeight(t *testing.T) {
	store := NewGraphStore(3)
	require.NoError(t, store.AddRelationship(0, 1, nil))
	require.NoError(t, store.AddRelationship(1, 2, map[string]float64{"cost": 4.2}))

	g, err := store.Project(ProjectionConfig{
		Orientation:          Undirected,
		RelationshipProperty: "cost",
		DefaultWeight:        10.0,
	})
	require.NoError(t, err)
	require.True(t, g.HasRelationshipProperty())

	_, weights := collect(g, 1, 0)
	assert.Equal(t, []float64{10.0, 4.2}, weights)
}

func TestGraphStore_MissingRelationshipProperty(t *testing.T) {
	store := NewGraphStore(2)
	require.NoError(t, store.AddRelationship(0, 1, nil))

	_, err := store.Project(ProjectionConfig{RelationshipProperty: "weight"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPropertyNotFound))
	assert.Contains(t, err.Error(), "weight")
}

func TestGraphStore_NodeProperties(t *testing.T) {
	store := NewGraphStore(3)

	_, err := store.NodeProperty("seed")
	assert.ErrorIs(t, err, ErrPropertyNotFound)

	seeds := NewNodeProperty(3)
	seeds.Set(1, 42)
	require.NoError(t, store.SetNodeProperty("seed", seeds))
	assert.True(t, store.HasNodeProperty("seed"))

	got, err := store.NodeProperty("seed")
	require.NoError(t, err)
	v, ok := got.Value(1)
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)
	_, ok = got.Value(0)
	assert.False(t, ok)

	max, ok := got.MaxValue()
	assert.True(t, ok)
	assert.Equal(t, int64(42), max)

	assert.ErrorIs(t, store.SetNodeProperty("bad", NewNodeProperty(5)), ErrMalformedInput)
}

func TestGraphStore_PropertyKeysBackfill(t *testing.T) {
	store := NewGraphStore(3)
	require.NoError(t, store.AddRelationship(0, 1, map[string]float64{"b": 1}))
	require.NoError(t, store.AddRelationship(1, 2, map[string]float64{"a": 2}))
	assert.Equal(t, []string{"a", "b"}, store.RelationshipPropertyKeys())

	g, err := store.Project(ProjectionConfig{Orientation: Natural, RelationshipProperty: "a", DefaultWeight: 7})
	require.NoError(t, err)
	_, weights := collect(g, 0, 0)
	assert.Equal(t, []float64{7}, weights)
}

func TestCatalog(t *testing.T) {
	catalog := NewCatalog()
	store := NewGraphStore(1)

	require.NoError(t, catalog.Set("g", store))
	assert.ErrorIs(t, catalog.Set("g", store), ErrGraphExists)

	got, err := catalog.Get("g")
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.Equal(t, []string{"g"}, catalog.Names())

	_, err = catalog.Drop("g")
	require.NoError(t, err)
	_, err = catalog.Get("g")
	assert.ErrorIs(t, err, ErrGraphNotFound)
}

func TestReadEdgeList(t *testing.T) {
	input := `# comment
0,1
1	2	0.5

2 3 1.5
`
	loaded, err := ReadEdgeList(strings.NewReader(input), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), loaded.Store.NodeCount())
	assert.Equal(t, int64(3), loaded.Store.RelationshipCount())
	assert.Equal(t, []string{"weight"}, loaded.Store.RelationshipPropertyKeys())
	assert.Equal(t, []int64{0, 1, 2, 3}, loaded.OriginalIDs)
}

func TestReadEdgeList_Remap(t *testing.T) {
	loaded, err := ReadEdgeList(strings.NewReader("100,7\n7,55\n"), LoadOptions{Remap: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.Store.NodeCount())
	assert.Equal(t, []int64{100, 7, 55}, loaded.OriginalIDs)
}

func TestReadEdgeList_Malformed(t *testing.T) {
	for _, input := range []string{"1\n", "a,b\n", "1,2,x\n", "1,2,3,4\n", "-1,2\n"} {
		_, err := ReadEdgeList(strings.NewReader(input), LoadOptions{})
		assert.ErrorIs(t, err, ErrMalformedInput, "input %q", input)
	}
}

func TestReadEdgeList_SparseIDs(t *testing.T) {
	input := "0,9000000000000000000\n"
	var err error
	assert.NotPanics(t, func() {
		_, err = ReadEdgeList(strings.NewReader(input), LoadOptions{})
	})
	require.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "9000000000000000000")
	assert.Contains(t, err.Error(), "Remap")

	loaded, err := ReadEdgeList(strings.NewReader(input), LoadOptions{Remap: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 9000000000000000000}, loaded.OriginalIDs)

	loaded, err = ReadEdgeList(strings.NewReader("3,1000\n"), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1001), loaded.Store.NodeCount())
}

func TestLoadEdgeList_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.csv")
	require.NoError(t, os.WriteFile(path, []byte("0,1,2.0\n1,2,3.0\n"), 0o600))

	loaded, err := LoadEdgeList(path, LoadOptions{WeightProperty: "cost"})
	require.NoError(t, err)

	g, err := loaded.Store.Project(ProjectionConfig{Orientation: Undirected, RelationshipProperty: "cost"})
	require.NoError(t, err)
	assert.Equal(t, 5.0*2, TotalWeight(g, 1.0))

	_, err = LoadEdgeList(filepath.Join(t.TempDir(), "missing.csv"), LoadOptions{})
	assert.Error(t, err)
}
