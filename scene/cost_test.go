package scene_test

import (
	"path/filepath"
	"testing"

	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCostTable(t *testing.T) {
	costs := scene.DefaultCostTable()

	tests := []struct {
		typ  string
		want int
	}{
		{"tree_pine", 12},
		{"tree_oak", 15},
		{"tree_birch", 13},
		{"building_house", 30},
		{"building_castle", 45},
		{"spaceship", 45},
		{"marker", 1},
		{"mystery_blob", 10},
		{"", 10},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, costs.Cost(tt.typ))
		})
	}
}

func TestBuiltinCostTableDefault(t *testing.T) {
	costs := scene.BuiltinCostTable(25)
	assert.Equal(t, 25, costs.Cost("mystery_blob"))
	assert.Equal(t, 25, costs.DefaultKB())
	assert.Equal(t, 12, costs.Cost("tree_pine"))
}

func TestCostTableIsACopy(t *testing.T) {
	src := map[string]int{"x": 40}
	costs := scene.NewCostTable(src, 5)

	src["x"] = 1000
	src["y"] = 7

	assert.Equal(t, 40, costs.Cost("x"))
	assert.Equal(t, 5, costs.Cost("y"))
	assert.False(t, costs.Known("y"))
}

func TestCostTableTypesSorted(t *testing.T) {
	costs := scene.NewCostTable(map[string]int{"b": 1, "c": 2, "a": 3}, 0)
	assert.Equal(t, []string{"a", "b", "c"}, costs.Types())
}

func TestParseCostTable(t *testing.T) {
	t.Run("with default", func(t *testing.T) {
		costs, err := scene.ParseCostTable([]byte(`
default_kb: 7
types:
  tree_pine: 20
  lamp: 3
`), scene.DefaultCostKB)
		require.NoError(t, err)
		assert.Equal(t, 20, costs.Cost("tree_pine"))
		assert.Equal(t, 3, costs.Cost("lamp"))
		assert.Equal(t, 7, costs.Cost("unknown"))
		assert.Equal(t, 7, costs.DefaultKB())
	})

	t.Run("fallback default", func(t *testing.T) {
		costs, err := scene.ParseCostTable([]byte("types:\n  lamp: 3\n"), 11)
		require.NoError(t, err)
		assert.Equal(t, 11, costs.Cost("unknown"))
	})

	t.Run("negative cost", func(t *testing.T) {
		_, err := scene.ParseCostTable([]byte("types:\n  lamp: -3\n"), 10)
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := scene.ParseCostTable([]byte("types: [oops"), 10)
		assert.Error(t, err)
	})
}

func TestLoadCostTableMissingFile(t *testing.T) {
	_, err := scene.LoadCostTable(t.TempDir()+"/nope.yaml", 10)
	assert.Error(t, err)
}

func TestShippedCostTableMatchesBuiltin(t *testing.T) {
	loaded, err := scene.LoadCostTable(filepath.Join("..", "data", "costs.yaml"), 0)
	require.NoError(t, err)

	builtin := scene.DefaultCostTable()
	assert.Equal(t, builtin.Types(), loaded.Types())
	assert.Equal(t, builtin.DefaultKB(), loaded.DefaultKB())
	for _, typ := range builtin.Types() {
		assert.Equal(t, builtin.Cost(typ), loaded.Cost(typ), typ)
	}
}
