package render_test

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVisualSet() *render.VisualSet {
	return render.NewVisualSet(nil, rand.New(rand.NewPCG(1, 2)), nil)
}

func TestCreateVisualRefusesDuplicates(t *testing.T) {
	vs := newVisualSet()

	assert.True(t, vs.CreateVisual(0, "tree_pine", mgl32.Vec3{1, 0, 1}))
	assert.False(t, vs.CreateVisual(0, "tree_oak", mgl32.Vec3{5, 0, 5}))

	v, ok := vs.Get(0)
	require.True(t, ok)
	assert.Equal(t, "tree_pine", v.Type)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, v.Transform.Position)
	assert.Equal(t, 1, vs.Len())
}

func TestCreateVisualVariation(t *testing.T) {
	vs := newVisualSet()
	for i := range 200 {
		require.True(t, vs.CreateVisual(i, "tree_oak", mgl32.Vec3{}))
		v, _ := vs.Get(i)
		assert.GreaterOrEqual(t, v.Yaw, float32(0))
		assert.Less(t, v.Yaw, float32(360))
		assert.GreaterOrEqual(t, v.ScaleJitter, float32(0.8))
		assert.LessOrEqual(t, v.ScaleJitter, float32(1.2))
	}
}

func TestUnknownTypeUsesFallbackAsset(t *testing.T) {
	vs := newVisualSet()
	require.True(t, vs.CreateVisual(3, "dragon", mgl32.Vec3{}))

	v, _ := vs.Get(3)
	assert.Equal(t, render.FallbackAsset, v.Asset)

	_, known := vs.Asset("dragon")
	assert.False(t, known)
	_, known = vs.Asset("marker")
	assert.True(t, known)
}

func TestRemoveAndUpdateVisual(t *testing.T) {
	vs := newVisualSet()
	vs.CreateVisual(1, "marker", mgl32.Vec3{})

	moved := scene.Transform{
		Position: mgl32.Vec3{2, 0, 3},
		Rotation: mgl32.Vec3{0, 90, 0},
		Scale:    mgl32.Vec3{2, 2, 2},
	}
	assert.True(t, vs.UpdateVisualTransform(1, moved))
	v, _ := vs.Get(1)
	assert.Equal(t, moved, v.Transform)

	assert.True(t, vs.RemoveVisual(1))
	assert.False(t, vs.RemoveVisual(1))
	assert.False(t, vs.UpdateVisualTransform(1, moved))
	assert.False(t, vs.Has(1))
}

func TestHighlight(t *testing.T) {
	vs := newVisualSet()
	vs.CreateVisual(0, "marker", mgl32.Vec3{})

	assert.True(t, vs.Highlight(0))
	assert.Equal(t, 1, vs.Stats().Highlighted)
	assert.True(t, vs.Unhighlight(0))
	assert.Equal(t, 0, vs.Stats().Highlighted)
	assert.False(t, vs.Highlight(9))
}

func TestPick(t *testing.T) {
	vs := newVisualSet()
	vs.CreateVisual(0, "building_castle", mgl32.Vec3{0, 0, 0})
	vs.CreateVisual(1, "marker", mgl32.Vec3{1, 0, 0})
	vs.CreateVisual(2, "marker", mgl32.Vec3{50, 0, 50})

	id, ok := vs.Pick(1, 0)
	require.True(t, ok)
	assert.Equal(t, 1, id, "closest centre wins inside overlapping footprints")

	id, ok = vs.Pick(-1, 1)
	require.True(t, ok)
	assert.Equal(t, 0, id)

	_, ok = vs.Pick(20, 20)
	assert.False(t, ok)
}

func TestIdsAndStats(t *testing.T) {
	vs := newVisualSet()
	for _, id := range []int{5, 1, 3} {
		vs.CreateVisual(id, "tree_pine", mgl32.Vec3{})
	}
	vs.CreateVisual(7, "spaceship", mgl32.Vec3{})

	assert.Equal(t, []int{1, 3, 5, 7}, vs.Ids())

	visuals := vs.Visuals()
	require.Len(t, visuals, 4)
	assert.Equal(t, 7, visuals[3].Id)

	st := vs.Stats()
	assert.Equal(t, 4, st.VisualCount)
	assert.Equal(t, map[string]int{"tree_pine": 3, "spaceship": 1}, st.ByType)
	assert.Equal(t, 48, st.EstimatedKB)

	vs.Clear()
	assert.Equal(t, 0, vs.Len())
	assert.Empty(t, vs.Ids())
}
