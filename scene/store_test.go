package scene_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(capacityKB int, costs map[string]int) *scene.Scene {
	return scene.New(scene.Config{
		CapacityKB: capacityKB,
		Costs:      scene.NewCostTable(costs, scene.DefaultCostKB),
		Heap:       scene.FixedHeap(0),
	}, nil)
}

func activeCostKB(s *scene.Scene) int {
	total := 0
	for e := range s.Store().Iter() {
		total += e.MemoryCostKB
	}
	return total
}

func TestSpawnDefaults(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	id, err := s.Spawn("tree_pine", mgl32.Vec3{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(0), id)

	e, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "tree_pine", e.Type)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, e.Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, e.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, e.Scale)
	assert.Equal(t, 12, e.MemoryCostKB)
	assert.True(t, e.Active)
	assert.Equal(t, 1, s.Store().Count())
}

func TestSpawnCapacityScenario(t *testing.T) {
	s := newTestScene(100, map[string]int{"x": 40})

	id0, err := s.Spawn("x", mgl32.Vec3{})
	require.NoError(t, err)
	id1, err := s.Spawn("x", mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(0), id0)
	assert.Equal(t, scene.EntityId(1), id1)
	assert.Equal(t, 80, s.Budget().CommittedKB())

	id2, err := s.Spawn("x", mgl32.Vec3{})
	assert.ErrorIs(t, err, scene.ErrCapacityExceeded)
	assert.Equal(t, scene.InvalidEntityId, id2)
	assert.Equal(t, 80, s.Budget().CommittedKB())
	assert.Equal(t, 2, s.Store().Count())
	assert.Equal(t, 2, s.Store().Records())
}

func TestFailedSpawnDoesNotConsumeId(t *testing.T) {
	s := newTestScene(100, map[string]int{"x": 40, "huge": 500})

	_, err := s.Spawn("huge", mgl32.Vec3{})
	require.ErrorIs(t, err, scene.ErrCapacityExceeded)

	id, err := s.Spawn("x", mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(0), id)
}

func TestSpawnRejectsNonFinitePosition(t *testing.T) {
	s := newTestScene(100, map[string]int{"x": 40})

	for _, pos := range []mgl32.Vec3{
		{float32(math.Inf(1)), 0, 0},
		{0, float32(math.NaN()), 0},
		{0, 0, float32(math.Inf(-1))},
	} {
		id, err := s.Spawn("x", pos)
		require.ErrorIs(t, err, scene.ErrInvalidPosition)
		assert.Equal(t, scene.InvalidEntityId, id)
	}
	assert.Equal(t, 0, s.Budget().CommittedKB())
	assert.Equal(t, 0, s.Store().Records())

	id, err := s.Spawn("x", mgl32.Vec3{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(0), id)
}

func TestUnknownTypeUsesDefaultCost(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	id, err := s.Spawn("mystery_blob", mgl32.Vec3{})
	require.NoError(t, err)

	e, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 10, e.MemoryCostKB)
	assert.Equal(t, 10, s.Budget().CommittedKB())
}

func TestDestroyIsIdempotent(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	id, err := s.Spawn("tree_pine", mgl32.Vec3{})
	require.NoError(t, err)
	_, err = s.Spawn("marker", mgl32.Vec3{})
	require.NoError(t, err)

	s.Destroy(id)
	assert.Equal(t, 1, s.Store().Count())
	assert.Equal(t, 1, s.Budget().CommittedKB())

	s.Destroy(id)
	assert.Equal(t, 1, s.Store().Count())
	assert.Equal(t, 1, s.Budget().CommittedKB())

	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestDestroyTwiceScenario(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	id, err := s.Spawn("tree_pine", mgl32.Vec3{})
	require.NoError(t, err)

	s.Destroy(id)
	assert.Equal(t, 0, s.Store().Count())
	assert.Equal(t, 0, s.Budget().CommittedKB())

	s.Destroy(id)
	assert.Equal(t, 0, s.Store().Count())
	assert.Equal(t, 0, s.Budget().CommittedKB())
}

func TestDestroyUnknownId(t *testing.T) {
	s := scene.New(scene.Config{}, nil)
	_, err := s.Spawn("tree_oak", mgl32.Vec3{})
	require.NoError(t, err)

	s.Destroy(42)
	s.Destroy(-1)

	assert.Equal(t, 1, s.Store().Count())
	assert.Equal(t, 15, s.Budget().CommittedKB())
}

func TestActiveIdsKeepInsertionOrder(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	for range 5 {
		_, err := s.Spawn("marker", mgl32.Vec3{})
		require.NoError(t, err)
	}
	s.Destroy(1)
	s.Destroy(3)

	assert.Equal(t, []scene.EntityId{0, 2, 4}, s.Store().ActiveIds())
	assert.Equal(t, 5, s.Store().Records(), "destroyed records stay in storage")

	id, err := s.Spawn("marker", mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(5), id)
	assert.Equal(t, []scene.EntityId{0, 2, 4, 5}, s.Store().ActiveIds())
}

func TestActiveIdsEmpty(t *testing.T) {
	s := scene.New(scene.Config{}, nil)
	ids := s.Store().ActiveIds()
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestClearResetsIds(t *testing.T) {
	s := scene.New(scene.Config{}, nil)
	before := s.ID()

	for range 3 {
		_, err := s.Spawn("tree_pine", mgl32.Vec3{})
		require.NoError(t, err)
	}

	s.Clear()
	assert.Equal(t, 0, s.Store().Count())
	assert.Equal(t, 0, s.Store().Records())
	assert.Equal(t, 0, s.Budget().CommittedKB())
	assert.NotEqual(t, before, s.ID())

	id, err := s.Spawn("tree_pine", mgl32.Vec3{})
	require.NoError(t, err)
	assert.Equal(t, scene.EntityId(0), id)
}

func TestIdsAreMonotonic(t *testing.T) {
	s := scene.New(scene.Config{}, nil)

	last := scene.InvalidEntityId
	for i := range 50 {
		id, err := s.Spawn("marker", mgl32.Vec3{})
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
		if i%3 == 0 {
			s.Destroy(id)
		}
	}
}

func TestSpawnSnapshotsCost(t *testing.T) {
	s := newTestScene(1000, map[string]int{"x": 40})

	id, err := s.Spawn("x", mgl32.Vec3{})
	require.NoError(t, err)

	e, ok := s.Get(id)
	require.True(t, ok)
	e.MemoryCostKB = 1

	stored, _ := s.Get(id)
	assert.Equal(t, 40, stored.MemoryCostKB, "Get returns a copy")
}

func TestCommittedMatchesActiveCosts(t *testing.T) {
	costs := map[string]int{"a": 7, "b": 31, "c": 64}
	types := []string{"a", "b", "c", "unknown"}
	s := newTestScene(600, costs)
	rng := rand.New(rand.NewPCG(1, 2))

	var spawned []scene.EntityId
	for step := range 2000 {
		switch op := rng.IntN(10); {
		case op < 6:
			id, err := s.Spawn(types[rng.IntN(len(types))], mgl32.Vec3{rng.Float32(), 0, rng.Float32()})
			if err == nil {
				spawned = append(spawned, id)
			} else {
				require.ErrorIs(t, err, scene.ErrCapacityExceeded)
			}
		case op < 9:
			if len(spawned) > 0 {
				s.Destroy(spawned[rng.IntN(len(spawned))])
			}
		default:
			if step%50 == 0 {
				s.Clear()
				spawned = spawned[:0]
			}
		}

		require.Equal(t, activeCostKB(s), s.Budget().CommittedKB(), "step %d", step)
		require.Equal(t, len(s.Store().ActiveIds()), s.Store().Count(), "step %d", step)
		require.LessOrEqual(t, s.Budget().CommittedKB(), s.Budget().CapacityKB(), "step %d", step)
	}
}
