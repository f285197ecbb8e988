package render_test

import (
	"errors"
	"testing"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge() *bridge.Bridge {
	s := scene.New(scene.Config{Heap: scene.FixedHeap(2048)}, nil)
	return bridge.New(s, nil)
}

func TestReconcileCreatesAndRemoves(t *testing.T) {
	b := newBridge()
	sync := render.NewSync(newVisualSet(), 0, nil)
	src := render.LocalSource{Bridge: b}

	a := b.SpawnEntity("tree_pine", 1, 0, 2)
	c := b.SpawnEntity("spaceship", 4, 1, 4)

	res, err := sync.Reconcile(src)
	require.NoError(t, err)
	assert.Equal(t, render.SyncResult{Created: 2}, res)
	assert.Equal(t, []int{a, c}, sync.Visuals().Ids())

	v, _ := sync.Visuals().Get(c)
	assert.Equal(t, "spaceship", v.Type)
	assert.Equal(t, float32(1), v.Transform.Position.Y())

	b.DestroyEntity(a)
	res, err = sync.Reconcile(src)
	require.NoError(t, err)
	assert.Equal(t, render.SyncResult{Removed: 1}, res)
	assert.Equal(t, []int{c}, sync.Visuals().Ids())

	res, err = sync.Reconcile(src)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, int64(3), sync.Polls())
}

func TestReconcileResetsOnClear(t *testing.T) {
	b := newBridge()
	sync := render.NewSync(newVisualSet(), 0, nil)
	src := render.LocalSource{Bridge: b}

	b.SpawnEntity("tree_oak", 0, 0, 0)
	b.SpawnEntity("tree_oak", 1, 0, 0)
	_, err := sync.Reconcile(src)
	require.NoError(t, err)

	// Ids restart at 0 after a clear, so the old visual for 0 must not survive.
	b.ClearScene()
	id := b.SpawnEntity("marker", 9, 0, 9)
	require.Equal(t, 0, id)

	res, err := sync.Reconcile(src)
	require.NoError(t, err)
	assert.True(t, res.Reset)
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, 1, res.Created)

	v, ok := sync.Visuals().Get(0)
	require.True(t, ok)
	assert.Equal(t, "marker", v.Type)
}

func TestTickHonoursInterval(t *testing.T) {
	b := newBridge()
	sync := render.NewSync(newVisualSet(), 250*time.Millisecond, nil)
	src := render.LocalSource{Bridge: b}
	b.SpawnEntity("marker", 0, 0, 0)

	_, polled, err := sync.Tick(100*time.Millisecond, src)
	require.NoError(t, err)
	assert.False(t, polled)
	assert.Equal(t, 0, sync.Visuals().Len())

	_, polled, err = sync.Tick(150*time.Millisecond, src)
	require.NoError(t, err)
	assert.True(t, polled)
	assert.Equal(t, 1, sync.Visuals().Len())

	_, polled, _ = sync.Tick(10*time.Millisecond, src)
	assert.False(t, polled)
}

func TestSyncAsLoopTask(t *testing.T) {
	b := newBridge()
	queue := bridge.NewQueue()
	loop := bridge.NewLoop(b, queue)
	sync := render.NewSync(newVisualSet(), 0, nil)
	loop.Register(sync)

	queue.Defer(func(b *bridge.Bridge) { b.SpawnEntity("tree_birch", 0, 0, 0) })
	loop.Once(0.016)
	assert.Equal(t, []int{0}, sync.Visuals().Ids())

	queue.Defer(func(b *bridge.Bridge) { b.DestroyEntity(0) })
	loop.Once(0.016)
	assert.Empty(t, sync.Visuals().Ids())

	stats := loop.GetStats()
	require.Len(t, stats.Tasks, 1)
	assert.Equal(t, "Sync", stats.Tasks[0].Name)
}

type failingSource struct {
	render.LocalSource
	err error
}

func (f failingSource) ListEntityIds() (string, error) { return "", f.err }

func TestReconcileSourceError(t *testing.T) {
	boom := errors.New("connection lost")
	sync := render.NewSync(newVisualSet(), 0, nil)

	_, err := sync.Reconcile(failingSource{LocalSource: render.LocalSource{Bridge: newBridge()}, err: boom})
	assert.ErrorIs(t, err, boom)
}
