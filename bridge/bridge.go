// Package bridge exposes a scene across the backend/renderer boundary.
//
// Bridge offers the synchronous command/query operations a renderer calls,
// encoding structured results as JSON documents. Snapshot is the read-only
// view a renderer polls. Queue and Loop let other goroutines hand work to the
// single goroutine that owns the scene.
package bridge

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"go.uber.org/zap"
)

// Bridge is the boundary API over one scene. Like the scene it wraps, it is
// not safe for concurrent use.
type Bridge struct {
	scene    *scene.Scene
	notifier Notifier
	log      *zap.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNotifier attaches a notifier that is told about every budget change.
func WithNotifier(n Notifier) Option {
	return func(b *Bridge) { b.notifier = n }
}

// New wraps s.
func New(s *scene.Scene, log *zap.Logger, opts ...Option) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bridge{scene: s, log: log}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scene returns the wrapped scene.
func (b *Bridge) Scene() *scene.Scene { return b.scene }

// SpawnEntity creates an entity and returns its id, or SpawnFailed when the
// budget cannot admit it or a coordinate is not finite.
func (b *Bridge) SpawnEntity(typ string, x, y, z float32) int {
	id, err := b.scene.Spawn(typ, mgl32.Vec3{x, y, z})
	if err != nil {
		b.log.Debug("spawnEntity refused", zap.String("type", typ), zap.Error(err))
		return SpawnFailed
	}
	b.notify()
	return int(id)
}

// DestroyEntity deactivates an entity. Unknown ids are ignored.
func (b *Bridge) DestroyEntity(id int) {
	before := b.scene.Store().Count()
	b.scene.Destroy(scene.EntityId(id))
	if b.scene.Store().Count() != before {
		b.notify()
	}
}

// GetEntity returns the entity document, or EmptyDocument.
func (b *Bridge) GetEntity(id int) string {
	e, ok := b.scene.Get(scene.EntityId(id))
	if !ok {
		return EmptyDocument
	}
	return b.encode(newEntityDoc(e))
}

// GetTransform returns the transform document, or EmptyDocument.
func (b *Bridge) GetTransform(id int) string {
	e, ok := b.scene.Get(scene.EntityId(id))
	if !ok {
		return EmptyDocument
	}
	return b.encode(newTransformDoc(e.Transform))
}

// GetEntityCount returns the number of active entities.
func (b *Bridge) GetEntityCount() int {
	return b.scene.Store().Count()
}

// ListEntityIds returns the active ids as a JSON array in insertion order.
func (b *Bridge) ListEntityIds() string {
	active := b.scene.Store().ActiveIds()
	ids := make([]int, len(active))
	for i, id := range active {
		ids[i] = int(id)
	}
	return b.encode(ids)
}

// ClearScene removes every entity and resets the budget. The next spawned
// entity gets id 0 again.
func (b *Bridge) ClearScene() {
	b.scene.Clear()
	b.notify()
}

// EntityMemoryCost is the committed entity-cost estimate in KB.
func (b *Bridge) EntityMemoryCost() int {
	return b.scene.Budget().CommittedKB()
}

// MemoryLimit is the budget capacity in KB.
func (b *Bridge) MemoryLimit() int {
	return b.scene.Budget().CapacityKB()
}

// MemoryPercentage is the unclamped committed percentage.
func (b *Bridge) MemoryPercentage() float64 {
	return b.scene.Budget().Percentage()
}

// CanSpawn reports whether typ would be admitted right now.
func (b *Bridge) CanSpawn(typ string) bool {
	return b.scene.Budget().CanAdmit(typ)
}

// MemoryCost is the cost table entry for typ.
func (b *Bridge) MemoryCost(typ string) int {
	return b.scene.Costs().Cost(typ)
}

// ManagedHeapEstimate reads the live host heap in KB. Informational only.
func (b *Bridge) ManagedHeapEstimate() int {
	return b.scene.HeapKB()
}

// SceneID identifies the current scene lifetime.
func (b *Bridge) SceneID() string {
	return b.scene.ID().String()
}

func (b *Bridge) notify() {
	if b.notifier != nil {
		b.notifier.BudgetChanged()
	}
}
