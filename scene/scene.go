package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config describes a scene. Zero values select the workbench defaults.
type Config struct {
	CapacityKB int
	Costs      *CostTable
	Heap       HeapReader
}

// Scene owns the cost table, budget tracker and entity store of one workbench
// scene. Independent scenes share nothing.
type Scene struct {
	id     uuid.UUID
	costs  *CostTable
	budget *BudgetTracker
	store  *EntityStore
	heap   HeapReader
	log    *zap.Logger
}

// New creates an empty scene.
func New(cfg Config, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CapacityKB <= 0 {
		cfg.CapacityKB = DefaultCapacityKB
	}
	if cfg.Costs == nil {
		cfg.Costs = DefaultCostTable()
	}
	if cfg.Heap == nil {
		cfg.Heap = RuntimeHeap{}
	}

	budget := NewBudgetTracker(cfg.Costs, cfg.CapacityKB, log.Named("memory"))
	return &Scene{
		id:     uuid.New(),
		costs:  cfg.Costs,
		budget: budget,
		store:  NewEntityStore(budget, log.Named("entities")),
		heap:   cfg.Heap,
		log:    log,
	}
}

// ID identifies the current scene lifetime. It changes on Clear, which is the
// only point where entity ids can be reused.
func (s *Scene) ID() uuid.UUID { return s.id }

// Costs, Budget and Store expose the parts the scene is built from.
func (s *Scene) Costs() *CostTable      { return s.costs }
func (s *Scene) Budget() *BudgetTracker { return s.budget }
func (s *Scene) Store() *EntityStore    { return s.store }

// Spawn admits and creates an entity. See EntityStore.Spawn.
func (s *Scene) Spawn(typ string, pos mgl32.Vec3) (EntityId, error) {
	return s.store.Spawn(typ, pos)
}

// Destroy deactivates an entity. See EntityStore.Destroy.
func (s *Scene) Destroy(id EntityId) {
	s.store.Destroy(id)
}

// Get returns the active entity with the given id.
func (s *Scene) Get(id EntityId) (Entity, bool) {
	return s.store.Get(id)
}

// Clear empties the store, resets the budget and starts a new scene lifetime.
func (s *Scene) Clear() {
	s.store.Clear()
	s.id = uuid.New()
}

// HeapKB reads the live heap. The value is never cached.
func (s *Scene) HeapKB() int {
	return s.heap.HeapKB()
}
