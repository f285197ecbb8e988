package scene

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// ErrCapacityExceeded is returned by Spawn when the budget cannot admit the
// requested type.
var ErrCapacityExceeded = errors.New("scene: memory capacity exceeded")

// ErrInvalidPosition is returned by Spawn when a coordinate is NaN or infinite.
var ErrInvalidPosition = errors.New("scene: position must be finite")

// EntityStore keeps entity records in insertion order. Destroyed records stay
// in place with Active=false; an index of active ids to slots keeps lookups
// constant time.
type EntityStore struct {
	records []Entity
	active  *intmap.Map[EntityId, int]
	nextId  EntityId
	budget  *BudgetTracker
	log     *zap.Logger
}

// NewEntityStore creates an empty store that charges spawns to budget.
func NewEntityStore(budget *BudgetTracker, log *zap.Logger) *EntityStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityStore{
		records: make([]Entity, 0, 64),
		active:  intmap.New[EntityId, int](64),
		budget:  budget,
		log:     log,
	}
}

// Spawn creates an active entity of typ at pos. If the budget cannot admit
// typ nothing changes, no id is consumed, and ErrCapacityExceeded is returned.
// A non-finite pos is refused the same way with ErrInvalidPosition.
func (s *EntityStore) Spawn(typ string, pos mgl32.Vec3) (EntityId, error) {
	if !finite(pos) {
		s.log.Warn("cannot spawn: invalid position",
			zap.String("type", typ),
			zap.String("position", FormatVec(pos)))
		return InvalidEntityId, ErrInvalidPosition
	}
	if !s.budget.CanAdmit(typ) {
		s.log.Warn("cannot spawn: memory limit reached",
			zap.String("type", typ),
			zap.Int("committed_kb", s.budget.CommittedKB()),
			zap.Int("capacity_kb", s.budget.CapacityKB()))
		return InvalidEntityId, ErrCapacityExceeded
	}

	id := s.nextId
	s.nextId++

	e := newEntity(id, typ, pos, s.budget.Costs().Cost(typ))
	s.records = append(s.records, e)
	s.active.Put(id, len(s.records)-1)
	s.budget.Commit(typ)

	s.log.Info("spawned", zap.Stringer("entity", e))
	return id, nil
}

// Destroy deactivates the entity and releases its cost. Unknown or already
// destroyed ids are ignored.
func (s *EntityStore) Destroy(id EntityId) {
	slot, ok := s.active.Get(id)
	if !ok {
		s.log.Debug("destroy: entity not found or already destroyed", zap.Int("id", int(id)))
		return
	}

	e := &s.records[slot]
	e.Active = false
	s.active.Del(id)
	s.budget.Release(e.Type)

	s.log.Info("destroyed", zap.String("type", e.Type), zap.Int("id", int(id)))
}

// Get returns a copy of the active entity with the given id.
func (s *EntityStore) Get(id EntityId) (Entity, bool) {
	slot, ok := s.active.Get(id)
	if !ok {
		return Entity{}, false
	}
	return s.records[slot], true
}

// Count returns the number of active entities.
func (s *EntityStore) Count() int {
	return s.active.Len()
}

// ActiveIds returns the ids of active entities in insertion order.
func (s *EntityStore) ActiveIds() []EntityId {
	ids := make([]EntityId, 0, s.active.Len())
	for i := range s.records {
		if s.records[i].Active {
			ids = append(ids, s.records[i].Id)
		}
	}
	return ids
}

// Iter yields every active entity in insertion order.
func (s *EntityStore) Iter() func(yield func(Entity) bool) {
	return func(yield func(Entity) bool) {
		for i := range s.records {
			if !s.records[i].Active {
				continue
			}
			if !yield(s.records[i]) {
				return
			}
		}
	}
}

// Records returns the number of stored records, including destroyed ones.
func (s *EntityStore) Records() int {
	return len(s.records)
}

// Clear removes every record, restarts ids at 0 and resets the budget.
func (s *EntityStore) Clear() {
	count := s.Count()
	s.records = s.records[:0]
	s.active.Clear()
	s.nextId = 0
	s.budget.Reset()
	s.log.Info("cleared scene", zap.Int("removed", count))
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
