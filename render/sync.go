package render

import (
	"fmt"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"go.uber.org/zap"
)

// SyncResult reports what one reconciliation changed.
type SyncResult struct {
	Created int
	Removed int
	// Reset is set when the scene was replaced and every visual was dropped.
	Reset bool
}

// Changed reports whether the pass touched any visual.
func (r SyncResult) Changed() bool {
	return r.Created > 0 || r.Removed > 0 || r.Reset
}

// Sync mirrors a scene into a VisualSet by polling a Source. Destroyed
// entities lose their visual, new ones gain one, and a change of scene id
// drops everything so stale ids from a cleared scene are never reused.
type Sync struct {
	visuals  *VisualSet
	interval time.Duration
	elapsed  time.Duration
	sceneID  string
	log      *zap.Logger

	polls int64
}

// NewSync creates a reconciler that polls at most once per interval. A zero
// interval polls on every tick.
func NewSync(visuals *VisualSet, interval time.Duration, log *zap.Logger) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sync{visuals: visuals, interval: interval, log: log}
}

// Visuals returns the set the reconciler writes to.
func (s *Sync) Visuals() *VisualSet { return s.visuals }

// Polls returns how many reconciliations have run.
func (s *Sync) Polls() int64 { return s.polls }

// Tick advances the poll timer by dt and reconciles against src once the
// interval has elapsed. polled reports whether a reconciliation ran.
func (s *Sync) Tick(dt time.Duration, src Source) (res SyncResult, polled bool, err error) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return SyncResult{}, false, nil
	}
	s.elapsed = 0
	res, err = s.Reconcile(src)
	return res, true, err
}

// Execute lets the bridge loop drive the reconciler against its own bridge.
func (s *Sync) Execute(frame *bridge.Frame) {
	dt := time.Duration(frame.DeltaTime * float64(time.Second))
	res, polled, err := s.Tick(dt, LocalSource{Bridge: frame.Bridge})
	if err != nil {
		s.log.Error("sync failed", zap.Error(err))
		return
	}
	if polled && res.Changed() {
		s.log.Debug("sync",
			zap.Int("created", res.Created),
			zap.Int("removed", res.Removed),
			zap.Bool("reset", res.Reset))
	}
}

// Reconcile brings the visual set in line with src right now.
func (s *Sync) Reconcile(src Source) (SyncResult, error) {
	var res SyncResult
	s.polls++

	id, err := src.SceneID()
	if err != nil {
		return res, fmt.Errorf("read scene id: %w", err)
	}
	if id != s.sceneID {
		if s.sceneID != "" || s.visuals.Len() > 0 {
			res.Removed = s.visuals.Len()
			s.visuals.Clear()
			res.Reset = true
			s.log.Info("scene replaced", zap.String("scene", id))
		}
		s.sceneID = id
	}

	doc, err := src.ListEntityIds()
	if err != nil {
		return res, fmt.Errorf("list entity ids: %w", err)
	}
	ids, err := bridge.ParseIds(doc)
	if err != nil {
		return res, err
	}

	live := intmap.New[int, struct{}](len(ids))
	for _, id := range ids {
		live.Put(id, struct{}{})
	}
	for _, id := range s.visuals.Ids() {
		if !live.Has(id) {
			s.visuals.RemoveVisual(id)
			res.Removed++
		}
	}

	for _, id := range ids {
		if s.visuals.Has(id) {
			continue
		}
		doc, err := src.GetEntity(id)
		if err != nil {
			return res, fmt.Errorf("get entity %d: %w", id, err)
		}
		e, ok, err := bridge.ParseEntity(doc)
		if err != nil {
			return res, err
		}
		if !ok {
			// Destroyed between list and lookup; the next poll settles it.
			continue
		}
		if s.visuals.CreateVisual(id, e.Type, e.Position.Vec()) {
			s.visuals.UpdateVisualTransform(id, e.Transform())
			res.Created++
		}
	}
	return res, nil
}
