package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"go.uber.org/zap"
)

// Integration performs scene operations through the bridge and tells the
// renderer about the outcome. It runs on the goroutine that owns the bridge.
type Integration struct {
	bridge   *bridge.Bridge
	renderer Renderer
	log      *zap.Logger
}

// NewIntegration binds b to r. A nil log discards output.
func NewIntegration(b *bridge.Bridge, r Renderer, log *zap.Logger) *Integration {
	if log == nil {
		log = zap.NewNop()
	}
	return &Integration{bridge: b, renderer: r, log: log}
}

// Spawn creates an entity and its visual. It returns bridge.SpawnFailed when
// the budget refuses, in which case the renderer is not called.
func (i *Integration) Spawn(typ string, pos mgl32.Vec3) int {
	id := i.bridge.SpawnEntity(typ, pos.X(), pos.Y(), pos.Z())
	if id == bridge.SpawnFailed {
		i.log.Info("spawn refused",
			zap.String("type", typ),
			zap.Int("costKB", i.bridge.MemoryCost(typ)),
			zap.Float64("usage", i.bridge.MemoryPercentage()))
		return id
	}
	i.renderer.CreateVisual(id, typ, pos)
	return id
}

// Destroy removes an entity and its visual.
func (i *Integration) Destroy(id int) {
	i.bridge.DestroyEntity(id)
	i.renderer.RemoveVisual(id)
}

// Clear removes every entity and every visual that mirrored one.
func (i *Integration) Clear() {
	ids, err := bridge.ParseIds(i.bridge.ListEntityIds())
	if err != nil {
		i.log.Error("list before clear", zap.Error(err))
	}
	i.bridge.ClearScene()
	for _, id := range ids {
		i.renderer.RemoveVisual(id)
	}
}

// RefreshTransform pushes the current transform of id to the renderer.
func (i *Integration) RefreshTransform(id int) bool {
	t, ok, err := bridge.ParseTransform(i.bridge.GetTransform(id))
	if err != nil {
		i.log.Error("refresh transform", zap.Int("id", id), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	return i.renderer.UpdateVisualTransform(id, t.Transform())
}
