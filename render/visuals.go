package render

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kamstrup/intmap"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"go.uber.org/zap"
)

const (
	minScaleJitter = 0.8
	maxScaleJitter = 1.2
	// estimatedVisualKB is a rough per-visual footprint used for stats.
	estimatedVisualKB = 12
)

// Visual is the renderer-side object of one entity.
type Visual struct {
	Id    int
	Type  string
	Asset Asset
	// Transform mirrors the entity transform in the scene.
	Transform scene.Transform
	// Yaw and ScaleJitter are cosmetic variation applied on top of Transform.
	Yaw         float32
	ScaleJitter float32
	Highlighted bool
}

// Radius is the footprint of the visual on the ground plane.
func (v *Visual) Radius() float32 {
	scale := max(v.Transform.Scale.X(), v.Transform.Scale.Z())
	return v.Asset.Radius * scale * v.ScaleJitter
}

// VisualSet is an in-memory Renderer. It is what the views draw from.
type VisualSet struct {
	visuals *intmap.Map[int, *Visual]
	assets  map[string]Asset
	rng     *rand.Rand
	log     *zap.Logger
}

// NewVisualSet creates an empty set. A nil assets map uses DefaultAssets.
func NewVisualSet(assets map[string]Asset, rng *rand.Rand, log *zap.Logger) *VisualSet {
	if assets == nil {
		assets = DefaultAssets()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VisualSet{
		visuals: intmap.New[int, *Visual](64),
		assets:  assets,
		rng:     rng,
		log:     log,
	}
}

// Asset returns the archetype drawn for typ.
func (s *VisualSet) Asset(typ string) (Asset, bool) {
	a, ok := s.assets[typ]
	if !ok {
		return FallbackAsset, false
	}
	return a, true
}

// CreateVisual adds a visual for id. A second call for the same id is
// refused.
func (s *VisualSet) CreateVisual(id int, typ string, pos mgl32.Vec3) bool {
	if s.visuals.Has(id) {
		s.log.Warn("visual already exists", zap.Int("id", id), zap.String("type", typ))
		return false
	}

	asset, known := s.Asset(typ)
	if !known {
		s.log.Warn("no asset for type, using fallback", zap.String("type", typ))
	}

	s.visuals.Put(id, &Visual{
		Id:          id,
		Type:        typ,
		Asset:       asset,
		Transform:   scene.IdentityTransform(pos),
		Yaw:         s.rng.Float32() * 360,
		ScaleJitter: minScaleJitter + s.rng.Float32()*(maxScaleJitter-minScaleJitter),
	})
	s.log.Debug("visual created", zap.Int("id", id), zap.String("type", typ))
	return true
}

// RemoveVisual drops the visual for id.
func (s *VisualSet) RemoveVisual(id int) bool {
	if !s.visuals.Has(id) {
		return false
	}
	s.visuals.Del(id)
	s.log.Debug("visual removed", zap.Int("id", id))
	return true
}

// UpdateVisualTransform replaces the mirrored transform of id.
func (s *VisualSet) UpdateVisualTransform(id int, t scene.Transform) bool {
	v, ok := s.visuals.Get(id)
	if !ok {
		return false
	}
	v.Transform = t
	return true
}

// Highlight marks id as selected.
func (s *VisualSet) Highlight(id int) bool {
	return s.setHighlight(id, true)
}

// Unhighlight clears the selection mark of id.
func (s *VisualSet) Unhighlight(id int) bool {
	return s.setHighlight(id, false)
}

func (s *VisualSet) setHighlight(id int, on bool) bool {
	v, ok := s.visuals.Get(id)
	if !ok {
		return false
	}
	v.Highlighted = on
	return true
}

// Pick returns the visual whose footprint contains the ground point (x, z).
// When footprints overlap the closest centre wins.
func (s *VisualSet) Pick(x, z float32) (int, bool) {
	target := mgl32.Vec2{x, z}
	best, bestDist := -1, float32(math.MaxFloat32)

	s.visuals.ForEach(func(id int, v *Visual) bool {
		centre := mgl32.Vec2{v.Transform.Position.X(), v.Transform.Position.Z()}
		d := centre.Sub(target).Len()
		if d <= v.Radius() && (d < bestDist || (d == bestDist && id < best)) {
			best, bestDist = id, d
		}
		return true
	})
	return best, best >= 0
}

// Get returns the visual for id. The pointer stays owned by the set.
func (s *VisualSet) Get(id int) (*Visual, bool) {
	return s.visuals.Get(id)
}

// Has reports whether id has a visual.
func (s *VisualSet) Has(id int) bool {
	return s.visuals.Has(id)
}

// Len is the number of visuals.
func (s *VisualSet) Len() int {
	return s.visuals.Len()
}

// Ids returns every visual id in ascending order.
func (s *VisualSet) Ids() []int {
	ids := make([]int, 0, s.visuals.Len())
	s.visuals.ForEach(func(id int, _ *Visual) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids
}

// Visuals returns the visuals ordered by id, which is also draw order.
func (s *VisualSet) Visuals() []*Visual {
	ids := s.Ids()
	out := make([]*Visual, len(ids))
	for i, id := range ids {
		out[i], _ = s.visuals.Get(id)
	}
	return out
}

// Clear drops every visual.
func (s *VisualSet) Clear() {
	n := s.visuals.Len()
	s.visuals.Clear()
	if n > 0 {
		s.log.Debug("visuals cleared", zap.Int("count", n))
	}
}

// VisualStats summarises the set for the debug panels.
type VisualStats struct {
	VisualCount int
	ByType      map[string]int
	Highlighted int
	EstimatedKB int
}

// Stats counts the current visuals.
func (s *VisualSet) Stats() VisualStats {
	st := VisualStats{ByType: make(map[string]int)}
	s.visuals.ForEach(func(_ int, v *Visual) bool {
		st.VisualCount++
		st.ByType[v.Type]++
		if v.Highlighted {
			st.Highlighted++
		}
		return true
	})
	st.EstimatedKB = st.VisualCount * estimatedVisualKB
	return st
}
