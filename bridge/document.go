package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"go.uber.org/zap"
)

// EmptyDocument is returned by lookups that miss.
const EmptyDocument = "{}"

// SpawnFailed is returned by SpawnEntity when the spawn is refused.
const SpawnFailed = -1

// Vec3Doc is the wire form of a vector.
type Vec3Doc struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func newVec3Doc(v mgl32.Vec3) Vec3Doc {
	return Vec3Doc{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Vec converts back to a vector.
func (d Vec3Doc) Vec() mgl32.Vec3 {
	return mgl32.Vec3{d.X, d.Y, d.Z}
}

// TransformDoc is the document returned by GetTransform.
type TransformDoc struct {
	Position Vec3Doc `json:"position"`
	Rotation Vec3Doc `json:"rotation"`
	Scale    Vec3Doc `json:"scale"`
}

func newTransformDoc(t scene.Transform) TransformDoc {
	return TransformDoc{
		Position: newVec3Doc(t.Position),
		Rotation: newVec3Doc(t.Rotation),
		Scale:    newVec3Doc(t.Scale),
	}
}

// Transform converts back to a scene transform.
func (d TransformDoc) Transform() scene.Transform {
	return scene.Transform{
		Position: d.Position.Vec(),
		Rotation: d.Rotation.Vec(),
		Scale:    d.Scale.Vec(),
	}
}

// EntityDoc is the document returned by GetEntity.
type EntityDoc struct {
	Id           int     `json:"id"`
	Type         string  `json:"type"`
	Position     Vec3Doc `json:"position"`
	Rotation     Vec3Doc `json:"rotation"`
	Scale        Vec3Doc `json:"scale"`
	MemoryCostKB int     `json:"memoryCostKB"`
}

func newEntityDoc(e scene.Entity) EntityDoc {
	return EntityDoc{
		Id:           int(e.Id),
		Type:         e.Type,
		Position:     newVec3Doc(e.Position),
		Rotation:     newVec3Doc(e.Rotation),
		Scale:        newVec3Doc(e.Scale),
		MemoryCostKB: e.MemoryCostKB,
	}
}

// Transform returns the spatial part of the document.
func (d EntityDoc) Transform() scene.Transform {
	return scene.Transform{
		Position: d.Position.Vec(),
		Rotation: d.Rotation.Vec(),
		Scale:    d.Scale.Vec(),
	}
}

// encode marshals v, falling back to EmptyDocument if it cannot be encoded.
func (b *Bridge) encode(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		b.log.Error("cannot encode document", zap.String("doc", fmt.Sprintf("%T", v)), zap.Error(err))
		return EmptyDocument
	}
	return string(raw)
}

func isEmpty(doc string) bool {
	return strings.TrimSpace(doc) == EmptyDocument
}

// ParseEntity decodes a GetEntity document. ok is false for the empty
// document.
func ParseEntity(doc string) (e EntityDoc, ok bool, err error) {
	if isEmpty(doc) {
		return EntityDoc{}, false, nil
	}
	if err := json.Unmarshal([]byte(doc), &e); err != nil {
		return EntityDoc{}, false, fmt.Errorf("parse entity document: %w", err)
	}
	return e, true, nil
}

// ParseTransform decodes a GetTransform document. ok is false for the empty
// document.
func ParseTransform(doc string) (t TransformDoc, ok bool, err error) {
	if isEmpty(doc) {
		return TransformDoc{}, false, nil
	}
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return TransformDoc{}, false, fmt.Errorf("parse transform document: %w", err)
	}
	return t, true, nil
}

// ParseIds decodes a ListEntityIds document.
func ParseIds(doc string) ([]int, error) {
	ids := []int{}
	if err := json.Unmarshal([]byte(doc), &ids); err != nil {
		return nil, fmt.Errorf("parse id list: %w", err)
	}
	return ids, nil
}
