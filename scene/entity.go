package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// EntityId identifies an entity within one scene lifetime. Ids start at 0 and
// are never reused until the scene is cleared.
type EntityId int

// InvalidEntityId is never assigned to an entity.
const InvalidEntityId EntityId = -1

// Transform groups the spatial state of an entity. Rotation is in degrees.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// IdentityTransform places an object at pos with no rotation and unit scale.
func IdentityTransform(pos mgl32.Vec3) Transform {
	return Transform{
		Position: pos,
		Rotation: mgl32.Vec3{0, 0, 0},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Entity is one record in the store.
type Entity struct {
	Id   EntityId
	Type string
	Transform
	// MemoryCostKB is the cost charged at spawn time.
	MemoryCostKB int
	Active       bool
}

func newEntity(id EntityId, typ string, pos mgl32.Vec3, costKB int) Entity {
	return Entity{
		Id:           id,
		Type:         typ,
		Transform:    IdentityTransform(pos),
		MemoryCostKB: costKB,
		Active:       true,
	}
}

func (e Entity) String() string {
	return fmt.Sprintf("%s #%d at %s", e.Type, e.Id, FormatVec(e.Position))
}

// FormatVec renders a vector with two decimals, e.g. "(1.00, 2.00, 3.00)".
func FormatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X(), v.Y(), v.Z())
}
