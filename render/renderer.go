// Package render is the presentation side of the workbench. It never mutates
// scene state on its own: it mirrors the scene into a set of visuals, either
// by polling (Sync) or by acting on the results of calls it made itself
// (Integration).
package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
)

// Renderer is the service a rendering engine offers the integration layer.
// Calls are one-way notifications; the return value only reports whether the
// renderer acted on it.
type Renderer interface {
	CreateVisual(id int, typ string, pos mgl32.Vec3) bool
	RemoveVisual(id int) bool
	UpdateVisualTransform(id int, t scene.Transform) bool
}
