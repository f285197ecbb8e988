package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/stretchr/testify/assert"
)

func TestCameraRoundTrip(t *testing.T) {
	c := render.NewCamera(800, 600, 2)

	sx, sy := c.WorldToScreen(mgl32.Vec3{0, 5, 0})
	assert.InDelta(t, 400, sx, 1e-3)
	assert.InDelta(t, 300, sy, 1e-3)

	p := c.ScreenToWorld(432, 300)
	assert.InDelta(t, 1, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Z(), 1e-4)
	assert.Equal(t, float32(64), c.Pixels(2))
}

func TestCameraZoomKeepsAnchor(t *testing.T) {
	c := render.NewCamera(800, 600, 1)
	before := c.ScreenToWorld(100, 200)

	c.ZoomAt(1, 100, 200)
	after := c.ScreenToWorld(100, 200)

	assert.Equal(t, float32(2), c.Zoom)
	assert.InDelta(t, before.X(), after.X(), 1e-4)
	assert.InDelta(t, before.Z(), after.Z(), 1e-4)
}

func TestCameraZoomClamped(t *testing.T) {
	c := render.NewCamera(800, 600, 10)
	assert.Equal(t, float32(render.MaxZoom), c.Zoom)

	c.ZoomAt(-100, 0, 0)
	assert.Equal(t, float32(render.MinZoom), c.Zoom)
}

func TestCameraPanAndVisible(t *testing.T) {
	c := render.NewCamera(800, 600, 1)
	c.Pan(16, 0)

	sx, _ := c.WorldToScreen(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 416, sx, 1e-3)

	assert.True(t, c.Visible(-5, 10, 10))
	assert.False(t, c.Visible(900, 10, 10))
}
