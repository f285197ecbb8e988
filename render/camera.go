package render

import "github.com/go-gl/mathgl/mgl32"

const (
	MinZoom = 0.5
	MaxZoom = 4.0
	// PixelsPerUnit is the screen size of one world unit at zoom 1.
	PixelsPerUnit = 16
)

// Camera maps the ground plane (x, z) to screen pixels for a top-down view.
// X and Z name the world point shown at the top-left corner of the screen.
type Camera struct {
	X, Z    float32
	Zoom    float32
	ScreenW int
	ScreenH int
}

// NewCamera centres the view on the world origin.
func NewCamera(screenW, screenH int, zoom float32) *Camera {
	c := &Camera{Zoom: clampZoom(zoom), ScreenW: screenW, ScreenH: screenH}
	c.CentreOn(0, 0)
	return c
}

func (c *Camera) scale() float32 {
	return c.Zoom * PixelsPerUnit
}

// CentreOn moves the camera so (x, z) is in the middle of the screen.
func (c *Camera) CentreOn(x, z float32) {
	c.X = x - float32(c.ScreenW)/2/c.scale()
	c.Z = z - float32(c.ScreenH)/2/c.scale()
}

// WorldToScreen projects a world position, ignoring height.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32) {
	return (p.X() - c.X) * c.scale(), (p.Z() - c.Z) * c.scale()
}

// ScreenToWorld returns the ground point under a screen pixel.
func (c *Camera) ScreenToWorld(sx, sy float32) mgl32.Vec3 {
	return mgl32.Vec3{c.X + sx/c.scale(), 0, c.Z + sy/c.scale()}
}

// Pixels converts a world length to screen pixels.
func (c *Camera) Pixels(length float32) float32 {
	return length * c.scale()
}

// Pan moves the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float32) {
	c.X -= dx / c.scale()
	c.Z -= dy / c.scale()
}

// ZoomAt changes zoom by delta while keeping the world point under the
// cursor fixed.
func (c *Camera) ZoomAt(delta float32, sx, sy float32) {
	anchor := c.ScreenToWorld(sx, sy)
	c.Zoom = clampZoom(c.Zoom + delta)
	c.X = anchor.X() - sx/c.scale()
	c.Z = anchor.Z() - sy/c.scale()
}

// Visible reports whether a screen point is within margin of the viewport.
func (c *Camera) Visible(sx, sy, margin float32) bool {
	return sx >= -margin && sy >= -margin &&
		sx <= float32(c.ScreenW)+margin && sy <= float32(c.ScreenH)+margin
}

func clampZoom(z float32) float32 {
	return mgl32.Clamp(z, MinZoom, MaxZoom)
}
