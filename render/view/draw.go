package view

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
)

var (
	backgroundColor = color.RGBA{245, 245, 240, 255}
	gridColor       = color.RGBA{225, 225, 218, 255}
	axisColor       = color.RGBA{190, 190, 180, 255}
	highlightColor  = color.RGBA{255, 200, 0, 255}
)

// gridStep is the spacing of grid lines in world units.
const gridStep = 5

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

func drawGrid(screen *ebiten.Image, cam *render.Camera) {
	topLeft := cam.ScreenToWorld(0, 0)
	bottomRight := cam.ScreenToWorld(float32(cam.ScreenW), float32(cam.ScreenH))

	startX := float32(math.Floor(float64(topLeft.X()/gridStep))) * gridStep
	for x := startX; x <= bottomRight.X(); x += gridStep {
		sx, _ := cam.WorldToScreen(mgl32.Vec3{x, 0, 0})
		c := gridColor
		if x == 0 {
			c = axisColor
		}
		vector.StrokeLine(screen, sx, 0, sx, float32(cam.ScreenH), 1, c, false)
	}

	startZ := float32(math.Floor(float64(topLeft.Z()/gridStep))) * gridStep
	for z := startZ; z <= bottomRight.Z(); z += gridStep {
		_, sy := cam.WorldToScreen(mgl32.Vec3{0, 0, z})
		c := gridColor
		if z == 0 {
			c = axisColor
		}
		vector.StrokeLine(screen, 0, sy, float32(cam.ScreenW), sy, 1, c, false)
	}
}

func drawVisual(screen *ebiten.Image, cam *render.Camera, v *render.Visual) {
	sx, sy := cam.WorldToScreen(v.Transform.Position)
	radius := cam.Pixels(v.Radius())
	if !cam.Visible(sx, sy, radius) {
		return
	}

	yaw := mgl32.DegToRad(v.Yaw + v.Transform.Rotation.Y())
	c := v.Asset.Color

	switch v.Asset.Shape {
	case render.ShapeCircle:
		vector.DrawFilledCircle(screen, sx, sy, radius, c, true)
	case render.ShapeSquare:
		drawPolygon(screen, sx, sy, radius, yaw, 4, math.Pi/4, c)
	case render.ShapeTriangle:
		drawPolygon(screen, sx, sy, radius, yaw, 3, -math.Pi/2, c)
	case render.ShapeDiamond:
		drawPolygon(screen, sx, sy, radius, yaw, 4, 0, c)
	}

	if v.Highlighted {
		vector.StrokeCircle(screen, sx, sy, radius+3, 2, highlightColor, true)
	}
}

// drawPolygon fills a regular polygon with the given number of sides
// centred on (cx, cy), rotated by yaw plus phase.
func drawPolygon(screen *ebiten.Image, cx, cy, radius, yaw float32, sides int, phase float32, c color.RGBA) {
	rot := mgl32.Rotate2D(yaw)
	var path vector.Path
	for i := range sides {
		angle := phase + 2*math.Pi*float32(i)/float32(sides)
		corner := rot.Mul2x1(mgl32.Vec2{
			radius * float32(math.Cos(float64(angle))),
			radius * float32(math.Sin(float64(angle))),
		})
		if i == 0 {
			path.MoveTo(cx+corner.X(), cy+corner.Y())
		} else {
			path.LineTo(cx+corner.X(), cy+corner.Y())
		}
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(c.R) / 255
		vs[i].ColorG = float32(c.G) / 255
		vs[i].ColorB = float32(c.B) / 255
		vs[i].ColorA = float32(c.A) / 255
	}
	screen.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}
