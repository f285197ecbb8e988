package view

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
)

type inputState struct {
	dragging   bool
	lastMouseX int
	lastMouseY int
}

// handleMouse: left click selects the visual under the cursor or spawns the
// palette type on empty ground, right drag pans, the wheel zooms.
func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		ground := g.camera.ScreenToWorld(float32(mx), float32(my))
		if id, ok := g.visuals.Pick(ground.X(), ground.Z()); ok {
			g.selectEntity(id)
		} else {
			g.spawnAt(g.panels.spawnType(), ground.X(), ground.Z())
		}
	}

	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && g.input.dragging {
		g.camera.Pan(float32(mx-g.input.lastMouseX), float32(my-g.input.lastMouseY))
	}
	g.input.dragging = right
	g.input.lastMouseX, g.input.lastMouseY = mx, my

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.camera.ZoomAt(float32(dy)*0.2, float32(mx), float32(my))
	}
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.destroySelected()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.camera.CentreOn(0, 0)
	}
}

func (g *Game) spawnAt(typ string, x, z float32) {
	if typ == "" {
		return
	}
	id := g.integration.Spawn(typ, mgl32.Vec3{x, 0, z})
	if id == bridge.SpawnFailed {
		g.panels.setStatus(render.LevelCritical, "not enough memory for %s (%dKB)", typ, g.bridge().MemoryCost(typ))
		return
	}
	g.selectEntity(id)
	g.panels.setStatus(render.LevelOK, "spawned %s #%d", typ, id)
}
