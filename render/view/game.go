// Package view is the interactive top-down renderer of the workbench. It
// draws the visual set with ebiten and overlays Dear ImGui panels for the
// memory budget, the entity browser and the spawn palette.
//
// The game goroutine owns the scene: every Update drives one iteration of
// the bridge loop, so commands queued by other goroutines (the websocket
// server, for example) run between frames.
package view

import (
	"time"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"go.uber.org/zap"
)

// Options sizes the window.
type Options struct {
	Width  int
	Height int
	Title  string
	Zoom   float32
}

// Game implements ebiten.Game over a bridge loop.
type Game struct {
	backend     *ebitenbackend.EbitenBackend
	loop        *bridge.Loop
	visuals     *render.VisualSet
	integration *render.Integration
	camera      *render.Camera
	panels      *panels
	input       inputState
	opts        Options

	selected   int
	lastUpdate time.Time
	log        *zap.Logger
}

// New creates a game that draws the visuals maintained by sync. The sync
// must already be registered with loop.
func New(loop *bridge.Loop, sync *render.Sync, opts Options, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	visuals := sync.Visuals()
	return &Game{
		loop:        loop,
		visuals:     visuals,
		integration: render.NewIntegration(loop.Bridge(), visuals, log.Named("integration")),
		camera:      render.NewCamera(opts.Width, opts.Height, opts.Zoom),
		panels:      newPanels(loop.Bridge().Scene().Costs().Types()),
		opts:        opts,
		selected:    -1,
		log:         log,
	}
}

// Run opens the window and blocks until it is closed.
func (g *Game) Run() error {
	g.backend = ebitenbackend.NewEbitenBackend()
	g.backend.CreateWindow(g.opts.Title, g.opts.Width, g.opts.Height)
	imgui.CurrentIO().SetIniFilename("")

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.lastUpdate = time.Now()
	g.log.Info("window opened", zap.String("title", g.opts.Title))
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	dt := now.Sub(g.lastUpdate).Seconds()
	g.lastUpdate = now

	g.backend.BeginFrame()

	g.loop.Once(dt)
	g.dropStaleSelection()

	if !imgui.CurrentIO().WantCaptureMouse() {
		g.handleMouse()
	}
	if !imgui.CurrentIO().WantCaptureKeyboard() {
		g.handleKeys()
	}
	g.panels.render(g)

	g.backend.EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.camera.ScreenW = screen.Bounds().Dx()
	g.camera.ScreenH = screen.Bounds().Dy()

	screen.Fill(backgroundColor)
	drawGrid(screen, g.camera)
	for _, v := range g.visuals.Visuals() {
		drawVisual(screen, g.camera, v)
	}

	g.backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func (g *Game) bridge() *bridge.Bridge {
	return g.loop.Bridge()
}

func (g *Game) selectEntity(id int) {
	if g.selected >= 0 {
		g.visuals.Unhighlight(g.selected)
	}
	g.selected = id
	if id >= 0 {
		g.visuals.Highlight(id)
	}
}

func (g *Game) dropStaleSelection() {
	if g.selected >= 0 && !g.visuals.Has(g.selected) {
		g.selected = -1
	}
}

func (g *Game) destroySelected() {
	if g.selected < 0 {
		return
	}
	id := g.selected
	g.selectEntity(-1)
	g.integration.Destroy(id)
	g.panels.setStatus(render.LevelOK, "destroyed #%d", id)
}

func (g *Game) clearScene() {
	g.selectEntity(-1)
	g.integration.Clear()
	g.panels.setStatus(render.LevelOK, "scene cleared")
}
