package view

import (
	"fmt"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
)

type panels struct {
	types    []string
	typeIdx  int
	filter   string
	status   string
	statusLv render.Level
}

func newPanels(types []string) *panels {
	return &panels{types: types}
}

func (p *panels) spawnType() string {
	if len(p.types) == 0 {
		return ""
	}
	return p.types[p.typeIdx]
}

func (p *panels) setStatus(lv render.Level, format string, args ...any) {
	p.status = fmt.Sprintf(format, args...)
	p.statusLv = lv
}

func (p *panels) render(g *Game) {
	p.renderBudget(g)
	p.renderPalette(g)
	p.renderBrowser(g)
	p.renderLoopStats(g)
}

func levelColor(lv render.Level) imgui.Vec4 {
	switch lv {
	case render.LevelCritical:
		return imgui.NewVec4(0.9, 0.2, 0.2, 1.0)
	case render.LevelWarning:
		return imgui.NewVec4(1.0, 0.7, 0.0, 1.0)
	default:
		return imgui.NewVec4(0.3, 0.8, 0.3, 1.0)
	}
}

func (p *panels) renderBudget(g *Game) {
	b := g.bridge()
	usage := render.UsageFrom(b.Snapshot())

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 200), imgui.CondOnce)

	if !imgui.BeginV("Memory Budget", nil, 0) {
		imgui.End()
		return
	}

	imgui.PushStyleColorVec4(imgui.ColPlotHistogram, levelColor(usage.Level))
	imgui.ProgressBarV(usage.Fraction(), imgui.NewVec2(-1, 0), fmt.Sprintf("%.1f%%", usage.Percentage))
	imgui.PopStyleColor()

	imgui.Text(usage.String())
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Entities: %d", b.GetEntityCount()))
	imgui.Text(fmt.Sprintf("Entity estimate: %s (%.1f%%)", scene.FormatKB(usage.EntityKB), b.MemoryPercentage()))
	imgui.Text(fmt.Sprintf("Live heap: %s", scene.FormatKB(usage.HeapKB)))

	if hint := usage.Hint(); hint != "" {
		imgui.Separator()
		imgui.TextColored(levelColor(usage.Level), hint)
	}
	if p.status != "" {
		imgui.Separator()
		imgui.TextColored(levelColor(p.statusLv), p.status)
	}
	imgui.End()
}

func (p *panels) renderPalette(g *Game) {
	b := g.bridge()

	imgui.SetNextWindowPosV(imgui.NewVec2(10, 220), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(320, 300), imgui.CondOnce)

	if !imgui.BeginV("Spawn Palette", nil, 0) {
		imgui.End()
		return
	}

	imgui.Text("Click the ground to place:")
	for i, typ := range p.types {
		label := fmt.Sprintf("%-16s %4dKB", typ, b.MemoryCost(typ))
		if !b.CanSpawn(typ) {
			imgui.PushStyleColorVec4(imgui.ColText, levelColor(render.LevelCritical))
			if imgui.SelectableBool(label) {
				p.typeIdx = i
			}
			imgui.PopStyleColor()
			continue
		}
		if imgui.SelectableBoolV(label, p.typeIdx == i, 0, imgui.NewVec2(0, 0)) {
			p.typeIdx = i
		}
	}

	imgui.Separator()
	imgui.PushStyleColorVec4(imgui.ColButton, imgui.NewVec4(0.7, 0.2, 0.2, 1.0))
	imgui.PushStyleColorVec4(imgui.ColButtonHovered, imgui.NewVec4(0.8, 0.3, 0.3, 1.0))
	imgui.PushStyleColorVec4(imgui.ColButtonActive, imgui.NewVec4(0.6, 0.1, 0.1, 1.0))
	if imgui.Button("Clear Scene") {
		g.clearScene()
	}
	imgui.PopStyleColor()
	imgui.PopStyleColor()
	imgui.PopStyleColor()

	imgui.End()
}

func (p *panels) renderBrowser(g *Game) {
	store := g.bridge().Scene().Store()

	imgui.SetNextWindowPosV(imgui.NewVec2(340, 10), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 320), imgui.CondOnce)

	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.InputTextWithHint("##search", "Search...", &p.filter, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Destroy Selected") {
		g.destroySelected()
	}

	filter := strings.ToLower(p.filter)
	shown := 0

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, -imgui.FrameHeightWithSpacing()), 0) {
		imgui.TableSetupColumn("Id")
		imgui.TableSetupColumn("Type")
		imgui.TableSetupColumn("Position")
		imgui.TableSetupColumn("Cost")
		imgui.TableHeadersRow()

		for e := range store.Iter() {
			if filter != "" && !strings.Contains(e.Type, filter) && !strings.Contains(fmt.Sprintf("%d", e.Id), filter) {
				continue
			}
			shown++
			imgui.TableNextRow()

			imgui.TableNextColumn()
			id := int(e.Id)
			if imgui.SelectableBoolV(fmt.Sprintf("%d", id), g.selected == id, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				g.selectEntity(id)
			}

			imgui.TableNextColumn()
			imgui.Text(e.Type)

			imgui.TableNextColumn()
			imgui.Text(scene.FormatVec(e.Position))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%dKB", e.MemoryCostKB))
		}
		imgui.EndTable()
	}

	imgui.Text(fmt.Sprintf("Showing %d of %d entities", shown, store.Count()))
	imgui.End()
}

func (p *panels) renderLoopStats(g *Game) {
	stats := g.loop.GetStats()
	visuals := g.visuals.Stats()

	imgui.SetNextWindowPosV(imgui.NewVec2(340, 340), imgui.CondOnce, imgui.NewVec2(0, 0))
	imgui.SetNextWindowSizeV(imgui.NewVec2(420, 180), imgui.CondOnce)

	if !imgui.BeginV("Loop", nil, 0) {
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Iterations: %d  Commands: %d", stats.Iterations, stats.CommandsFlushed))
	imgui.Text(fmt.Sprintf("Visuals: %d (~%s)  Highlighted: %d", visuals.VisualCount, scene.FormatKB(visuals.EstimatedKB), visuals.Highlighted))
	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSizingFixedFit
	if imgui.BeginTableV("Tasks", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Avg (ms)")
		imgui.TableSetupColumn("Min (ms)")
		imgui.TableSetupColumn("Max (ms)")
		imgui.TableHeadersRow()

		for _, task := range stats.Tasks {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			imgui.Text(task.Name)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", float64(task.AvgDuration.Microseconds())/1000.0))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", float64(task.MinDuration.Microseconds())/1000.0))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.3f", float64(task.MaxDuration.Microseconds())/1000.0))
		}
		imgui.EndTable()
	}
	imgui.End()
}
