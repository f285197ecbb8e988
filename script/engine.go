// Package script lets students drive a scene from Lua. The engine exposes the
// boundary operations as global functions and can run as a bridge loop task,
// calling the script's on_tick(dt) once per iteration.
package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// TickHook is the global a script defines to be called every loop iteration.
const TickHook = "on_tick"

// Engine wraps a single gopher-lua VM bound to one bridge. Like the bridge,
// it must only be used from the goroutine that owns the bridge.
type Engine struct {
	vm     *lua.LState
	bridge *bridge.Bridge
	log    *zap.Logger
}

// NewEngine creates a VM with the workbench functions installed.
func NewEngine(b *bridge.Bridge, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("SPAWN_FAILED", lua.LNumber(bridge.SpawnFailed))

	e := &Engine{vm: vm, bridge: b, log: log}
	for name, fn := range map[string]lua.LGFunction{
		"spawn_entity":      e.spawnEntity,
		"destroy_entity":    e.destroyEntity,
		"get_entity":        e.getEntity,
		"get_transform":     e.getTransform,
		"entity_count":      e.entityCount,
		"entity_ids":        e.entityIds,
		"clear_scene":       e.clearScene,
		"can_spawn":         e.canSpawn,
		"memory_cost":       e.memoryCost,
		"memory_percentage": e.memoryPercentage,
		"memory_used":       e.memoryUsed,
		"memory_limit":      e.memoryLimit,
		"log":               e.logMessage,
	} {
		vm.SetGlobal(name, vm.NewFunction(fn))
	}
	return e
}

// RunFile executes a script file.
func (e *Engine) RunFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("run %s: %w", path, err)
	}
	e.log.Info("script loaded", zap.String("file", path))
	return nil
}

// RunString executes a chunk of Lua source.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

// HasTickHook reports whether the loaded scripts define on_tick.
func (e *Engine) HasTickHook() bool {
	_, ok := e.vm.GetGlobal(TickHook).(*lua.LFunction)
	return ok
}

// Tick calls on_tick(dt) if the script defines it.
func (e *Engine) Tick(dt float64) error {
	fn, ok := e.vm.GetGlobal(TickHook).(*lua.LFunction)
	if !ok {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(dt)); err != nil {
		return fmt.Errorf("%s: %w", TickHook, err)
	}
	return nil
}

// Execute runs the tick hook as a bridge loop task. Errors are logged and the
// hook is called again on the next iteration.
func (e *Engine) Execute(frame *bridge.Frame) {
	if err := e.Tick(frame.DeltaTime); err != nil {
		e.log.Error("lua tick error", zap.Error(err))
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) spawnEntity(L *lua.LState) int {
	typ := L.CheckString(1)
	x, y, z := optCoord(L, 2), optCoord(L, 3), optCoord(L, 4)
	L.Push(lua.LNumber(e.bridge.SpawnEntity(typ, x, y, z)))
	return 1
}

// optCoord reads an optional coordinate that must stay finite as a float32.
func optCoord(L *lua.LState, n int) float32 {
	v := float32(L.OptNumber(n, 0))
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		L.ArgError(n, "coordinate out of range")
	}
	return v
}

func (e *Engine) destroyEntity(L *lua.LState) int {
	e.bridge.DestroyEntity(L.CheckInt(1))
	return 0
}

func (e *Engine) getEntity(L *lua.LState) int {
	doc, ok, err := bridge.ParseEntity(e.bridge.GetEntity(L.CheckInt(1)))
	if err != nil {
		L.RaiseError("get_entity: %v", err)
		return 0
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	t := L.NewTable()
	t.RawSetString("id", lua.LNumber(doc.Id))
	t.RawSetString("type", lua.LString(doc.Type))
	t.RawSetString("position", vecTable(L, doc.Position))
	t.RawSetString("rotation", vecTable(L, doc.Rotation))
	t.RawSetString("scale", vecTable(L, doc.Scale))
	t.RawSetString("memory_cost_kb", lua.LNumber(doc.MemoryCostKB))
	L.Push(t)
	return 1
}

func (e *Engine) getTransform(L *lua.LState) int {
	doc, ok, err := bridge.ParseTransform(e.bridge.GetTransform(L.CheckInt(1)))
	if err != nil {
		L.RaiseError("get_transform: %v", err)
		return 0
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	t := L.NewTable()
	t.RawSetString("position", vecTable(L, doc.Position))
	t.RawSetString("rotation", vecTable(L, doc.Rotation))
	t.RawSetString("scale", vecTable(L, doc.Scale))
	L.Push(t)
	return 1
}

func (e *Engine) entityCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.bridge.GetEntityCount()))
	return 1
}

func (e *Engine) entityIds(L *lua.LState) int {
	ids, err := bridge.ParseIds(e.bridge.ListEntityIds())
	if err != nil {
		L.RaiseError("entity_ids: %v", err)
		return 0
	}
	t := L.CreateTable(len(ids), 0)
	for _, id := range ids {
		t.Append(lua.LNumber(id))
	}
	L.Push(t)
	return 1
}

func (e *Engine) clearScene(L *lua.LState) int {
	e.bridge.ClearScene()
	return 0
}

func (e *Engine) canSpawn(L *lua.LState) int {
	L.Push(lua.LBool(e.bridge.CanSpawn(L.CheckString(1))))
	return 1
}

func (e *Engine) memoryCost(L *lua.LState) int {
	L.Push(lua.LNumber(e.bridge.MemoryCost(L.CheckString(1))))
	return 1
}

func (e *Engine) memoryPercentage(L *lua.LState) int {
	L.Push(lua.LNumber(e.bridge.MemoryPercentage()))
	return 1
}

func (e *Engine) memoryUsed(L *lua.LState) int {
	L.Push(lua.LNumber(e.bridge.EntityMemoryCost()))
	return 1
}

func (e *Engine) memoryLimit(L *lua.LState) int {
	L.Push(lua.LNumber(e.bridge.MemoryLimit()))
	return 1
}

func (e *Engine) logMessage(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.log.Info(strings.Join(parts, " "))
	return 0
}

func vecTable(L *lua.LState, v bridge.Vec3Doc) *lua.LTable {
	t := L.CreateTable(0, 3)
	t.RawSetString("x", lua.LNumber(v.X))
	t.RawSetString("y", lua.LNumber(v.Y))
	t.RawSetString("z", lua.LNumber(v.Z))
	return t
}
