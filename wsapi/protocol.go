// Package wsapi carries the boundary API over a websocket so a renderer can
// run in another process. Every request is answered by exactly one response
// with the same sequence number; the server may also push events.
package wsapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
)

// Operation names.
const (
	OpSpawnEntity         = "spawnEntity"
	OpDestroyEntity       = "destroyEntity"
	OpGetEntity           = "getEntity"
	OpGetTransform        = "getTransform"
	OpGetEntityCount      = "getEntityCount"
	OpListEntityIds       = "listEntityIds"
	OpClearScene          = "clearScene"
	OpEntityMemoryCost    = "getEntityMemoryCost"
	OpMemoryLimit         = "getMemoryLimit"
	OpMemoryPercentage    = "getMemoryPercentage"
	OpCanSpawn            = "canSpawn"
	OpMemoryCost          = "getMemoryCost"
	OpManagedHeapEstimate = "getManagedHeapEstimate"
	OpSceneID             = "getSceneId"
	OpSnapshot            = "snapshot"
)

// EventBudgetChanged is pushed after every mutation when the server was
// built with notifications on.
const EventBudgetChanged = "budgetChanged"

// ErrUnknownOp is reported for operations the server does not implement.
var ErrUnknownOp = errors.New("unknown operation")

// Request is one client call.
type Request struct {
	Seq  uint64  `json:"seq"`
	Op   string  `json:"op"`
	Type string  `json:"type,omitempty"`
	Id   int     `json:"id,omitempty"`
	X    float32 `json:"x,omitempty"`
	Y    float32 `json:"y,omitempty"`
	Z    float32 `json:"z,omitempty"`
}

// Response answers the request with the same Seq, or carries an Event with
// Seq 0.
type Response struct {
	Seq    uint64          `json:"seq"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Event  string          `json:"event,omitempty"`
}

// SnapshotDoc is the result of OpSnapshot.
type SnapshotDoc struct {
	SceneID             string  `json:"sceneId"`
	EntityCount         int     `json:"entityCount"`
	EntityMemoryCost    int     `json:"entityMemoryCost"`
	ManagedHeapEstimate int     `json:"managedHeapEstimate"`
	MemoryLimit         int     `json:"memoryLimit"`
	MemoryPercentage    float64 `json:"memoryPercentage"`
}

func (d SnapshotDoc) Snapshot() bridge.Snapshot {
	return bridge.Snapshot(d)
}

// dispatch runs req against b. Documents returned by the bridge are already
// JSON and are passed through untouched.
func dispatch(b *bridge.Bridge, req Request) (json.RawMessage, error) {
	switch req.Op {
	case OpSpawnEntity:
		return marshal(b.SpawnEntity(req.Type, req.X, req.Y, req.Z))
	case OpDestroyEntity:
		b.DestroyEntity(req.Id)
		return nil, nil
	case OpGetEntity:
		return json.RawMessage(b.GetEntity(req.Id)), nil
	case OpGetTransform:
		return json.RawMessage(b.GetTransform(req.Id)), nil
	case OpGetEntityCount:
		return marshal(b.GetEntityCount())
	case OpListEntityIds:
		return json.RawMessage(b.ListEntityIds()), nil
	case OpClearScene:
		b.ClearScene()
		return nil, nil
	case OpEntityMemoryCost:
		return marshal(b.EntityMemoryCost())
	case OpMemoryLimit:
		return marshal(b.MemoryLimit())
	case OpMemoryPercentage:
		return marshal(b.MemoryPercentage())
	case OpCanSpawn:
		return marshal(b.CanSpawn(req.Type))
	case OpMemoryCost:
		return marshal(b.MemoryCost(req.Type))
	case OpManagedHeapEstimate:
		return marshal(b.ManagedHeapEstimate())
	case OpSceneID:
		return marshal(b.SceneID())
	case OpSnapshot:
		return marshal(SnapshotDoc(b.Snapshot()))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
}

func marshal(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return raw, nil
}
