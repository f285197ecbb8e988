package render

import "github.com/oskinner-dev/orbrya-student-workbench/bridge"

// Source is the read side of the boundary a renderer polls. It is satisfied
// by LocalSource in-process and by the websocket client across processes.
type Source interface {
	SceneID() (string, error)
	ListEntityIds() (string, error)
	GetEntity(id int) (string, error)
}

// LocalSource reads a bridge on the calling goroutine.
type LocalSource struct {
	Bridge *bridge.Bridge
}

func (s LocalSource) SceneID() (string, error)         { return s.Bridge.SceneID(), nil }
func (s LocalSource) ListEntityIds() (string, error)   { return s.Bridge.ListEntityIds(), nil }
func (s LocalSource) GetEntity(id int) (string, error) { return s.Bridge.GetEntity(id), nil }
