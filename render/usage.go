package render

import (
	"fmt"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
)

// Level grades memory usage for display.
type Level int

const (
	LevelOK Level = iota
	LevelWarning
	LevelCritical
)

const (
	WarningPercent  = 85.0
	CriticalPercent = 95.0
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "ok"
	}
}

// LevelFor grades a percentage.
func LevelFor(pct float64) Level {
	switch {
	case pct >= CriticalPercent:
		return LevelCritical
	case pct > WarningPercent:
		return LevelWarning
	default:
		return LevelOK
	}
}

// Usage is the memory figure shown to students. It takes the larger of the
// committed entity estimate and the live heap, and is never used to admit or
// refuse a spawn.
type Usage struct {
	EntityKB   int
	HeapKB     int
	UsedKB     int
	LimitKB    int
	Percentage float64
	Level      Level
}

// UsageFrom derives the displayed usage from a snapshot.
func UsageFrom(snap bridge.Snapshot) Usage {
	u := Usage{
		EntityKB: snap.EntityMemoryCost,
		HeapKB:   snap.ManagedHeapEstimate,
		UsedKB:   max(snap.EntityMemoryCost, snap.ManagedHeapEstimate),
		LimitKB:  snap.MemoryLimit,
	}
	if u.LimitKB > 0 {
		u.Percentage = min(float64(u.UsedKB)/float64(u.LimitKB)*100, 100)
	}
	u.Level = LevelFor(u.Percentage)
	return u
}

// Fraction is Percentage scaled to [0, 1] for progress bars.
func (u Usage) Fraction() float32 {
	return float32(u.Percentage / 100)
}

func (u Usage) String() string {
	return fmt.Sprintf("%s / %s (%.1f%%)", scene.FormatKB(u.UsedKB), scene.FormatKB(u.LimitKB), u.Percentage)
}

// Hint is the tutor line shown next to the bar, empty while usage is fine.
func (u Usage) Hint() string {
	switch u.Level {
	case LevelCritical:
		return "Memory is almost full. Destroy something before spawning more."
	case LevelWarning:
		return "Memory is getting tight. Bigger objects cost more."
	default:
		return ""
	}
}
