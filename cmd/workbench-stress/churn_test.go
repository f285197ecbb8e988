package main

import (
	"bytes"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChurnKeepsInvariant(t *testing.T) {
	s := scene.New(scene.Config{CapacityKB: 300, Heap: scene.FixedHeap(0)}, nil)
	b := bridge.New(s, nil)
	c := newChurner(rand.New(rand.NewPCG(7, 11)), s.Costs().Types(), 0.6, 0.01)

	for range 5000 {
		c.step(b)
	}

	require.NoError(t, c.lastErr)
	assert.Zero(t, c.counts.Violations)
	assert.Positive(t, c.counts.Spawns)
	assert.Positive(t, c.counts.Refused, "a small budget must refuse some spawns")
	assert.Positive(t, c.counts.Destroys)
	assert.Positive(t, c.counts.Clears)
	assert.LessOrEqual(t, c.counts.PeakKB, 300)
}

func TestChurnerDoesNotAliasTypes(t *testing.T) {
	types := []string{"a", "b"}
	newChurner(rand.New(rand.NewPCG(1, 1)), types, 1, 0)
	assert.Equal(t, []string{"a", "b"}, types)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{
		CapacityKB: 4096,
		Counts:     Counts{Spawns: 3, Refused: 1},
		Loop:       &bridge.LoopStats{Tasks: []bridge.TaskStats{{Name: "churner"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	assert.Contains(t, buf.String(), "**Capacity:** 4,096KB")
	assert.Contains(t, buf.String(), "**Spawns:** 3 (1 refused)")
	assert.Contains(t, buf.String(), "**churner:**")
	assert.NotContains(t, buf.String(), "total pause")
}

func TestReportMemoryAndFrames(t *testing.T) {
	start := runtime.MemStats{HeapAlloc: 2048 * 1024, TotalAlloc: 1024, NumGC: 3, PauseTotalNs: 1000}
	end := runtime.MemStats{HeapAlloc: 3072 * 1024, TotalAlloc: 1024 + 5000*1024, NumGC: 7, PauseTotalNs: 5000}

	r := &Report{Memory: newMemoryDelta(&start, &end), GCPause: true}
	for _, d := range []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond} {
		r.Updates.add(d)
	}
	assert.Equal(t, time.Millisecond, r.Updates.Min)
	assert.Equal(t, 3*time.Millisecond, r.Updates.Max)
	assert.Equal(t, 2*time.Millisecond, r.Updates.Avg())
	assert.Zero(t, frameTimes{}.Avg())

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	assert.Contains(t, buf.String(), "**Heap:** 2,048KB -> 3,072KB")
	assert.Contains(t, buf.String(), "**Allocated During Run:** 5,000KB")
	assert.Contains(t, buf.String(), "**GC Cycles:** 4, 4µs total pause")
	assert.Contains(t, buf.String(), "**Iterations:** 3 in 6ms")
}
