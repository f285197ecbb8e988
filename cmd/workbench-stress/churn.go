package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
)

// Counts tallies what the churn did.
type Counts struct {
	Spawns     int64
	Refused    int64
	Destroys   int64
	Misses     int64
	Clears     int64
	Violations int64
	PeakKB     int
}

// churner applies one random boundary operation per loop iteration and
// checks the budget invariant after it.
type churner struct {
	rng        *rand.Rand
	types      []string
	spawnRatio float64
	clearRatio float64
	worldSize  float32

	counts  Counts
	lastErr error
}

func newChurner(rng *rand.Rand, types []string, spawnRatio, clearRatio float64) *churner {
	// An unknown type exercises the default cost.
	types = append(types[:len(types):len(types)], "mystery_blob")
	return &churner{
		rng:        rng,
		types:      types,
		spawnRatio: spawnRatio,
		clearRatio: clearRatio,
		worldSize:  100,
	}
}

func (c *churner) Execute(frame *bridge.Frame) {
	c.step(frame.Bridge)
}

func (c *churner) step(b *bridge.Bridge) {
	roll := c.rng.Float64()
	switch {
	case roll < c.clearRatio:
		b.ClearScene()
		c.counts.Clears++
	case roll < c.clearRatio+c.spawnRatio:
		typ := c.types[c.rng.IntN(len(c.types))]
		pos := c.randomPosition()
		if b.SpawnEntity(typ, pos.X(), pos.Y(), pos.Z()) == bridge.SpawnFailed {
			c.counts.Refused++
		} else {
			c.counts.Spawns++
		}
	default:
		// Probe ids past the end too, so misses are exercised.
		id := c.rng.IntN(b.GetEntityCount()*2 + 1)
		before := b.GetEntityCount()
		b.DestroyEntity(id)
		if b.GetEntityCount() < before {
			c.counts.Destroys++
		} else {
			c.counts.Misses++
		}
	}

	c.counts.PeakKB = max(c.counts.PeakKB, b.EntityMemoryCost())
	if err := checkInvariant(b); err != nil {
		c.counts.Violations++
		c.lastErr = err
	}
}

func (c *churner) randomPosition() mgl32.Vec3 {
	return mgl32.Vec3{
		(c.rng.Float32() - 0.5) * c.worldSize,
		0,
		(c.rng.Float32() - 0.5) * c.worldSize,
	}
}

// checkInvariant verifies that the committed total equals the sum of the
// active entities' spawn-time costs and never exceeds the limit.
func checkInvariant(b *bridge.Bridge) error {
	store := b.Scene().Store()

	sum, n := 0, 0
	for e := range store.Iter() {
		sum += e.MemoryCostKB
		n++
	}
	if committed := b.EntityMemoryCost(); committed != sum {
		return fmt.Errorf("committed %dKB but active entities cost %dKB", committed, sum)
	}
	if b.EntityMemoryCost() > b.MemoryLimit() {
		return fmt.Errorf("committed %dKB exceeds limit %dKB", b.EntityMemoryCost(), b.MemoryLimit())
	}

	ids, err := bridge.ParseIds(b.ListEntityIds())
	if err != nil {
		return err
	}
	if len(ids) != n || b.GetEntityCount() != n {
		return fmt.Errorf("count mismatch: iter=%d ids=%d count=%d", n, len(ids), b.GetEntityCount())
	}
	return nil
}
