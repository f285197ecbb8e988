package render_test

import (
	"testing"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/render"
	"github.com/stretchr/testify/assert"
)

func TestUsageTakesLargerEstimate(t *testing.T) {
	u := render.UsageFrom(bridge.Snapshot{
		EntityMemoryCost:    100,
		ManagedHeapEstimate: 250,
		MemoryLimit:         1000,
	})
	assert.Equal(t, 250, u.UsedKB)
	assert.InDelta(t, 25.0, u.Percentage, 1e-9)
	assert.Equal(t, render.LevelOK, u.Level)
	assert.Equal(t, "250KB / 1,000KB (25.0%)", u.String())
	assert.Empty(t, u.Hint())
}

func TestUsageClampsAt100(t *testing.T) {
	u := render.UsageFrom(bridge.Snapshot{EntityMemoryCost: 5000, MemoryLimit: 1000})
	assert.Equal(t, 100.0, u.Percentage)
	assert.Equal(t, float32(1), u.Fraction())
	assert.Equal(t, render.LevelCritical, u.Level)
	assert.NotEmpty(t, u.Hint())
}

func TestUsageZeroLimit(t *testing.T) {
	u := render.UsageFrom(bridge.Snapshot{EntityMemoryCost: 10})
	assert.Equal(t, 0.0, u.Percentage)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want render.Level
	}{
		{0, render.LevelOK},
		{85, render.LevelOK},
		{85.1, render.LevelWarning},
		{94.9, render.LevelWarning},
		{95, render.LevelCritical},
		{100, render.LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, render.LevelFor(tt.pct), "pct=%v", tt.pct)
		assert.NotEmpty(t, tt.want.String())
	}
}
