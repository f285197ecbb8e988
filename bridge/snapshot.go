package bridge

// Snapshot is the read-only state a renderer polls between frames.
type Snapshot struct {
	SceneID             string
	EntityCount         int
	EntityMemoryCost    int
	ManagedHeapEstimate int
	MemoryLimit         int
	MemoryPercentage    float64
}

// Snapshot reads the current state. The heap is sampled fresh on every call.
func (b *Bridge) Snapshot() Snapshot {
	return Snapshot{
		SceneID:             b.SceneID(),
		EntityCount:         b.GetEntityCount(),
		EntityMemoryCost:    b.EntityMemoryCost(),
		ManagedHeapEstimate: b.ManagedHeapEstimate(),
		MemoryLimit:         b.MemoryLimit(),
		MemoryPercentage:    b.MemoryPercentage(),
	}
}
