package scene

import "sort"

// Stats is a point-in-time summary of a scene.
type Stats struct {
	SceneID       string
	EntityCount   int
	RecordCount   int
	CommittedKB   int
	CapacityKB    int
	Percentage    float64
	TypeBreakdown []TypeStats
}

// TypeStats summarizes the active entities of one type.
type TypeStats struct {
	Type    string
	Count   int
	TotalKB int
}

// CollectStats walks the active entities and groups them by type.
func (s *Scene) CollectStats() Stats {
	stats := Stats{
		SceneID:     s.id.String(),
		EntityCount: s.store.Count(),
		RecordCount: s.store.Records(),
		CommittedKB: s.budget.CommittedKB(),
		CapacityKB:  s.budget.CapacityKB(),
		Percentage:  s.budget.Percentage(),
	}

	byType := make(map[string]*TypeStats)
	for e := range s.store.Iter() {
		ts, ok := byType[e.Type]
		if !ok {
			ts = &TypeStats{Type: e.Type}
			byType[e.Type] = ts
		}
		ts.Count++
		ts.TotalKB += e.MemoryCostKB
	}

	stats.TypeBreakdown = make([]TypeStats, 0, len(byType))
	for _, ts := range byType {
		stats.TypeBreakdown = append(stats.TypeBreakdown, *ts)
	}
	sort.Slice(stats.TypeBreakdown, func(i, j int) bool {
		return stats.TypeBreakdown[i].Type < stats.TypeBreakdown[j].Type
	})

	return stats
}
