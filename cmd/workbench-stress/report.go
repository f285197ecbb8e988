package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"github.com/oskinner-dev/orbrya-student-workbench/scene"
)

type Report struct {
	Duration   time.Duration
	CapacityKB int
	Seed       uint64

	Updates       frameTimes
	Counts        Counts
	FinalEntities int
	FinalVisuals  int
	FinalKB       int
	Loop          *bridge.LoopStats
	Memory        memoryDelta
	GCPause       bool
}

// frameTimes accumulates loop iteration durations without keeping samples.
type frameTimes struct {
	N        int64
	Total    time.Duration
	Min, Max time.Duration
}

func (f *frameTimes) add(d time.Duration) {
	if f.N == 0 || d < f.Min {
		f.Min = d
	}
	f.Max = max(f.Max, d)
	f.Total += d
	f.N++
}

func (f frameTimes) Avg() time.Duration {
	if f.N == 0 {
		return 0
	}
	return f.Total / time.Duration(f.N)
}

// memoryDelta is the heap movement between two MemStats reads, in KB.
type memoryDelta struct {
	HeapStartKB, HeapEndKB int
	AllocatedKB            int
	GCCycles               uint32
	GCPause                time.Duration
}

func newMemoryDelta(start, end *runtime.MemStats) memoryDelta {
	return memoryDelta{
		HeapStartKB: int(start.HeapAlloc / 1024),
		HeapEndKB:   int(end.HeapAlloc / 1024),
		AllocatedKB: int((end.TotalAlloc - start.TotalAlloc) / 1024),
		GCCycles:    end.NumGC - start.NumGC,
		GCPause:     time.Duration(end.PauseTotalNs - start.PauseTotalNs),
	}
}

const reportTemplate = `
# Workbench Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Capacity:** {{kb .CapacityKB}}
- **Seed:** {{.Seed}}

## Churn
- **Spawns:** {{.Counts.Spawns}} ({{.Counts.Refused}} refused)
- **Destroys:** {{.Counts.Destroys}} ({{.Counts.Misses}} misses)
- **Clears:** {{.Counts.Clears}}
- **Peak Committed:** {{kb .Counts.PeakKB}}
- **Final:** {{.FinalEntities}} entities, {{.FinalVisuals}} visuals, {{kb .FinalKB}}
- **Invariant Violations:** {{.Counts.Violations}}

## Loop
- **Iterations:** {{.Updates.N}} in {{.Updates.Total}}
- **Iteration Time:** avg {{.Updates.Avg}}, min {{.Updates.Min}}, max {{.Updates.Max}}
{{with .Loop}}{{range .Tasks}}- **{{.Name}}:** avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}{{end}}
## Process Heap
- **Heap:** {{kb .Memory.HeapStartKB}} -> {{kb .Memory.HeapEndKB}}
- **Allocated During Run:** {{kb .Memory.AllocatedKB}}
- **GC Cycles:** {{.Memory.GCCycles}}{{if .GCPause}}, {{.Memory.GCPause}} total pause{{end}}
`

var reportTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"kb": scene.FormatKB}).
	Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
