package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/nodeattr/attr"
)

type Report struct {
	// Configuration
	Duration    time.Duration
	Nodes       int
	Attributes  int
	OpsPerFrame int
	Seed        int64

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	Ops            OpCounts
	LiveNodes      int
	UpperNodeID    int
	Registry       *attr.RegistryStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// OpCounts tallies the operations issued by the workload.
type OpCounts struct {
	Sets        int64
	Gets        int64
	Hits        int64
	Removals    int64
	Iterations  int64
	Visited     int64
	Reattaches  int64
	StaleChecks int64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Node Attribute Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Initial Nodes:** {{.Nodes}}
- **Attributes:** {{.Attributes}}
- **Operations per Frame:** {{.OpsPerFrame}}
- **Seed:** {{.Seed}}

## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Test Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Operations
- Sets:          {{.Ops.Sets}}
- Gets:          {{.Ops.Gets}} ({{.Ops.Hits}} hits, {{pct .Ops.Hits .Ops.Gets}})
- Node Removals: {{.Ops.Removals}}
- Iterations:    {{.Ops.Iterations}} ({{.Ops.Visited}} values visited)
- Re-attaches:   {{.Ops.Reattaches}} ({{.Ops.StaleChecks}} stale handle checks)

## Final State
- Live Nodes:    {{.LiveNodes}}
- Upper Node ID: {{.UpperNodeID}}
{{- with .Registry}}
- Total Values:  {{.TotalValues}}
{{range .Attributes}}
  - {{.Name}} ({{.Type}}): {{.Values}} values, high water {{.HighWater}}
{{- end}}
{{- end}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"pct": func(part, total int64) string {
			if total == 0 {
				return "0.0%"
			}
			return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
