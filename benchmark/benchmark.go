// benchmark.go
// Resource usage wrapper for MAG Buddy tool runs
// Reports wall time, allocations and GC activity for a wrapped tool

package benchmark

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Report holds the measurements of one wrapped tool run.
type Report struct {
	Label         string
	Elapsed       time.Duration
	AllocatedMB   float64
	TotalAllocMB  float64
	PeakHeapMB    float64
	GCCycles      uint32
	GCPause       time.Duration
	CPUCores      int
	GoroutinesEnd int
}

// Run executes f, measures it and prints the report. The MAG tools are
// file bound, so wall time and allocation churn are the numbers that
// matter when a run surprises you.
func Run(label string, f func()) Report {
	fmt.Printf("[benchmark] running: %s\n", label)
	fmt.Println("[benchmark] started:", time.Now().Format(time.RFC1123))
	if host, err := os.Hostname(); err == nil {
		fmt.Println("[benchmark] host:", host)
	}
	fmt.Printf("[benchmark] %s, %s/%s, %d cores\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	f()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	rep := Report{
		Label:         label,
		Elapsed:       elapsed,
		AllocatedMB:   mb(after.Alloc - before.Alloc),
		TotalAllocMB:  mb(after.TotalAlloc - before.TotalAlloc),
		PeakHeapMB:    mb(after.HeapAlloc),
		GCCycles:      after.NumGC - before.NumGC,
		GCPause:       time.Duration(after.PauseTotalNs - before.PauseTotalNs),
		CPUCores:      runtime.NumCPU(),
		GoroutinesEnd: runtime.NumGoroutine(),
	}

	fmt.Printf("[benchmark] time elapsed: %v\n", rep.Elapsed)
	fmt.Printf("[benchmark] memory in use: %.2f MB\n", rep.AllocatedMB)
	fmt.Printf("[benchmark] total allocated: %.2f MB\n", rep.TotalAllocMB)
	fmt.Printf("[benchmark] peak heap: %.2f MB\n", rep.PeakHeapMB)
	fmt.Printf("[benchmark] gc cycles: %d (%v paused)\n", rep.GCCycles, rep.GCPause)
	fmt.Printf("[benchmark] goroutines at exit: %d\n", rep.GoroutinesEnd)
	fmt.Println("[benchmark] ----------------------------------------")
	return rep
}

func mb(bytes uint64) float64 {
	return float64(bytes) / 1024.0 / 1024.0
}
