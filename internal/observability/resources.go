package observability

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ProcessResources is a snapshot of host CPU/memory usage, reported on the
// liveness endpoint so an operator can see whether the apiserver is under
// load without reaching for a separate monitoring stack.
type ProcessResources struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryUsedMB  uint64    `json:"memory_used_mb"`
	MemoryPercent float64   `json:"memory_percent"`
	NumGoroutine  int       `json:"num_goroutine"`
	Timestamp     time.Time `json:"timestamp"`
}

// SampleResources takes a point-in-time CPU/memory reading. cpu.Percent(0, false)
// is non-blocking (it compares against the last sample internally); callers
// should not call it faster than the interval they care about resolving.
func SampleResources() ProcessResources {
	snapshot := ProcessResources{
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now().UTC(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snapshot.CPUPercent = percents[0]
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		snapshot.MemoryUsedMB = memInfo.Used / (1024 * 1024)
		snapshot.MemoryPercent = memInfo.UsedPercent
	}

	return snapshot
}
