package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-tick CPU profiler used for slow-tick reports. Timings
// arrive through metrics.Track.

var (
	mu         sync.Mutex
	tickTotals = make(map[string]time.Duration)
)

// Add records d under name for the current tick.
func Add(name string, d time.Duration) {
	mu.Lock()
	tickTotals[name] += d
	mu.Unlock()
}

// ResetTick clears current per-tick totals. Call at the start of each tick.
func ResetTick() {
	mu.Lock()
	clear(tickTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-tick totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(tickTotals))
	for k, v := range tickTotals {
		out[k] = v
	}
	return out
}

// TopN formats the n most expensive entries of the current tick.
// Example: "meshing.BuildMesh:2.1ms, world.UpdateStreaming:0.4ms"
func TopN(n int) string {
	ss := Snapshot()
	names := make([]string, 0, len(ss))
	for k := range ss {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ss[names[i]] != ss[names[j]] {
			return ss[names[i]] > ss[names[j]]
		}
		return names[i] < names[j]
	})
	if n > len(names) {
		n = len(names)
	}
	parts := make([]string, 0, n)
	for _, name := range names[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", name, float64(ss[name].Microseconds())/1000.0))
	}
	return strings.Join(parts, ", ")
}
