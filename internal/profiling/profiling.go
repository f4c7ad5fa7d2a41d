// Package profiling accumulates wall-clock time per named task within one
// frame of the viewer loop.
package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	mu     sync.Mutex
	totals = make(map[string]time.Duration)
)

// Track starts a timer and returns the function that stops it.
//
//	defer profiling.Track("meshing.Build")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		totals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears the totals. The frame loop calls it once per frame.
func ResetFrame() {
	mu.Lock()
	clear(totals)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(totals))
	for k, v := range totals {
		out[k] = v
	}
	return out
}

// SumWithPrefix adds up every task whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var sum time.Duration
	for k, v := range totals {
		if strings.HasPrefix(k, prefix) {
			sum += v
		}
	}
	return sum
}

// Entry is one task total.
type Entry struct {
	Name     string
	Duration time.Duration
}

// Top returns the n most expensive tasks, largest first.
func Top(n int) []Entry {
	snap := Snapshot()
	list := make([]Entry, 0, len(snap))
	for k, v := range snap {
		list = append(list, Entry{Name: k, Duration: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Duration != list[j].Duration {
			return list[i].Duration > list[j].Duration
		}
		return list[i].Name < list[j].Name
	})
	if n < len(list) {
		list = list[:n]
	}
	return list
}

// TopN formats Top(n) for a log line, e.g.
// "meshing.Build:4.2ms, physics.Pick:0.3ms".
func TopN(n int) string {
	top := Top(n)
	parts := make([]string, len(top))
	for i, e := range top {
		ms := float64(e.Duration.Microseconds()) / 1000
		parts[i] = e.Name + ":" + strconv.FormatFloat(ms, 'f', 1, 64) + "ms"
	}
	return strings.Join(parts, ", ")
}
