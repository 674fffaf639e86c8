// Package profiler samples frame rate and memory once per interval and logs the result.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
)

// Stats is one profiling sample.
type Stats struct {
	FPS float64
	// HeapMB is the live heap in MiB.
	HeapMB float64
	// AllocRateMB is the allocation churn since the previous sample in MiB/s.
	AllocRateMB float64
	GCCount     uint32
	// LastPause and MaxPause are GC pause times, MaxPause over the sample window.
	LastPause time.Duration
	MaxPause  time.Duration
	SysMB     float64
	// LiveResources is the device's live handle count, -1 without a resource counter.
	LiveResources int
}

// Profiler tracks frame rate and memory statistics and logs them at Info through
// device.Logger().
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now       func() time.Time
	resources func() int
	last      Stats
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		last:           Stats{LiveResources: -1},
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Last returns the most recent sample, or the zero sample before the first interval elapsed.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame. It samples and logs when the update interval has
// elapsed.
//
// Returns:
//   - bool: true if stats were sampled this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       p.memStats.NumGC,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
		LiveResources: -1,
	}

	// PauseNs is a circular buffer of the last 256 pauses
	if gcCount := s.GCCount; gcCount > 0 {
		s.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}
	if p.resources != nil {
		s.LiveResources = p.resources()
	}

	device.Logger().Info("frame stats",
		slog.Float64("fps", s.FPS),
		slog.Float64("heap_mb", s.HeapMB),
		slog.Float64("alloc_rate_mb", s.AllocRateMB),
		slog.Uint64("gc", uint64(s.GCCount)),
		slog.Duration("gc_last", s.LastPause),
		slog.Duration("gc_max", s.MaxPause),
		slog.Float64("sys_mb", s.SysMB),
		slog.Int("live_resources", s.LiveResources),
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
