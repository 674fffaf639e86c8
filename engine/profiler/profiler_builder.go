package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(p *Profiler)

// WithInterval sets how often stats are sampled. Non-positive values keep the default.
//
// Parameters:
//   - interval: the sampling interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now.
//
// Parameters:
//   - now: the time source
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithResourceCounter reports a live resource count with every sample, typically
// device.Device.LiveResources.
//
// Parameters:
//   - count: returns the number of live resources
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithResourceCounter(count func() int) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.resources = count
	}
}
