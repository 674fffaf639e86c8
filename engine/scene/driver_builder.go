package scene

import "time"

// DriverBuilderOption is a functional option for configuring a Driver.
// Use the With* functions to create options.
type DriverBuilderOption func(d *driver)

// WithClock replaces the driver's clock. The clock returns the time elapsed since some fixed
// start and is read once per Tick.
//
// Parameters:
//   - clock: the elapsed-time source, ignored when nil
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithClock(clock func() time.Duration) DriverBuilderOption {
	return func(d *driver) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithStartTime sets the render time reported before the first Tick.
//
// Parameters:
//   - ms: the initial render time in milliseconds
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithStartTime(ms uint32) DriverBuilderOption {
	return func(d *driver) {
		d.elapsed = time.Duration(ms) * time.Millisecond
	}
}
