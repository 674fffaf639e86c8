package device

// DeviceBuilderOption is a functional option applied to a device during construction via NewDevice.
type DeviceBuilderOption func(*device)

// WithName overrides the name reported by Backend() and attached to log records.
//
// Parameters:
//   - name: the device name
//
// Returns:
//   - DeviceBuilderOption: a function that applies the name option to a device
func WithName(name string) DeviceBuilderOption {
	return func(d *device) {
		if name != "" {
			d.name = name
		}
	}
}

// WithInitialStates controls whether NewDevice applies the initial render and sampler states.
// Enabled by default; disabling leaves every state at the native default.
//
// Parameters:
//   - enabled: false to skip the initial states
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option to a device
func WithInitialStates(enabled bool) DeviceBuilderOption {
	return func(d *device) {
		d.skipDefaults = !enabled
	}
}
