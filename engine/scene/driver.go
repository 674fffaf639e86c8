package scene

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
)

// Driver creates frame nodes and textures and owns the render clock they sample.
type Driver interface {
	// CreateFrame returns a new detached node of the given kind.
	//
	// Parameters:
	//   - kind: KindNull, KindDummy, KindCamera or KindSector
	//
	// Returns:
	//   - Node: the node, or nil for any other kind
	CreateFrame(kind Kind) Node

	// RenderTime returns the clock value captured by the last Tick, in milliseconds. The value wraps
	// modulo 2^32 after about 49.7 days; differences between two render times stay correct across the wrap.
	RenderTime() uint32

	// Tick captures the clock once for the coming frame. The captured time never decreases.
	Tick()

	NewTexture() *Texture

	// NewAnimatedTexture returns an empty animated texture sampling this driver's render time.
	NewAnimatedTexture() *AnimatedTexture
}

type driver struct {
	clock func() time.Duration
	// elapsed is the captured clock value; only RenderTime narrows it to 32 bits.
	elapsed time.Duration
}

var _ Driver = &driver{}

// NewDriver creates a scene driver. The default clock counts from the call to NewDriver.
//
// Parameters:
//   - options: variadic list of DriverBuilderOption functions
//
// Returns:
//   - Driver: the driver, with render time 0 until the first Tick
func NewDriver(options ...DriverBuilderOption) Driver {
	d := &driver{}
	for _, opt := range options {
		opt(d)
	}
	if d.clock == nil {
		start := time.Now()
		d.clock = func() time.Duration { return time.Since(start) }
	}
	return d
}

func (d *driver) CreateFrame(kind Kind) Node {
	var n Node
	switch kind {
	case KindNull:
		n = NewFrame()
	case KindDummy:
		n = NewDummy()
	case KindCamera:
		n = NewCamera()
	case KindSector:
		n = NewSector()
	default:
		device.Logger().Debug("unsupported frame kind", slog.String("kind", kind.String()))
		return nil
	}
	return n
}

func (d *driver) RenderTime() uint32 {
	return uint32(d.elapsed.Milliseconds())
}

func (d *driver) Tick() {
	now := d.clock()
	if now > d.elapsed {
		d.elapsed = now
	}
}

func (d *driver) NewTexture() *Texture {
	return NewTexture()
}

func (d *driver) NewAnimatedTexture() *AnimatedTexture {
	return NewAnimatedTexture(d.RenderTime)
}
