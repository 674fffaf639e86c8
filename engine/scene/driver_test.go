package scene

import (
	"testing"
	"time"
)

type manualClock struct {
	now time.Duration
}

func (c *manualClock) elapsed() time.Duration { return c.now }

func TestDriverCreateFrame(t *testing.T) {
	d := NewDriver()
	for _, tc := range []struct {
		kind Kind
		ok   bool
	}{
		{KindNull, true},
		{KindDummy, true},
		{KindCamera, true},
		{KindSector, true},
		{KindVisual, false},
		{KindLight, false},
		{KindOccluder, false},
	} {
		t.Run(tc.kind.String(), func(t *testing.T) {
			n := d.CreateFrame(tc.kind)
			if !tc.ok {
				if n != nil {
					t.Fatalf("CreateFrame(%v) = %T, want nil", tc.kind, n)
				}
				return
			}
			if n == nil || n.Kind() != tc.kind {
				t.Fatalf("CreateFrame(%v) = %v", tc.kind, n)
			}
			if n.Flags() != FlagOn|FlagWorldDirty || n.Parent() != nil {
				t.Errorf("new %v: flags %b parent %v", tc.kind, n.Flags(), n.Parent())
			}
		})
	}

	if _, ok := d.CreateFrame(KindCamera).(*Camera); !ok {
		t.Error("camera kind is not a *Camera")
	}
}

func TestDriverTick(t *testing.T) {
	clock := &manualClock{}
	d := NewDriver(WithClock(clock.elapsed))
	if d.RenderTime() != 0 {
		t.Fatalf("render time before tick = %d", d.RenderTime())
	}

	clock.now = 1500 * time.Millisecond
	if d.RenderTime() != 0 {
		t.Fatal("render time moved without a tick")
	}
	d.Tick()
	if d.RenderTime() != 1500 {
		t.Fatalf("render time = %d, want 1500", d.RenderTime())
	}

	clock.now = time.Second
	d.Tick()
	if d.RenderTime() != 1500 {
		t.Fatalf("render time went backwards to %d", d.RenderTime())
	}

	d = NewDriver(WithClock(clock.elapsed), WithStartTime(20))
	if d.RenderTime() != 20 {
		t.Errorf("start time = %d, want 20", d.RenderTime())
	}
}

func TestDriverAnimatedTextureUsesRenderTime(t *testing.T) {
	clock := &manualClock{}
	d := NewDriver(WithClock(clock.elapsed))
	a := d.NewAnimatedTexture()
	a.SetTextures(frames(t, 2))
	a.SetDelay(100)

	clock.now = 150 * time.Millisecond
	a.Handle()
	if a.Index() != 0 {
		t.Fatalf("index = %d before the tick, want 0", a.Index())
	}
	d.Tick()
	a.Handle()
	a.Handle()
	if a.Index() != 1 {
		t.Fatalf("index = %d after the tick, want 1", a.Index())
	}
}

func TestDriverTickPastUint32Milliseconds(t *testing.T) {
	clock := &manualClock{}
	d := NewDriver(WithClock(clock.elapsed))
	a := d.NewAnimatedTexture()
	a.SetTextures(frames(t, 2))
	a.SetDelay(100)

	const wrap = time.Duration(1<<32) * time.Millisecond
	clock.now = wrap - 50*time.Millisecond
	d.Tick()
	a.Handle()
	if got := d.RenderTime(); got != 1<<32-50 {
		t.Fatalf("render time = %d, want %d", got, uint32(1<<32-50))
	}

	clock.now = wrap + 70*time.Millisecond
	d.Tick()
	if got := d.RenderTime(); got != 70 {
		t.Fatalf("render time after the wrap = %d, want 70", got)
	}
	a.Handle()
	if a.Index() != 1 {
		t.Errorf("index = %d across the wrap, want 1", a.Index())
	}

	clock.now = wrap
	d.Tick()
	if got := d.RenderTime(); got != 70 {
		t.Errorf("earlier clock value after the wrap moved render time to %d", got)
	}
}
