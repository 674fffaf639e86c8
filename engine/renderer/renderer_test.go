package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeSurface struct {
	api window.GraphicsAPI
}

func (s *fakeSurface) GraphicsAPI() window.GraphicsAPI             { return s.api }
func (s *fakeSurface) SwapBuffers()                                {}
func (s *fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s *fakeSurface) Width() int                                  { return 640 }
func (s *fakeSurface) Height() int                                 { return 480 }

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		in      string
		want    BackendType
		wantErr bool
	}{
		{"legacy", BackendLegacy, false},
		{" Core ", BackendCore, false},
		{"MODERN", BackendModern, false},
		{"vulkan", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackendType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, device.ErrInvalidArgument) {
					t.Fatalf("err = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseBackendType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestBackendSelection(t *testing.T) {
	for _, b := range []BackendType{BackendLegacy, BackendCore, BackendModern} {
		t.Run(b.String(), func(t *testing.T) {
			r := newRenderer(WithBackend(b))
			backend, err := r.backend(&fakeSurface{api: b.GraphicsAPI()})
			if err != nil {
				t.Fatalf("backend: %v", err)
			}
			if backend.Name() != b.String() {
				t.Errorf("Name = %q, want %q", backend.Name(), b.String())
			}
		})
	}
}

func TestBackendRejectsMismatchedWindow(t *testing.T) {
	r := newRenderer(WithBackend(BackendCore))
	_, err := r.backend(&fakeSurface{api: window.APIOpenGL21})
	if !errors.Is(err, device.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}

	if _, err := r.backend(nil); !errors.Is(err, device.ErrInvalidArgument) {
		t.Errorf("nil surface err = %v, want ErrInvalidArgument", err)
	}
}

func TestBackendRejectsBadSampleCount(t *testing.T) {
	r := newRenderer(WithBackend(BackendModern), WithMSAA(3))
	if _, err := r.backend(&fakeSurface{}); !errors.Is(err, device.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestRendererDefaults(t *testing.T) {
	r := newRenderer()
	if r.backendType != BackendModern || r.presentMode != PresentModeVSync || r.msaa != MSAAOff {
		t.Errorf("defaults = %v %v %v", r.backendType, r.presentMode, r.msaa)
	}

	r = newRenderer(WithDeviceOptions(device.WithName("a")), WithDeviceOptions(device.WithName("b")))
	if len(r.deviceOptions) != 2 {
		t.Errorf("device options = %d, want 2", len(r.deviceOptions))
	}
}

func TestPresentModeMapping(t *testing.T) {
	if PresentModeVSync.swapInterval() != 1 || PresentModeUncapped.swapInterval() != 0 {
		t.Error("swap interval mapping")
	}
	if PresentModeVSync.wgpu() != wgpu.PresentModeFifo || PresentModeUncapped.wgpu() != wgpu.PresentModeImmediate {
		t.Error("wgpu present mode mapping")
	}
}

func TestParsePresentMode(t *testing.T) {
	for in, want := range map[string]PresentMode{"vsync": PresentModeVSync, " Uncapped": PresentModeUncapped} {
		got, err := ParsePresentMode(in)
		if err != nil || got != want {
			t.Errorf("ParsePresentMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePresentMode("mailbox"); !errors.Is(err, device.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}
