package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/go-gl/mathgl/mgl32"
)

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("backend: core\nwindow:\n  width: 800\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Backend != "core" || cfg.Window.Width != 800 {
		t.Errorf("parsed fields lost: %+v", cfg)
	}
	if cfg.Window.Height != def.Window.Height || cfg.Window.Title != def.Window.Title {
		t.Errorf("window defaults not applied: %+v", cfg.Window)
	}
	if cfg.PresentMode != "vsync" || cfg.MSAA != 1 || cfg.ClearColor != def.ClearColor {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("empty document = %+v, want defaults", cfg)
	}
}

func TestParseRejects(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{"unknown backend", "backend: vulkan"},
		{"unknown present mode", "present_mode: triple"},
		{"bad msaa", "msaa: 3"},
		{"bad log level", "log_level: chatty"},
		{"negative size", "window:\n  width: -1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); !errors.Is(err, device.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}

	if _, err := Parse([]byte("backend: core\nfullscreen: true\n")); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yml")
	doc := "backend: legacy\npresent_mode: uncapped\nmsaa: 4\nlog_level: debug\nclear_color: [1, 0.5, 0]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ClearColorVec() != (mgl32.Vec3{1, 0.5, 0}) {
		t.Errorf("clear color = %v", cfg.ClearColorVec())
	}
	if lvl, err := cfg.Level(); err != nil || lvl != slog.LevelDebug {
		t.Errorf("level = %v, %v", lvl, err)
	}
	opts, err := cfg.RendererOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 4 || len(cfg.WindowOptions()) != 3 {
		t.Errorf("options: %d renderer, %d window", len(opts), len(cfg.WindowOptions()))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("log output = %q", out)
	}
}
