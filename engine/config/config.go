// Package config loads engine settings from YAML.
//
// A minimal file:
//
//	backend: core
//	window:
//	  title: demo
//	  width: 1280
//	  height: 720
//	present_mode: vsync
//	log_level: debug
//
// Missing fields take the values of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the file Load will read.
const maxConfigSize = 1 << 20

// Config holds engine settings.
type Config struct {
	// Backend is "legacy", "core" or "modern".
	Backend string       `yaml:"backend"`
	Window  WindowConfig `yaml:"window"`
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `yaml:"present_mode"`
	// MSAA is the sample count: 1, 4, 8 or 16.
	MSAA          int  `yaml:"msaa"`
	ForceSoftware bool `yaml:"force_software"`
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel   string     `yaml:"log_level"`
	ClearColor [3]float32 `yaml:"clear_color,flow"`
}

// WindowConfig holds the window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Default returns the settings used for every field a file leaves out.
func Default() Config {
	return Config{
		Backend: "modern",
		Window: WindowConfig{
			Title:  "oxy-gfx",
			Width:  1280,
			Height: 720,
		},
		PresentMode: "vsync",
		MSAA:        1,
		LogLevel:    "info",
		ClearColor:  [3]float32{0.1, 0.1, 0.15},
	}
}

// Load reads and parses a YAML config file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - Config: the settings, defaults filled in
//   - error: error if the file cannot be read, is too large or does not parse
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config %s is %d bytes, limit %d: %w", path, info.Size(), maxConfigSize, device.ErrInvalidArgument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	device.Logger().Debug("loaded config", slog.String("path", path), slog.String("backend", cfg.Backend))
	return cfg, nil
}

// Parse decodes YAML settings. Unknown keys are rejected. An empty document yields Default.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the settings, defaults filled in
//   - error: error if the document does not parse or a value is out of range
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	c.Backend = common.Coalesce(c.Backend, def.Backend)
	c.Window.Title = common.Coalesce(c.Window.Title, def.Window.Title)
	c.Window.Width = common.Coalesce(c.Window.Width, def.Window.Width)
	c.Window.Height = common.Coalesce(c.Window.Height, def.Window.Height)
	c.PresentMode = common.Coalesce(c.PresentMode, def.PresentMode)
	c.MSAA = common.Coalesce(c.MSAA, def.MSAA)
	c.LogLevel = common.Coalesce(c.LogLevel, def.LogLevel)
	c.ClearColor = common.Coalesce(c.ClearColor, def.ClearColor)
}

// Validate checks every enumerated and numeric field.
//
// Returns:
//   - error: a joined list of problems wrapping device.ErrInvalidArgument, or nil
func (c Config) Validate() error {
	var errs []error
	if _, err := renderer.ParseBackendType(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := renderer.ParsePresentMode(c.PresentMode); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch renderer.MSAASampleCount(c.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x, renderer.MSAA8x, renderer.MSAA16x:
	default:
		errs = append(errs, fmt.Errorf("msaa %d: %w", c.MSAA, device.ErrInvalidArgument))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, device.ErrInvalidArgument))
	}
	return errors.Join(errs...)
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, device.ErrInvalidArgument)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at the configured level. Pass it to
// device.SetLogger.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ClearColorVec returns the clear color as a vector for Device.Clear.
func (c Config) ClearColorVec() mgl32.Vec3 {
	return mgl32.Vec3(c.ClearColor)
}

// RendererOptions converts the settings to renderer builder options.
//
// Returns:
//   - []renderer.RendererBuilderOption: backend, present mode, MSAA and adapter options
//   - error: error if a name does not parse
func (c Config) RendererOptions() ([]renderer.RendererBuilderOption, error) {
	backend, err := renderer.ParseBackendType(c.Backend)
	if err != nil {
		return nil, err
	}
	mode, err := renderer.ParsePresentMode(c.PresentMode)
	if err != nil {
		return nil, err
	}
	return []renderer.RendererBuilderOption{
		renderer.WithBackend(backend),
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(c.MSAA)),
		renderer.WithForceSoftwareRenderer(c.ForceSoftware),
	}, nil
}

// WindowOptions converts the window settings to window builder options. Context options
// matching the backend come from renderer.WindowOptions.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithWidth(c.Window.Width),
		window.WithHeight(c.Window.Height),
	}
}
