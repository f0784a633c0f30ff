// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HotspotCount is the number of markers the product model carries.
const HotspotCount = 3

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings for the host window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"` // 0 = paced by vsync only

	ScreenshotDir string `yaml:"screenshot_dir"`
}

// ViewerConfig holds the 3D viewer settings.
type ViewerConfig struct {
	AssetPath    string          `yaml:"asset_path"`
	BasePath     string          `yaml:"base_path"` // directory or http(s) URL
	FOV          float32         `yaml:"fov"`       // vertical, degrees
	Near         float32         `yaml:"near"`
	Far          float32         `yaml:"far"`
	FrameMargin  float32         `yaml:"frame_margin"`
	SpinPerFrame float32         `yaml:"spin_per_frame"` // radians
	Damping      float32         `yaml:"damping"`
	Watch        bool            `yaml:"watch"`
	Background   string          `yaml:"background"`
	Hotspots     []HotspotConfig `yaml:"hotspots"`
}

// HotspotConfig places one marker as a fraction of the model's bounding box.
type HotspotConfig struct {
	Label    string     `yaml:"label"`
	Fraction [3]float32 `yaml:"fraction"`
}

// AudioConfig holds the selection sound settings.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Volume      float64 `yaml:"volume"`
	SelectSound string  `yaml:"select_sound"` // WAV, resolved like the model; empty = built-in chime
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DefaultHotspots returns the markers of the WAKS kiosk model.
func DefaultHotspots() []HotspotConfig {
	return []HotspotConfig{
		{Label: "Display / Screen", Fraction: [3]float32{0, 0.4, 0}},
		{Label: "Card / Ticket Slot", Fraction: [3]float32{0.28, -0.18, 0.45}},
		{Label: "Camera / Sensor", Fraction: [3]float32{-0.28, 0.18, 0.45}},
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "WAKS Kiosk",
			Width:  1280,
			Height: 720,
			VSync:  true,

			ScreenshotDir: "screenshots",
		},
		Viewer: ViewerConfig{
			AssetPath:    "3dmodel.glb",
			BasePath:     "public",
			FOV:          50,
			Near:         0.1,
			Far:          1000,
			FrameMargin:  1.6,
			SpinPerFrame: 0.002,
			Damping:      0.05,
			Background:   "#0d0d0d",
			Hotspots:     DefaultHotspots(),
		},
		Audio: AudioConfig{
			Volume: 0.8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Viewer.Hotspots) != HotspotCount {
		errs = append(errs, fmt.Errorf("viewer.hotspots: need exactly %d entries, got %d", HotspotCount, len(c.Viewer.Hotspots)))
	}
	for i, h := range c.Viewer.Hotspots {
		if strings.TrimSpace(h.Label) == "" {
			errs = append(errs, fmt.Errorf("viewer.hotspots[%d]: empty label", i))
		}
	}
	if c.Viewer.FOV <= 0 || c.Viewer.FOV >= 180 {
		errs = append(errs, fmt.Errorf("viewer.fov: %v out of range (0, 180)", c.Viewer.FOV))
	}
	if c.Viewer.Near <= 0 || c.Viewer.Far <= c.Viewer.Near {
		errs = append(errs, fmt.Errorf("viewer.near/far: need 0 < near < far, got %v/%v", c.Viewer.Near, c.Viewer.Far))
	}
	if c.Viewer.FrameMargin <= 0 {
		errs = append(errs, fmt.Errorf("viewer.frame_margin: must be positive, got %v", c.Viewer.FrameMargin))
	}
	if c.Viewer.Damping < 0 || c.Viewer.Damping > 1 {
		errs = append(errs, fmt.Errorf("viewer.damping: %v out of range [0, 1]", c.Viewer.Damping))
	}
	if _, err := ParseHexColor(c.Viewer.Background); err != nil {
		errs = append(errs, fmt.Errorf("viewer.background: %w", err))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio.volume: %v out of range [0, 1]", c.Audio.Volume))
	}
	if c.Viewer.AssetPath == "" {
		errs = append(errs, errors.New("viewer.asset_path: empty"))
	}
	return errors.Join(errs...)
}

// ParseHexColor parses "#rrggbb" into linear 0..1 components.
func ParseHexColor(s string) ([3]float32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return [3]float32{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return [3]float32{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return [3]float32{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
