package config

import "github.com/spf13/pflag"

// Flags holds CLI overrides. Zero values mean "not set".
type Flags struct {
	ConfigPath string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Asset      string
	Base       string
	Watch      bool
	Sound      bool
	Mute       bool
	Pick       bool
}

// Register binds the override flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.StringVar(&f.Asset, "asset", "", "Model asset path, relative to the base path")
	fs.StringVar(&f.Base, "base", "", "Base directory or URL the asset path resolves against")
	fs.BoolVar(&f.Watch, "watch", false, "Reload the model when the asset file changes")
	fs.BoolVar(&f.Sound, "sound", false, "Play a chime when a hotspot is selected")
	fs.BoolVar(&f.Mute, "mute", false, "Disable the selection chime")
	fs.BoolVar(&f.Pick, "pick", false, "Choose the model file with a native file dialog")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Windowed {
		cfg.Window.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Asset != "" {
		cfg.Viewer.AssetPath = f.Asset
	}
	if f.Base != "" {
		cfg.Viewer.BasePath = f.Base
	}
	if f.Watch {
		cfg.Viewer.Watch = true
	}
	if f.Sound {
		cfg.Audio.Enabled = true
	}
	if f.Mute {
		cfg.Audio.Enabled = false
	}
}
