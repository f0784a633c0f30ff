// Package app runs the viewer in an SDL window: it owns the window, the GL
// renderer and input, and mounts the viewer on them.
package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/asset"
	"github.com/Faultbox/waks-viewer/internal/config"
	"github.com/Faultbox/waks-viewer/internal/engine/audio"
	"github.com/Faultbox/waks-viewer/internal/engine/input"
	"github.com/Faultbox/waks-viewer/internal/engine/renderer"
	"github.com/Faultbox/waks-viewer/internal/engine/screenshot"
	"github.com/Faultbox/waks-viewer/internal/engine/window"
	"github.com/Faultbox/waks-viewer/internal/logger"
	"github.com/Faultbox/waks-viewer/internal/viewer"
	"github.com/Faultbox/waks-viewer/internal/watcher"
)

// App is the windowed viewer host.
type App struct {
	cfg  *config.Config
	opts viewer.Options
	log  *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	gestures *input.Gestures

	loader    *asset.Loader
	lifecycle *viewer.Lifecycle
	watcher   *watcher.FileWatcher

	sound     *audio.Player // nil when muted
	shots     *screenshot.Capture
	wantShot  bool
	lastPopup string

	quit   bool
	reload atomic.Bool
}

// New creates the window and renderer. Call Close when done.
func New(cfg *config.Config) (*App, error) {
	opts, err := viewer.OptionsFromConfig(cfg.Viewer)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		opts:      opts,
		log:       logger.Named("app"),
		input:     input.New(),
		gestures:  input.NewGestures(nil),
		loader:    asset.NewLoader(asset.NewFetcher(cfg.Viewer.BasePath), cfg.Viewer.AssetPath),
		lifecycle: viewer.NewLifecycle(),
		shots:     screenshot.New(cfg.Window.ScreenshotDir, "waks"),
	}

	a.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("asset", a.loader.Fetcher().Resolve(cfg.Viewer.AssetPath)),
	)

	// Window first: it creates the OpenGL context the renderer needs.
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.window.ShowCursor(!cfg.Window.Fullscreen)

	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if cfg.Viewer.Watch {
		if err := a.watchAsset(); err != nil {
			a.log.Warn("asset watching disabled", zap.Error(err))
		}
	}
	if cfg.Audio.Enabled {
		if err := a.initSound(); err != nil {
			a.log.Warn("selection sound disabled", zap.Error(err))
		}
	}

	return a, nil
}

// initSound opens the audio device and loads the optional selection sound.
func (a *App) initSound() error {
	p := audio.New(a.cfg.Audio.Volume)
	if err := p.Init(); err != nil {
		return err
	}
	if name := a.cfg.Audio.SelectSound; name != "" {
		data, err := a.loader.Fetcher().Fetch(context.Background(), name)
		if err == nil {
			err = p.SetSound(data)
		}
		if err != nil {
			a.log.Warn("using built-in chime", zap.String("sound", name), zap.Error(err))
		}
	}
	a.sound = p
	return nil
}

// watchAsset reloads the model whenever the local asset file changes.
func (a *App) watchAsset() error {
	path, ok := a.loader.Fetcher().LocalPath(a.loader.Path())
	if !ok {
		return fmt.Errorf("%s is not a local file", a.loader.Path())
	}
	w, err := watcher.NewFileWatcher(watcher.DefaultDebounce)
	if err != nil {
		return err
	}
	if err := w.Watch([]string{path}, func(string) { a.reload.Store(true) }); err != nil {
		w.Close()
		return err
	}
	w.Start()
	a.watcher = w
	return nil
}

// Run mounts the viewer and drives it until the window closes or ctx is
// cancelled. A change to a watched asset remounts with a fresh load.
func (a *App) Run(ctx context.Context) error {
	for {
		h, err := a.lifecycle.Start(ctx, viewer.Mount{
			Surface:  a,
			Source:   a.loader,
			Options:  a.opts,
			Releaser: a.renderer,
		})
		if err != nil {
			return fmt.Errorf("mount viewer: %w", err)
		}

		stats, runErr := h.Run(a, a.cfg.Window.FPSLimit)
		if err := h.Stop(); err != nil {
			a.log.Warn("releasing scene", zap.Error(err))
		}
		a.log.Info("viewer stopped", zap.Int("frames", stats.Frames), zap.Duration("elapsed", stats.Elapsed))
		if runErr != nil {
			return runErr
		}

		if a.quit || ctx.Err() != nil || !a.reload.Swap(false) {
			return nil
		}
		a.log.Info("asset changed, reloading", zap.String("path", a.loader.Path()))
		a.loader.Fetcher().Invalidate(a.loader.Path())
	}
}

// Size implements viewer.Surface.
func (a *App) Size() (int, int) {
	return a.window.Size()
}

// Observe implements viewer.Surface.
func (a *App) Observe(l viewer.SurfaceListener) func() {
	a.gestures.SetListener(l)
	return func() { a.gestures.SetListener(nil) }
}

// PollEvents implements viewer.FrameHost.
func (a *App) PollEvents() bool {
	if a.input.Update() {
		a.quit = true
		return false
	}

	if a.input.IsKeyPressed(sdl.SCANCODE_ESCAPE) {
		a.quit = true
		return false
	}
	if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
		a.wantShot = true
	}

	for _, event := range a.input.Events() {
		if event.Type == input.EventWindowResize {
			a.renderer.Resize(a.window.DrawableSize())
		}
		a.gestures.Feed(event)
	}

	return !a.reload.Load()
}

// Present implements viewer.FrameHost.
func (a *App) Present(f viewer.Frame) error {
	a.renderer.Draw(f)
	if a.wantShot {
		a.wantShot = false
		a.saveScreenshot()
	}
	a.window.SwapBuffers()

	text := ""
	if f.Popup != nil {
		text = f.Popup.Text
	}
	if text != "" && text != a.lastPopup && a.sound != nil {
		if err := a.sound.PlaySelect(); err != nil {
			a.log.Debug("selection sound", zap.Error(err))
		}
	}
	a.lastPopup = text
	return nil
}

func (a *App) saveScreenshot() {
	img, err := screenshot.FromPixels(a.renderer.ReadPixels())
	if err == nil {
		var name string
		name, err = a.shots.Save(img)
		if err == nil {
			a.log.Info("screenshot saved", zap.String("path", name))
			return
		}
	}
	a.log.Warn("screenshot failed", zap.Error(err))
}

// Close cleans up app resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.sound != nil {
		a.sound.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
