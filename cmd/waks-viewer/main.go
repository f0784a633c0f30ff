// Command waks-viewer shows the WAKS kiosk product model with clickable
// hotspots.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/app"
	"github.com/Faultbox/waks-viewer/internal/config"
	"github.com/Faultbox/waks-viewer/internal/logger"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:   "waks-viewer",
	Short: "Interactive 3D viewer for the WAKS kiosk",
	Long: `waks-viewer loads the kiosk's glTF model, frames it, and slowly spins it.
Drag to orbit, scroll to zoom, and click a red marker to see what it is.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runViewer,
}

func init() {
	flags.Register(rootCmd.PersistentFlags())
}

// setup loads the config and starts logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath, &flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, nil
}

func runViewer(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("=== WAKS Viewer ===")

	if flags.Pick {
		path, err := pickModel()
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Info("no model chosen")
			return nil
		}
		if err != nil {
			return fmt.Errorf("file dialog: %w", err)
		}
		cfg.Viewer.AssetPath = path
		cfg.Viewer.BasePath = ""
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed normally")
	return nil
}

// pickModel asks for a model file with the platform's native dialog.
func pickModel() (string, error) {
	return dialog.File().
		Filter("glTF Binary", "glb").
		Filter("All Files", "*").
		Title("Open Product Model").
		Load()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
