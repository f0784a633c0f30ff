package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/Faultbox/waks-viewer/internal/asset"
	"github.com/Faultbox/waks-viewer/internal/engine/picking"
	"github.com/Faultbox/waks-viewer/internal/logger"
	"github.com/Faultbox/waks-viewer/internal/viewer"
)

var (
	inspectWidth   int
	inspectHeight  int
	inspectTimeout time.Duration
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [model.glb]",
	Short: "Load the model headlessly and print framing and hotspot placement",
	Long: `Decode the configured model without opening a window, then report its
bounding box, the camera framing, and where each hotspot lands in the world
and on a surface of the given size. A model path argument overrides the
configured asset.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectWidth, "surface-width", 1280, "Surface width used for screen projection")
	inspectCmd.Flags().IntVar(&inspectHeight, "surface-height", 720, "Surface height used for screen projection")
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", 30*time.Second, "Give up loading after this long")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(args) == 1 {
		cfg.Viewer.AssetPath = args[0]
		cfg.Viewer.BasePath = ""
	}

	opts, err := viewer.OptionsFromConfig(cfg.Viewer)
	if err != nil {
		return err
	}
	opts.SpinPerFrame = 0

	fetcher := asset.NewFetcher(cfg.Viewer.BasePath)
	loader := asset.NewLoader(fetcher, cfg.Viewer.AssetPath)

	ctx, cancel := context.WithTimeout(cmd.Context(), inspectTimeout)
	defer cancel()
	res, err := loader.LoadSync(ctx)
	if err != nil {
		return err
	}

	v := viewer.New(opts, inspectWidth, inspectHeight)
	v.SetPending(asset.Resolved(res))
	f := v.Tick()

	out := cmd.OutOrStdout()
	size := v.ModelSize()
	framing := v.Framing()

	fmt.Fprintln(out, "Model")
	fmt.Fprintln(out, "=====")
	fmt.Fprintf(out, "Source: %s\n", fetcher.Resolve(cfg.Viewer.AssetPath))
	fmt.Fprintf(out, "Size: %.4f x %.4f x %.4f\n", size[0], size[1], size[2])
	fmt.Fprintf(out, "Draw calls: %d\n\n", len(f.Draws))

	fmt.Fprintln(out, "Camera:")
	fmt.Fprintf(out, "  Distance: %.4f\n", framing.Distance)
	fmt.Fprintf(out, "  Position: %s\n", formatVec(framing.Position))
	fmt.Fprintf(out, "  Target: %s\n\n", formatVec(framing.Target))

	viewProj := f.Projection.Mul4(f.View)
	w, h := v.Size()
	fmt.Fprintf(out, "Hotspots (%dx%d surface):\n", w, h)
	for _, hs := range v.Hotspots() {
		world := v.Graph().WorldPosition(hs.Node)
		x, y, visible := picking.ProjectToScreen(world, viewProj, w, h)
		fmt.Fprintf(out, "  %-20s world %s  screen (%.1f, %.1f)", hs.Label, formatVec(world), x, y)
		if !visible {
			fmt.Fprint(out, "  [behind camera]")
		}
		fmt.Fprintln(out)
	}
	return nil
}

func formatVec(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}
