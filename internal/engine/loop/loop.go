// Package loop runs a repeating per-frame task until it is cancelled.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/logger"
)

// ErrStop ends Run without reporting an error.
var ErrStop = errors.New("loop: stop")

// Func is one frame of work.
type Func func(ctx context.Context) error

// Stats summarises a finished run.
type Stats struct {
	Frames  int
	Elapsed time.Duration
}

// Run calls fn once per frame until ctx is cancelled, fn returns ErrStop, or
// fn fails. With fpsLimit <= 0 frames run back to back and a vsync'd present
// inside fn sets the pace; otherwise a ticker does.
func Run(ctx context.Context, fpsLimit int, fn Func) (Stats, error) {
	log := logger.Named("loop")

	var tick <-chan time.Time
	if fpsLimit > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(fpsLimit))
		defer ticker.Stop()
		tick = ticker.C
	}

	start := time.Now()
	stats := Stats{}
	frameCount := 0
	fpsTimer := start
	lastTime := start

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				stats.Elapsed = time.Since(start)
				return stats, nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			stats.Elapsed = time.Since(start)
			return stats, nil
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if err := fn(ctx); err != nil {
			stats.Elapsed = time.Since(start)
			if errors.Is(err, ErrStop) {
				return stats, nil
			}
			return stats, fmt.Errorf("frame %d: %w", stats.Frames, err)
		}
		stats.Frames++

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}
