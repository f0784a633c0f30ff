package asset

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/logger"
)

// Loader fetches and decodes one model path in the background.
type Loader struct {
	fetcher *Fetcher
	path    string
	log     *zap.Logger
}

// NewLoader creates a loader for path, resolved by fetcher.
func NewLoader(fetcher *Fetcher, path string) *Loader {
	return &Loader{
		fetcher: fetcher,
		path:    path,
		log:     logger.Named("asset"),
	}
}

// Path returns the configured asset path.
func (l *Loader) Path() string { return l.path }

// Fetcher returns the loader's fetcher.
func (l *Loader) Fetcher() *Fetcher { return l.fetcher }

// Load starts the fetch and returns immediately. Cancelling ctx abandons the
// load; the future then resolves with the context error.
func (l *Loader) Load(ctx context.Context) *Future {
	f := newFuture()
	go func() {
		f.resolve(l.load(ctx))
	}()
	return f
}

// LoadSync fetches and decodes on the calling goroutine.
func (l *Loader) LoadSync(ctx context.Context) (Result, error) {
	r := l.load(ctx)
	return r, r.Err
}

func (l *Loader) load(ctx context.Context) Result {
	loc := l.fetcher.Resolve(l.path)
	l.log.Debug("fetching model", zap.String("location", loc))

	data, err := l.fetcher.Fetch(ctx, l.path)
	if err != nil {
		return Result{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: &LoadError{Location: loc, Err: err}}
	}

	g, err := Decode(data)
	if err != nil {
		// A corrupt file must not stay cached for the next mount.
		l.fetcher.Invalidate(l.path)
		return Result{Err: &LoadError{Location: loc, Err: err}}
	}

	l.log.Debug("model decoded",
		zap.String("location", loc),
		zap.Int("bytes", len(data)),
		zap.Int("nodes", g.Len()))
	return Result{Model: g}
}

// IsLoadError reports whether err is a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
