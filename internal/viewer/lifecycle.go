package viewer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/waks-viewer/internal/engine/loop"
	"github.com/Faultbox/waks-viewer/internal/engine/scene"
	"github.com/Faultbox/waks-viewer/internal/logger"
)

// ErrAlreadyActive is returned by Start while another mount of the same
// Lifecycle is still running.
var ErrAlreadyActive = errors.New("viewer: already active")

// ErrNoSurface is returned by Start without a surface.
var ErrNoSurface = errors.New("viewer: no surface")

// Mount describes what to start a viewer on.
type Mount struct {
	Surface Surface
	// Source may be nil for a viewer that never gets a model.
	Source  ModelSource
	Options Options
	// Releaser frees GPU resources on Stop; nil when nothing was uploaded.
	Releaser scene.Releaser
}

// FrameHost drives a running viewer: it pumps surface events and presents
// the frames the viewer produces.
type FrameHost interface {
	// PollEvents dispatches pending surface events and reports whether the
	// host wants to keep running.
	PollEvents() bool
	Present(f Frame) error
}

// Lifecycle owns the "one active viewer" guard. The zero value is ready to use.
type Lifecycle struct {
	mu     sync.Mutex
	active *Handle
}

// NewLifecycle creates a lifecycle owner.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Active reports whether a mount is running.
func (l *Lifecycle) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active != nil
}

// Start mounts a viewer on m.Surface and begins loading the model. If any
// step fails the partial mount is torn down and the guard is cleared.
func (l *Lifecycle) Start(ctx context.Context, m Mount) (_ *Handle, err error) {
	l.mu.Lock()
	if l.active != nil {
		l.mu.Unlock()
		return nil, ErrAlreadyActive
	}
	h := &Handle{owner: l, releaser: m.Releaser, log: logger.Named("lifecycle")}
	l.active = h
	l.mu.Unlock()

	h.ctx, h.cancel = context.WithCancel(ctx)
	defer func() {
		if err != nil {
			h.log.Warn("mount aborted", zap.Error(err))
			_ = h.Stop()
		}
	}()

	if m.Surface == nil {
		return nil, ErrNoSurface
	}

	w, ht := m.Surface.Size()
	h.viewer = New(m.Options, w, ht)
	if m.Source != nil {
		h.viewer.SetPending(m.Source.Load(h.ctx))
	}
	h.unobserve = m.Surface.Observe(h.viewer)

	h.log.Info("viewer mounted", zap.Int("width", w), zap.Int("height", ht))
	return h, nil
}

// Handle is one mounted viewer.
type Handle struct {
	owner    *Lifecycle
	viewer   *Viewer
	releaser scene.Releaser
	log      *zap.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	unobserve func()

	stopOnce sync.Once
	stopErr  error
}

// Viewer returns the mounted viewer.
func (h *Handle) Viewer() *Viewer { return h.viewer }

// Done is closed once the handle is stopped.
func (h *Handle) Done() <-chan struct{} { return h.ctx.Done() }

// Run drives the frame task on the calling goroutine until the host quits,
// the parent context is cancelled, or Stop is called. It does not stop the
// handle.
func (h *Handle) Run(host FrameHost, fpsLimit int) (loop.Stats, error) {
	return loop.Run(h.ctx, fpsLimit, func(ctx context.Context) error {
		if !host.PollEvents() || ctx.Err() != nil {
			return loop.ErrStop
		}
		return host.Present(h.viewer.Tick())
	})
}

// Stop tears the mount down: cancels the frame task and the pending load,
// stops observing the surface, disposes the orbit controls, releases every
// geometry and material, and clears the guard. Safe to call more than once;
// later calls return the first call's error.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		defer h.owner.clear(h)

		if h.cancel != nil {
			h.cancel()
		}
		if h.unobserve != nil {
			h.unobserve()
		}
		if h.viewer != nil {
			h.viewer.controls.Dispose()
			h.stopErr = h.viewer.Release(h.releaser)
		}
		h.log.Info("viewer unmounted")
	})
	return h.stopErr
}

func (l *Lifecycle) clear(h *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == h {
		l.active = nil
	}
}
