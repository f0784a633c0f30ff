package asset

import (
	"sync"

	"github.com/Faultbox/waks-viewer/internal/engine/scene"
)

// Result is what a load resolves to: a model or an error, never both.
type Result struct {
	Model *scene.Graph
	Err   error
}

// Future is a load in flight. It is either pending or resolved; once
// resolved it stays resolved with the same result.
type Future struct {
	ch       chan Result
	once     sync.Once
	resolved bool
	result   Result
}

func newFuture() *Future {
	return &Future{ch: make(chan Result, 1)}
}

// Pending returns an unresolved future and the function that resolves it.
// Only the first call of resolve has an effect.
func Pending() (f *Future, resolve func(Result)) {
	f = newFuture()
	return f, f.resolve
}

// Resolved returns a future that is already resolved with r.
func Resolved(r Result) *Future {
	f := newFuture()
	f.resolve(r)
	return f
}

func (f *Future) resolve(r Result) {
	f.once.Do(func() { f.ch <- r })
}

// Poll reports the result without blocking. ok is false while pending.
// Poll must be called from a single goroutine.
func (f *Future) Poll() (r Result, ok bool) {
	if f.resolved {
		return f.result, true
	}
	select {
	case r := <-f.ch:
		f.resolved, f.result = true, r
		return r, true
	default:
		return Result{}, false
	}
}
