package loader

import (
	"manifesto/internal/manifest"
)

// Future delivers the result of an asynchronous load exactly once. A caller
// that no longer wants the result simply discards the future; in-progress
// decoding cannot be interrupted.
type Future struct {
	done     chan struct{}
	manifest *manifest.Manifest
	err      error
}

// Done returns a channel closed when the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the load finishes and returns its result. Safe to call
// from multiple goroutines and more than once.
func (f *Future) Wait() (*manifest.Manifest, error) {
	<-f.done
	return f.manifest, f.err
}

// LoadAsync runs Load off the calling goroutine and returns a Future for the
// result. The work itself is identical to Load: same bytes, same Manifest.
func LoadAsync(path string) *Future {
	return LoadAsyncWithOptions(path, manifest.Options{})
}

// LoadAsyncWithOptions runs LoadWithOptions off the calling goroutine.
func LoadAsyncWithOptions(path string, opts manifest.Options) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.manifest, f.err = LoadWithOptions(path, opts)
	}()
	return f
}
