package detection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/video"
)

// ErrNotReady is returned by Handle.Get while the detector is loading or after it failed.
var ErrNotReady = errors.New("detector not ready")

// Detector estimates facial landmarks for a frame.
type Detector interface {
	EstimateFaces(ctx context.Context, frame video.Frame) ([]overlay.FaceKeypoints, error)
}

// Loader constructs a detector. It may block for as long as model loading takes.
type Loader func(ctx context.Context) (Detector, error)

// Status is the lifecycle state of a detector handle.
type Status string

// Status constants describe the detector lifecycle.
const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Handle owns a detector that is constructed asynchronously. A failed load is final
// for the handle's lifetime.
type Handle struct {
	mu       sync.RWMutex
	status   Status
	detector Detector
	err      error
	closed   bool
	done     chan struct{}
}

// LoadOptions are the callbacks run when loading finishes.
type LoadOptions struct {
	OnReady func()
	OnError func(err error)
}

// Load starts constructing the detector in the background and returns immediately.
func Load(ctx context.Context, loader Loader, opts LoadOptions) *Handle {
	h := &Handle{status: StatusLoading, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		det, err := loader(ctx)
		if err == nil && det == nil {
			err = errors.New("loader returned no detector")
		}

		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			if c, ok := det.(io.Closer); ok && err == nil {
				c.Close()
			}
			return
		}
		if err != nil {
			h.status = StatusFailed
			h.err = fmt.Errorf("loading detector: %w", err)
		} else {
			h.status = StatusReady
			h.detector = det
		}
		h.mu.Unlock()

		if err != nil {
			logging.Error(logging.Fields{"error": err.Error()}, "face landmark detector failed to load")
			if opts.OnError != nil {
				opts.OnError(err)
			}
			return
		}
		logging.Info(nil, "face landmark detector ready")
		if opts.OnReady != nil {
			opts.OnReady()
		}
	}()
	return h
}

// Ready wraps an already constructed detector in a ready handle.
func Ready(det Detector) *Handle {
	done := make(chan struct{})
	close(done)
	return &Handle{status: StatusReady, detector: det, done: done}
}

// Get returns the detector once it is ready.
func (h *Handle) Get() (Detector, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.status != StatusReady {
		return nil, ErrNotReady
	}
	return h.detector, nil
}

// Status returns the current lifecycle state and, when failed, the load error.
func (h *Handle) Status() (Status, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status, h.err
}

// Wait blocks until loading has finished or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		_, err := h.Status()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the detector if it holds resources. A load still in flight is
// discarded when it finishes and its callbacks never run.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	det := h.detector
	h.detector = nil
	if h.status == StatusReady {
		h.status = StatusFailed
		h.err = ErrNotReady
	}
	if c, ok := det.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
