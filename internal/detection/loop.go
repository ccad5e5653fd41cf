// Package detection runs the per-view detection loop: on every frame signal it asks
// the landmark detector about the newest video frame, never more than one call at a time.
package detection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/face-filter/internal/constants"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/video"
)

// VideoSource is polled on every tick for readiness and the current frame.
type VideoSource interface {
	Ready() bool
	Frame() (video.Frame, bool)
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	// Interval between frame signals. Defaults to the default detection frame rate.
	Interval time.Duration
	// Ticks overrides the frame signal, mainly for tests. Interval is ignored when set.
	Ticks <-chan time.Time
	// OnFaces receives every successful detection result on the loop goroutine.
	OnFaces func(faces []overlay.FaceKeypoints, frame video.Frame)
	// OnError receives every failed detection call on the loop goroutine.
	OnError func(err error)
}

// Stats counts what the loop has done since it started.
type Stats struct {
	Ticks      int64 `json:"ticks"`
	Skipped    int64 `json:"skipped"`
	Detections int64 `json:"detections"`
	Failures   int64 `json:"failures"`
}

// Loop is a cancellable repeating detection task. Start and Stop bracket its lifetime.
type Loop struct {
	source VideoSource
	handle *Handle
	opts   LoopOptions

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastSeq uint64

	ticks      atomic.Int64
	skipped    atomic.Int64
	detections atomic.Int64
	failures   atomic.Int64
}

// NewLoop creates a stopped loop.
func NewLoop(source VideoSource, handle *Handle, opts LoopOptions) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = time.Second / constants.DefaultDetectionFPS
	}
	return &Loop{source: source, handle: handle, opts: opts}
}

// Start launches the loop. A loop runs at most once; later calls are no-ops.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	ticks := l.opts.Ticks
	var ticker *time.Ticker
	if ticks == nil {
		ticker = time.NewTicker(l.opts.Interval)
		ticks = ticker.C
	}

	go func() {
		defer close(l.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		l.run(ctx, ticks)
	}()
}

// Stop cancels the loop and waits for it to exit. Once Stop returns no tick is handled
// and no callback runs. Stop must not be called from a loop callback.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop goroutine is alive.
func (l *Loop) Running() bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Ticks:      l.ticks.Load(),
		Skipped:    l.skipped.Load(),
		Detections: l.detections.Load(),
		Failures:   l.failures.Load(),
	}
}

func (l *Loop) run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
		}
		// a tick and cancellation can be ready together; teardown wins
		if ctx.Err() != nil {
			return
		}
		l.ticks.Add(1)
		l.tick(ctx)
	}
}

// tick runs one detection cycle. The detector call is awaited here, so the next tick
// is not read until this one has been consumed.
func (l *Loop) tick(ctx context.Context) {
	det, err := l.handle.Get()
	if err != nil || !l.source.Ready() {
		l.skipped.Add(1)
		return
	}
	frame, ok := l.source.Frame()
	if !ok || frame.Seq == l.lastSeq {
		l.skipped.Add(1)
		return
	}
	l.lastSeq = frame.Seq

	faces, err := det.EstimateFaces(ctx, frame)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		l.failures.Add(1)
		logging.Warn(logging.Fields{"error": err.Error(), "frame": frame.Seq}, "face detection failed")
		if l.opts.OnError != nil {
			l.opts.OnError(err)
		}
		return
	}

	l.detections.Add(1)
	if l.opts.OnFaces != nil {
		l.opts.OnFaces(faces, frame)
	}
}
