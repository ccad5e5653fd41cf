// Package session binds everything one mounted view needs: the carousel selection,
// a pushed video source, the landmark detector, its detection loop and the loading
// progress, all torn down together.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kozaktomas/face-filter/internal/carousel"
	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/constants"
	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/logging"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/progress"
	"github.com/kozaktomas/face-filter/internal/video"
)

// ErrClosed is returned when operating on a session that has been unmounted.
var ErrClosed = errors.New("session closed")

var errNoDetector = errors.New("no landmark detector configured")

// Options configures every session a manager mounts.
type Options struct {
	Loader        detection.Loader // nil leaves the session without a detector
	Viewport      overlay.Viewport
	Repetitions   int
	Debounce      time.Duration
	FrameInterval time.Duration
	Layout        carousel.Layout
	Progress      progress.Options // OnChange is set by the session
}

// Session is one mounted view.
type Session struct {
	EventBroadcaster

	ID        string
	CreatedAt time.Time

	opts     Options
	catalog  *catalog.Catalog
	selector *carousel.Selector
	source   *video.PushSource
	handle   *detection.Handle
	loop     *detection.Loop
	progress *progress.Reporter

	cancel      context.CancelFunc
	unsubscribe func()
	regenMu     sync.Mutex

	mu     sync.RWMutex
	closed bool
}

// SelectionEvent is the payload of a selection event.
type SelectionEvent struct {
	Entry  carousel.Entry  `json:"entry"`
	Reason carousel.Reason `json:"reason"`
}

// ScrollEvent is the payload of a scroll event.
type ScrollEvent struct {
	ScrollLeft float64         `json:"scroll_left"`
	Reason     carousel.Reason `json:"reason"`
}

// OverlaysEvent is the payload of an overlays event.
type OverlaysEvent struct {
	Frame      uint64              `json:"frame"`
	Faces      int                 `json:"faces"`
	Viewport   overlay.Viewport    `json:"viewport"`
	Placements []overlay.Placement `json:"placements"`
	// Relative holds [x, y, w, h] per placement as fractions of the viewport.
	Relative [][]float64 `json:"relative"`
}

// DetectorEvent is the payload of a detector event.
type DetectorEvent struct {
	Status detection.Status `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// New mounts a session: the carousel is materialized and centered, the detector
// starts loading with progress reporting, and the detection loop starts.
func New(ctx context.Context, id string, cat *catalog.Catalog, opts Options) *Session {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = overlay.Viewport{Width: constants.DefaultVideoWidth, Height: constants.DefaultVideoHeight}
	}
	if opts.Layout.ViewportWidth <= 0 {
		opts.Layout = carousel.DefaultLayout(constants.DefaultVideoWidth)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		opts:      opts,
		catalog:   cat,
		source:    video.NewPushSource(),
		cancel:    cancel,
	}

	s.selector = carousel.NewSelector(opts.Layout, opts.Debounce, carousel.Hooks{
		Selected: func(e carousel.Entry, reason carousel.Reason) {
			s.SendEvent(Event{Type: EventSelection, Data: SelectionEvent{Entry: e, Reason: reason}})
		},
		ScrollTo: func(scrollLeft float64, reason carousel.Reason) {
			s.SendEvent(Event{Type: EventScroll, Data: ScrollEvent{ScrollLeft: scrollLeft, Reason: reason}})
		},
	})
	s.unsubscribe = cat.Subscribe(s.regenerate)
	s.regenerate()

	progressOpts := opts.Progress
	progressOpts.OnChange = func(percent int) {
		s.SendEvent(Event{Type: EventProgress, Data: percent})
	}
	s.progress = progress.New(progressOpts)
	s.progress.Start()

	loader := opts.Loader
	if loader == nil {
		loader = func(context.Context) (detection.Detector, error) { return nil, errNoDetector }
	}
	s.handle = detection.Load(ctx, loader, detection.LoadOptions{
		OnReady: func() {
			s.progress.Complete()
			s.SendEvent(Event{Type: EventDetector, Data: DetectorEvent{Status: detection.StatusReady}})
		},
		OnError: func(err error) {
			s.progress.Fail()
			s.SendEvent(Event{Type: EventDetector, Data: DetectorEvent{Status: detection.StatusFailed, Error: err.Error()}})
		},
	})

	s.loop = detection.NewLoop(s.source, s.handle, detection.LoopOptions{
		Interval: opts.FrameInterval,
		OnFaces:  s.applyFaces,
	})
	s.loop.Start(ctx)

	logging.Info(logging.Fields{"session": id}, "session mounted")
	return s
}

// regenerate rebuilds the strip from the current catalog and re-centers the selection.
// regenerate rebuilds the strip from the current catalog. Calls are serialized so the
// last one to run always reads the newest catalog.
func (s *Session) regenerate() {
	s.regenMu.Lock()
	defer s.regenMu.Unlock()
	entries := carousel.Materialize(s.catalog.AllFilters(), s.opts.Repetitions)
	s.selector.Regenerate(entries)
}

// applyFaces turns one detection result into placements for the selected filter.
// Placements are streamed and dropped; every cycle computes them afresh.
func (s *Session) applyFaces(faces []overlay.FaceKeypoints, frame video.Frame) {
	var placements []overlay.Placement
	if entry, ok := s.selector.Selected(); ok {
		placements = overlay.Compute(faces, entry.Filter, s.opts.Viewport)
	}

	relative := make([][]float64, len(placements))
	for i, p := range placements {
		relative[i] = p.Relative(s.opts.Viewport)
	}

	s.SendEvent(Event{Type: EventOverlays, Data: OverlaysEvent{
		Frame:      frame.Seq,
		Faces:      len(faces),
		Viewport:   s.opts.Viewport,
		Placements: placements,
		Relative:   relative,
	}})
}

// Tap selects a carousel entry by instance id.
func (s *Session) Tap(instanceID string) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.selector.Tap(instanceID); err != nil {
		return fmt.Errorf("tap %s: %w", instanceID, err)
	}
	return nil
}

// Scroll reports a passive scroll of the carousel strip.
func (s *Session) Scroll(scrollLeft float64) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.selector.Scroll(scrollLeft)
	return nil
}

// PushFrame decodes the frame header and makes it the current video frame.
func (s *Session) PushFrame(data []byte) (video.Frame, error) {
	if s.isClosed() {
		return video.Frame{}, ErrClosed
	}
	frame, err := video.DecodeFrame(data)
	if err != nil {
		return video.Frame{}, err
	}
	frame.Seq = s.source.Push(frame)
	return frame, nil
}

// Entries returns the materialized carousel strip.
func (s *Session) Entries() []carousel.Entry {
	return s.selector.Entries()
}

// Selected returns the selected carousel entry.
func (s *Session) Selected() (carousel.Entry, bool) {
	return s.selector.Selected()
}

// State is a snapshot of a session for the API.
type State struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Selected      *carousel.Entry `json:"selected,omitempty"`
	ScrollTarget  float64         `json:"scroll_target"`
	Entries       int             `json:"entries"`
	Progress      int             `json:"progress"`
	ProgressState progress.State  `json:"progress_state"`
	Detector      DetectorEvent   `json:"detector"`
	Loop          detection.Stats `json:"loop"`
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() State {
	st := State{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		ScrollTarget:  s.selector.ScrollTarget(),
		Entries:       len(s.selector.Entries()),
		Progress:      s.progress.Percent(),
		ProgressState: s.progress.State(),
		Loop:          s.loop.Stats(),
	}
	if e, ok := s.selector.Selected(); ok {
		st.Selected = &e
	}
	status, err := s.handle.Status()
	st.Detector.Status = status
	if err != nil {
		st.Detector.Error = err.Error()
	}
	return st
}

// WaitDetector blocks until the detector finished loading or ctx is done.
func (s *Session) WaitDetector(ctx context.Context) error {
	return s.handle.Wait(ctx)
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close unmounts the session. The detection loop and any pending scroll settle are
// stopped before Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.cancel()
	s.loop.Stop()
	s.handle.Close()
	s.progress.Fail()
	s.selector.Close()
	s.closeListeners(Event{Type: EventClosed})

	logging.Info(logging.Fields{"session": s.ID}, "session unmounted")
}
