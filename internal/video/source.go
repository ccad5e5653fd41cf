package video

import (
	"sync"
	"time"
)

// PushSource is a video source fed from outside, one frame at a time. It becomes ready
// with the first frame and always serves the most recent one.
type PushSource struct {
	mu    sync.RWMutex
	frame Frame
	seq   uint64
}

// NewPushSource creates a source with no frames.
func NewPushSource() *PushSource {
	return &PushSource{}
}

// Push replaces the current frame and returns its sequence number.
func (s *PushSource) Push(f Frame) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	f.Seq = s.seq
	if f.CapturedAt.IsZero() {
		f.CapturedAt = time.Now()
	}
	s.frame = f
	return s.seq
}

// Ready reports whether a frame has been pushed.
func (s *PushSource) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq > 0
}

// Frame returns the latest frame. ok is false until the first push.
func (s *PushSource) Frame() (Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.seq > 0
}
