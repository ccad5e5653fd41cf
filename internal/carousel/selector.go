package carousel

import (
	"errors"
	"sync"
	"time"

	"github.com/kozaktomas/face-filter/internal/constants"
)

// ErrUnknownEntry is returned when a tap names an instance id that is not in the strip.
var ErrUnknownEntry = errors.New("unknown carousel entry")

// Reason says which channel caused a selection change or scroll command.
type Reason string

// Reason constants name the selection channels.
const (
	ReasonMount  Reason = "mount"
	ReasonTap    Reason = "tap"
	ReasonSettle Reason = "settle"
)

// Hooks receive the selector's output. They are called with the selector locked, in
// the order the changes happened, and must not call back into the selector.
type Hooks struct {
	// Selected runs whenever the selected entry changes.
	Selected func(e Entry, reason Reason)
	// ScrollTo asks the renderer to smooth-scroll so the given offset is at the left
	// edge of the viewport. The most recent command wins.
	ScrollTo func(scrollLeft float64, reason Reason)
}

// Selector is the selection state machine. It has a single steady state holding the
// selected instance id; taps change it immediately and scrolling changes it once
// the strip has been still for the debounce period.
type Selector struct {
	layout   Layout
	debounce time.Duration
	hooks    Hooks
	settle   Debouncer

	mu           sync.Mutex
	entries      []Entry
	byID         map[string]int
	selected     int
	scrollLeft   float64
	scrollTarget float64
	closed       bool
}

// NewSelector creates an empty selector. Call Regenerate to mount a strip.
func NewSelector(layout Layout, debounce time.Duration, hooks Hooks) *Selector {
	if debounce <= 0 {
		debounce = constants.DefaultScrollDebounce
	}
	return &Selector{
		layout:   layout,
		debounce: debounce,
		hooks:    hooks,
		selected: -1,
		byID:     map[string]int{},
	}
}

// Regenerate replaces the strip, drops any pending scroll settle, selects the middle
// entry and scrolls it to the center.
func (s *Selector) Regenerate(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.settle.Cancel()

	s.entries = entries
	s.byID = make(map[string]int, len(entries))
	for i, e := range entries {
		s.byID[e.InstanceID] = i
	}

	s.selected = MiddleIndex(len(entries))
	if s.selected < 0 {
		s.scrollLeft = 0
		return
	}
	s.emitSelected(ReasonMount)
	s.emitScroll(s.selected, ReasonMount)
	// offsets recorded against the old strip no longer apply
	s.scrollLeft = s.scrollTarget
}

// Tap selects the entry immediately and re-centers it.
func (s *Selector) Tap(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	i, ok := s.byID[instanceID]
	if !ok {
		return ErrUnknownEntry
	}
	if i != s.selected {
		s.selected = i
		s.emitSelected(ReasonTap)
	}
	s.emitScroll(i, ReasonTap)
	return nil
}

// Scroll records the strip's scroll offset and re-arms the settle timer.
func (s *Selector) Scroll(scrollLeft float64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.scrollLeft = scrollLeft
	s.mu.Unlock()

	s.settle.Arm(s.debounce, s.settleNow)
}

// settleNow picks the entry closest to the viewport center and re-centers on it.
func (s *Selector) settleNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	closest := s.layout.ClosestToCenter(s.scrollLeft, len(s.entries))
	if closest < 0 {
		return
	}
	if closest != s.selected {
		s.selected = closest
		s.emitSelected(ReasonSettle)
	}
	s.emitScroll(closest, ReasonSettle)
}

func (s *Selector) emitSelected(reason Reason) {
	if s.hooks.Selected != nil {
		s.hooks.Selected(s.entries[s.selected], reason)
	}
}

func (s *Selector) emitScroll(i int, reason Reason) {
	s.scrollTarget = s.layout.CenterOn(i, len(s.entries))
	if s.hooks.ScrollTo != nil {
		s.hooks.ScrollTo(s.scrollTarget, reason)
	}
}

// Selected returns the selected entry. ok is false before a non-empty strip is mounted.
func (s *Selector) Selected() (e Entry, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < 0 || s.selected >= len(s.entries) {
		return Entry{}, false
	}
	return s.entries[s.selected], true
}

// Entries returns the current strip.
func (s *Selector) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// ScrollTarget returns the most recently issued scroll offset.
func (s *Selector) ScrollTarget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollTarget
}

// Layout returns the strip geometry.
func (s *Selector) Layout() Layout {
	return s.layout
}

// Close cancels any pending settle. No hook runs after Close returns.
func (s *Selector) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.settle.Cancel()
}
