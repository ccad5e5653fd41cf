// Package progress reports cosmetic loading progress while the landmark detector
// initializes. The numbers are advisory and do not track real work.
package progress

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kozaktomas/face-filter/internal/constants"
)

// State is where a reporter's lifecycle stands.
type State string

// Reporter states.
const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateFailed   State = "failed"
)

// Options configures a Reporter. Zero values use the package defaults.
type Options struct {
	Interval time.Duration
	MaxStep  float64
	// Rand returns a value in [0,1). Defaults to math/rand/v2.
	Rand func() float64
	// OnChange receives the rounded percentage whenever it changes.
	OnChange func(percent int)
}

// Reporter simulates model loading progress from 0 to 100.
type Reporter struct {
	opts Options

	mu      sync.Mutex
	value   float64
	last    int
	state   State
	stop    chan struct{}
	stopped chan struct{}
}

// New creates an idle reporter at 0%.
func New(opts Options) *Reporter {
	if opts.Interval <= 0 {
		opts.Interval = constants.ProgressInterval
	}
	if opts.MaxStep <= 0 {
		opts.MaxStep = constants.ProgressMaxStep
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	return &Reporter{opts: opts, state: StateIdle}
}

// Start begins advancing. It does nothing unless the reporter is idle.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateIdle {
		return
	}
	r.state = StateRunning
	r.stop = make(chan struct{})
	r.stopped = make(chan struct{})
	go r.run(r.stop, r.stopped)
}

func (r *Reporter) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step advances progress by one random increment. It is a no-op unless running.
func (r *Reporter) Step() {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return
	}
	r.value = math.Min(100, r.value+r.opts.Rand()*r.opts.MaxStep)
	changed, percent := r.publishLocked()
	r.mu.Unlock()

	if changed && r.opts.OnChange != nil {
		r.opts.OnChange(percent)
	}
}

// Complete forces progress to 100 and stops advancing.
func (r *Reporter) Complete() {
	r.finish(StateComplete)
}

// Fail stops advancing without touching the current value.
func (r *Reporter) Fail() {
	r.finish(StateFailed)
}

func (r *Reporter) finish(state State) {
	r.mu.Lock()
	if r.state == StateComplete || r.state == StateFailed {
		r.mu.Unlock()
		return
	}
	stop, stopped := r.stop, r.stopped
	r.state = state
	var changed bool
	var percent int
	if state == StateComplete {
		r.value = 100
		changed, percent = r.publishLocked()
	}
	r.mu.Unlock()

	if stop != nil {
		close(stop)
		<-stopped
	}
	if changed && r.opts.OnChange != nil {
		r.opts.OnChange(percent)
	}
}

func (r *Reporter) publishLocked() (bool, int) {
	percent := int(math.Round(r.value))
	if percent == r.last {
		return false, percent
	}
	r.last = percent
	return true, percent
}

// Percent returns the rounded progress.
func (r *Reporter) Percent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(math.Round(r.value))
}

// State returns the reporter lifecycle state.
func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
