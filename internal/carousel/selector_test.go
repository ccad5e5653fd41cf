package carousel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	selected []string
	reasons  []Reason
	scrolls  []float64
	settles  []time.Time
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Selected: func(e Entry, reason Reason) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.selected = append(r.selected, e.InstanceID)
			r.reasons = append(r.reasons, reason)
		},
		ScrollTo: func(scrollLeft float64, reason Reason) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.scrolls = append(r.scrolls, scrollLeft)
			if reason == ReasonSettle {
				r.settles = append(r.settles, time.Now())
			}
		},
	}
}

func (r *recorder) settleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.settles)
}

func mounted(t *testing.T, debounce time.Duration, k, reps int) (*Selector, *recorder) {
	t.Helper()
	rec := &recorder{}
	ids := make([]string, k)
	for i := range ids {
		ids[i] = string(rune('A' + i))
	}
	s := NewSelector(DefaultLayout(640), debounce, rec.hooks())
	s.Regenerate(Materialize(defs(ids...), reps))
	t.Cleanup(s.Close)
	return s, rec
}

func TestSelector_MountSelectsMiddle(t *testing.T) {
	s, rec := mounted(t, time.Second, 3, 2)

	e, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "A-3", e.InstanceID)
	assert.Equal(t, []string{"A-3"}, rec.selected)
	assert.Equal(t, []Reason{ReasonMount}, rec.reasons)
	require.Len(t, rec.scrolls, 1)
	assert.InDelta(t, s.Layout().CenterOn(3, 6), rec.scrolls[0], 1e-9)
}

func TestSelector_MountLargeStrip(t *testing.T) {
	s, _ := mounted(t, time.Second, 6, 20)
	e, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 60, e.Index)
}

func TestSelector_TapSelectsImmediately(t *testing.T) {
	s, rec := mounted(t, time.Second, 6, 20)

	require.NoError(t, s.Tap("C-62"))

	e, _ := s.Selected()
	assert.Equal(t, "C-62", e.InstanceID)
	assert.Equal(t, ReasonTap, rec.reasons[len(rec.reasons)-1])
	assert.InDelta(t, s.Layout().CenterOn(62, 120), s.ScrollTarget(), 1e-9)
}

func TestSelector_TapUnknownEntry(t *testing.T) {
	s, _ := mounted(t, time.Second, 3, 2)
	assert.ErrorIs(t, s.Tap("Z-99"), ErrUnknownEntry)

	e, _ := s.Selected()
	assert.Equal(t, "A-3", e.InstanceID)
}

func TestSelector_ScrollSettlesOnceAfterQuietPeriod(t *testing.T) {
	debounce := 150 * time.Millisecond
	s, rec := mounted(t, debounce, 6, 20)
	layout := s.Layout()

	var last time.Time
	for i := range 5 {
		s.Scroll(layout.CenterOn(60+i, 120))
		last = time.Now()
		time.Sleep(20 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return rec.settleCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(2 * debounce)
	assert.Equal(t, 1, rec.settleCount())

	rec.mu.Lock()
	elapsed := rec.settles[0].Sub(last)
	rec.mu.Unlock()
	assert.GreaterOrEqual(t, elapsed, debounce)
	assert.Less(t, elapsed, debounce+150*time.Millisecond)

	e, _ := s.Selected()
	assert.Equal(t, 64, e.Index)
	assert.Equal(t, ReasonSettle, rec.reasons[len(rec.reasons)-1])
}

func TestSelector_SettleOnSameEntryKeepsSelection(t *testing.T) {
	s, rec := mounted(t, 20*time.Millisecond, 6, 20)

	s.Scroll(s.ScrollTarget() + 10)

	assert.Eventually(t, func() bool { return rec.settleCount() == 1 }, time.Second, 5*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	// only the mount changed the selection, but the settle still re-centered
	assert.Len(t, rec.selected, 1)
	assert.Len(t, rec.scrolls, 2)
}

func TestSelector_RegenerateRecentersAndCancelsSettle(t *testing.T) {
	s, rec := mounted(t, 50*time.Millisecond, 3, 20)
	require.NoError(t, s.Tap("B-1"))
	s.Scroll(0)

	s.Regenerate(Materialize(defs("A", "B", "C", "D"), 20))

	e, _ := s.Selected()
	assert.Equal(t, 40, e.Index)
	assert.Equal(t, "A-40", e.InstanceID)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0, rec.settleCount())
}

func TestSelector_SettleAfterRegenerateUsesNewStrip(t *testing.T) {
	s, _ := mounted(t, time.Hour, 3, 20)
	s.Scroll(0)

	s.Regenerate(Materialize(defs("A", "B", "C", "D"), 20))
	// a settle that fired before the regenerate cancelled it
	s.settleNow()

	e, _ := s.Selected()
	assert.Equal(t, "A-40", e.InstanceID)
	assert.Equal(t, s.Layout().CenterOn(40, 80), s.ScrollTarget())
}

func TestSelector_NoHooksAfterClose(t *testing.T) {
	s, rec := mounted(t, 30*time.Millisecond, 3, 20)
	s.Scroll(0)
	s.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.settleCount())
	assert.NoError(t, s.Tap("A-0"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.selected, 1)
}

func TestDebouncer_ReArmReplacesPending(t *testing.T) {
	var d Debouncer
	fired := make(chan int, 3)

	d.Arm(40*time.Millisecond, func() { fired <- 1 })
	d.Arm(40*time.Millisecond, func() { fired <- 2 })
	assert.True(t, d.Pending())

	select {
	case v := <-fired:
		assert.Equal(t, 2, v)
	case <-time.After(time.Second):
		t.Fatal("debounced action never fired")
	}

	select {
	case v := <-fired:
		t.Fatalf("unexpected extra action %d", v)
	case <-time.After(80 * time.Millisecond):
	}
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	var d Debouncer
	fired := make(chan struct{}, 1)
	d.Arm(20*time.Millisecond, func() { fired <- struct{}{} })
	d.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled action fired")
	case <-time.After(60 * time.Millisecond):
	}
}
