package carousel

import (
	"math"

	"github.com/kozaktomas/face-filter/internal/constants"
)

// Layout is the horizontal geometry of the strip: equally sized entries with a margin
// on both sides, seen through a viewport of fixed width.
type Layout struct {
	EntryWidth    float64 `json:"entry_width"`
	EntryMargin   float64 `json:"entry_margin"`
	ViewportWidth float64 `json:"viewport_width"`
}

// DefaultLayout returns the geometry for a viewport of the given width.
func DefaultLayout(viewportWidth int) Layout {
	return Layout{
		EntryWidth:    constants.EntryWidth,
		EntryMargin:   constants.EntryMargin,
		ViewportWidth: float64(viewportWidth),
	}
}

func (l Layout) pitch() float64 {
	return l.EntryWidth + 2*l.EntryMargin
}

// Offset returns the left edge of entry i relative to the start of the strip.
func (l Layout) Offset(i int) float64 {
	return l.EntryMargin + float64(i)*l.pitch()
}

// Center returns the horizontal center of entry i.
func (l Layout) Center(i int) float64 {
	return l.Offset(i) + l.EntryWidth/2
}

// ContentWidth returns the scrollable width of a strip of n entries.
func (l Layout) ContentWidth(n int) float64 {
	return float64(n) * l.pitch()
}

// CenterOn returns the scroll offset that puts entry i in the middle of the viewport,
// clamped to the scrollable range of a strip of n entries.
func (l Layout) CenterOn(i, n int) float64 {
	target := l.Offset(i) - (l.ViewportWidth-l.EntryWidth)/2
	maxScroll := math.Max(0, l.ContentWidth(n)-l.ViewportWidth)
	return math.Min(math.Max(target, 0), maxScroll)
}

// ClosestToCenter returns the entry whose center is nearest the viewport center at the
// given scroll offset. Ties go to the lowest index. Returns -1 for an empty strip.
func (l Layout) ClosestToCenter(scrollLeft float64, n int) int {
	centerX := scrollLeft + l.ViewportWidth/2
	closest := -1
	minDist := math.Inf(1)
	for i := range n {
		if dist := math.Abs(centerX - l.Center(i)); dist < minDist {
			minDist = dist
			closest = i
		}
	}
	return closest
}
