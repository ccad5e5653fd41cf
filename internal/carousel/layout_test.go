package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayout_Geometry(t *testing.T) {
	l := DefaultLayout(640)

	assert.InDelta(t, 10.0, l.Offset(0), 1e-9)
	assert.InDelta(t, 45.0, l.Center(0), 1e-9)
	assert.InDelta(t, 135.0, l.Center(1), 1e-9)
	assert.InDelta(t, 900.0, l.ContentWidth(10), 1e-9)
}

func TestLayout_CenterOn(t *testing.T) {
	l := DefaultLayout(640)
	n := 120

	// entry 60 starts at 10+60*90 = 5410; centering subtracts (640-70)/2 = 285
	assert.InDelta(t, 5125.0, l.CenterOn(60, n), 1e-9)
	// near the edges the offset is clamped to the scrollable range
	assert.InDelta(t, 0.0, l.CenterOn(0, n), 1e-9)
	assert.InDelta(t, l.ContentWidth(n)-640, l.CenterOn(n-1, n), 1e-9)
}

func TestLayout_ClosestToCenterRoundTrip(t *testing.T) {
	l := DefaultLayout(640)
	n := 120
	for _, i := range []int{4, 17, 60, 99, 115} {
		assert.Equal(t, i, l.ClosestToCenter(l.CenterOn(i, n), n), "entry %d", i)
	}
}

func TestLayout_ClosestToCenterTieGoesLow(t *testing.T) {
	l := Layout{EntryWidth: 70, EntryMargin: 10, ViewportWidth: 640}
	// viewport center exactly between entry 3 (center 315) and entry 4 (center 405)
	scrollLeft := 360.0 - 320.0
	assert.Equal(t, 3, l.ClosestToCenter(scrollLeft, 10))
}

func TestLayout_ClosestToCenterEmpty(t *testing.T) {
	assert.Equal(t, -1, DefaultLayout(640).ClosestToCenter(100, 0))
}
