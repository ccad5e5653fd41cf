package overlay

import (
	"math"
	"testing"
)

func TestConvertPixelBBoxToRelative(t *testing.T) {
	tests := []struct {
		name     string
		bbox     []float64
		width    int
		height   int
		expected []float64
	}{
		{
			name:     "simple conversion",
			bbox:     []float64{100, 200, 300, 400},
			width:    1000,
			height:   1000,
			expected: []float64{0.1, 0.2, 0.3, 0.4},
		},
		{
			name:     "full image",
			bbox:     []float64{0, 0, 1920, 1080},
			width:    1920,
			height:   1080,
			expected: []float64{0, 0, 1, 1},
		},
		{
			name:     "invalid bbox",
			bbox:     []float64{100, 200},
			width:    1000,
			height:   1000,
			expected: []float64{100, 200},
		},
		{
			name:     "zero dimensions",
			bbox:     []float64{100, 200, 300, 400},
			width:    0,
			height:   1000,
			expected: []float64{100, 200, 300, 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertPixelBBoxToRelative(tt.bbox, tt.width, tt.height)
			if len(result) != len(tt.expected) {
				t.Errorf("ConvertPixelBBoxToRelative() length = %d, want %d", len(result), len(tt.expected))
				return
			}
			for i := range result {
				if math.Abs(result[i]-tt.expected[i]) > 0.0001 {
					t.Errorf("ConvertPixelBBoxToRelative()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMarkerToCornerBBox(t *testing.T) {
	result := MarkerToCornerBBox(0.1, 0.2, 0.3, 0.4)
	expected := []float64{0.1, 0.2, 0.4, 0.6}
	for i := range result {
		if math.Abs(result[i]-expected[i]) > 0.0001 {
			t.Errorf("MarkerToCornerBBox() = %v, want %v", result, expected)
			break
		}
	}
}

func TestPlacementRelative(t *testing.T) {
	p := Placement{X: 64, Y: 48, Width: 320, Height: 240}
	result := p.Relative(Viewport{Width: 640, Height: 480})
	expected := []float64{0.1, 0.1, 0.5, 0.5}
	if len(result) != len(expected) {
		t.Fatalf("Relative() length = %d, want %d", len(result), len(expected))
	}
	for i := range result {
		if math.Abs(result[i]-expected[i]) > 0.0001 {
			t.Errorf("Relative()[%d] = %v, want %v", i, result[i], expected[i])
		}
	}

	if got := p.Relative(Viewport{}); got != nil {
		t.Errorf("Relative() with empty viewport = %v, want nil", got)
	}
}
