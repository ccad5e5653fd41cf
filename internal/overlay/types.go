package overlay

import "github.com/kozaktomas/face-filter/internal/catalog"

// Point is a single landmark in video-pixel space. Z is carried through from mesh
// detectors but not used for placement.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// FaceKeypoints is the ordered landmark sequence the detector reports for one face.
type FaceKeypoints struct {
	Keypoints []Point `json:"keypoints"`
}

// Usable reports whether the face carries both outer eye corners.
func (f FaceKeypoints) Usable() bool {
	return len(f.Keypoints) >= minKeypoints
}

// Viewport is the size of the video surface overlays are drawn on.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Origin is the pivot a renderer should rotate a layer around.
type Origin string

// Origin constants match the transform origins each layer is designed for.
const (
	OriginCenter       Origin = "center"
	OriginBottomCenter Origin = "bottom center"
	OriginTopLeft      Origin = "top left"
)

// Placement is the geometry of one overlay layer for one face in one detection cycle.
type Placement struct {
	Face     int              `json:"face"`
	Layer    catalog.Category `json:"layer"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Width    float64          `json:"width"`
	Height   float64          `json:"height"`
	Rotation float64          `json:"rotation"` // degrees, clockwise in screen space
	Origin   Origin           `json:"origin"`
	ImageRef string           `json:"image"`
}

// CornerBBox returns the placement as [x1, y1, x2, y2] ignoring rotation.
func (p Placement) CornerBBox() []float64 {
	return MarkerToCornerBBox(p.X, p.Y, p.Width, p.Height)
}
