// Package overlay turns facial landmarks into placement geometry for the decorative
// layers of the active filter. Everything here is a pure function of its inputs and is
// recomputed on every detection cycle.
package overlay

import (
	"math"

	"github.com/kozaktomas/face-filter/internal/catalog"
	"github.com/kozaktomas/face-filter/internal/constants"
	"gonum.org/v1/gonum/spatial/r2"
)

const minKeypoints = constants.MinKeypoints

// anchors is the per-face geometry every keypoint-bound layer derives from.
type anchors struct {
	rotation   float64
	eyesX      float64
	eyesY      float64
	eyesWidth  float64
	eyesHeight float64
}

func eyeAnchors(face FaceKeypoints) anchors {
	lp := face.Keypoints[constants.LeftEyeOuterIndex]
	rp := face.Keypoints[constants.RightEyeOuterIndex]
	l := r2.Vec{X: lp.X, Y: lp.Y}
	r := r2.Vec{X: rp.X, Y: rp.Y}

	d := r2.Sub(r, l)
	mid := r2.Add(l, r2.Scale(0.5, d))

	w := r2.Norm(d) * constants.EyesWidthFactor
	h := w / 2

	return anchors{
		rotation:   math.Atan2(d.Y, d.X) * 180 / math.Pi,
		eyesX:      mid.X - w/2,
		eyesY:      l.Y - h*constants.EyesLift,
		eyesWidth:  w,
		eyesHeight: h,
	}
}

func eyesPlacement(a anchors) Placement {
	return Placement{
		Layer:    catalog.CategoryEyes,
		X:        a.eyesX,
		Y:        a.eyesY,
		Width:    a.eyesWidth,
		Height:   a.eyesHeight,
		Rotation: a.rotation,
		Origin:   OriginCenter,
	}
}

func headPlacement(a anchors) Placement {
	w := a.eyesWidth * constants.HeadWidthFactor
	h := w * constants.HeadAspect
	return Placement{
		Layer:    catalog.CategoryHead,
		X:        a.eyesX - a.eyesWidth*constants.HeadLeftShift,
		Y:        a.eyesY - h*constants.HeadRaise,
		Width:    w,
		Height:   h,
		Rotation: a.rotation,
		Origin:   OriginBottomCenter,
	}
}

func framePlacement(vp Viewport) Placement {
	return Placement{
		Layer:  catalog.CategoryFrame,
		Width:  float64(vp.Width),
		Height: float64(vp.Height),
		Origin: OriginTopLeft,
	}
}

// Compute returns the placements for the active filter across all faces, in face
// order and head, eyes, frame order within a face. Faces without both eye corners are
// skipped. Lips and face filters have no anchor geometry and produce nothing.
func Compute(faces []FaceKeypoints, active catalog.FilterDefinition, vp Viewport) []Placement {
	wantHead := active.Category.Matches(catalog.CategoryHead)
	wantEyes := active.Category.Matches(catalog.CategoryEyes)
	wantFrame := active.Category.Matches(catalog.CategoryFrame)
	if !wantHead && !wantEyes && !wantFrame {
		return nil
	}

	var out []Placement
	for i, face := range faces {
		if !face.Usable() {
			continue
		}

		var layers []Placement
		if wantHead || wantEyes {
			a := eyeAnchors(face)
			if wantHead {
				layers = append(layers, headPlacement(a))
			}
			if wantEyes {
				layers = append(layers, eyesPlacement(a))
			}
		}
		if wantFrame {
			layers = append(layers, framePlacement(vp))
		}

		for _, p := range layers {
			p.Face = i
			p.ImageRef = active.ImageRef
			out = append(out, p)
		}
	}
	return out
}
