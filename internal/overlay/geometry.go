package overlay

// ConvertPixelBBoxToRelative converts pixel bbox to relative (0-1) coordinates.
// Input bbox is [x1, y1, x2, y2] in pixels, output is [x1, y1, x2, y2] in relative coords.
func ConvertPixelBBoxToRelative(bbox []float64, width, height int) []float64 {
	if len(bbox) != 4 || width <= 0 || height <= 0 {
		return bbox
	}
	return []float64{
		bbox[0] / float64(width),
		bbox[1] / float64(height),
		bbox[2] / float64(width),
		bbox[3] / float64(height),
	}
}

// MarkerToCornerBBox converts an (X, Y, W, H) box to [x1, y1, x2, y2] corner format.
func MarkerToCornerBBox(x, y, w, h float64) []float64 {
	return []float64{
		x,
		y,
		x + w,
		y + h,
	}
}

// Relative returns the placement as relative [x, y, w, h] so renderers drawing the
// video at another size can scale it. Returns nil for an empty viewport.
func (p Placement) Relative(vp Viewport) []float64 {
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}
	rel := ConvertPixelBBoxToRelative(p.CornerBBox(), vp.Width, vp.Height)
	return []float64{rel[0], rel[1], rel[2] - rel[0], rel[3] - rel[1]}
}
