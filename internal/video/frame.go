// Package video holds the frames the detection loop polls. Frames arrive from the
// capture surface outside this process; the package only decodes enough to know what
// it was given.
package video

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrEmptyFrame is returned when a frame has no payload.
var ErrEmptyFrame = errors.New("empty frame")

// Frame is one encoded video frame.
type Frame struct {
	Data       []byte
	Format     string // jpeg, png, webp, bmp
	Width      int
	Height     int
	Seq        uint64
	CapturedAt time.Time
}

// DecodeFrame reads the image header of data and returns an unsequenced frame.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("decoding frame header: %w", err)
	}
	return Frame{
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
