package detector

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kozaktomas/face-filter/internal/detection"
	"github.com/kozaktomas/face-filter/internal/overlay"
	"github.com/kozaktomas/face-filter/internal/video"
)

// Replay is an offline detector that plays back recorded detection results, one
// recording per call, looping at the end.
type Replay struct {
	mu     sync.Mutex
	frames [][]overlay.FaceKeypoints
	next   int
}

// NewReplay creates a replay over recorded per-frame results.
func NewReplay(frames [][]overlay.FaceKeypoints) *Replay {
	return &Replay{frames: frames}
}

// EstimateFaces returns the next recording regardless of the frame content.
func (r *Replay) EstimateFaces(ctx context.Context, _ video.Frame) ([]overlay.FaceKeypoints, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil, nil
	}
	faces := r.frames[r.next]
	r.next = (r.next + 1) % len(r.frames)
	return faces, nil
}

// ReplayLoader returns a loader that reads a recording file when the session mounts.
func ReplayLoader(path string) detection.Loader {
	return func(ctx context.Context) (detection.Detector, error) {
		frames, err := ReadRecordingFile(path)
		if err != nil {
			return nil, err
		}
		return NewReplay(frames), nil
	}
}

// ReadRecordingFile reads a recording from disk. See ReadRecording for the format.
func ReadRecordingFile(path string) ([][]overlay.FaceKeypoints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	return ReadRecording(f)
}

// ReadRecording decodes keypoints JSON. It accepts a list of frames (each a list of
// faces), a single list of faces, or a single face object.
func ReadRecording(r io.Reader) ([][]overlay.FaceKeypoints, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}

	var frames [][]overlay.FaceKeypoints
	if err := json.Unmarshal(data, &frames); err == nil {
		return frames, nil
	}
	var faces []overlay.FaceKeypoints
	if err := json.Unmarshal(data, &faces); err == nil {
		return [][]overlay.FaceKeypoints{faces}, nil
	}
	var face overlay.FaceKeypoints
	if err := json.Unmarshal(data, &face); err != nil {
		return nil, fmt.Errorf("decoding recording: %w", err)
	}
	return [][]overlay.FaceKeypoints{{face}}, nil
}
