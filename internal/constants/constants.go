// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Carousel constants
const (
	// DefaultRepetitions is how many times the catalog is repeated to fake an endless strip
	DefaultRepetitions = 20

	// DefaultScrollDebounce is the quiet period after the last scroll event before the
	// carousel settles on the centered entry
	DefaultScrollDebounce = 150 * time.Millisecond

	// EntryWidth is the rendered width of one carousel entry in pixels
	EntryWidth = 70.0

	// EntryMargin is the horizontal margin on each side of a carousel entry
	EntryMargin = 10.0
)

// Video constants
const (
	// DefaultVideoWidth is the default video viewport width in pixels
	DefaultVideoWidth = 640

	// DefaultVideoHeight is the default video viewport height in pixels
	DefaultVideoHeight = 480

	// DefaultDetectionFPS is how often the detection loop is signalled per second
	DefaultDetectionFPS = 30
)

// Face mesh constants
const (
	// LeftEyeOuterIndex is the face mesh index of the left eye's outer corner
	LeftEyeOuterIndex = 33

	// RightEyeOuterIndex is the face mesh index of the right eye's outer corner
	RightEyeOuterIndex = 263

	// MinKeypoints is the smallest keypoint count that still contains both eye corners
	MinKeypoints = RightEyeOuterIndex + 1

	// DefaultMaxFaces is the default number of faces the detector is asked to track
	DefaultMaxFaces = 10
)

// Overlay geometry constants
const (
	// EyesWidthFactor scales the eye-corner distance to the eyes layer width
	EyesWidthFactor = 1.8

	// EyesLift raises the eyes layer by this fraction of its height
	EyesLift = 1.0 / 3.0

	// HeadWidthFactor scales the eyes layer width to the head layer width
	HeadWidthFactor = 1.6

	// HeadAspect is the head layer height relative to its width
	HeadAspect = 0.8

	// HeadLeftShift moves the head layer left by this fraction of the eyes width
	HeadLeftShift = 0.28

	// HeadRaise moves the head layer up by this fraction of its own height
	HeadRaise = 0.8
)

// Model loading progress constants
const (
	// ProgressInterval is how often simulated loading progress advances
	ProgressInterval = 200 * time.Millisecond

	// ProgressMaxStep is the upper bound (exclusive) of a single progress increment
	ProgressMaxStep = 20.0
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// Frame upload constants
const (
	// MaxFrameSize is the maximum accepted frame upload size in bytes (8MB)
	MaxFrameSize = 8 << 20

	// DefaultFrameRateLimit is the default number of frame uploads accepted per second per session
	DefaultFrameRateLimit = 60
)
