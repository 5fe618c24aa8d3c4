package imageprocessing

import "github.com/pkg/errors"

var (
	ErrInvalidScales    = errors.New("pyramid scales must satisfy 0 < min <= max and 0 < incremental < 1")
	ErrInvalidPatchSize = errors.New("patch width and height must be positive")
	ErrNilPyramid       = errors.New("pyramid must not be nil")
)
