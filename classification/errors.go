package classification

import "github.com/pkg/errors"

var (
	ErrInvalidCascade   = errors.New("cascade data is malformed")
	ErrInvalidLambda    = errors.New("ridge regularization must be positive")
	ErrInvalidAccuracy  = errors.New("minimum accuracy must lie within [0, 1]")
	ErrNoExamples       = errors.New("no example images found")
	ErrInvalidPatchSize = errors.New("patch width and height must be positive")
)
