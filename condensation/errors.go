package condensation

import "github.com/pkg/errors"

var (
	ErrNilSampler           = errors.New("sampler must not be nil")
	ErrNilMeasurementModel  = errors.New("measurement model must not be nil")
	ErrNilPositionExtractor = errors.New("position extractor must not be nil")
	ErrNilTransitionModel   = errors.New("transition model must not be nil")
	ErrNilResampling        = errors.New("resampling algorithm must not be nil")
	ErrNilFeatureExtractor  = errors.New("feature extractor must not be nil")
	ErrNilClassifier        = errors.New("classifier must not be nil")
	ErrInvalidCount         = errors.New("sample count must be positive")
	ErrInvalidScatter       = errors.New("scatter must be non-negative")
	ErrInvalidSize          = errors.New("relative sizes must satisfy 0 < min <= max <= 1")
	ErrInvalidGrid          = errors.New("grid needs size scale > 1 and step size > 0")
	ErrInvalidThreshold     = errors.New("thresholds must lie within [0, 1] with negative below positive")
)
