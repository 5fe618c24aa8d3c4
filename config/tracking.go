package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/LdDl/facetrack-go/condensation"
	"github.com/pkg/errors"
)

// maxFileSize limits tuning files to 1MB
const maxFileSize = 1 * 1024 * 1024

// TrackingConfig holds tuning parameters of the face tracker.
// Omitted fields fall back to the defaults returned by the Get* methods.
type TrackingConfig struct {
	// Resampling params
	Count      *int     `json:"count,omitempty"`
	RandomRate *float64 `json:"random_rate,omitempty"`
	Scatter    *float64 `json:"scatter,omitempty"`
	MinSize    *float64 `json:"min_size,omitempty"`
	MaxSize    *float64 `json:"max_size,omitempty"`

	// Grid params
	GridMinSize   *float64 `json:"grid_min_size,omitempty"`
	GridMaxSize   *float64 `json:"grid_max_size,omitempty"`
	GridSizeScale *float64 `json:"grid_size_scale,omitempty"`
	GridStepSize  *float64 `json:"grid_step_size,omitempty"`

	// Feature extraction params
	PyramidMinScale         *float64 `json:"pyramid_min_scale,omitempty"`
	PyramidMaxScale         *float64 `json:"pyramid_max_scale,omitempty"`
	PyramidIncrementalScale *float64 `json:"pyramid_incremental_scale,omitempty"`
	PatchWidth              *int     `json:"patch_width,omitempty"`
	PatchHeight             *int     `json:"patch_height,omitempty"`
	HistogramEqualization   *bool    `json:"histogram_equalization,omitempty"`

	// Measurement params
	RejectionThreshold *float64 `json:"rejection_threshold,omitempty"`
	UnevaluatedPolicy  *string  `json:"unevaluated_policy,omitempty"` // "neutral" or "exclude"
	Workers            *int     `json:"workers,omitempty"`
	CascadeA           *float64 `json:"cascade_a,omitempty"`
	CascadeB           *float64 `json:"cascade_b,omitempty"`

	// Self-learning params
	SelfLearning      *bool    `json:"self_learning,omitempty"`
	PositiveThreshold *float64 `json:"positive_threshold,omitempty"`
	NegativeThreshold *float64 `json:"negative_threshold,omitempty"`
	ExampleCount      *int     `json:"example_count,omitempty"`
	MaxOverlap        *float64 `json:"max_overlap,omitempty"`
	MaxOverlapCount   *int     `json:"max_overlap_count,omitempty"`
	RidgeLambda       *float64 `json:"ridge_lambda,omitempty"`
	RidgeMinAccuracy  *float64 `json:"ridge_min_accuracy,omitempty"`
	RidgeSlope        *float64 `json:"ridge_slope,omitempty"`

	// Position extraction params
	MinWeight          *float64 `json:"min_weight,omitempty"`
	Smoothing          *bool    `json:"smoothing,omitempty"`
	SmoothingMaxMisses *int     `json:"smoothing_max_misses,omitempty"`
}

// EmptyTrackingConfig returns a TrackingConfig with all fields set to nil
func EmptyTrackingConfig() *TrackingConfig {
	return &TrackingConfig{}
}

// LoadTrackingConfig loads a TrackingConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadTrackingConfig(path string) (*TrackingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, errors.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := EmptyTrackingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config JSON")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks the values that are set
func (c *TrackingConfig) Validate() error {
	if c.Count != nil && *c.Count <= 0 {
		return errors.Errorf("count must be positive, got %d", *c.Count)
	}
	if c.RandomRate != nil && (*c.RandomRate < 0 || *c.RandomRate > 1) {
		return errors.Errorf("random_rate must be between 0 and 1, got %f", *c.RandomRate)
	}
	if c.Scatter != nil && *c.Scatter < 0 {
		return errors.Errorf("scatter must be non-negative, got %f", *c.Scatter)
	}
	if minSize, maxSize := c.GetMinSize(), c.GetMaxSize(); minSize <= 0 || minSize > maxSize || maxSize > 1 {
		return errors.Errorf("sizes must satisfy 0 < min_size <= max_size <= 1, got %f and %f", minSize, maxSize)
	}
	if minSize, maxSize := c.GetGridMinSize(), c.GetGridMaxSize(); minSize <= 0 || minSize > maxSize || maxSize > 1 {
		return errors.Errorf("sizes must satisfy 0 < grid_min_size <= grid_max_size <= 1, got %f and %f", minSize, maxSize)
	}
	if c.GridSizeScale != nil && *c.GridSizeScale <= 1 {
		return errors.Errorf("grid_size_scale must be greater than 1, got %f", *c.GridSizeScale)
	}
	if c.GridStepSize != nil && *c.GridStepSize <= 0 {
		return errors.Errorf("grid_step_size must be positive, got %f", *c.GridStepSize)
	}
	if minScale, maxScale := c.GetPyramidMinScale(), c.GetPyramidMaxScale(); minScale <= 0 || minScale > maxScale {
		return errors.Errorf("pyramid scales must satisfy 0 < pyramid_min_scale <= pyramid_max_scale, got %f and %f", minScale, maxScale)
	}
	if inc := c.GetPyramidIncrementalScale(); inc <= 0 || inc >= 1 {
		return errors.Errorf("pyramid_incremental_scale must be between 0 and 1 (exclusive), got %f", inc)
	}
	if c.GetPatchWidth() <= 0 || c.GetPatchHeight() <= 0 {
		return errors.Errorf("patch size must be positive, got %dx%d", c.GetPatchWidth(), c.GetPatchHeight())
	}
	for name, value := range map[string]*float64{
		"rejection_threshold": c.RejectionThreshold,
		"positive_threshold":  c.PositiveThreshold,
		"negative_threshold":  c.NegativeThreshold,
		"max_overlap":         c.MaxOverlap,
		"ridge_min_accuracy":  c.RidgeMinAccuracy,
		"min_weight":          c.MinWeight,
	} {
		if value != nil && (*value < 0 || *value > 1) {
			return errors.Errorf("%s must be between 0 and 1, got %f", name, *value)
		}
	}
	if positive, negative := c.GetPositiveThreshold(), c.GetNegativeThreshold(); negative >= positive {
		return errors.Errorf("negative_threshold must be below positive_threshold, got %f and %f", negative, positive)
	}
	if c.UnevaluatedPolicy != nil {
		if _, err := parsePolicy(*c.UnevaluatedPolicy); err != nil {
			return err
		}
	}
	if c.Workers != nil && *c.Workers <= 0 {
		return errors.Errorf("workers must be positive, got %d", *c.Workers)
	}
	if c.ExampleCount != nil && *c.ExampleCount <= 0 {
		return errors.Errorf("example_count must be positive, got %d", *c.ExampleCount)
	}
	if c.MaxOverlapCount != nil && *c.MaxOverlapCount < 0 {
		return errors.Errorf("max_overlap_count must be non-negative, got %d", *c.MaxOverlapCount)
	}
	if c.RidgeLambda != nil && *c.RidgeLambda <= 0 {
		return errors.Errorf("ridge_lambda must be positive, got %f", *c.RidgeLambda)
	}
	if c.SmoothingMaxMisses != nil && *c.SmoothingMaxMisses < 0 {
		return errors.Errorf("smoothing_max_misses must be non-negative, got %d", *c.SmoothingMaxMisses)
	}
	return nil
}

func parsePolicy(policy string) (condensation.UnevaluatedPolicy, error) {
	switch policy {
	case "", "neutral":
		return condensation.NeutralCertainty, nil
	case "exclude":
		return condensation.ExcludeUnevaluated, nil
	default:
		return condensation.NeutralCertainty, errors.Errorf("unevaluated_policy must be 'neutral' or 'exclude', got '%s'", policy)
	}
}

func getFloat64(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func getInt(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func getBool(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// GetCount returns the count value or the default.
func (c *TrackingConfig) GetCount() int { return getInt(c.Count, 800) }

// GetRandomRate returns the random_rate value or the default.
func (c *TrackingConfig) GetRandomRate() float64 { return getFloat64(c.RandomRate, 0.35) }

// GetScatter returns the scatter value or the default.
func (c *TrackingConfig) GetScatter() float64 { return getFloat64(c.Scatter, 0.2) }

// GetMinSize returns the min_size value or the default.
func (c *TrackingConfig) GetMinSize() float64 { return getFloat64(c.MinSize, 0.1666) }

// GetMaxSize returns the max_size value or the default.
func (c *TrackingConfig) GetMaxSize() float64 { return getFloat64(c.MaxSize, 0.8) }

// GetGridMinSize returns the grid_min_size value or the default.
func (c *TrackingConfig) GetGridMinSize() float64 { return getFloat64(c.GridMinSize, 0.1666) }

// GetGridMaxSize returns the grid_max_size value or the default.
func (c *TrackingConfig) GetGridMaxSize() float64 { return getFloat64(c.GridMaxSize, 0.8) }

// GetGridSizeScale returns the grid_size_scale value or the default.
func (c *TrackingConfig) GetGridSizeScale() float64 { return getFloat64(c.GridSizeScale, 1.0/0.85) }

// GetGridStepSize returns the grid_step_size value or the default.
func (c *TrackingConfig) GetGridStepSize() float64 { return getFloat64(c.GridStepSize, 0.1) }

// GetPyramidMinScale returns the pyramid_min_scale value or the default.
func (c *TrackingConfig) GetPyramidMinScale() float64 {
	return getFloat64(c.PyramidMinScale, 20.0/480.0)
}

// GetPyramidMaxScale returns the pyramid_max_scale value or the default.
func (c *TrackingConfig) GetPyramidMaxScale() float64 {
	return getFloat64(c.PyramidMaxScale, 20.0/80.0)
}

// GetPyramidIncrementalScale returns the pyramid_incremental_scale value or the default.
func (c *TrackingConfig) GetPyramidIncrementalScale() float64 {
	return getFloat64(c.PyramidIncrementalScale, 0.85)
}

// GetPatchWidth returns the patch_width value or the default.
func (c *TrackingConfig) GetPatchWidth() int { return getInt(c.PatchWidth, 20) }

// GetPatchHeight returns the patch_height value or the default.
func (c *TrackingConfig) GetPatchHeight() int { return getInt(c.PatchHeight, 20) }

// GetHistogramEqualization returns the histogram_equalization value or the default.
func (c *TrackingConfig) GetHistogramEqualization() bool {
	return getBool(c.HistogramEqualization, true)
}

// GetRejectionThreshold returns the rejection_threshold value or the default.
func (c *TrackingConfig) GetRejectionThreshold() float64 {
	return getFloat64(c.RejectionThreshold, 0)
}

// GetUnevaluatedPolicy returns the unevaluated_policy value or the default (neutral).
func (c *TrackingConfig) GetUnevaluatedPolicy() condensation.UnevaluatedPolicy {
	if c.UnevaluatedPolicy == nil {
		return condensation.NeutralCertainty
	}
	policy, err := parsePolicy(*c.UnevaluatedPolicy)
	if err != nil {
		return condensation.NeutralCertainty // default on parse error
	}
	return policy
}

// GetWorkers returns the workers value or the default.
func (c *TrackingConfig) GetWorkers() int { return getInt(c.Workers, 1) }

// GetCascadeA returns the cascade_a value or the default.
func (c *TrackingConfig) GetCascadeA() float64 { return getFloat64(c.CascadeA, -1) }

// GetCascadeB returns the cascade_b value or the default.
func (c *TrackingConfig) GetCascadeB() float64 { return getFloat64(c.CascadeB, 2) }

// GetSelfLearning returns the self_learning value or the default.
func (c *TrackingConfig) GetSelfLearning() bool { return getBool(c.SelfLearning, true) }

// GetPositiveThreshold returns the positive_threshold value or the default.
func (c *TrackingConfig) GetPositiveThreshold() float64 {
	return getFloat64(c.PositiveThreshold, 0.85)
}

// GetNegativeThreshold returns the negative_threshold value or the default.
func (c *TrackingConfig) GetNegativeThreshold() float64 {
	return getFloat64(c.NegativeThreshold, 0.05)
}

// GetExampleCount returns the example_count value or the default.
func (c *TrackingConfig) GetExampleCount() int { return getInt(c.ExampleCount, 10) }

// GetMaxOverlap returns the max_overlap value or the default.
func (c *TrackingConfig) GetMaxOverlap() float64 { return getFloat64(c.MaxOverlap, 0.5) }

// GetMaxOverlapCount returns the max_overlap_count value or the default.
func (c *TrackingConfig) GetMaxOverlapCount() int { return getInt(c.MaxOverlapCount, 10) }

// GetRidgeLambda returns the ridge_lambda value or the default.
func (c *TrackingConfig) GetRidgeLambda() float64 { return getFloat64(c.RidgeLambda, 1.0) }

// GetRidgeMinAccuracy returns the ridge_min_accuracy value or the default.
func (c *TrackingConfig) GetRidgeMinAccuracy() float64 {
	return getFloat64(c.RidgeMinAccuracy, 0.8)
}

// GetRidgeSlope returns the ridge_slope value or the default.
func (c *TrackingConfig) GetRidgeSlope() float64 { return getFloat64(c.RidgeSlope, 2.0) }

// GetMinWeight returns the min_weight value or the default.
func (c *TrackingConfig) GetMinWeight() float64 { return getFloat64(c.MinWeight, 0) }

// GetSmoothing returns the smoothing value or the default.
func (c *TrackingConfig) GetSmoothing() bool { return getBool(c.Smoothing, false) }

// GetSmoothingMaxMisses returns the smoothing_max_misses value or the default.
func (c *TrackingConfig) GetSmoothingMaxMisses() int { return getInt(c.SmoothingMaxMisses, 5) }
