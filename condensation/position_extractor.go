package condensation

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PositionExtractor estimates the target from a weighted population.
type PositionExtractor interface {
	// Extract returns the target's bounding box, or false if there is no target
	Extract(samples []Sample) (Rectangle, bool)
}

// WeightedMeanPositionExtractor uses the weighted mean of position and size of all samples.
type WeightedMeanPositionExtractor struct{}

// NewWeightedMeanPositionExtractor creates new instance of WeightedMeanPositionExtractor
func NewWeightedMeanPositionExtractor() *WeightedMeanPositionExtractor {
	return &WeightedMeanPositionExtractor{}
}

// Extract returns square centered on the weighted mean. There is no result if total weight is zero.
func (extractor *WeightedMeanPositionExtractor) Extract(samples []Sample) (Rectangle, bool) {
	if len(samples) == 0 {
		return Rectangle{}, false
	}
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	sizes := make([]float64, len(samples))
	weights := make([]float64, len(samples))
	for i := range samples {
		xs[i] = samples[i].X
		ys[i] = samples[i].Y
		sizes[i] = samples[i].Size
		if samples[i].Weight > 0 {
			weights[i] = samples[i].Weight
		}
	}
	total := floats.Sum(weights)
	if !(total > 0) || math.IsInf(total, 0) {
		return Rectangle{}, false
	}
	x := stat.Mean(xs, weights)
	y := stat.Mean(ys, weights)
	size := stat.Mean(sizes, weights)
	return NewRectFromCenter(x, y, size, size), true
}

// FilteringPositionExtractor passes only samples classified as target with a minimum weight to another extractor.
type FilteringPositionExtractor struct {
	extractor PositionExtractor
	// Default is 0, i.e. only the classification counts
	minWeight float64
}

// NewFilteringPositionExtractorDefault creates default instance of FilteringPositionExtractor
func NewFilteringPositionExtractorDefault(extractor PositionExtractor) *FilteringPositionExtractor {
	return &FilteringPositionExtractor{
		extractor: extractor,
		minWeight: 0,
	}
}

// NewFilteringPositionExtractor creates new instance of FilteringPositionExtractor
func NewFilteringPositionExtractor(extractor PositionExtractor, minWeight float64) *FilteringPositionExtractor {
	return &FilteringPositionExtractor{
		extractor: extractor,
		minWeight: minWeight,
	}
}

// Extract filters the samples and delegates
func (extractor *FilteringPositionExtractor) Extract(samples []Sample) (Rectangle, bool) {
	filtered := make([]Sample, 0)
	for i := range samples {
		if samples[i].Object && samples[i].Weight >= extractor.minWeight {
			filtered = append(filtered, samples[i])
		}
	}
	if len(filtered) == 0 {
		return Rectangle{}, false
	}
	return extractor.extractor.Extract(filtered)
}
