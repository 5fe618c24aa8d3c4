package condensation

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// GridSampler covers the frame with samples on a regular grid over a geometric series of sizes.
// It ignores the previous population.
type GridSampler struct {
	// Bounds of sample size relative to the smaller frame dimension. Defaults are 0.1666 and 0.8
	minSize float64
	maxSize float64
	// Ratio between consecutive sizes. Default is 1/0.85 (inverse of the image pyramid scale factor)
	sizeScale float64
	// Grid step relative to the sample size. Default is 0.1
	stepSize float64
}

// NewGridSamplerDefault creates default instance of GridSampler
func NewGridSamplerDefault() *GridSampler {
	return &GridSampler{
		minSize:   0.1666,
		maxSize:   0.8,
		sizeScale: 1 / 0.85,
		stepSize:  0.1,
	}
}

// NewGridSampler creates new instance of GridSampler
func NewGridSampler(minSize, maxSize, sizeScale, stepSize float64) (*GridSampler, error) {
	if !(minSize > 0 && minSize <= maxSize && maxSize <= 1) {
		return nil, errors.Wrapf(ErrInvalidSize, "got min %f, max %f", minSize, maxSize)
	}
	if !(sizeScale > 1) || !(stepSize > 0) {
		return nil, errors.Wrapf(ErrInvalidGrid, "got size scale %f, step size %f", sizeScale, stepSize)
	}
	return &GridSampler{
		minSize:   minSize,
		maxSize:   maxSize,
		sizeScale: sizeScale,
		stepSize:  stepSize,
	}, nil
}

// Sample creates the grid for given frame bounds
func (sampler *GridSampler) Sample(_ []Sample, bounds image.Rectangle) []Sample {
	minDim := float64(minInt(bounds.Dx(), bounds.Dy()))
	samples := make([]Sample, 0)
	if minDim <= 0 {
		return samples
	}
	maxSize := sampler.maxSize * minDim
	for size := sampler.minSize * minDim; size <= maxSize; size *= sampler.sizeScale {
		step := math.Max(1, math.Round(sampler.stepSize*size))
		half := size / 2.0
		for y := float64(bounds.Min.Y) + half; y <= float64(bounds.Max.Y)-half; y += step {
			for x := float64(bounds.Min.X) + half; x <= float64(bounds.Max.X)-half; x += step {
				samples = append(samples, NewSample(x, y, size))
			}
		}
	}
	return samples
}
