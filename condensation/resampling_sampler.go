package condensation

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler produces the sample population of the next frame.
type Sampler interface {
	Sample(previous []Sample, bounds image.Rectangle) []Sample
}

// ResamplingSampler resamples the previous population, moves the selected samples via transition model
// and adds a share of uniformly distributed random samples.
type ResamplingSampler struct {
	// Number of samples per frame. Default is 800
	count int
	// Share of random samples. Default is 0.35
	randomRate float64
	resampling ResamplingAlgorithm
	transition TransitionModel
	// Bounds of sample size relative to the smaller frame dimension. Defaults are 0.1666 and 0.8
	minSize float64
	maxSize float64
	src     rand.Source
}

// NewResamplingSamplerDefault creates default instance of ResamplingSampler
func NewResamplingSamplerDefault(resampling ResamplingAlgorithm, transition TransitionModel, src rand.Source) (*ResamplingSampler, error) {
	return NewResamplingSampler(800, 0.35, resampling, transition, 0.1666, 0.8, src)
}

// NewResamplingSampler creates new instance of ResamplingSampler
func NewResamplingSampler(count int, randomRate float64, resampling ResamplingAlgorithm, transition TransitionModel, minSize, maxSize float64, src rand.Source) (*ResamplingSampler, error) {
	if count <= 0 {
		return nil, errors.Wrapf(ErrInvalidCount, "got %d", count)
	}
	if resampling == nil {
		return nil, ErrNilResampling
	}
	if transition == nil {
		return nil, ErrNilTransitionModel
	}
	if !(minSize > 0 && minSize <= maxSize && maxSize <= 1) {
		return nil, errors.Wrapf(ErrInvalidSize, "got min %f, max %f", minSize, maxSize)
	}
	return &ResamplingSampler{
		count:      count,
		randomRate: clampUnit(randomRate),
		resampling: resampling,
		transition: transition,
		minSize:    minSize,
		maxSize:    maxSize,
		src:        src,
	}, nil
}

// Sample creates exactly count samples. Previous population may be empty or carry no weight at all.
func (sampler *ResamplingSampler) Sample(previous []Sample, bounds image.Rectangle) []Sample {
	randomCount := int(math.Round(float64(sampler.count) * sampler.randomRate))
	resampleCount := sampler.count - randomCount
	samples := make([]Sample, 0, sampler.count)
	if resampleCount > 0 && len(previous) > 0 {
		for _, selected := range sampler.resampling.Resample(previous, resampleCount) {
			if len(samples) == resampleCount {
				break
			}
			predicted := sampler.transition.Predict(selected)
			if !sampler.isValid(predicted, bounds) {
				// Drifted out of the frame or the size range
				predicted = sampler.randomSample(bounds)
			}
			samples = append(samples, predicted)
		}
	}
	for len(samples) < sampler.count {
		samples = append(samples, sampler.randomSample(bounds))
	}
	return samples
}

func (sampler *ResamplingSampler) sizeRange(bounds image.Rectangle) (float64, float64) {
	minDim := float64(minInt(bounds.Dx(), bounds.Dy()))
	return sampler.minSize * minDim, sampler.maxSize * minDim
}

func (sampler *ResamplingSampler) isValid(sample Sample, bounds image.Rectangle) bool {
	minSize, maxSize := sampler.sizeRange(bounds)
	if sample.Size < minSize || sample.Size > maxSize {
		return false
	}
	half := sample.Size / 2.0
	return sample.X-half >= float64(bounds.Min.X) && sample.X+half <= float64(bounds.Max.X) &&
		sample.Y-half >= float64(bounds.Min.Y) && sample.Y+half <= float64(bounds.Max.Y)
}

func (sampler *ResamplingSampler) randomSample(bounds image.Rectangle) Sample {
	minSize, maxSize := sampler.sizeRange(bounds)
	size := distuv.Uniform{Min: minSize, Max: maxSize, Src: sampler.src}.Rand()
	half := size / 2.0
	x := distuv.Uniform{Min: float64(bounds.Min.X) + half, Max: float64(bounds.Max.X) - half, Src: sampler.src}.Rand()
	y := distuv.Uniform{Min: float64(bounds.Min.Y) + half, Max: float64(bounds.Max.Y) - half, Src: sampler.src}.Rand()
	return NewSample(x, y, size)
}

// GetCount returns number of samples per frame
func (sampler *ResamplingSampler) GetCount() int {
	return sampler.count
}

// SetCount sets number of samples per frame. Negative values are rejected and leave the sampler unchanged.
func (sampler *ResamplingSampler) SetCount(count int) error {
	if count < 0 {
		return errors.Wrapf(ErrInvalidCount, "got %d", count)
	}
	sampler.count = count
	return nil
}

// GetRandomRate returns share of random samples
func (sampler *ResamplingSampler) GetRandomRate() float64 {
	return sampler.randomRate
}

// SetRandomRate sets share of random samples, clamped to [0, 1]
func (sampler *ResamplingSampler) SetRandomRate(randomRate float64) {
	sampler.randomRate = clampUnit(randomRate)
}

// GetMinSize returns minimum sample size relative to the smaller frame dimension
func (sampler *ResamplingSampler) GetMinSize() float64 {
	return sampler.minSize
}

// GetMaxSize returns maximum sample size relative to the smaller frame dimension
func (sampler *ResamplingSampler) GetMaxSize() float64 {
	return sampler.maxSize
}
