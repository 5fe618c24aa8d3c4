package condensation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ResamplingAlgorithm draws samples from a weighted population proportionally to the weights.
type ResamplingAlgorithm interface {
	// Resample returns exactly count samples (none if count <= 0 or samples is empty)
	Resample(samples []Sample, count int) []Sample
}

// LowVarianceSampling walks the cumulative weights with a fixed stride starting at a single random offset.
type LowVarianceSampling struct {
	src rand.Source
}

// NewLowVarianceSampling creates new instance of LowVarianceSampling
func NewLowVarianceSampling(src rand.Source) *LowVarianceSampling {
	return &LowVarianceSampling{
		src: src,
	}
}

// Resample selects count samples. A population without positive weight is treated as uniformly weighted.
func (lvs *LowVarianceSampling) Resample(samples []Sample, count int) []Sample {
	if count <= 0 || len(samples) == 0 {
		return []Sample{}
	}
	offset := distuv.Uniform{Min: 0, Max: 1.0 / float64(count), Src: lvs.src}.Rand()
	return lowVarianceSelect(samples, count, offset)
}

// lowVarianceSelect does the deterministic part of low variance sampling.
// offset is relative to the total weight and must lie within [0, 1/count).
func lowVarianceSelect(samples []Sample, count int, offset float64) []Sample {
	weights := make([]float64, len(samples))
	for i := range samples {
		w := samples[i].Weight
		if w > 0 && !math.IsInf(w, 1) {
			weights[i] = w
		}
	}
	total := floats.Sum(weights)
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}
	cumulative := make([]float64, len(weights))
	floats.CumSum(cumulative, weights)

	step := total / float64(count)
	pointer := offset * total
	selected := make([]Sample, 0, count)
	idx := 0
	last := len(samples) - 1
	for i := 0; i < count; i++ {
		// Interval of sample idx is [cumulative[idx-1], cumulative[idx])
		for idx < last && pointer >= cumulative[idx] {
			idx++
		}
		selected = append(selected, samples[idx])
		pointer += step
	}
	return selected
}
