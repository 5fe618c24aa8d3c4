package condensation

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// TransitionModel propagates a sample from one frame to the next.
type TransitionModel interface {
	// Predict returns new state of the sample. Weight, Object and ID of the result are unset.
	Predict(sample Sample) Sample
}

// SimpleTransitionModel adds zero-mean gaussian noise to the position (proportional to the sample size)
// and log-normal noise to the size.
type SimpleTransitionModel struct {
	// Standard deviation of the noise relative to the sample size. Default is 0.2
	scatter float64
	src     rand.Source
}

// NewSimpleTransitionModelDefault creates default instance of SimpleTransitionModel
func NewSimpleTransitionModelDefault(src rand.Source) *SimpleTransitionModel {
	return &SimpleTransitionModel{
		scatter: 0.2,
		src:     src,
	}
}

// NewSimpleTransitionModel creates new instance of SimpleTransitionModel
func NewSimpleTransitionModel(scatter float64, src rand.Source) (*SimpleTransitionModel, error) {
	if scatter < 0 || math.IsNaN(scatter) || math.IsInf(scatter, 0) {
		return nil, errors.Wrapf(ErrInvalidScatter, "got %f", scatter)
	}
	return &SimpleTransitionModel{
		scatter: scatter,
		src:     src,
	}, nil
}

// Predict moves the sample randomly
func (model *SimpleTransitionModel) Predict(sample Sample) Sample {
	positionNoise := distuv.Normal{Mu: 0, Sigma: model.scatter * sample.Size, Src: model.src}
	sizeNoise := distuv.Normal{Mu: 0, Sigma: model.scatter, Src: model.src}
	x := sample.X + positionNoise.Rand()
	y := sample.Y + positionNoise.Rand()
	size := sample.Size * math.Exp(sizeNoise.Rand())
	return NewSample(x, y, size)
}

// GetScatter returns current scatter
func (model *SimpleTransitionModel) GetScatter() float64 {
	return model.scatter
}

// SetScatter sets scatter. Negative and non-finite values are rejected and leave the model unchanged
func (model *SimpleTransitionModel) SetScatter(scatter float64) error {
	if scatter < 0 || math.IsNaN(scatter) || math.IsInf(scatter, 0) {
		return errors.Wrapf(ErrInvalidScatter, "got %f", scatter)
	}
	model.scatter = scatter
	return nil
}
