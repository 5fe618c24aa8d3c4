package classification

import (
	"math"

	"github.com/LdDl/facetrack-go/condensation"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// RidgeClassifier is a linear classifier on the patch pixels, trained by ridge regression
// on the targets +1 (positive) and -1 (negative). The score is calibrated by a logistic function.
type RidgeClassifier struct {
	// Regularization strength. Default is 1.0
	lambda float64
	// Minimum share of correctly classified training examples to accept a model. Default is 0.8
	minAccuracy float64
	// Steepness of the logistic calibration. Default is 2.0
	slope float64
	// Weights with bias as last element, nil while untrained
	weights *mat.VecDense
}

// NewRidgeClassifierDefault creates default instance of RidgeClassifier
func NewRidgeClassifierDefault() *RidgeClassifier {
	return &RidgeClassifier{
		lambda:      1.0,
		minAccuracy: 0.8,
		slope:       2.0,
	}
}

// NewRidgeClassifier creates new instance of RidgeClassifier
func NewRidgeClassifier(lambda, minAccuracy, slope float64) (*RidgeClassifier, error) {
	if !(lambda > 0) {
		return nil, errors.Wrapf(ErrInvalidLambda, "got %f", lambda)
	}
	if minAccuracy < 0 || minAccuracy > 1 {
		return nil, errors.Wrapf(ErrInvalidAccuracy, "got %f", minAccuracy)
	}
	return &RidgeClassifier{
		lambda:      lambda,
		minAccuracy: minAccuracy,
		slope:       slope,
	}, nil
}

// Train is Retrain reporting the reason of a failure
func (classifier *RidgeClassifier) Train(positives, negatives []*condensation.Patch) error {
	if len(positives) == 0 || len(negatives) == 0 {
		return errors.Errorf("need positive and negative examples, got %d and %d", len(positives), len(negatives))
	}
	examples := make([]*condensation.Patch, 0, len(positives)+len(negatives))
	examples = append(examples, positives...)
	examples = append(examples, negatives...)
	dims := len(examples[0].Pixels)
	if dims == 0 {
		return errors.New("examples have no pixels")
	}

	n := len(examples)
	x := mat.NewDense(n, dims+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, example := range examples {
		if len(example.Pixels) != dims {
			return errors.Errorf("example %d has %d pixels, expected %d", i, len(example.Pixels), dims)
		}
		x.SetRow(i, features(example))
		if i < len(positives) {
			y.SetVec(i, 1)
		} else {
			y.SetVec(i, -1)
		}
	}

	// (X'X + lambda*I) w = X'y
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	for i := 0; i <= dims; i++ {
		xtx.SetSym(i, i, xtx.At(i, i)+classifier.lambda)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return errors.New("normal equations are not positive definite")
	}
	weights := mat.NewVecDense(dims+1, nil)
	if err := chol.SolveVecTo(weights, &xty); err != nil {
		return errors.Wrap(err, "can't solve normal equations")
	}

	var scores mat.VecDense
	scores.MulVec(x, weights)
	correct := 0
	for i := 0; i < n; i++ {
		if (scores.AtVec(i) > 0) == (y.AtVec(i) > 0) {
			correct++
		}
	}
	accuracy := float64(correct) / float64(n)
	if accuracy < classifier.minAccuracy {
		return errors.Errorf("training accuracy %f below %f", accuracy, classifier.minAccuracy)
	}
	classifier.weights = weights
	return nil
}

// Retrain replaces the model. On failure the previous model is kept and false is returned.
func (classifier *RidgeClassifier) Retrain(positives, negatives []*condensation.Patch) bool {
	return classifier.Train(positives, negatives) == nil
}

// Classify returns decision and calibrated certainty. An untrained classifier rejects everything.
func (classifier *RidgeClassifier) Classify(patch *condensation.Patch) (bool, float64) {
	score, ok := classifier.Score(patch)
	if !ok {
		return false, 0
	}
	return score > 0, 1.0 / (1.0 + math.Exp(-classifier.slope*score))
}

// Score returns the raw linear output. Returns false if the classifier is untrained or dimensions differ.
func (classifier *RidgeClassifier) Score(patch *condensation.Patch) (float64, bool) {
	if classifier.weights == nil || patch == nil || len(patch.Pixels)+1 != classifier.weights.Len() {
		return 0, false
	}
	return mat.Dot(mat.NewVecDense(len(patch.Pixels)+1, features(patch)), classifier.weights), true
}

// IsTrained returns true if the classifier holds a model
func (classifier *RidgeClassifier) IsTrained() bool {
	return classifier.weights != nil
}

// features returns normalized pixels with a constant bias term appended
func features(patch *condensation.Patch) []float64 {
	return append(patch.Vector(), 1.0)
}
