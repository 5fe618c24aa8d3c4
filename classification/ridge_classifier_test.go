package classification

import (
	"testing"

	"github.com/LdDl/facetrack-go/condensation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchOf(pixels ...uint8) *condensation.Patch {
	return &condensation.Patch{Width: len(pixels), Height: 1, Pixels: pixels}
}

func leftBright() []*condensation.Patch {
	return []*condensation.Patch{
		patchOf(255, 255, 0, 0),
		patchOf(230, 250, 20, 10),
		patchOf(250, 220, 5, 30),
	}
}

func rightBright() []*condensation.Patch {
	return []*condensation.Patch{
		patchOf(0, 0, 255, 255),
		patchOf(20, 10, 240, 250),
		patchOf(15, 30, 220, 245),
	}
}

func TestRidgeClassifier(t *testing.T) {
	classifier, err := NewRidgeClassifier(0.1, 1.0, 2.0)
	require.NoError(t, err)

	positive, certainty := classifier.Classify(patchOf(240, 250, 10, 5))
	assert.False(t, positive, "untrained classifier rejects")
	assert.Equal(t, 0.0, certainty)

	require.True(t, classifier.Retrain(leftBright(), rightBright()))
	assert.True(t, classifier.IsTrained())

	positive, certainty = classifier.Classify(patchOf(240, 250, 10, 5))
	assert.True(t, positive)
	assert.Greater(t, certainty, 0.5)

	positive, certainty = classifier.Classify(patchOf(5, 10, 250, 240))
	assert.False(t, positive)
	assert.Less(t, certainty, 0.5)

	_, ok := classifier.Score(patchOf(1, 2, 3))
	assert.False(t, ok, "dimension mismatch")
	positive, _ = classifier.Classify(patchOf(1, 2, 3))
	assert.False(t, positive)
}

func TestRidgeClassifierFailedRetrain(t *testing.T) {
	classifier := NewRidgeClassifierDefault()
	assert.False(t, classifier.Retrain(leftBright(), nil))
	assert.False(t, classifier.Retrain(nil, rightBright()))
	assert.False(t, classifier.IsTrained())

	require.True(t, classifier.Retrain(leftBright(), rightBright()))
	// Mismatching dimensions keep the previous model
	assert.False(t, classifier.Retrain([]*condensation.Patch{patchOf(1, 2)}, rightBright()))
	assert.True(t, classifier.IsTrained())
	positive, _ := classifier.Classify(patchOf(240, 250, 10, 5))
	assert.True(t, positive)
}

func TestRidgeClassifierAccuracy(t *testing.T) {
	classifier, err := NewRidgeClassifier(1.0, 1.0, 2.0)
	require.NoError(t, err)
	// Identical examples with opposite labels can't be separated
	err = classifier.Train([]*condensation.Patch{patchOf(100, 100)}, []*condensation.Patch{patchOf(100, 100)})
	assert.Error(t, err)
	assert.False(t, classifier.IsTrained())
}

func TestNewRidgeClassifierValidation(t *testing.T) {
	_, err := NewRidgeClassifier(0, 0.8, 2)
	assert.Equal(t, ErrInvalidLambda, errors.Cause(err))
	_, err = NewRidgeClassifier(1, 1.5, 2)
	assert.Equal(t, ErrInvalidAccuracy, errors.Cause(err))
}
