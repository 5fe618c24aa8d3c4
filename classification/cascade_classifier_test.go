package classification

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/LdDl/facetrack-go/condensation"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verticalEdgeCascade builds a cascade of a single stump comparing a pixel above the
// window center with one below it: dark above bright passes with score 1, anything else is rejected.
func verticalEdgeCascade(treeNum uint32) []byte {
	data := make([]byte, 8)
	data = binary.LittleEndian.AppendUint32(data, 1) // tree depth
	data = binary.LittleEndian.AppendUint32(data, treeNum)
	// row and column offsets of both pixels in 1/256 of the window size
	data = append(data, byte(0xC0), 0, byte(0x40), 0)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(-1))
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1))
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(0))
	return data
}

// splitPatch has the upper half filled with top and the lower one with bottom
func splitPatch(size int, top, bottom uint8) *condensation.Patch {
	pixels := make([]uint8, size*size)
	for i := range pixels {
		if i/size < size/2 {
			pixels[i] = top
		} else {
			pixels[i] = bottom
		}
	}
	return &condensation.Patch{Width: size, Height: size, Size: float64(size), Pixels: pixels}
}

func TestCascadeClassifier(t *testing.T) {
	classifier, err := NewCascadeClassifier(verticalEdgeCascade(1), NewLogisticCalibrationDefault())
	require.NoError(t, err)

	face := splitPatch(20, 0, 255)
	assert.Equal(t, 1.0, classifier.Score(face))
	positive, certainty := classifier.Classify(face)
	assert.True(t, positive)
	assert.InDelta(t, 1.0/(1.0+math.E), certainty, 1e-9)

	other := splitPatch(20, 255, 0)
	assert.Equal(t, -1.0, classifier.Score(other))
	positive, certainty = classifier.Classify(other)
	assert.False(t, positive)
	assert.InDelta(t, 1.0/(1.0+math.Exp(3)), certainty, 1e-9)

	assert.Equal(t, -1.0, classifier.Score(nil))
	assert.Equal(t, -1.0, classifier.Score(&condensation.Patch{Width: 20, Height: 20}))
}

func TestCascadeClassifierMalformed(t *testing.T) {
	_, err := NewCascadeClassifier([]byte{1, 2, 3}, NewLogisticCalibrationDefault())
	assert.Equal(t, ErrInvalidCascade, errors.Cause(err))

	_, err = NewCascadeClassifier(verticalEdgeCascade(5), NewLogisticCalibrationDefault())
	assert.Equal(t, ErrInvalidCascade, errors.Cause(err))

	_, err = NewCascadeClassifierFromFile("missing.cascade", NewLogisticCalibrationDefault())
	assert.Error(t, err)
}

// fakeRunner records cascade parameters and reports prepared detections
type fakeRunner struct {
	params     pigo.CascadeParams
	detections []pigo.Detection
}

func (runner *fakeRunner) RunCascade(cp pigo.CascadeParams, angle float64) []pigo.Detection {
	runner.params = cp
	return runner.detections
}

func TestCascadeClassifierWindow(t *testing.T) {
	runner := &fakeRunner{detections: []pigo.Detection{{Q: 0.5}, {Q: 3.5}, {Q: 1}}}
	classifier := &CascadeClassifier{detector: runner, calibration: NewLogisticCalibrationDefault()}

	patch := splitPatch(20, 10, 200)
	patch.Pixels[0] = 42
	assert.Equal(t, 3.5, classifier.Score(patch))
	assert.Equal(t, 20, runner.params.MinSize)
	assert.Equal(t, 20, runner.params.MaxSize)
	assert.Equal(t, 22, runner.params.Rows)
	assert.Equal(t, 22, runner.params.Cols)
	assert.Equal(t, 22, runner.params.Dim)
	require.Len(t, runner.params.Pixels, 22*22)
	// Border replicates the corner
	assert.Equal(t, uint8(42), runner.params.Pixels[0])
	assert.Equal(t, uint8(42), runner.params.Pixels[23])
	assert.Equal(t, uint8(200), runner.params.Pixels[22*22-1])
}

func TestLogisticCalibration(t *testing.T) {
	calibration := NewLogisticCalibrationDefault()
	assert.InDelta(t, 0.5, calibration.Certainty(2), 1e-9)
	assert.Greater(t, calibration.Certainty(5), calibration.Certainty(3))
	assert.InDelta(t, 0.5, LogisticCalibration{}.Certainty(10), 1e-9)
}
