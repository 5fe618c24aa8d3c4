package classification

import (
	"fmt"
	"os"

	"github.com/LdDl/facetrack-go/condensation"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"
)

// cascadeRunner is satisfied by *pigo.Pigo
type cascadeRunner interface {
	RunCascade(cp pigo.CascadeParams, angle float64) []pigo.Detection
}

// rejectedScore is the score pigo reports for a window rejected by an early stage
const rejectedScore = -1.0

// CascadeClassifier evaluates a pigo face cascade on exactly one window covering the patch.
// It serves as the fast first stage: most windows are rejected after few trees.
type CascadeClassifier struct {
	detector    cascadeRunner
	calibration LogisticCalibration
}

// NewCascadeClassifierFromFile reads a pigo cascade file (e.g. "facefinder")
func NewCascadeClassifierFromFile(path string, calibration LogisticCalibration) (*CascadeClassifier, error) {
	cascadeFile, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read cascade file %s", path)
	}
	return NewCascadeClassifier(cascadeFile, calibration)
}

// NewCascadeClassifier creates new instance of CascadeClassifier from binary cascade data
func NewCascadeClassifier(cascadeFile []byte, calibration LogisticCalibration) (classifier *CascadeClassifier, err error) {
	// 8 bytes of header, tree depth and tree count
	if len(cascadeFile) < 16 {
		return nil, errors.Wrapf(ErrInvalidCascade, "got %d bytes", len(cascadeFile))
	}
	defer func() {
		// Truncated tree data makes the unpacking index out of range
		if r := recover(); r != nil {
			classifier = nil
			err = errors.Wrap(ErrInvalidCascade, fmt.Sprint(r))
		}
	}()
	detector, err := pigo.NewPigo().Unpack(cascadeFile)
	if err != nil {
		return nil, errors.Wrap(err, "can't unpack cascade")
	}
	return &CascadeClassifier{
		detector:    detector,
		calibration: calibration,
	}, nil
}

// Classify scores the patch and calibrates the score
func (classifier *CascadeClassifier) Classify(patch *condensation.Patch) (bool, float64) {
	score := classifier.Score(patch)
	return score > 0, classifier.calibration.Certainty(score)
}

// Score returns the cascade output for the window covering the patch, -1 if rejected
func (classifier *CascadeClassifier) Score(patch *condensation.Patch) float64 {
	if patch == nil || patch.Width <= 0 || patch.Height <= 0 || len(patch.Pixels) < patch.Width*patch.Height {
		return rejectedScore
	}
	size := minInt(patch.Width, patch.Height)
	padded, rows, cols := padPatch(patch)
	// One window: the window center sits at size/2+1 and the scale loop ends after the first scale
	detections := classifier.detector.RunCascade(pigo.CascadeParams{
		MinSize:     size,
		MaxSize:     size,
		ShiftFactor: 1,
		ScaleFactor: 2,
		ImageParams: pigo.ImageParams{
			Pixels: padded,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}, 0.0)
	best := rejectedScore
	for _, detection := range detections {
		if float64(detection.Q) > best {
			best = float64(detection.Q)
		}
	}
	return best
}

// padPatch surrounds the patch with a one pixel border replicating its edge
func padPatch(patch *condensation.Patch) ([]uint8, int, int) {
	rows, cols := patch.Height+2, patch.Width+2
	padded := make([]uint8, rows*cols)
	for r := 0; r < rows; r++ {
		sr := clampInt(r-1, 0, patch.Height-1)
		for c := 0; c < cols; c++ {
			sc := clampInt(c-1, 0, patch.Width-1)
			padded[r*cols+c] = patch.Pixels[sr*patch.Width+sc]
		}
	}
	return padded, rows, cols
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
