package classification

import "math"

// LogisticCalibration maps a raw classifier score to a certainty in (0, 1):
// 1 / (1 + exp(A * score + B)). Negative A makes higher scores more certain.
type LogisticCalibration struct {
	A float64
	B float64
}

// NewLogisticCalibrationDefault creates calibration suited for cascade scores, 0.5 at score 2
func NewLogisticCalibrationDefault() LogisticCalibration {
	return LogisticCalibration{A: -1, B: 2}
}

// Certainty returns calibrated certainty of the score
func (calibration LogisticCalibration) Certainty(score float64) float64 {
	return 1.0 / (1.0 + math.Exp(calibration.A*score+calibration.B))
}
