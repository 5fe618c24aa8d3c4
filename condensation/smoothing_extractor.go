package condensation

import (
	kalman_filter "github.com/LdDl/kalman-filter"
)

// SmoothingPositionExtractor smooths the positions found by another extractor over
// consecutive frames using a Kalman filter on the full bounding box [cx, cy, w, h].
type SmoothingPositionExtractor struct {
	extractor PositionExtractor
	// Number of frames without detection after which the filter is dropped. Default is 5
	maxMisses    int
	noMatchTimes int
	dt           float64
	tracker      *kalman_filter.KalmanBBox
}

// NewSmoothingPositionExtractorDefault creates default instance of SmoothingPositionExtractor
func NewSmoothingPositionExtractorDefault(extractor PositionExtractor) *SmoothingPositionExtractor {
	return NewSmoothingPositionExtractor(extractor, 5, 1.0)
}

// NewSmoothingPositionExtractor creates new instance of SmoothingPositionExtractor
func NewSmoothingPositionExtractor(extractor PositionExtractor, maxMisses int, dt float64) *SmoothingPositionExtractor {
	return &SmoothingPositionExtractor{
		extractor: extractor,
		maxMisses: maxMisses,
		dt:        dt,
	}
}

// Extract returns the smoothed bounding box. Frames without detection yield no result.
func (extractor *SmoothingPositionExtractor) Extract(samples []Sample) (Rectangle, bool) {
	rect, ok := extractor.extractor.Extract(samples)
	if !ok {
		if extractor.tracker != nil {
			// Keep the motion model running through the gap
			extractor.tracker.Predict()
			extractor.noMatchTimes++
			if extractor.noMatchTimes > extractor.maxMisses {
				extractor.Reset()
			}
		}
		return Rectangle{}, false
	}
	center := rect.Center()
	if extractor.tracker == nil {
		extractor.tracker = newBBoxFilter(center, rect, extractor.dt)
		extractor.noMatchTimes = 0
		return rect, true
	}
	extractor.tracker.Predict()
	err := extractor.tracker.Update(center.X, center.Y, rect.Width, rect.Height)
	if err != nil {
		// Start over from the raw measurement
		extractor.tracker = newBBoxFilter(center, rect, extractor.dt)
		extractor.noMatchTimes = 0
		return rect, true
	}
	extractor.noMatchTimes = 0
	cx, cy, w, h := extractor.tracker.GetState()
	return NewRectFromCenter(cx, cy, w, h), true
}

// Reset drops the filter state
func (extractor *SmoothingPositionExtractor) Reset() {
	extractor.tracker = nil
	extractor.noMatchTimes = 0
}

func newBBoxFilter(center Point, rect Rectangle, dt float64) *kalman_filter.KalmanBBox {
	// Kalman filter props
	uCx := 0.0
	uCy := 0.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	return kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, rect.Width, rect.Height),
	)
}
