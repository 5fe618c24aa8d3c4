package condensation

import (
	"image"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TrackerState is the lifecycle state of the tracker
type TrackerState uint8

const (
	// StateUninitialized means no frame was processed yet
	StateUninitialized TrackerState = iota
	// StateTracking means the tracker holds the population of the previous frame
	StateTracking
)

func (state TrackerState) String() string {
	switch state {
	case StateUninitialized:
		return "uninitialized"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// CondensationTracker estimates the position of a single target using the condensation algorithm
// (sequential Monte Carlo). Each frame it samples a new population, weights it by the measurement
// model and extracts the position. Not safe for concurrent use.
type CondensationTracker struct {
	id               uuid.UUID
	sampler          Sampler
	measurementModel MeasurementModel
	extractor        PositionExtractor
	// Weighted population of the previous frame
	samples []Sample
	state   TrackerState
	logger  logrus.FieldLogger
}

// NewCondensationTracker creates new instance of CondensationTracker
func NewCondensationTracker(sampler Sampler, measurementModel MeasurementModel, extractor PositionExtractor, opts ...Option) (*CondensationTracker, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	if measurementModel == nil {
		return nil, ErrNilMeasurementModel
	}
	if extractor == nil {
		return nil, ErrNilPositionExtractor
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	return &CondensationTracker{
		id:               id,
		sampler:          sampler,
		measurementModel: measurementModel,
		extractor:        extractor,
		samples:          []Sample{},
		state:            StateUninitialized,
		logger:           o.logger.WithField("tracker", id.String()),
	}, nil
}

// Process runs one condensation step on the frame and returns the target position if there is one
func (tracker *CondensationTracker) Process(frame image.Image) (Rectangle, bool) {
	if frame == nil {
		tracker.logger.Warn("nil frame skipped")
		return Rectangle{}, false
	}
	samples := tracker.sampler.Sample(tracker.samples, frame.Bounds())
	tracker.measurementModel.Evaluate(frame, samples)
	total := normalizeWeights(samples)
	position, found := tracker.extractor.Extract(samples)
	tracker.samples = samples
	if tracker.state == StateUninitialized {
		tracker.state = StateTracking
		tracker.logger.WithField("samples", len(samples)).Info("tracking started")
	}
	if total == 0 && len(samples) > 0 {
		tracker.logger.Warn("all samples rejected")
	}
	tracker.logger.WithFields(logrus.Fields{
		"samples": len(samples),
		"weight":  total,
		"found":   found,
	}).Debug("frame processed")
	return position, found
}

// GetID returns tracker's identifier
func (tracker *CondensationTracker) GetID() uuid.UUID {
	return tracker.id
}

// GetState returns tracker's lifecycle state
func (tracker *CondensationTracker) GetState() TrackerState {
	return tracker.state
}

// GetSamples returns copy of the current weighted population
func (tracker *CondensationTracker) GetSamples() []Sample {
	samples := make([]Sample, len(tracker.samples))
	copy(samples, tracker.samples)
	return samples
}

// GetSampler returns active sampler
func (tracker *CondensationTracker) GetSampler() Sampler {
	return tracker.sampler
}

// SetSampler swaps active sampler. The population is kept. Nil is rejected.
func (tracker *CondensationTracker) SetSampler(sampler Sampler) error {
	if sampler == nil {
		return ErrNilSampler
	}
	tracker.sampler = sampler
	tracker.logger.WithField("sampler", samplerName(sampler)).Info("sampler changed")
	return nil
}

// GetMeasurementModel returns measurement model
func (tracker *CondensationTracker) GetMeasurementModel() MeasurementModel {
	return tracker.measurementModel
}

// normalizeWeights scales weights to sum up to one and returns the sum before scaling.
// Invalid (negative, NaN, infinite) weights are zeroed. A population without weight stays at zero.
func normalizeWeights(samples []Sample) float64 {
	total := 0.0
	for i := range samples {
		w := samples[i].Weight
		if !(w > 0) || math.IsInf(w, 1) {
			samples[i].Weight = 0
			continue
		}
		total += w
	}
	if total == 0 {
		return 0
	}
	for i := range samples {
		samples[i].Weight /= total
	}
	return total
}

func samplerName(sampler Sampler) string {
	switch sampler.(type) {
	case *GridSampler:
		return "grid"
	case *ResamplingSampler:
		return "resampling"
	default:
		return "custom"
	}
}
