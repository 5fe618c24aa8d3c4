package condensation

import (
	"os"

	"github.com/sirupsen/logrus"
)

// UnevaluatedPolicy decides how samples that were not scored by the second
// cascade stage contribute to the population weights.
type UnevaluatedPolicy uint8

const (
	// NeutralCertainty uses certainty 0.5 for the missing second stage factor
	NeutralCertainty UnevaluatedPolicy = iota
	// ExcludeUnevaluated gives zero weight to samples without second stage evidence
	ExcludeUnevaluated
)

func (policy UnevaluatedPolicy) String() string {
	switch policy {
	case NeutralCertainty:
		return "neutral"
	case ExcludeUnevaluated:
		return "exclude"
	default:
		return "unknown"
	}
}

const neutralCertainty = 0.5

type options struct {
	logger             logrus.FieldLogger
	workers            int
	rejectionThreshold float64
	policy             UnevaluatedPolicy
	overlapElimination *OverlapElimination
	positiveThreshold  float64
	negativeThreshold  float64
	exampleCount       int
	staticNegatives    []*Patch
}

func defaultOptions() options {
	return options{
		logger:            defaultLogger(),
		workers:           1,
		policy:            NeutralCertainty,
		positiveThreshold: 0.85,
		negativeThreshold: 0.05,
		exampleCount:      10,
	}
}

// Option configures trackers and measurement models. Options that do not apply
// to the component being constructed are ignored.
type Option func(*options)

// WithLogger sets logger. Nil keeps the default one (warnings to stderr).
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// WithWorkers sets number of goroutines classifying patches in the first cascade stage
func WithWorkers(workers int) Option {
	return func(opts *options) {
		if workers > 0 {
			opts.workers = workers
		}
	}
}

// WithRejectionThreshold sets minimum first stage certainty a positive patch needs to reach the second stage
func WithRejectionThreshold(threshold float64) Option {
	return func(opts *options) {
		opts.rejectionThreshold = clampUnit(threshold)
	}
}

// WithUnevaluatedPolicy sets weighting of samples that skipped the second stage
func WithUnevaluatedPolicy(policy UnevaluatedPolicy) Option {
	return func(opts *options) {
		opts.policy = policy
	}
}

// WithOverlapElimination reduces first stage survivors before the second stage
func WithOverlapElimination(oe *OverlapElimination) Option {
	return func(opts *options) {
		opts.overlapElimination = oe
	}
}

// WithTrainingThresholds sets certainties a patch must exceed (positive) or fall below (negative) to become a training example
func WithTrainingThresholds(positive, negative float64) Option {
	return func(opts *options) {
		opts.positiveThreshold = positive
		opts.negativeThreshold = negative
	}
}

// WithExampleCount caps positive and negative examples harvested per frame
func WithExampleCount(count int) Option {
	return func(opts *options) {
		if count > 0 {
			opts.exampleCount = count
		}
	}
}

// WithStaticNegatives adds fixed negative examples to every retraining
func WithStaticNegatives(negatives []*Patch) Option {
	return func(opts *options) {
		opts.staticNegatives = negatives
	}
}

func defaultLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}
