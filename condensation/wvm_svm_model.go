package condensation

import (
	"image"

	"github.com/sirupsen/logrus"
)

// WvmSvmModel is a measurement model built from a cascade of a fast classifier (WVM) that
// rejects most of the samples and a slower, more precise one (SVM) evaluating the rest.
// Weight of a sample is the product of both certainties. Samples rejected by the first stage
// get certainty 0.5 for the second one (unless policy says otherwise).
type WvmSvmModel struct {
	extractor FeatureExtractor
	wvm       Classifier
	svm       Classifier
	opts      options
}

// NewWvmSvmModel creates new instance of WvmSvmModel
func NewWvmSvmModel(extractor FeatureExtractor, wvm, svm Classifier, opts ...Option) (*WvmSvmModel, error) {
	if extractor == nil {
		return nil, ErrNilFeatureExtractor
	}
	if wvm == nil || svm == nil {
		return nil, ErrNilClassifier
	}
	model := WvmSvmModel{
		extractor: extractor,
		wvm:       wvm,
		svm:       svm,
		opts:      defaultOptions(),
	}
	for _, opt := range opts {
		opt(&model.opts)
	}
	return &model, nil
}

// Evaluate weights the samples
func (model *WvmSvmModel) Evaluate(frame image.Image, samples []Sample) {
	model.extractor.Update(frame)
	c := newCascade(model.extractor, samples)
	c.classifyFirst(model.wvm, model.opts.workers)
	candidates := c.candidates(c.survivors(model.opts.rejectionThreshold))
	if model.opts.overlapElimination != nil {
		candidates = model.opts.overlapElimination.Eliminate(candidates)
	}
	c.classifySecond(model.svm, candidates)
	c.assignWeights(samples, model.opts.policy)
	model.opts.logger.WithFields(logrus.Fields{
		"samples":   len(samples),
		"patches":   len(c.distinct),
		"evaluated": len(candidates),
	}).Debug("cascade evaluated")
}
