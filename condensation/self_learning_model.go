package condensation

import (
	"image"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SelfLearningWvmSvmModel is a cascade measurement model that additionally trains a dynamic SVM
// from the patches of highest and lowest SVM certainty. Depending on the outcome of the last training
// the dynamic or the static SVM is used as second stage. When using the static SVM, an overlap
// elimination reduces the first stage survivors beforehand.
type SelfLearningWvmSvmModel struct {
	extractor  FeatureExtractor
	wvm        Classifier
	staticSvm  Classifier
	dynamicSvm TrainableClassifier
	// Whether the last retraining produced a usable dynamic SVM
	usingDynamicSvm    bool
	selfLearningActive bool
	opts               options
}

// NewSelfLearningWvmSvmModel creates new instance of SelfLearningWvmSvmModel with self-learning active.
// Without WithOverlapElimination the default overlap elimination is used.
func NewSelfLearningWvmSvmModel(extractor FeatureExtractor, wvm, staticSvm Classifier, dynamicSvm TrainableClassifier, opts ...Option) (*SelfLearningWvmSvmModel, error) {
	if extractor == nil {
		return nil, ErrNilFeatureExtractor
	}
	if wvm == nil || staticSvm == nil || dynamicSvm == nil {
		return nil, ErrNilClassifier
	}
	model := SelfLearningWvmSvmModel{
		extractor:          extractor,
		wvm:                wvm,
		staticSvm:          staticSvm,
		dynamicSvm:         dynamicSvm,
		selfLearningActive: true,
		opts:               defaultOptions(),
	}
	model.opts.overlapElimination = NewOverlapEliminationDefault()
	for _, opt := range opts {
		opt(&model.opts)
	}
	if model.opts.overlapElimination == nil {
		model.opts.overlapElimination = NewOverlapEliminationDefault()
	}
	positive, negative := model.opts.positiveThreshold, model.opts.negativeThreshold
	// A certainty between inverted thresholds would make a patch both positive and negative example
	if positive < 0 || positive > 1 || negative < 0 || negative > 1 || negative >= positive {
		return nil, errors.Wrapf(ErrInvalidThreshold, "got positive %f, negative %f", positive, negative)
	}
	return &model, nil
}

// Evaluate weights the samples and retrains the dynamic SVM
func (model *SelfLearningWvmSvmModel) Evaluate(frame image.Image, samples []Sample) {
	model.extractor.Update(frame)
	c := newCascade(model.extractor, samples)
	c.classifyFirst(model.wvm, model.opts.workers)
	candidates := c.candidates(c.survivors(model.opts.rejectionThreshold))

	var evaluated []Candidate
	if model.IsUsingDynamicSvm() {
		evaluated = c.classifySecond(model.dynamicSvm, candidates)
	} else {
		candidates = model.opts.overlapElimination.Eliminate(candidates)
		evaluated = c.classifySecond(model.staticSvm, candidates)
	}
	c.assignWeights(samples, model.opts.policy)

	if !model.selfLearningActive {
		return
	}
	positives, negatives := model.harvest(evaluated)
	negatives = append(negatives, model.opts.staticNegatives...)
	if len(positives) == 0 || len(negatives) == 0 {
		model.opts.logger.WithFields(logrus.Fields{
			"positives": len(positives),
			"negatives": len(negatives),
		}).Debug("not enough examples, skipping retraining")
		return
	}
	wasUsingDynamic := model.usingDynamicSvm
	model.usingDynamicSvm = model.dynamicSvm.Retrain(positives, negatives)
	if wasUsingDynamic != model.usingDynamicSvm {
		model.opts.logger.WithFields(logrus.Fields{
			"positives": len(positives),
			"negatives": len(negatives),
			"dynamic":   model.usingDynamicSvm,
		}).Info("second stage classifier switched")
	}
}

// harvest picks training examples from second stage results
func (model *SelfLearningWvmSvmModel) harvest(evaluated []Candidate) ([]*Patch, []*Patch) {
	positives := make([]*Patch, 0, model.opts.exampleCount)
	for _, candidate := range takeDistinctBest(evaluated, model.opts.exampleCount) {
		if candidate.Certainty > model.opts.positiveThreshold {
			positives = append(positives, candidate.Patch)
		}
	}
	negatives := make([]*Patch, 0, model.opts.exampleCount)
	for _, candidate := range takeDistinctWorst(evaluated, model.opts.exampleCount) {
		if candidate.Certainty < model.opts.negativeThreshold {
			negatives = append(negatives, candidate.Patch)
		}
	}
	return positives, negatives
}

// IsUsingDynamicSvm returns true if the dynamic SVM is used as second stage
func (model *SelfLearningWvmSvmModel) IsUsingDynamicSvm() bool {
	return model.selfLearningActive && model.usingDynamicSvm
}

// IsSelfLearningActive returns true if self-learning is active
func (model *SelfLearningWvmSvmModel) IsSelfLearningActive() bool {
	return model.selfLearningActive
}

// SetSelfLearningActive switches self-learning. While inactive the static SVM is used and no retraining happens.
func (model *SelfLearningWvmSvmModel) SetSelfLearningActive(active bool) {
	model.selfLearningActive = active
}

// takeDistinctBest returns at most count candidates with distinct patches having higher certainty than the rest
func takeDistinctBest(candidates []Candidate, count int) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Certainty > sorted[j].Certainty
	})
	return takeDistinct(sorted, count)
}

// takeDistinctWorst returns at most count candidates with distinct patches having lower certainty than the rest
func takeDistinctWorst(candidates []Candidate, count int) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Certainty < sorted[j].Certainty
	})
	return takeDistinct(sorted, count)
}

// takeDistinct returns the first count candidates with distinct patch IDs
func takeDistinct(candidates []Candidate, count int) []Candidate {
	taken := make([]Candidate, 0, count)
	seen := make(map[uuid.UUID]struct{}, count)
	for _, candidate := range candidates {
		if len(taken) >= count {
			break
		}
		if _, ok := seen[candidate.Patch.ID]; ok {
			continue
		}
		seen[candidate.Patch.ID] = struct{}{}
		taken = append(taken, candidate)
	}
	return taken
}
