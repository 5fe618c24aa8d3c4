package condensation

import (
	"image"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FeatureExtractor gives access to patches of the current frame.
type FeatureExtractor interface {
	// Update prepares extraction from a new frame
	Update(frame image.Image)
	// Extract returns the patch for the square region centered on (x, y).
	// Returns false if the region can not be extracted (e.g. it exceeds the frame).
	Extract(x, y, size float64) (*Patch, bool)
}

// Classifier decides whether a patch shows the target.
type Classifier interface {
	// Classify returns decision and certainty in [0, 1]
	Classify(patch *Patch) (bool, float64)
}

// TrainableClassifier is a classifier that can be retrained online.
type TrainableClassifier interface {
	Classifier
	// Retrain replaces the model by one trained on the examples.
	// Returns false if the resulting model is not usable.
	Retrain(positives, negatives []*Patch) bool
}

// MeasurementModel weights samples using the image evidence of a frame.
type MeasurementModel interface {
	// Evaluate sets Weight, Object and ID of every sample
	Evaluate(frame image.Image, samples []Sample)
}

// classification is the outcome of a single classifier on a patch
type classification struct {
	positive  bool
	certainty float64
	evaluated bool
}

// cascade keeps the per frame state of a two stage evaluation.
// Each distinct patch is classified at most once per stage.
type cascade struct {
	// Patch per sample, nil if not extractable
	patches []*Patch
	// Distinct patches in order of first appearance
	distinct []*Patch
	index    map[uuid.UUID]int
	first    []classification
	second   []classification
}

func newCascade(extractor FeatureExtractor, samples []Sample) *cascade {
	c := &cascade{
		patches:  make([]*Patch, len(samples)),
		distinct: make([]*Patch, 0, len(samples)),
		index:    make(map[uuid.UUID]int, len(samples)),
	}
	for i := range samples {
		patch, ok := extractor.Extract(samples[i].X, samples[i].Y, samples[i].Size)
		if !ok || patch == nil {
			continue
		}
		c.patches[i] = patch
		if _, seen := c.index[patch.ID]; !seen {
			c.index[patch.ID] = len(c.distinct)
			c.distinct = append(c.distinct, patch)
		}
	}
	c.first = make([]classification, len(c.distinct))
	c.second = make([]classification, len(c.distinct))
	return c
}

// classifyFirst runs classifier on all distinct patches using up to workers goroutines
func (c *cascade) classifyFirst(classifier Classifier, workers int) {
	if workers <= 1 {
		for d, patch := range c.distinct {
			c.first[d] = classify(classifier, patch)
		}
		return
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for d, patch := range c.distinct {
		g.Go(func() error {
			c.first[d] = classify(classifier, patch)
			return nil
		})
	}
	_ = g.Wait()
}

// survivors returns indices of distinct patches passing the first stage
func (c *cascade) survivors(rejectionThreshold float64) []int {
	passed := make([]int, 0)
	for d, result := range c.first {
		if result.positive && result.certainty >= rejectionThreshold {
			passed = append(passed, d)
		}
	}
	return passed
}

// candidates wraps given distinct patches with their first stage certainty
func (c *cascade) candidates(indices []int) []Candidate {
	candidates := make([]Candidate, len(indices))
	for i, d := range indices {
		candidates[i] = Candidate{Patch: c.distinct[d], Certainty: c.first[d].certainty}
	}
	return candidates
}

// classifySecond runs classifier on the given candidates
func (c *cascade) classifySecond(classifier Classifier, candidates []Candidate) []Candidate {
	evaluated := make([]Candidate, len(candidates))
	for i, candidate := range candidates {
		d := c.index[candidate.Patch.ID]
		c.second[d] = classify(classifier, candidate.Patch)
		evaluated[i] = Candidate{Patch: candidate.Patch, Certainty: c.second[d].certainty}
	}
	return evaluated
}

// assignWeights writes cascade results into the samples
func (c *cascade) assignWeights(samples []Sample, policy UnevaluatedPolicy) {
	for i := range samples {
		patch := c.patches[i]
		if patch == nil {
			samples[i].Weight = 0
			samples[i].Object = false
			samples[i].ID = uuid.Nil
			continue
		}
		d := c.index[patch.ID]
		samples[i].ID = patch.ID
		if c.second[d].evaluated {
			samples[i].Weight = c.first[d].certainty * c.second[d].certainty
			samples[i].Object = c.second[d].positive
			continue
		}
		samples[i].Object = false
		switch policy {
		case ExcludeUnevaluated:
			samples[i].Weight = 0
		default:
			samples[i].Weight = c.first[d].certainty * neutralCertainty
		}
	}
}

func classify(classifier Classifier, patch *Patch) classification {
	positive, certainty := classifier.Classify(patch)
	return classification{
		positive:  positive,
		certainty: clampUnit(certainty),
		evaluated: true,
	}
}
