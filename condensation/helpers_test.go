package condensation

import (
	"fmt"
	"image"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const (
	eps = 0.00001
)

// roundingExtractor hands out patches of regions inside the frame.
// Regions are snapped to whole pixels, so nearby samples share a patch.
type roundingExtractor struct {
	bounds  image.Rectangle
	updates int
}

func (extractor *roundingExtractor) Update(frame image.Image) {
	extractor.bounds = frame.Bounds()
	extractor.updates++
}

func (extractor *roundingExtractor) Extract(x, y, size float64) (*Patch, bool) {
	cx, cy, s := math.Round(x), math.Round(y), math.Round(size)
	half := s / 2.0
	if s < 1 || cx-half < float64(extractor.bounds.Min.X) || cy-half < float64(extractor.bounds.Min.Y) ||
		cx+half > float64(extractor.bounds.Max.X) || cy+half > float64(extractor.bounds.Max.Y) {
		return nil, false
	}
	key := fmt.Sprintf("%v:%v:%v", cx, cy, s)
	return &Patch{
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)),
		X:    cx,
		Y:    cy,
		Size: s,
	}, true
}

// distanceClassifier is certain about patches centered on the target
type distanceClassifier struct {
	target Point
	radius float64
	calls  atomic.Int64
}

func newDistanceClassifier(x, y, radius float64) *distanceClassifier {
	return &distanceClassifier{target: Point{X: x, Y: y}, radius: radius}
}

func (classifier *distanceClassifier) Classify(patch *Patch) (bool, float64) {
	classifier.calls.Add(1)
	d := euclideanDistance(Point{X: patch.X, Y: patch.Y}, classifier.target)
	certainty := math.Exp(-d * d / (2 * classifier.radius * classifier.radius))
	return certainty > 0.5, certainty
}

// constantClassifier gives the same answer for every patch
type constantClassifier struct {
	positive  bool
	certainty float64
	calls     atomic.Int64
}

func (classifier *constantClassifier) Classify(patch *Patch) (bool, float64) {
	classifier.calls.Add(1)
	return classifier.positive, classifier.certainty
}

// recordingClassifier is a trainable classifier remembering its training sets
type recordingClassifier struct {
	constantClassifier
	result    bool
	retrains  int
	positives []*Patch
	negatives []*Patch
}

func (classifier *recordingClassifier) Retrain(positives, negatives []*Patch) bool {
	classifier.retrains++
	classifier.positives = positives
	classifier.negatives = negatives
	return classifier.result
}

func newTestLogger() (logrus.FieldLogger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func newGrayFrame(width, height int) image.Image {
	return image.NewGray(image.Rect(0, 0, width, height))
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

func sumWeights(samples []Sample) float64 {
	total := 0.0
	for _, sample := range samples {
		total += sample.Weight
	}
	return total
}
