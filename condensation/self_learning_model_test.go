package condensation

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

// selfLearningScene has one sample on the target and one far away from it
func selfLearningScene() []Sample {
	return []Sample{NewSample(50, 50, 20), NewSample(150, 150, 20)}
}

func TestSelfLearningRetrain(t *testing.T) {
	frame := newGrayFrame(200, 200)
	wvm := &constantClassifier{positive: true, certainty: 0.9}
	staticSvm := newDistanceClassifier(50, 50, 10)
	dynamicSvm := &recordingClassifier{constantClassifier: constantClassifier{positive: true, certainty: 0.7}, result: true}
	logger, hook := newTestLogger()
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, wvm, staticSvm, dynamicSvm, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if !model.IsSelfLearningActive() || model.IsUsingDynamicSvm() {
		t.Fatalf("Expected active self-learning with static SVM")
	}

	samples := selfLearningScene()
	model.Evaluate(frame, samples)
	if dynamicSvm.retrains != 1 {
		t.Fatalf("Expected 1 retraining, got %d", dynamicSvm.retrains)
	}
	if len(dynamicSvm.positives) != 1 || dynamicSvm.positives[0].X != 50 {
		t.Errorf("Expected target patch as only positive, got %d positives", len(dynamicSvm.positives))
	}
	if len(dynamicSvm.negatives) != 1 || dynamicSvm.negatives[0].X != 150 {
		t.Errorf("Expected far patch as only negative, got %d negatives", len(dynamicSvm.negatives))
	}
	if staticSvm.calls.Load() != 2 || dynamicSvm.calls.Load() != 0 {
		t.Errorf("Expected static second stage, got static %d and dynamic %d calls", staticSvm.calls.Load(), dynamicSvm.calls.Load())
	}
	if !model.IsUsingDynamicSvm() {
		t.Fatalf("Expected dynamic SVM after successful retraining")
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "second stage classifier switched" {
		t.Errorf("Expected switch to be logged")
	}

	samples = selfLearningScene()
	model.Evaluate(frame, samples)
	if dynamicSvm.calls.Load() != 2 || staticSvm.calls.Load() != 2 {
		t.Errorf("Expected dynamic second stage, got static %d and dynamic %d calls", staticSvm.calls.Load(), dynamicSvm.calls.Load())
	}
	if math.Abs(samples[0].Weight-0.9*0.7) > eps {
		t.Errorf("Expected weight %f, got %f", 0.9*0.7, samples[0].Weight)
	}
}

func TestSelfLearningSkipsWithoutExamples(t *testing.T) {
	// Every certainty is between the thresholds
	staticSvm := &constantClassifier{positive: true, certainty: 0.5}
	dynamicSvm := &recordingClassifier{result: true}
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, &constantClassifier{positive: true, certainty: 0.9}, staticSvm, dynamicSvm)
	if err != nil {
		t.Fatal(err)
	}
	model.Evaluate(newGrayFrame(200, 200), selfLearningScene())
	if dynamicSvm.retrains != 0 {
		t.Errorf("Expected no retraining, got %d", dynamicSvm.retrains)
	}
	if model.IsUsingDynamicSvm() {
		t.Errorf("Expected static SVM to stay active")
	}
}

func TestSelfLearningSkipsWithoutNegatives(t *testing.T) {
	dynamicSvm := &recordingClassifier{result: true}
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, &constantClassifier{positive: true, certainty: 0.9},
		&constantClassifier{positive: true, certainty: 0.95}, dynamicSvm)
	if err != nil {
		t.Fatal(err)
	}
	model.Evaluate(newGrayFrame(200, 200), selfLearningScene())
	if dynamicSvm.retrains != 0 {
		t.Errorf("Expected no retraining without negatives, got %d", dynamicSvm.retrains)
	}
}

func TestSelfLearningFailedRetrain(t *testing.T) {
	frame := newGrayFrame(200, 200)
	staticSvm := newDistanceClassifier(50, 50, 10)
	dynamicSvm := &recordingClassifier{result: false}
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, &constantClassifier{positive: true, certainty: 0.9}, staticSvm, dynamicSvm)
	if err != nil {
		t.Fatal(err)
	}
	model.Evaluate(frame, selfLearningScene())
	model.Evaluate(frame, selfLearningScene())
	if dynamicSvm.retrains != 2 {
		t.Errorf("Expected 2 retrainings, got %d", dynamicSvm.retrains)
	}
	if model.IsUsingDynamicSvm() || dynamicSvm.calls.Load() != 0 {
		t.Errorf("Expected static SVM after failed retraining")
	}
	if staticSvm.calls.Load() != 4 {
		t.Errorf("Expected 4 static evaluations, got %d", staticSvm.calls.Load())
	}
}

func TestSelfLearningInactive(t *testing.T) {
	frame := newGrayFrame(200, 200)
	dynamicSvm := &recordingClassifier{result: true}
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, &constantClassifier{positive: true, certainty: 0.9},
		newDistanceClassifier(50, 50, 10), dynamicSvm)
	if err != nil {
		t.Fatal(err)
	}
	model.Evaluate(frame, selfLearningScene())
	if !model.IsUsingDynamicSvm() {
		t.Fatalf("Expected dynamic SVM after retraining")
	}
	model.SetSelfLearningActive(false)
	if model.IsUsingDynamicSvm() || model.IsSelfLearningActive() {
		t.Errorf("Expected static SVM while inactive")
	}
	model.Evaluate(frame, selfLearningScene())
	if dynamicSvm.retrains != 1 || dynamicSvm.calls.Load() != 0 {
		t.Errorf("Expected no retraining and no dynamic evaluation while inactive, got %d and %d", dynamicSvm.retrains, dynamicSvm.calls.Load())
	}
	model.SetSelfLearningActive(true)
	if !model.IsUsingDynamicSvm() {
		t.Errorf("Expected last retraining result to count again")
	}
}

func TestSelfLearningExampleCount(t *testing.T) {
	samples := make([]Sample, 30)
	for i := range samples {
		samples[i] = NewSample(float64(10+i*12), 50, 10)
	}
	staticNegatives := []*Patch{{X: 1}, {X: 2}, {X: 3}}
	dynamicSvm := &recordingClassifier{result: true}
	model, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, &constantClassifier{positive: true, certainty: 0.9},
		&constantClassifier{positive: true, certainty: 0.9}, dynamicSvm,
		WithOverlapElimination(NewOverlapElimination(1.0, 0)),
		WithStaticNegatives(staticNegatives),
	)
	if err != nil {
		t.Fatal(err)
	}
	model.Evaluate(newGrayFrame(400, 100), samples)
	if dynamicSvm.retrains != 1 {
		t.Fatalf("Expected 1 retraining, got %d", dynamicSvm.retrains)
	}
	if len(dynamicSvm.positives) != 10 {
		t.Errorf("Expected 10 positives, got %d", len(dynamicSvm.positives))
	}
	if len(dynamicSvm.negatives) != len(staticNegatives) {
		t.Errorf("Expected %d static negatives, got %d", len(staticNegatives), len(dynamicSvm.negatives))
	}
}

func TestSelfLearningThresholdValidation(t *testing.T) {
	classifier := &constantClassifier{}
	_, err := NewSelfLearningWvmSvmModel(&roundingExtractor{}, classifier, classifier, &recordingClassifier{}, WithTrainingThresholds(1.5, 0.05))
	if errors.Cause(err) != ErrInvalidThreshold {
		t.Errorf("Expected ErrInvalidThreshold, got %v", err)
	}
	// Inverted and equal thresholds would let a patch qualify as positive and negative example at once
	for _, thresholds := range [][2]float64{{0.05, 0.85}, {0.5, 0.5}} {
		_, err = NewSelfLearningWvmSvmModel(&roundingExtractor{}, classifier, classifier, &recordingClassifier{},
			WithTrainingThresholds(thresholds[0], thresholds[1]))
		if errors.Cause(err) != ErrInvalidThreshold {
			t.Errorf("Thresholds %v: expected ErrInvalidThreshold, got %v", thresholds, err)
		}
	}
	_, err = NewSelfLearningWvmSvmModel(&roundingExtractor{}, classifier, classifier, nil)
	if err != ErrNilClassifier {
		t.Errorf("Expected ErrNilClassifier, got %v", err)
	}
}

func TestTakeDistinct(t *testing.T) {
	a := candidateAt(0, 0, 10, 0.9)
	b := candidateAt(20, 0, 10, 0.1)
	c := candidateAt(40, 0, 10, 0.5)
	candidates := []Candidate{a, b, a, c}

	best := takeDistinctBest(candidates, 2)
	if len(best) != 2 || best[0].Certainty != 0.9 || best[1].Certainty != 0.5 {
		t.Errorf("Expected best certainties 0.9 and 0.5, got %+v", best)
	}
	worst := takeDistinctWorst(candidates, 5)
	if len(worst) != 3 || worst[0].Certainty != 0.1 || worst[2].Certainty != 0.9 {
		t.Errorf("Expected 3 distinct candidates from worst to best, got %+v", worst)
	}
}
