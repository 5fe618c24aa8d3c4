package main

import (
	"flag"
	"io"
	"path/filepath"
	"time"

	"github.com/LdDl/facetrack-go/classification"
	"github.com/LdDl/facetrack-go/condensation"
	"github.com/LdDl/facetrack-go/config"
	"github.com/LdDl/facetrack-go/imageio"
	"github.com/LdDl/facetrack-go/imageprocessing"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	inputDir     = flag.String("input", "", "Directory with the frames (sorted by file name)")
	cascadePath  = flag.String("cascade", "", "Pigo face cascade file used as first stage")
	positivesDir = flag.String("positives", "", "Directory with face images for the static classifier")
	negativesDir = flag.String("negatives", "", "Directory with non-face images for the static classifier")
	configPath   = flag.String("config", "", "JSON tuning file (optional)")
	outputPath   = flag.String("output", "", "CSV file for the detections (optional)")
	seed         = flag.Uint64("seed", 1, "Seed of the random source")
	samplerKind  = flag.String("sampler", "resampling", "Initial sampler: grid or resampling")
	switchAfter  = flag.Int("switch-after", 0, "Switch to the other sampler after this many frames (0 keeps the initial one)")
	verbose      = flag.Bool("verbose", false, "Log per frame details")
)

func main() {
	flag.Parse()
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if *inputDir == "" || *cascadePath == "" || *positivesDir == "" || *negativesDir == "" {
		flag.Usage()
		logger.Fatal("input, cascade, positives and negatives are required")
	}
	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("tracking failed")
	}
}

func run(logger *logrus.Logger) error {
	cfg := config.EmptyTrackingConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTrackingConfig(*configPath)
		if err != nil {
			return err
		}
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}
	source, err := imageio.NewDirectoryImageSource(*inputDir)
	if err != nil {
		return err
	}
	var sink *imageio.CSVSink
	if *outputPath != "" {
		sink, err = imageio.NewCSVSinkFile(*outputPath)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	logger.WithField("frames", source.Len()).Info("tracking started")
	for frameIdx := 0; ; frameIdx++ {
		frame, path, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if *switchAfter > 0 && frameIdx == *switchAfter {
			if err := app.switchSampler(); err != nil {
				return err
			}
		}
		start := time.Now()
		rect, found := app.tracker.Process(frame)
		entry := logger.WithFields(logrus.Fields{
			"frame":   filepath.Base(path),
			"elapsed": time.Since(start).String(),
			"found":   found,
		})
		if found {
			entry = entry.WithField("position", rect.Image().String())
		}
		entry.Info("frame processed")
		if sink != nil {
			if err := sink.Add(filepath.Base(path), rect, found); err != nil {
				return err
			}
		}
	}
	if sink != nil {
		return sink.Close()
	}
	return nil
}

// application wires the tracker together
type application struct {
	tracker    *condensation.CondensationTracker
	grid       *condensation.GridSampler
	resampling *condensation.ResamplingSampler
}

func newApplication(cfg *config.TrackingConfig, logger *logrus.Logger) (*application, error) {
	src := condensation.NewSource(*seed)

	pyramid, err := imageprocessing.NewImagePyramid(cfg.GetPyramidMinScale(), cfg.GetPyramidMaxScale(), cfg.GetPyramidIncrementalScale())
	if err != nil {
		return nil, err
	}
	filters := make([]imageprocessing.PatchFilter, 0, 1)
	if cfg.GetHistogramEqualization() {
		filters = append(filters, imageprocessing.NewHistogramEqualization())
	}
	featureExtractor, err := imageprocessing.NewPyramidPatchExtractor(pyramid, cfg.GetPatchWidth(), cfg.GetPatchHeight(), filters...)
	if err != nil {
		return nil, err
	}

	wvm, err := classification.NewCascadeClassifierFromFile(*cascadePath, classification.LogisticCalibration{A: cfg.GetCascadeA(), B: cfg.GetCascadeB()})
	if err != nil {
		return nil, err
	}
	positives, err := classification.LoadPatches(*positivesDir, cfg.GetPatchWidth(), cfg.GetPatchHeight(), filters...)
	if err != nil {
		return nil, errors.Wrap(err, "can't load positive examples")
	}
	negatives, err := classification.LoadPatches(*negativesDir, cfg.GetPatchWidth(), cfg.GetPatchHeight(), filters...)
	if err != nil {
		return nil, errors.Wrap(err, "can't load negative examples")
	}
	svm, err := classification.NewRidgeClassifier(cfg.GetRidgeLambda(), cfg.GetRidgeMinAccuracy(), cfg.GetRidgeSlope())
	if err != nil {
		return nil, err
	}
	if err := svm.Train(positives, negatives); err != nil {
		return nil, errors.Wrap(err, "can't train static classifier")
	}
	logger.WithFields(logrus.Fields{
		"positives": len(positives),
		"negatives": len(negatives),
	}).Info("static classifier trained")

	opts := []condensation.Option{
		condensation.WithLogger(logger),
		condensation.WithWorkers(cfg.GetWorkers()),
		condensation.WithRejectionThreshold(cfg.GetRejectionThreshold()),
		condensation.WithUnevaluatedPolicy(cfg.GetUnevaluatedPolicy()),
		condensation.WithOverlapElimination(condensation.NewOverlapElimination(cfg.GetMaxOverlap(), cfg.GetMaxOverlapCount())),
	}
	var measurementModel condensation.MeasurementModel
	if cfg.GetSelfLearning() {
		dynamicSvm, err := classification.NewRidgeClassifier(cfg.GetRidgeLambda(), cfg.GetRidgeMinAccuracy(), cfg.GetRidgeSlope())
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			condensation.WithTrainingThresholds(cfg.GetPositiveThreshold(), cfg.GetNegativeThreshold()),
			condensation.WithExampleCount(cfg.GetExampleCount()),
			condensation.WithStaticNegatives(negatives),
		)
		measurementModel, err = condensation.NewSelfLearningWvmSvmModel(featureExtractor, wvm, svm, dynamicSvm, opts...)
		if err != nil {
			return nil, err
		}
	} else {
		measurementModel, err = condensation.NewWvmSvmModel(featureExtractor, wvm, svm, opts...)
		if err != nil {
			return nil, err
		}
	}

	transition, err := condensation.NewSimpleTransitionModel(cfg.GetScatter(), src)
	if err != nil {
		return nil, err
	}
	resampling, err := condensation.NewResamplingSampler(cfg.GetCount(), cfg.GetRandomRate(), condensation.NewLowVarianceSampling(src), transition, cfg.GetMinSize(), cfg.GetMaxSize(), src)
	if err != nil {
		return nil, err
	}
	grid, err := condensation.NewGridSampler(cfg.GetGridMinSize(), cfg.GetGridMaxSize(), cfg.GetGridSizeScale(), cfg.GetGridStepSize())
	if err != nil {
		return nil, err
	}
	var sampler condensation.Sampler = resampling
	switch *samplerKind {
	case "resampling":
	case "grid":
		sampler = grid
	default:
		return nil, errors.Errorf("unknown sampler '%s'", *samplerKind)
	}

	var positionExtractor condensation.PositionExtractor = condensation.NewFilteringPositionExtractor(condensation.NewWeightedMeanPositionExtractor(), cfg.GetMinWeight())
	if cfg.GetSmoothing() {
		positionExtractor = condensation.NewSmoothingPositionExtractor(positionExtractor, cfg.GetSmoothingMaxMisses(), 1.0)
	}

	tracker, err := condensation.NewCondensationTracker(sampler, measurementModel, positionExtractor, condensation.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &application{
		tracker:    tracker,
		grid:       grid,
		resampling: resampling,
	}, nil
}

// switchSampler toggles between grid and resampling
func (app *application) switchSampler() error {
	if _, ok := app.tracker.GetSampler().(*condensation.GridSampler); ok {
		return app.tracker.SetSampler(app.resampling)
	}
	return app.tracker.SetSampler(app.grid)
}
