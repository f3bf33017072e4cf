// Package inference runs one encoded observation through a classifier and
// checks that what comes back is a usable prediction.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/model"
)

// probabilityTolerance bounds how far a distribution may drift from summing
// to one before it is treated as malformed.
const probabilityTolerance = 1e-6

// ModelSource hands out the current classifier. *model.Cache implements it.
type ModelSource interface {
	Get(ctx context.Context) (model.Classifier, *model.Artifact, error)
}

var _ ModelSource = (*model.Cache)(nil)

// Prediction is the raw outcome of one model call.
type Prediction struct {
	Label         int
	Probabilities []float64 // indexed by label: healthy (0), at risk (1)
}

// Result is a Prediction tagged with the request and model that produced it.
// It is handed to the caller and never stored.
type Result struct {
	Prediction
	RequestID    string
	ModelID      string
	ModelVersion string
	Schema       string
	Latency      time.Duration
}

// PositiveProbability is the probability of the at-risk class.
func (p Prediction) PositiveProbability() float64 {
	if len(p.Probabilities) < 2 {
		return 0
	}
	return p.Probabilities[1]
}

// Invoke calls clf on vec and validates the output. A vector of the wrong
// length is a SchemaMismatchError; any model failure or malformed output is
// an InferenceError. Nothing is retried. Classifiers implementing
// model.Scorer are evaluated once.
func Invoke(ctx context.Context, clf model.Classifier, vec features.Vector) (*Prediction, error) {
	if n := clf.NumFeatures(); len(vec) != n {
		return nil, &features.SchemaMismatchError{Expected: n, Actual: len(vec)}
	}

	x := []float64(vec)
	op := "score"
	var (
		label int
		proba []float64
		err   error
	)
	if s, ok := clf.(model.Scorer); ok {
		label, proba, err = s.Score(ctx, x)
		if err != nil {
			return nil, &model.InferenceError{Model: clf.ID(), Op: op, Err: err}
		}
	} else {
		label, err = clf.Predict(ctx, x)
		if err != nil {
			return nil, &model.InferenceError{Model: clf.ID(), Op: "predict", Err: err}
		}
		op = "predict_proba"
		proba, err = clf.PredictProba(ctx, x)
		if err != nil {
			return nil, &model.InferenceError{Model: clf.ID(), Op: op, Err: err}
		}
	}

	byLabel, err := checkDistribution(label, proba, clf.Classes())
	if err != nil {
		return nil, &model.InferenceError{Model: clf.ID(), Op: op, Err: err}
	}
	return &Prediction{Label: label, Probabilities: byLabel}, nil
}

// checkDistribution validates a label and its distribution against the
// classifier's class order and returns the probabilities indexed by label.
// The label must be a most probable class.
func checkDistribution(label int, proba []float64, classes []int) ([]float64, error) {
	if len(proba) != 2 {
		return nil, fmt.Errorf("expected 2 class probabilities, got %d", len(proba))
	}
	if len(classes) != 2 || classes[0] == classes[1] ||
		(classes[0] != 0 && classes[0] != 1) || (classes[1] != 0 && classes[1] != 1) {
		return nil, fmt.Errorf("classes %v are not the labels 0 and 1", classes)
	}

	var sum float64
	for i, p := range proba {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("probability %d is %v, outside [0,1]", i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return nil, fmt.Errorf("probabilities sum to %v", sum)
	}

	idx := -1
	for i, c := range classes {
		if c == label {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("label %d is not one of %v", label, classes)
	}
	if proba[idx] < proba[1-idx] {
		return nil, fmt.Errorf("label %d disagrees with probabilities %v for classes %v", label, proba, classes)
	}

	byLabel := make([]float64, 2)
	for i, c := range classes {
		byLabel[c] = proba[i]
	}
	return byLabel, nil
}

// Invoker encodes observations with the schema the loaded model declares
// and runs them through the model.
type Invoker struct {
	src    ModelSource
	schema string
	log    *zap.Logger
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithSchema pins the schema version the caller expects. A model fit on a
// different schema is refused with a SchemaMismatchError.
func WithSchema(version string) Option {
	return func(i *Invoker) { i.schema = version }
}

// WithLogger sets the invoker's logger.
func WithLogger(log *zap.Logger) Option {
	return func(i *Invoker) {
		if log != nil {
			i.log = log
		}
	}
}

// New creates an Invoker reading models from src.
func New(src ModelSource, opts ...Option) *Invoker {
	i := &Invoker{src: src, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.Named("inference")
	return i
}

// Schema resolves the schema of the current model without encoding
// anything. Forms use it to lay out their fields.
func (i *Invoker) Schema(ctx context.Context) (*features.Schema, error) {
	_, art, err := i.src.Get(ctx)
	if err != nil {
		return nil, err
	}
	return i.schemaFor(art)
}

func (i *Invoker) schemaFor(art *model.Artifact) (*features.Schema, error) {
	declared := art.Manifest.Schema
	if i.schema != "" && i.schema != declared {
		return nil, &features.SchemaMismatchError{
			Schema:      i.schema,
			ModelSchema: declared,
			Expected:    art.Manifest.NumFeatures,
		}
	}
	s, err := features.Lookup(declared)
	if err != nil {
		return nil, &model.ConfigurationError{Path: art.Path, Err: err}
	}
	return s, nil
}

// Predict runs the full request: load the model, encode obs, call the
// model. The model is resolved first, so a missing artifact is reported
// before any field is validated.
func (i *Invoker) Predict(ctx context.Context, obs features.Observation) (*Result, error) {
	start := time.Now()
	reqID := uuid.NewString()
	log := i.log.With(zap.String("request_id", reqID))

	clf, art, err := i.src.Get(ctx)
	if err != nil {
		log.Warn("model unavailable", zap.Error(err))
		return nil, err
	}

	s, err := i.schemaFor(art)
	if err != nil {
		log.Warn("schema resolution failed", zap.Error(err))
		return nil, err
	}

	vec, err := features.NewEncoder(s).Encode(obs)
	if err != nil {
		log.Info("observation rejected", zap.Error(err))
		return nil, err
	}

	pred, err := Invoke(model.WithRequestID(ctx, reqID), clf, vec)
	if err != nil {
		var mismatch *features.SchemaMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Schema = s.Version
			mismatch.ModelSchema = art.Manifest.Schema
		}
		log.Warn("inference failed", zap.Error(err))
		return nil, err
	}

	res := &Result{
		Prediction:   *pred,
		RequestID:    reqID,
		ModelID:      clf.ID(),
		ModelVersion: art.Manifest.Version,
		Schema:       s.Version,
		Latency:      time.Since(start),
	}
	log.Debug("prediction complete",
		zap.String("model", res.ModelID),
		zap.String("schema", res.Schema),
		zap.Duration("latency", res.Latency))
	return res, nil
}
