package model

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/store"
)

// LoggingClassifier is a decorator that records every model call as an
// event. Inputs and outputs are never recorded.
type LoggingClassifier struct {
	inner     Classifier
	eventRepo store.EventRepo
	log       *zap.Logger
}

// scoringLoggingClassifier keeps the Scorer of the wrapped classifier
// visible through the decorator.
type scoringLoggingClassifier struct {
	*LoggingClassifier
	scorer Scorer
}

// WithLogging wraps a Classifier with event logging. A nil repo disables
// event recording; a nil logger disables log output. The result implements
// Scorer when c does.
func WithLogging(c Classifier, repo store.EventRepo, log *zap.Logger) Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	l := &LoggingClassifier{inner: c, eventRepo: repo, log: log.Named("model")}
	if s, ok := c.(Scorer); ok {
		return &scoringLoggingClassifier{LoggingClassifier: l, scorer: s}
	}
	return l
}

func (l *scoringLoggingClassifier) Score(ctx context.Context, x []float64) (int, []float64, error) {
	start := time.Now()
	label, p, err := l.scorer.Score(ctx, x)
	l.record(ctx, "score", start, err)
	return label, p, err
}

func (l *LoggingClassifier) Predict(ctx context.Context, x []float64) (int, error) {
	start := time.Now()
	label, err := l.inner.Predict(ctx, x)
	l.record(ctx, "predict", start, err)
	return label, err
}

func (l *LoggingClassifier) PredictProba(ctx context.Context, x []float64) ([]float64, error) {
	start := time.Now()
	p, err := l.inner.PredictProba(ctx, x)
	l.record(ctx, "predict_proba", start, err)
	return p, err
}

func (l *LoggingClassifier) record(ctx context.Context, op string, start time.Time, err error) {
	latency := time.Since(start)
	data := store.InferenceEventData{
		RequestID: RequestIDFrom(ctx),
		ModelID:   l.inner.ID(),
		Operation: op,
		LatencyMs: latency.Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("model call failed",
			zap.String("request_id", data.RequestID),
			zap.String("model", data.ModelID),
			zap.String("op", op),
			zap.Error(err))
	} else {
		l.log.Debug("model call",
			zap.String("request_id", data.RequestID),
			zap.String("model", data.ModelID),
			zap.String("op", op),
			zap.Duration("latency", latency))
	}

	if l.eventRepo == nil {
		return
	}
	// Don't fail the request if logging fails.
	if logErr := l.eventRepo.AppendInference(ctx, data); logErr != nil {
		l.log.Warn("failed to record inference event", zap.Error(logErr))
	}
}

func (l *LoggingClassifier) NumFeatures() int { return l.inner.NumFeatures() }
func (l *LoggingClassifier) Classes() []int   { return l.inner.Classes() }
func (l *LoggingClassifier) ID() string       { return l.inner.ID() }
