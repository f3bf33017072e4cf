package model

import (
	"context"
	"fmt"
	"math"
)

// LogisticParams holds a fitted binary logistic regression.
type LogisticParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Logistic evaluates p(class 1) = 1 / (1 + exp(-(w.x + b))).
type Logistic struct {
	id        string
	classes   []int
	coef      []float64
	intercept float64
}

var _ Classifier = (*Logistic)(nil)

// NewLogistic builds a Logistic from m.
func NewLogistic(m *Manifest) (*Logistic, error) {
	if m.Logistic == nil {
		return nil, fmt.Errorf("logistic_regression artifact has no coefficients")
	}
	if len(m.Logistic.Coefficients) != m.NumFeatures {
		return nil, fmt.Errorf("logistic_regression has %d coefficients, n_features is %d",
			len(m.Logistic.Coefficients), m.NumFeatures)
	}
	return &Logistic{
		id:        fmt.Sprintf("%s@%s", FormatLogistic, m.Version),
		classes:   m.ClassList(),
		coef:      m.Logistic.Coefficients,
		intercept: m.Logistic.Intercept,
	}, nil
}

func (l *Logistic) PredictProba(_ context.Context, x []float64) ([]float64, error) {
	if err := checkInput(x, len(l.coef)); err != nil {
		return nil, err
	}
	z := l.intercept
	for i, w := range l.coef {
		z += w * x[i]
	}
	p1 := 1 / (1 + math.Exp(-z))
	return []float64{1 - p1, p1}, nil
}

// Predict returns the positive class when its probability exceeds 0.5.
func (l *Logistic) Predict(ctx context.Context, x []float64) (int, error) {
	p, err := l.PredictProba(ctx, x)
	if err != nil {
		return 0, err
	}
	if p[1] > 0.5 {
		return l.classes[1], nil
	}
	return l.classes[0], nil
}

func (l *Logistic) NumFeatures() int { return len(l.coef) }
func (l *Logistic) Classes() []int   { return l.classes }
func (l *Logistic) ID() string       { return l.id }
