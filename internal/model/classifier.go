package model

import (
	"context"
	"fmt"
	"math"
)

// Classifier is a fitted binary classifier. Implementations are read-only
// after construction and safe for concurrent use.
type Classifier interface {
	// Predict returns the class label for x.
	Predict(ctx context.Context, x []float64) (int, error)

	// PredictProba returns the probability of each class in Classes order.
	PredictProba(ctx context.Context, x []float64) ([]float64, error)

	// NumFeatures is the input length the classifier was fit on.
	NumFeatures() int

	// Classes lists the class labels in probability order.
	Classes() []int

	// ID identifies the classifier in logs and events.
	ID() string
}

// Scorer is implemented by classifiers that produce the label and the
// class distribution from a single evaluation. Callers that need both
// should prefer Score over Predict followed by PredictProba.
type Scorer interface {
	Score(ctx context.Context, x []float64) (int, []float64, error)
}

// checkInput rejects vectors a local classifier cannot evaluate.
func checkInput(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("expected %d features, got %d", n, len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("feature %d is not finite", i)
		}
	}
	return nil
}

// argmax returns the index of the largest probability; ties go to the
// lower index.
func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}
