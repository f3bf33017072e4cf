package model

import (
	"context"
	"errors"
	"testing"
)

func TestMockClassifier_PairsPredictWithProba(t *testing.T) {
	mock := NewMockClassifier(2,
		MockResponse{Label: 1, Proba: []float64{0.1, 0.9}},
		MockResponse{Label: 0, Proba: []float64{0.7, 0.3}},
	)
	ctx := context.Background()

	label, err := mock.Predict(ctx, []float64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := mock.PredictProba(ctx, []float64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 || p[1] != 0.9 {
		t.Fatalf("expected first response, got label=%d proba=%v", label, p)
	}

	label, _ = mock.Predict(ctx, []float64{3, 4})
	if label != 0 {
		t.Fatalf("expected second response, got label=%d", label)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
	if mock.Calls[1][0] != 3 {
		t.Fatalf("expected recorded input, got %v", mock.Calls[1])
	}
}

func TestMockClassifier_EmptyQueue(t *testing.T) {
	mock := NewMockClassifier(1)
	if _, err := mock.Predict(context.Background(), []float64{0}); err == nil {
		t.Fatal("expected error from empty queue")
	}
}

func TestMockClassifier_ConfiguredError(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockClassifier(1, MockResponse{Err: boom}, MockResponse{Label: 1, Proba: []float64{0, 1}})

	if _, err := mock.Predict(context.Background(), []float64{0}); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
	// A failed Predict does not leave the response pending.
	label, err := mock.Predict(context.Background(), []float64{0})
	if err != nil || label != 1 {
		t.Fatalf("expected next response, got label=%d err=%v", label, err)
	}
}
