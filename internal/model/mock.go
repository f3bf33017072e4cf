package model

import (
	"context"
	"errors"
	"sync"
)

// MockResponse is a canned answer for the MockClassifier.
type MockResponse struct {
	Label int
	Proba []float64
	Err   error
}

// MockClassifier is a deterministic Classifier for testing.
// It replays canned responses in FIFO order and records every input.
// Predict and PredictProba of one request consume the same response.
type MockClassifier struct {
	mu          sync.Mutex
	responses   []MockResponse
	numFeatures int
	pending     *MockResponse
	Calls       [][]float64
}

var _ Classifier = (*MockClassifier)(nil)

// NewMockClassifier creates a MockClassifier accepting numFeatures inputs.
func NewMockClassifier(numFeatures int, responses ...MockResponse) *MockClassifier {
	return &MockClassifier{numFeatures: numFeatures, responses: responses}
}

// next returns the response for the current request. Predict starts a
// request; PredictProba finishes it.
func (m *MockClassifier) next(x []float64, finish bool) (MockResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		m.Calls = append(m.Calls, append([]float64(nil), x...))
		if len(m.responses) == 0 {
			return MockResponse{}, errors.New("mock classifier: no responses queued")
		}
		resp := m.responses[0]
		m.responses = m.responses[1:]
		m.pending = &resp
	}
	resp := *m.pending
	if finish {
		m.pending = nil
	}
	return resp, nil
}

func (m *MockClassifier) Predict(_ context.Context, x []float64) (int, error) {
	resp, err := m.next(x, false)
	if err != nil {
		return 0, err
	}
	if resp.Err != nil {
		m.mu.Lock()
		m.pending = nil
		m.mu.Unlock()
		return 0, resp.Err
	}
	return resp.Label, nil
}

func (m *MockClassifier) PredictProba(_ context.Context, x []float64) ([]float64, error) {
	resp, err := m.next(x, true)
	if err != nil {
		return nil, err
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return resp.Proba, nil
}

func (m *MockClassifier) NumFeatures() int { return m.numFeatures }
func (m *MockClassifier) Classes() []int   { return []int{0, 1} }
func (m *MockClassifier) ID() string       { return "mock" }

// AddResponse appends a canned response to the queue.
func (m *MockClassifier) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of requests started.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
