package report

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/inference"
	"github.com/abhisek/ckdrisk/internal/model"
)

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, HighRisk, CategoryFor(1))
	assert.Equal(t, LowRisk, CategoryFor(0))
	assert.Equal(t, "High Risk", string(HighRisk))
	assert.Equal(t, "Low Risk", string(LowRisk))
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.875, "87.5%"},
		{0, "0.0%"},
		{1, "100.0%"},
		{0.1234, "12.3%"},
		{0.9996, "100.0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercent(tt.p), "p=%v", tt.p)
	}
}

func TestSummarize(t *testing.T) {
	res := &inference.Result{
		Prediction:   inference.Prediction{Label: 1, Probabilities: []float64{0.125, 0.875}},
		RequestID:    "req-1",
		ModelVersion: "v1.0.0",
		Schema:       "rf1",
	}

	s := Summarize(res)
	assert.Equal(t, HighRisk, s.Category)
	assert.Equal(t, "87.5%", s.Percent)
	assert.Equal(t, "High Risk: The patient is likely to have Chronic Kidney Disease", s.Headline)
	assert.Equal(t, "High Risk: The patient is likely to have Chronic Kidney Disease\nProbability of CKD: 87.5%", s.String())

	res.Label = 0
	res.Probabilities = []float64{0.9, 0.1}
	s = Summarize(res)
	assert.Equal(t, LowRisk, s.Category)
	assert.Equal(t, "10.0%", s.Percent)
	assert.Equal(t, "Low Risk: The patient is likely to be healthy", s.Headline)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		kind string
	}{
		{
			name: "missing model",
			err:  &model.ConfigurationError{Path: "model/random_forest_model1.json", Err: fs.ErrNotExist},
			want: ModelNotFoundMessage,
			kind: "configuration",
		},
		{
			name: "validation",
			err:  &features.ValidationError{Field: "age", Value: "0", Reason: "must be between 1 and 100"},
			want: `Please check your input: invalid age "0": must be between 1 and 100`,
			kind: "validation",
		},
		{
			name: "inference",
			err:  &model.InferenceError{Model: "remote@v1.0.0", Op: "predict", Err: errors.New("connection refused")},
			want: "Error making prediction: connection refused",
			kind: "inference",
		},
		{
			name: "mismatch",
			err:  &features.SchemaMismatchError{Schema: "rf1", Expected: 23, Actual: 24},
			want: `Error making prediction: schema mismatch: model expects 23 features, schema "rf1" produces 24`,
			kind: "schema_mismatch",
		},
		{
			name: "other",
			err:  fmt.Errorf("wrapped: %w", errors.New("odd")),
			want: "Error making prediction: wrapped: odd",
			kind: "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
			assert.Equal(t, tt.kind, Kind(tt.err))
		})
	}

	assert.Empty(t, ErrorMessage(nil))
	assert.Empty(t, Kind(nil))
}

func TestErrorMessage_UnknownSchema(t *testing.T) {
	err := &model.ConfigurationError{Path: "m.json", Err: &features.UnknownSchemaError{Version: "rf9"}}
	assert.Contains(t, ErrorMessage(err), `"rf9"`)
}
