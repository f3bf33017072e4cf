// Package report turns predictions and request errors into the text shown
// to the person filling in the form.
package report

import (
	"errors"
	"fmt"

	"github.com/abhisek/ckdrisk/internal/features"
	"github.com/abhisek/ckdrisk/internal/inference"
	"github.com/abhisek/ckdrisk/internal/model"
)

// Category is the displayed risk label.
type Category string

const (
	HighRisk Category = "High Risk"
	LowRisk  Category = "Low Risk"
)

// CategoryFor maps a model label to its category. Label 1 is the at-risk
// class; every other label reads as low risk.
func CategoryFor(label int) Category {
	if label == 1 {
		return HighRisk
	}
	return LowRisk
}

// Headline is the sentence shown above the probability.
func (c Category) Headline() string {
	if c == HighRisk {
		return "High Risk: The patient is likely to have Chronic Kidney Disease"
	}
	return "Low Risk: The patient is likely to be healthy"
}

// FormatPercent renders a probability in [0,1] as a percentage with one
// decimal place, e.g. 0.875 -> "87.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// Summary is a prediction ready for display or JSON output.
type Summary struct {
	Category     Category `json:"category"`
	Label        int      `json:"label"`
	Probability  float64  `json:"probability"`
	Percent      string   `json:"percent"`
	Headline     string   `json:"headline"`
	ModelVersion string   `json:"model_version"`
	Schema       string   `json:"schema"`
	RequestID    string   `json:"request_id"`
}

// Summarize builds the display form of a result.
func Summarize(res *inference.Result) Summary {
	c := CategoryFor(res.Label)
	p := res.PositiveProbability()
	return Summary{
		Category:     c,
		Label:        res.Label,
		Probability:  p,
		Percent:      FormatPercent(p),
		Headline:     c.Headline(),
		ModelVersion: res.ModelVersion,
		Schema:       res.Schema,
		RequestID:    res.RequestID,
	}
}

// String renders the summary the way the form shows it.
func (s Summary) String() string {
	return fmt.Sprintf("%s\nProbability of CKD: %s", s.Headline, s.Percent)
}

// ModelNotFoundMessage is shown when the model artifact is missing.
const ModelNotFoundMessage = "Model file not found. Please ensure the model file exists in the correct location."

// ErrorMessage converts any request error into a user-visible message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var cfg *model.ConfigurationError
	if errors.As(err, &cfg) {
		var unknown *features.UnknownSchemaError
		if errors.As(err, &unknown) {
			return fmt.Sprintf("The model requires feature schema %q, which this version does not support.", unknown.Version)
		}
		var invalid *model.ErrInvalidArtifact
		if errors.As(err, &invalid) {
			return fmt.Sprintf("Model file is invalid: %v", invalid.Err)
		}
		return ModelNotFoundMessage
	}

	var verr *features.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("Please check your input: %s", verr.Error())
	}

	var mismatch *features.SchemaMismatchError
	if errors.As(err, &mismatch) {
		return fmt.Sprintf("Error making prediction: %s", mismatch.Error())
	}

	var ierr *model.InferenceError
	if errors.As(err, &ierr) {
		return fmt.Sprintf("Error making prediction: %v", ierr.Err)
	}

	return fmt.Sprintf("Error making prediction: %v", err)
}

// Kind names the error class for logs and machine-readable output.
func Kind(err error) string {
	var (
		cfg      *model.ConfigurationError
		verr     *features.ValidationError
		mismatch *features.SchemaMismatchError
		ierr     *model.InferenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfg):
		return "configuration"
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &mismatch):
		return "schema_mismatch"
	case errors.As(err, &ierr):
		return "inference"
	default:
		return "internal"
	}
}
