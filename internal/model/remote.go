package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteParams points at a model server that hosts the fitted model.
type RemoteParams struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout,omitempty"` // Go duration; empty means no timeout
}

type remoteRequest struct {
	Instances [][]float64 `json:"instances"`
}

type remoteResponse struct {
	Predictions   []int       `json:"predictions"`
	Probabilities [][]float64 `json:"probabilities"`
	Error         string      `json:"error,omitempty"`
}

// Remote delegates inference to a model server speaking
// POST /v1/predict {"instances": [[...]]}.
type Remote struct {
	id          string
	numFeatures int
	classes     []int
	client      *resty.Client
}

var (
	_ Classifier = (*Remote)(nil)
	_ Scorer     = (*Remote)(nil)
)

// NewRemote builds a Remote from m. Requests are never retried.
func NewRemote(m *Manifest) (*Remote, error) {
	if m.Remote == nil || m.Remote.URL == "" {
		return nil, fmt.Errorf("remote artifact has no url")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(m.Remote.URL, "/")).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if m.Remote.Timeout != "" {
		d, err := time.ParseDuration(m.Remote.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote timeout %q: %w", m.Remote.Timeout, err)
		}
		client.SetTimeout(d)
	}

	return &Remote{
		id:          fmt.Sprintf("%s@%s", FormatRemote, m.Version),
		numFeatures: m.NumFeatures,
		classes:     m.ClassList(),
		client:      client,
	}, nil
}

func (r *Remote) call(ctx context.Context, x []float64) (*remoteResponse, error) {
	var out remoteResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{Instances: [][]float64{x}}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/predict")
	if err != nil {
		return nil, fmt.Errorf("call model server: %w", err)
	}
	if resp.IsError() {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return nil, fmt.Errorf("model server returned %d: %s", resp.StatusCode(), msg)
	}
	return &out, nil
}

// Score makes one round trip and returns the server's label together with
// its distribution.
func (r *Remote) Score(ctx context.Context, x []float64) (int, []float64, error) {
	out, err := r.call(ctx, x)
	if err != nil {
		return 0, nil, err
	}
	if len(out.Predictions) != 1 {
		return 0, nil, fmt.Errorf("model server returned %d predictions for 1 instance", len(out.Predictions))
	}
	if len(out.Probabilities) != 1 {
		return 0, nil, fmt.Errorf("model server returned %d probability rows for 1 instance", len(out.Probabilities))
	}
	return out.Predictions[0], out.Probabilities[0], nil
}

func (r *Remote) Predict(ctx context.Context, x []float64) (int, error) {
	label, _, err := r.Score(ctx, x)
	return label, err
}

func (r *Remote) PredictProba(ctx context.Context, x []float64) ([]float64, error) {
	_, p, err := r.Score(ctx, x)
	return p, err
}

func (r *Remote) NumFeatures() int { return r.numFeatures }
func (r *Remote) Classes() []int   { return r.classes }
func (r *Remote) ID() string       { return r.id }
