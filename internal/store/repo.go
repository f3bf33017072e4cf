package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ModelLoadEventData captures one attempt to load a model artifact.
type ModelLoadEventData struct {
	Path         string
	Checksum     string
	Format       string
	Version      string
	Schema       string
	NumFeatures  int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// ModelLoadEvent is a stored ModelLoadEventData.
type ModelLoadEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	ModelLoadEventData
}

// InferenceEventData captures one model call. Patient values, encoded
// vectors and predictions are deliberately absent.
type InferenceEventData struct {
	RequestID    string
	ModelID      string
	Operation    string // "predict" or "predict_proba"
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// InferenceEvent is a stored InferenceEventData.
type InferenceEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	InferenceEventData
}

// InferenceStat aggregates inference events per model and operation.
type InferenceStat struct {
	ModelID      string
	Operation    string
	Calls        int
	Failures     int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to operational events.
type EventRepo interface {
	// AppendModelLoad records a model artifact load attempt.
	AppendModelLoad(ctx context.Context, data ModelLoadEventData) error

	// AppendInference records a model call.
	AppendInference(ctx context.Context, data InferenceEventData) error

	// QueryModelLoads returns load events, newest first.
	QueryModelLoads(ctx context.Context, opts QueryOpts) ([]ModelLoadEvent, error)

	// QueryInferences returns inference events, newest first.
	QueryInferences(ctx context.Context, opts QueryOpts) ([]InferenceEvent, error)

	// InferenceStats aggregates inference events by model and operation.
	InferenceStats(ctx context.Context) ([]InferenceStat, error)
}
