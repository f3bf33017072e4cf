package store

import "time"

// eventMixin holds the columns every event table shares.
type eventMixin struct {
	ID        int       `gorm:"primaryKey;autoIncrement"`
	Sequence  int64     `gorm:"not null;uniqueIndex"`
	Timestamp time.Time `gorm:"not null;index"`
}

func newEventMixin(seq int64) eventMixin {
	return eventMixin{Sequence: seq, Timestamp: time.Now().UTC()}
}

// modelLoadEventRow is the persisted form of a model artifact load.
type modelLoadEventRow struct {
	Event         eventMixin `gorm:"embedded"`
	Path          string     `gorm:"not null"`
	Checksum      string     `gorm:"not null"`
	Format        string     `gorm:"not null"`
	Version       string     `gorm:"not null"`
	SchemaVersion string     `gorm:"not null"`
	NumFeatures   int        `gorm:"column:n_features;not null"`
	LatencyMs     int64      `gorm:"not null"`
	Success       bool       `gorm:"not null"`
	ErrorMessage  string     `gorm:"not null"`
}

func (modelLoadEventRow) TableName() string { return "model_load_events" }

func (r modelLoadEventRow) event() ModelLoadEvent {
	return ModelLoadEvent{
		ID:        r.Event.ID,
		Sequence:  r.Event.Sequence,
		Timestamp: r.Event.Timestamp,
		ModelLoadEventData: ModelLoadEventData{
			Path:         r.Path,
			Checksum:     r.Checksum,
			Format:       r.Format,
			Version:      r.Version,
			Schema:       r.SchemaVersion,
			NumFeatures:  r.NumFeatures,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
		},
	}
}

// inferenceEventRow is the persisted form of one model call.
type inferenceEventRow struct {
	Event        eventMixin `gorm:"embedded"`
	RequestID    string     `gorm:"not null"`
	ModelID      string     `gorm:"not null;index:idx_inference_events_model"`
	Operation    string     `gorm:"not null;index:idx_inference_events_model"`
	LatencyMs    int64      `gorm:"not null"`
	Success      bool       `gorm:"not null"`
	ErrorMessage string     `gorm:"not null"`
}

func (inferenceEventRow) TableName() string { return "inference_events" }

func (r inferenceEventRow) event() InferenceEvent {
	return InferenceEvent{
		ID:        r.Event.ID,
		Sequence:  r.Event.Sequence,
		Timestamp: r.Event.Timestamp,
		InferenceEventData: InferenceEventData{
			RequestID:    r.RequestID,
			ModelID:      r.ModelID,
			Operation:    r.Operation,
			LatencyMs:    r.LatencyMs,
			Success:      r.Success,
			ErrorMessage: r.ErrorMessage,
		},
	}
}
