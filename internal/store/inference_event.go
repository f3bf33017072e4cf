package store

import (
	"context"
	"fmt"
)

func (r *eventRepo) AppendInference(ctx context.Context, data InferenceEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	row := inferenceEventRow{
		Event:        newEventMixin(seq),
		RequestID:    data.RequestID,
		ModelID:      data.ModelID,
		Operation:    data.Operation,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
	}
	if err := r.orm.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append inference event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryInferences(ctx context.Context, opts QueryOpts) ([]InferenceEvent, error) {
	var rows []inferenceEventRow
	if err := filter(r.orm.WithContext(ctx), opts).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query inference events: %w", err)
	}

	out := make([]InferenceEvent, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}

func (r *eventRepo) InferenceStats(ctx context.Context) ([]InferenceStat, error) {
	var out []InferenceStat
	err := r.orm.WithContext(ctx).
		Model(&inferenceEventRow{}).
		Select(`model_id, operation, COUNT(*) AS calls,
			SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) AS avg_latency_ms`).
		Group("model_id, operation").
		Order("model_id, operation").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query inference stats: %w", err)
	}
	return out, nil
}
