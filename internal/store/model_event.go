package store

import (
	"context"
	"fmt"
)

func (r *eventRepo) AppendModelLoad(ctx context.Context, data ModelLoadEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	row := modelLoadEventRow{
		Event:         newEventMixin(seq),
		Path:          data.Path,
		Checksum:      data.Checksum,
		Format:        data.Format,
		Version:       data.Version,
		SchemaVersion: data.Schema,
		NumFeatures:   data.NumFeatures,
		LatencyMs:     data.LatencyMs,
		Success:       data.Success,
		ErrorMessage:  data.ErrorMessage,
	}
	if err := r.orm.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append model load event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryModelLoads(ctx context.Context, opts QueryOpts) ([]ModelLoadEvent, error) {
	var rows []modelLoadEventRow
	if err := filter(r.orm.WithContext(ctx), opts).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query model load events: %w", err)
	}

	out := make([]ModelLoadEvent, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}
