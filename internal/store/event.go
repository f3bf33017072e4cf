package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event tables. Model loads and inference calls live in separate tables,
// so per-table auto-increment IDs can't order them against each other; the
// shared counter gives every event a single increasing sequence.
//
// Uses raw SQL outside gorm, which has no database-level atomic counter. The
// mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on gorm, with the global sequence counter
// assigning order across tables.
type eventRepo struct {
	orm *gorm.DB
	seq *sequenceCounter
}

// filter applies the options shared by event queries, newest first.
func filter(q *gorm.DB, opts QueryOpts) *gorm.DB {
	if opts.After > 0 {
		q = q.Where("sequence > ?", opts.After)
	}
	if opts.Before > 0 {
		q = q.Where("sequence < ?", opts.Before)
	}
	if !opts.From.IsZero() {
		q = q.Where("timestamp >= ?", opts.From.UTC())
	}
	if !opts.To.IsZero() {
		q = q.Where("timestamp <= ?", opts.To.UTC())
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	return q.Order("sequence DESC")
}
