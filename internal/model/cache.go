package model

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/ckdrisk/internal/store"
)

// Cache is the process-wide accessor for the classifier stored at one
// artifact path. The artifact is loaded on first use and reloaded only when
// the file's contents change; a changed mtime with identical contents keeps
// the loaded classifier.
type Cache struct {
	path      string
	eventRepo store.EventRepo
	log       *zap.Logger

	mu  sync.Mutex
	clf Classifier
	art *Artifact
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithEventRepo records model load and inference events in repo.
func WithEventRepo(repo store.EventRepo) CacheOption {
	return func(c *Cache) { c.eventRepo = repo }
}

// WithLogger sets the logger used for load and inference logging.
func WithLogger(log *zap.Logger) CacheOption {
	return func(c *Cache) { c.log = log }
}

// NewCache creates a Cache for the artifact at path. Nothing is read until
// Get is called.
func NewCache(path string, opts ...CacheOption) *Cache {
	c := &Cache{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the artifact path.
func (c *Cache) Path() string { return c.path }

// Check reports whether the artifact file exists and is readable, without
// loading it.
func (c *Cache) Check() error {
	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ConfigurationError{Path: c.path, Err: fs.ErrNotExist}
		}
		return &ConfigurationError{Path: c.path, Err: err}
	}
	return f.Close()
}

// Current returns the loaded artifact, or nil before the first successful
// Get.
func (c *Cache) Current() *Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.art
}

// Get returns the classifier for the current artifact contents.
func (c *Cache) Get(ctx context.Context) (Classifier, *Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fs.ErrNotExist
		}
		return nil, nil, c.fail(ctx, &ConfigurationError{Path: c.path, Err: err})
	}

	if c.clf != nil && info.Size() == c.art.Size && info.ModTime().Equal(c.art.ModTime) {
		return c.clf, c.art, nil
	}

	start := time.Now()
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, nil, c.fail(ctx, &ConfigurationError{Path: c.path, Err: err})
	}
	sum := Checksum(data)
	if c.clf != nil && sum == c.art.Checksum {
		c.art.Size = info.Size()
		c.art.ModTime = info.ModTime()
		return c.clf, c.art, nil
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, nil, c.fail(ctx, &ConfigurationError{Path: c.path, Err: err})
	}
	base, err := Build(m)
	if err != nil {
		return nil, nil, c.fail(ctx, &ConfigurationError{Path: c.path, Err: err})
	}

	art := &Artifact{
		Path:     c.path,
		Checksum: sum,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Manifest: *m,
	}
	c.clf = WithLogging(base, c.eventRepo, c.log)
	c.art = art

	c.log.Info("model loaded",
		zap.String("path", c.path),
		zap.String("format", m.Format),
		zap.String("version", m.Version),
		zap.String("schema", m.Schema),
		zap.Int("n_features", m.NumFeatures),
		zap.String("sha256", sum))
	c.recordLoad(ctx, store.ModelLoadEventData{
		Path:        c.path,
		Checksum:    sum,
		Format:      m.Format,
		Version:     m.Version,
		Schema:      m.Schema,
		NumFeatures: m.NumFeatures,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     true,
	})
	return c.clf, c.art, nil
}

// fail drops the cached classifier so the next Get retries the load, and
// records the failure.
func (c *Cache) fail(ctx context.Context, err *ConfigurationError) error {
	c.clf = nil
	c.art = nil
	c.log.Error("model load failed", zap.String("path", c.path), zap.Error(err))
	c.recordLoad(ctx, store.ModelLoadEventData{
		Path:         c.path,
		Success:      false,
		ErrorMessage: err.Error(),
	})
	return err
}

func (c *Cache) recordLoad(ctx context.Context, data store.ModelLoadEventData) {
	if c.eventRepo == nil {
		return
	}
	if err := c.eventRepo.AppendModelLoad(ctx, data); err != nil {
		c.log.Warn("failed to record model load event", zap.Error(err))
	}
}
