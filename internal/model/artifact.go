package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// Artifact formats.
const (
	FormatRandomForest = "random_forest"
	FormatLogistic     = "logistic_regression"
	FormatRemote       = "remote"
)

// Manifest is the decoded model artifact document. It declares the
// versioned contract between encoder and model: feature count and the
// schema version the model was fit on.
type Manifest struct {
	Format      string          `json:"format"`
	Version     string          `json:"version"`
	Schema      string          `json:"schema"`
	NumFeatures int             `json:"n_features"`
	Classes     []int           `json:"classes,omitempty"`
	Description string          `json:"description,omitempty"`
	Forest      *ForestParams   `json:"forest,omitempty"`
	Logistic    *LogisticParams `json:"logistic,omitempty"`
	Remote      *RemoteParams   `json:"remote,omitempty"`
}

// ClassList returns the declared classes, defaulting to [0, 1].
func (m *Manifest) ClassList() []int {
	if len(m.Classes) == 2 {
		return m.Classes
	}
	return []int{0, 1}
}

// Artifact is a manifest together with where it was loaded from.
type Artifact struct {
	Path     string
	Checksum string // hex SHA-256 of the file contents
	Size     int64
	ModTime  time.Time
	Manifest Manifest
}

// Deserializer builds a Classifier from a validated manifest.
type Deserializer func(m *Manifest) (Classifier, error)

var (
	deserializersMu sync.RWMutex
	deserializers   = map[string]Deserializer{
		FormatRandomForest: func(m *Manifest) (Classifier, error) { return NewForest(m) },
		FormatLogistic:     func(m *Manifest) (Classifier, error) { return NewLogistic(m) },
		FormatRemote:       func(m *Manifest) (Classifier, error) { return NewRemote(m) },
	}
)

// RegisterFormat installs or replaces the deserializer for an artifact
// format.
func RegisterFormat(format string, d Deserializer) {
	deserializersMu.Lock()
	defer deserializersMu.Unlock()
	deserializers[format] = d
}

// Formats lists the registered artifact formats.
func Formats() []string {
	deserializersMu.RLock()
	defer deserializersMu.RUnlock()
	out := make([]string, 0, len(deserializers))
	for f := range deserializers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

var (
	compileOnce      sync.Once
	compiledSchema   *jsonschema.Schema
	compileSchemaErr error
)

func artifactValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defBytes, err := json.Marshal(artifactSchema)
		if err != nil {
			compileSchemaErr = fmt.Errorf("marshal artifact schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
		if err != nil {
			compileSchemaErr = fmt.Errorf("parse artifact schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://model-artifact.json", def); err != nil {
			compileSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileSchemaErr = c.Compile("schema://model-artifact.json")
	})
	return compiledSchema, compileSchemaErr
}

// ParseManifest validates data against the artifact schema and decodes it.
func ParseManifest(data []byte) (*Manifest, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &ErrInvalidArtifact{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	v, err := artifactValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Validate(doc); err != nil {
		return nil, &ErrInvalidArtifact{Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ErrInvalidArtifact{Err: err}
	}
	if !semver.IsValid(m.Version) {
		return nil, &ErrInvalidArtifact{Err: fmt.Errorf("version %q is not a semantic version", m.Version)}
	}
	return &m, nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ReadArtifact reads and validates the artifact at path. Every failure is
// a ConfigurationError.
func ReadArtifact(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigurationError{Path: path, Err: fs.ErrNotExist}
		}
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return &Artifact{
		Path:     path,
		Checksum: Checksum(data),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Manifest: *m,
	}, nil
}

// Build constructs the classifier described by a manifest.
func Build(m *Manifest) (Classifier, error) {
	deserializersMu.RLock()
	d, ok := deserializers[m.Format]
	deserializersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown artifact format %q", m.Format)
	}
	return d(m)
}

// Load reads the artifact at path and builds its classifier.
func Load(path string) (Classifier, *Artifact, error) {
	art, err := ReadArtifact(path)
	if err != nil {
		return nil, nil, err
	}
	clf, err := Build(&art.Manifest)
	if err != nil {
		return nil, nil, &ConfigurationError{Path: path, Err: err}
	}
	return clf, art, nil
}
