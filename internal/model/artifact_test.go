package model

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir string, m *Manifest) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParseManifest_Valid(t *testing.T) {
	data, err := json.Marshal(testForestManifest())
	require.NoError(t, err)

	m, err := ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, FormatRandomForest, m.Format)
	assert.Equal(t, "rf1", m.Schema)
	assert.Equal(t, 2, m.NumFeatures)
	assert.Equal(t, []int{0, 1}, m.ClassList())
	require.NotNil(t, m.Forest)
	assert.Len(t, m.Forest.Trees, 2)
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"format":`},
		{"missing format", `{"version":"v1.0.0","schema":"rf1","n_features":2}`},
		{"unknown format", `{"format":"pickle","version":"v1.0.0","schema":"rf1","n_features":2}`},
		{"bad version", `{"format":"logistic_regression","version":"1.0","schema":"rf1","n_features":1,"logistic":{"coefficients":[1],"intercept":0}}`},
		{"zero features", `{"format":"logistic_regression","version":"v1.0.0","schema":"rf1","n_features":0,"logistic":{"coefficients":[],"intercept":0}}`},
		{"forest without trees", `{"format":"random_forest","version":"v1.0.0","schema":"rf1","n_features":2}`},
		{"remote without url", `{"format":"remote","version":"v1.0.0","schema":"rf1","n_features":2,"remote":{}}`},
		{"reversed classes", `{"format":"logistic_regression","version":"v1.0.0","schema":"rf1","n_features":1,"classes":[1,0],"logistic":{"coefficients":[0],"intercept":5}}`},
		{"non-binary classes", `{"format":"logistic_regression","version":"v1.0.0","schema":"rf1","n_features":1,"classes":[2,3],"logistic":{"coefficients":[0],"intercept":5}}`},
		{"remote bad scheme", `{"format":"remote","version":"v1.0.0","schema":"rf1","n_features":2,"remote":{"url":"ftp://x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.doc))
			require.Error(t, err)
			var invalid *ErrInvalidArtifact
			assert.True(t, errors.As(err, &invalid), "expected ErrInvalidArtifact, got %T", err)
		})
	}
}

func TestParseManifest_ExplicitBinaryClasses(t *testing.T) {
	m, err := ParseManifest([]byte(`{"format":"logistic_regression","version":"v1.0.0","schema":"rf1","n_features":1,"classes":[0,1],"logistic":{"coefficients":[0],"intercept":5}}`))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, m.ClassList())
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	_, _, err := Load(path)
	require.Error(t, err)

	var cfg *ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, path, cfg.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoad_MalformedArtifactIsConfigurationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("\x80\x04\x95pickle"), 0o644))

	_, _, err := Load(path)
	var cfg *ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoad_BuildsClassifier(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), testForestManifest())

	clf, art, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, clf.NumFeatures())
	assert.Equal(t, "v1.0.0", art.Manifest.Version)
	assert.Len(t, art.Checksum, 64)
	assert.Equal(t, path, art.Path)
}

func TestLoad_StructurallyInvalidForest(t *testing.T) {
	m := testForestManifest()
	m.Forest.Trees[0].Nodes[0].Right = 0
	path := writeArtifact(t, t.TempDir(), m)

	_, _, err := Load(path)
	var cfg *ConfigurationError
	assert.True(t, errors.As(err, &cfg))
}

func TestRegisterFormat(t *testing.T) {
	assert.Equal(t, []string{FormatLogistic, FormatRandomForest, FormatRemote}, Formats())

	// Replacing a format takes effect for subsequent builds.
	called := false
	RegisterFormat(FormatLogistic, func(m *Manifest) (Classifier, error) {
		called = true
		return NewLogistic(m)
	})
	t.Cleanup(func() {
		RegisterFormat(FormatLogistic, func(m *Manifest) (Classifier, error) { return NewLogistic(m) })
	})

	_, err := Build(&Manifest{
		Format:      FormatLogistic,
		Version:     "v1.0.0",
		NumFeatures: 1,
		Logistic:    &LogisticParams{Coefficients: []float64{1}},
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestBuild_UnknownFormat(t *testing.T) {
	_, err := Build(&Manifest{Format: "onnx"})
	assert.Error(t, err)
}
