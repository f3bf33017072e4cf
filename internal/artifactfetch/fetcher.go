// Package artifactfetch downloads model artifacts from a static host,
// verifies them against a SHA256SUMS file and installs them atomically.
package artifactfetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/mod/semver"

	"github.com/abhisek/ckdrisk/internal/model"
)

var (
	ErrChecksum       = errors.New("checksum verification failed")
	ErrAlreadyCurrent = errors.New("artifact already installed")
	ErrDowngrade      = errors.New("refusing to replace a newer artifact")
)

// ChecksumsFile is the checksum manifest expected next to artifacts, in
// sha256sum(1) format.
const ChecksumsFile = "SHA256SUMS"

// Fetcher downloads artifacts from baseURL.
type Fetcher struct {
	client *resty.Client
}

// New creates a Fetcher. A zero timeout means no timeout. Downloads are
// never retried.
func New(baseURL string, timeout time.Duration) *Fetcher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Fetcher{client: client}
}

// FetchInput names the artifact to download and where to put it.
type FetchInput struct {
	// Asset is the file name on the host: either a .json artifact or a
	// .tar.gz bundle holding one.
	Asset string
	// Dest is the local artifact path to replace.
	Dest string
	// Force installs even when Dest holds a newer version.
	Force bool
}

// FetchProgress reports one step of a fetch.
type FetchProgress struct {
	Stage   string
	Message string
}

// FetchResult describes the installed artifact.
type FetchResult struct {
	Manifest        *model.Manifest
	Checksum        string
	PreviousVersion string // empty when Dest did not exist
}

// Fetch downloads, verifies and installs an artifact.
func (f *Fetcher) Fetch(ctx context.Context, in *FetchInput, progress func(FetchProgress)) (*FetchResult, error) {
	if progress == nil {
		progress = func(FetchProgress) {}
	}

	progress(FetchProgress{Stage: "download", Message: fmt.Sprintf("Downloading %s...", in.Asset)})
	payload, err := f.download(ctx, in.Asset)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}

	progress(FetchProgress{Stage: "verify", Message: "Verifying checksum..."})
	sums, err := f.download(ctx, ChecksumsFile)
	if err != nil {
		return nil, fmt.Errorf("download checksums: %w", err)
	}
	expected, ok := parseChecksums(sums)[in.Asset]
	if !ok {
		return nil, fmt.Errorf("no checksum found for %s in %s", in.Asset, ChecksumsFile)
	}
	if err := verifyChecksum(payload, expected); err != nil {
		return nil, err
	}

	data := payload
	if strings.HasSuffix(in.Asset, ".tar.gz") {
		progress(FetchProgress{Stage: "extract", Message: "Extracting artifact..."})
		data, err = extractArtifact(payload)
		if err != nil {
			return nil, fmt.Errorf("extract artifact: %w", err)
		}
	}

	progress(FetchProgress{Stage: "validate", Message: "Validating artifact..."})
	m, err := model.ParseManifest(data)
	if err != nil {
		return nil, err
	}
	if _, err := model.Build(m); err != nil {
		return nil, &model.ErrInvalidArtifact{Err: err}
	}

	res := &FetchResult{Manifest: m, Checksum: model.Checksum(data)}
	if cur, err := model.ReadArtifact(in.Dest); err == nil {
		res.PreviousVersion = cur.Manifest.Version
		if cur.Checksum == res.Checksum {
			return res, ErrAlreadyCurrent
		}
		if semver.Compare(m.Version, cur.Manifest.Version) < 0 && !in.Force {
			return res, fmt.Errorf("%w: installed %s, downloaded %s", ErrDowngrade, cur.Manifest.Version, m.Version)
		}
	}

	progress(FetchProgress{Stage: "apply", Message: fmt.Sprintf("Installing %s...", in.Dest)})
	sum := sha256.Sum256(data)
	if err := install(data, in.Dest, sum[:]); err != nil {
		return nil, fmt.Errorf("install artifact: %w", err)
	}

	progress(FetchProgress{Stage: "done", Message: fmt.Sprintf("Installed %s %s", m.Format, m.Version)})
	return res, nil
}

func (f *Fetcher) download(ctx context.Context, name string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get("/" + name)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode(), resp.Request.URL)
	}
	return resp.Body(), nil
}

func parseChecksums(data []byte) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		// sha256sum marks binary mode with a leading '*'.
		result[strings.TrimPrefix(parts[1], "*")] = strings.ToLower(parts[0])
	}
	return result
}

func verifyChecksum(data []byte, expectedHex string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if actual != expectedHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedHex, actual)
	}
	return nil
}

// extractArtifact returns the single .json file in a tar.gz bundle.
func extractArtifact(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	var found []byte
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".json") {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("bundle holds more than one artifact")
		}
		if found, err = io.ReadAll(tr); err != nil {
			return nil, err
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no .json artifact found in bundle")
	}
	return found, nil
}

// install writes data next to target and renames it into place, so
// readers see either the old or the new artifact.
func install(data []byte, target string, expectedHash []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ckdrisk-artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	written, err := os.ReadFile(tmpName)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	writtenHash := sha256.Sum256(written)
	if !bytes.Equal(writtenHash[:], expectedHash) {
		return fmt.Errorf("%w: temp file changed after write", ErrChecksum)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
