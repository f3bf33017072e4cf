// Package config resolves ckdrisk settings from defaults, an optional YAML
// file and CKDRISK_* environment variables. Command-line flags are applied
// on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/ckdrisk/internal/features"
)

// DefaultModelPath is where the model artifact is expected when nothing
// else is configured.
const DefaultModelPath = "model/random_forest_model1.json"

// Config holds all ckdrisk configuration.
type Config struct {
	// ModelPath is the model artifact file.
	ModelPath string `yaml:"model" validate:"required"`

	// Schema pins the feature schema version. Empty means use whatever the
	// artifact declares.
	Schema string `yaml:"schema"`

	// DBPath is the event log database. Empty means the platform default.
	DBPath string `yaml:"db"`

	Log   LogConfig   `yaml:"log"`
	Fetch FetchConfig `yaml:"fetch"`
}

// LogConfig selects level, encoding and destination of log output.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
	// File receives log output. Empty means stderr for commands and no
	// logging at all for the interactive form.
	File string `yaml:"file"`
}

// FetchConfig configures artifact downloads.
type FetchConfig struct {
	// BaseURL hosts <name>.json artifacts and a SHA256SUMS file.
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// Error reports a configuration file or value that cannot be used.
type Error struct {
	Source string // file path or environment variable
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ModelPath: DefaultModelPath,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Fetch: FetchConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// DefaultPath resolves the config file location:
// 1. CKDRISK_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/ckdrisk/config.yaml
// 3. ~/.config/ckdrisk/config.yaml
func DefaultPath() string {
	if p := os.Getenv("CKDRISK_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ckdrisk", "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, in increasing priority. A missing file is not an error
// unless explicit is set.
func Load(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &Error{Source: path, Err: err}
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, &Error{Source: path, Err: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CKDRISK_MODEL"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("CKDRISK_SCHEMA"); v != "" {
		cfg.Schema = v
	}
	if v := os.Getenv("CKDRISK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CKDRISK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("CKDRISK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("CKDRISK_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("CKDRISK_FETCH_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	if v := os.Getenv("CKDRISK_FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Source: "CKDRISK_FETCH_TIMEOUT", Err: err}
		}
		cfg.Fetch.Timeout = d
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and that a pinned schema is known.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &Error{Err: fmt.Errorf("%s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag())}
		}
		return &Error{Err: err}
	}
	if c.Schema != "" {
		if _, err := features.Lookup(c.Schema); err != nil {
			return &Error{Source: "schema", Err: err}
		}
	}
	return nil
}
