// Package config loads and validates docindex configuration from YAML or TOML
// files with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

// Compression names accepted in the index section.
const (
	CompressionNone = "none"
	CompressionLZ4  = "lz4"
	CompressionZSTD = "zstd"
)

// Config is the top-level application configuration.
type Config struct {
	Index   IndexConfig   `yaml:"index" toml:"index"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// IndexConfig controls where the index and stop-word list live and how
// documents are picked up and persisted.
type IndexConfig struct {
	IndexPath      string `yaml:"indexPath" toml:"index_path" validate:"required"`
	StopWordsPath  string `yaml:"stopWordsPath" toml:"stop_words_path"`
	Extension      string `yaml:"extension" toml:"extension" validate:"required,startswith=."`
	ReadWorkers    int    `yaml:"readWorkers" toml:"read_workers" validate:"min=1,max=256"`
	Compression    string `yaml:"compression" toml:"compression" validate:"oneof=none lz4 zstd"`
	MaxFieldLength int    `yaml:"maxFieldLength" toml:"max_field_length" validate:"min=1"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" toml:"enabled"`
	TextfilePath string `yaml:"textfilePath" toml:"textfile_path" validate:"required_if=Enabled true"`
}

// Load reads a YAML or TOML config file (if provided) and applies
// environment-variable overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, path, fmt.Errorf("reading config file: %w", err))
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrConfiguration, path, fmt.Errorf("parsing toml: %w", err))
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, apperrors.Wrap(apperrors.ErrConfiguration, path, fmt.Errorf("parsing yaml: %w", err))
			}
		default:
			return nil, apperrors.New(apperrors.ErrConfiguration, path, "config file must be .toml, .yaml, or .yml")
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is supplied. Paths
// match the historical layout of the tool: index.dat in the working directory
// and the stop-word list under data/.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			IndexPath:      "index.dat",
			StopWordsPath:  "data/stopwords.txt",
			Extension:      ".txt",
			ReadWorkers:    1,
			Compression:    CompressionNone,
			MaxFieldLength: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var validate = newValidator()

// newValidator reports fields by their YAML names so messages match what
// users write in config files.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags on every section and reports all failing
// fields in a single configuration error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(apperrors.ErrConfiguration, "", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			problems = append(problems, fmt.Sprintf("%s must satisfy %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return apperrors.New(apperrors.ErrConfiguration, "", strings.Join(problems, "; "))
}

// applyEnvOverrides reads DOCINDEX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCINDEX_INDEX_PATH"); v != "" {
		cfg.Index.IndexPath = v
	}
	if v := os.Getenv("DOCINDEX_STOPWORDS_PATH"); v != "" {
		cfg.Index.StopWordsPath = v
	}
	if v := os.Getenv("DOCINDEX_EXTENSION"); v != "" {
		cfg.Index.Extension = v
	}
	if v := os.Getenv("DOCINDEX_READ_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.ReadWorkers = n
		}
	}
	if v := os.Getenv("DOCINDEX_COMPRESSION"); v != "" {
		cfg.Index.Compression = v
	}
	if v := os.Getenv("DOCINDEX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DOCINDEX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("DOCINDEX_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.TextfilePath = v
	}
}
