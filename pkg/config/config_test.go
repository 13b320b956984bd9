package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "index.dat", cfg.Index.IndexPath)
	assert.Equal(t, "data/stopwords.txt", cfg.Index.StopWordsPath)
	assert.Equal(t, ".txt", cfg.Index.Extension)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "docindex.yaml", `
index:
  indexPath: /var/lib/docindex/index.dat
  readWorkers: 4
  compression: zstd
logging:
  level: debug
  format: json
metrics:
  enabled: true
  textfilePath: /tmp/docindex.prom
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/docindex/index.dat", cfg.Index.IndexPath)
	assert.Equal(t, 4, cfg.Index.ReadWorkers)
	assert.Equal(t, CompressionZSTD, cfg.Index.Compression)
	assert.Equal(t, ".txt", cfg.Index.Extension, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/docindex.prom", cfg.Metrics.TextfilePath)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "docindex.toml", `
[index]
index_path = "out/index.dat"
stop_words_path = "lists/pt.txt"
extension = ".md"
compression = "lz4"
max_field_length = 4096
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out/index.dat", cfg.Index.IndexPath)
	assert.Equal(t, "lists/pt.txt", cfg.Index.StopWordsPath)
	assert.Equal(t, ".md", cfg.Index.Extension)
	assert.Equal(t, CompressionLZ4, cfg.Index.Compression)
	assert.Equal(t, 4096, cfg.Index.MaxFieldLength)
	assert.Equal(t, 1, cfg.Index.ReadWorkers)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "docindex.yaml", "index:\n  indexPath: from-file.dat\n")
	t.Setenv("DOCINDEX_INDEX_PATH", "from-env.dat")
	t.Setenv("DOCINDEX_READ_WORKERS", "8")
	t.Setenv("DOCINDEX_METRICS_TEXTFILE", "/tmp/m.prom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.dat", cfg.Index.IndexPath)
	assert.Equal(t, 8, cfg.Index.ReadWorkers)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/tmp/m.prom", cfg.Metrics.TextfilePath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"unknown extension", func(t *testing.T) string { return writeConfig(t, "docindex.json", "{}") }},
		{"bad yaml", func(t *testing.T) string { return writeConfig(t, "docindex.yaml", "index: [") }},
		{"bad toml", func(t *testing.T) string { return writeConfig(t, "docindex.toml", "[index") }},
		{"invalid value", func(t *testing.T) string {
			return writeConfig(t, "docindex.yaml", "index:\n  compression: brotli\n")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty index path", func(c *Config) { c.Index.IndexPath = "" }},
		{"empty extension", func(c *Config) { c.Index.Extension = "" }},
		{"zero workers", func(c *Config) { c.Index.ReadWorkers = 0 }},
		{"zero field length", func(c *Config) { c.Index.MaxFieldLength = 0 }},
		{"unknown compression", func(c *Config) { c.Index.Compression = "gzip" }},
		{"metrics without path", func(c *Config) { c.Metrics.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Index.Compression = "gzip"
	cfg.Index.Extension = "txt"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.compression must satisfy oneof=none lz4 zstd (got gzip)")
	assert.Contains(t, err.Error(), "index.extension must satisfy startswith=.")
	assert.Contains(t, err.Error(), "logging.format")
}
