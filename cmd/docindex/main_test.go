package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

func runApp(args ...string) error {
	_, err := runAppOutput(args...)
	return err
}

func runAppOutput(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"docindex"}, args...))
	return out.String(), err
}

func TestBuildSearchInfo(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.txt"), []byte("Casa Azul"), 0644))
	stopWords := filepath.Join(dir, "stopwords.txt")
	require.NoError(t, os.WriteFile(stopWords, []byte("de\n"), 0644))
	indexPath := filepath.Join(dir, "index.dat")
	textfile := filepath.Join(dir, "docindex.prom")
	t.Setenv("DOCINDEX_METRICS_TEXTFILE", textfile)

	out, err := runAppOutput("--index", indexPath, "--stopwords", stopWords, "build", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "documents indexed: 1\n")
	assert.Contains(t, out, "unique words: 2\n")

	out, err = runAppOutput("--index", indexPath, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "documents: 1\n")

	out, err = runAppOutput("--index", indexPath, "--stopwords", stopWords, "search", "Casa", "azul", "de", "telhado")
	require.NoError(t, err)
	assert.Equal(t, "no documents found\n"+
		"term frequencies:\n"+
		"  \"casa\": 1\n"+
		"  \"azul\": 1\n"+
		"  \"telhado\": 0\n"+
		"stop-words ignored: de\n", out)

	out, err = runAppOutput("--index", indexPath, "--stopwords", stopWords, "search", "casa", "azul")
	require.NoError(t, err)
	assert.Equal(t, "documents found (1):\n"+
		"  "+filepath.Join(docs, "a.txt")+"\n"+
		"term frequencies:\n"+
		"  \"casa\": 1\n"+
		"  \"azul\": 1\n", out)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "docindex_index_documents 1")
	assert.Contains(t, string(data), `docindex_search_queries_total{result_type="hit"} 1`)
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	missingIndex := filepath.Join(dir, "index.dat")
	badConfig := filepath.Join(dir, "docindex.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("index:\n  compression: brotli\n"), 0644))

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"build without directory", []string{"build"}, apperrors.ExitUsage},
		{"search without terms", []string{"search"}, apperrors.ExitUsage},
		{"missing index", []string{"--index", missingIndex, "search", "casa"}, apperrors.ExitPersistence},
		{"invalid config", []string{"--config", badConfig, "info"}, apperrors.ExitConfiguration},
		{"missing stop-words", []string{"--index", missingIndex, "--stopwords", filepath.Join(dir, "nope.txt"), "build", dir}, apperrors.ExitConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runApp(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.ExitCode(err))
		})
	}
}
