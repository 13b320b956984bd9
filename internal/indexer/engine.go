package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/metrics"
)

// readsPerWorker sizes a read batch relative to the worker count.
const readsPerWorker = 8

// Stats describes a finished build. IndexDirectory fills the counts; Build
// adds the file details.
type Stats struct {
	Documents    int
	Words        int
	Skipped      int
	DroppedTerms int
	Bytes        int64
	Path         string
	Duration     time.Duration
}

type Engine struct {
	cfg     config.IndexConfig
	walker  Walker
	reader  FileReader
	writer  *segment.Writer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Engine)

// WithWalker replaces the filesystem walker.
func WithWalker(w Walker) Option {
	return func(e *Engine) { e.walker = w }
}

// WithFileReader replaces the file reader.
func WithFileReader(r FileReader) Option {
	return func(e *Engine) { e.reader = r }
}

func NewEngine(cfg config.IndexConfig, m *metrics.Metrics, opts ...Option) (*Engine, error) {
	compression, err := segment.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "", err)
	}
	if cfg.ReadWorkers < 1 {
		cfg.ReadWorkers = 1
	}
	if cfg.MaxFieldLength < 1 {
		cfg.MaxFieldLength = segment.DefaultMaxFieldLength
	}
	if m == nil {
		m = metrics.NewDiscard()
	}
	e := &Engine{
		cfg:     cfg,
		reader:  OSReader{},
		writer:  segment.NewWriter(compression, cfg.MaxFieldLength),
		metrics: m,
		logger:  logger.WithComponent("indexer"),
	}
	e.walker = DirWalker{OnError: func(path string, err error) {
		e.logger.Warn("skipping unreadable directory entry", "path", path, "error", err)
	}}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Build indexes every eligible file under dir and writes the result to the
// configured index path. A stop-word list that cannot be loaded aborts the
// build before any file is read; an empty stop-word path disables stop-words.
func (e *Engine) Build(ctx context.Context, dir string) (Stats, error) {
	start := time.Now()
	tok := tokenizer.New()
	if e.cfg.StopWordsPath != "" {
		if err := tok.LoadStopWords(e.cfg.StopWordsPath); err != nil {
			return Stats{}, err
		}
		e.logger.Debug("stop-words loaded",
			"path", e.cfg.StopWordsPath,
			"count", tok.StopWordCount(),
		)
	}

	idx := index.NewMemoryIndex()
	stats, err := e.IndexDirectory(ctx, idx, tok, dir)
	if err != nil {
		return Stats{}, err
	}

	size, err := e.writer.Write(idx.Snapshot(), e.cfg.IndexPath)
	if err != nil {
		return Stats{}, err
	}
	stats.Bytes = size
	stats.Path = e.cfg.IndexPath
	stats.Duration = time.Since(start)
	e.metrics.IndexDocuments.Set(float64(stats.Documents))
	e.metrics.IndexTerms.Set(float64(stats.Words))
	e.metrics.IndexBytesWritten.Add(float64(size))
	e.metrics.BuildDuration.Observe(stats.Duration.Seconds())
	e.logger.Info("index written",
		"path", stats.Path,
		"documents", stats.Documents,
		"words", stats.Words,
		"skipped", stats.Skipped,
		"dropped_terms", stats.DroppedTerms,
		"bytes", stats.Bytes,
		"duration", stats.Duration,
	)
	return stats, nil
}

// IndexDirectory adds every regular file under root whose extension matches
// the configured one to idx. Files that cannot be read, or whose path is
// longer than MaxFieldLength, are skipped and counted; they are not
// registered. Terms longer than MaxFieldLength are dropped so the index can
// always be written and read back. Documents are registered in walk order,
// so ids do not depend on the number of read workers.
func (e *Engine) IndexDirectory(ctx context.Context, idx *index.MemoryIndex, tok *tokenizer.Tokenizer, root string) (Stats, error) {
	batchSize := e.cfg.ReadWorkers * readsPerWorker
	batch := make([]string, 0, batchSize)
	var stats Stats

	flush := func() error {
		results, err := e.readBatch(ctx, batch)
		if err != nil {
			return err
		}
		for i, path := range batch {
			if len(path) > e.cfg.MaxFieldLength {
				results[i].err = fmt.Errorf("path length %d exceeds limit %d", len(path), e.cfg.MaxFieldLength)
			}
			if results[i].err != nil {
				stats.Skipped++
				e.metrics.FilesSkippedTotal.Inc()
				e.logger.Debug("skipping file", "path", path, "error", results[i].err)
				continue
			}
			id := idx.AddDocument(path)
			terms := tok.Process(string(results[i].data))
			for _, term := range terms {
				if len(term) > e.cfg.MaxFieldLength {
					stats.DroppedTerms++
					e.metrics.TermsDroppedTotal.Inc()
					e.logger.Warn("dropping oversized term",
						"path", path,
						"term_length", len(term),
						"limit", e.cfg.MaxFieldLength,
					)
					continue
				}
				idx.AddWordToDocument(term, id)
			}
			e.metrics.DocsIndexedTotal.Inc()
			e.logger.Debug("document indexed",
				"doc_id", id,
				"path", path,
				"term_count", len(terms),
			)
		}
		batch = batch[:0]
		return nil
	}

	err := e.walker.Walk(ctx, root, func(entry Entry) error {
		if !entry.Regular || !hasExtension(entry.Path, e.cfg.Extension) {
			return nil
		}
		batch = append(batch, entry.Path)
		if len(batch) < batchSize {
			return nil
		}
		return flush()
	})
	if err == nil && len(batch) > 0 {
		err = flush()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return stats, apperrors.Wrap(apperrors.ErrInterrupted, root, err)
		}
		return stats, apperrors.Wrap(apperrors.ErrInvalidInput, root, fmt.Errorf("indexing directory: %w", err))
	}
	stats.Documents = idx.DocCount()
	stats.Words = idx.WordCount()
	return stats, nil
}

type readResult struct {
	data []byte
	err  error
}

// readBatch reads paths with up to ReadWorkers concurrent reads. Per-file
// failures are returned in the results; only cancellation fails the batch.
func (e *Engine) readBatch(ctx context.Context, paths []string) ([]readResult, error) {
	results := make([]readResult, len(paths))
	if e.cfg.ReadWorkers == 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			data, err := e.reader.ReadFile(path)
			results[i] = readResult{data: data, err: err}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ReadWorkers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := e.reader.ReadFile(path)
			results[i] = readResult{data: data, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// hasExtension reports whether the file name ends in ext and has a
// non-empty stem, so ".txt" on its own does not match.
func hasExtension(path, ext string) bool {
	base := filepath.Base(path)
	return base != ext && filepath.Ext(base) == ext
}
