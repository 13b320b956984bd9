// Package searcher answers conjunctive queries against a persisted index.
package searcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docindex/pkg/metrics"
)

type Searcher struct {
	cfg     config.IndexConfig
	reader  *segment.Reader
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(cfg config.IndexConfig, m *metrics.Metrics) *Searcher {
	if m == nil {
		m = metrics.NewDiscard()
	}
	return &Searcher{
		cfg:     cfg,
		reader:  segment.NewReader(cfg.MaxFieldLength),
		metrics: m,
		logger:  logger.WithComponent("searcher"),
	}
}

// Search loads the index and returns the documents containing every term.
// Terms are normalised like document text. If the index cannot be loaded the
// error is returned and no results are produced.
//
// Terms on the stop-word list are dropped from the query, since they were
// never indexed. If the list cannot be loaded they stay in the query as
// regular terms, so a query containing one matches nothing; the failure is
// logged as a warning.
func (s *Searcher) Search(ctx context.Context, terms []string) (*executor.SearchResult, error) {
	start := time.Now()
	idx, err := s.reader.Read(s.cfg.IndexPath)
	if err != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.IndexDocuments.Set(float64(idx.DocCount()))
	s.metrics.IndexTerms.Set(float64(idx.WordCount()))

	plan := parser.Parse(terms, s.stopWords())
	result := executor.New(idx).Execute(ctx, plan)

	resultType := "hit"
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	s.metrics.SearchLatency.Observe(time.Since(start).Seconds())
	s.metrics.SearchResultsCount.Observe(float64(result.TotalHits))
	s.logger.Info("search completed",
		"query", result.Query,
		"results", result.TotalHits,
		"duration", time.Since(start),
	)
	return result, nil
}

// stopWords loads the configured stop-word list. Search still works without
// it, so a missing list is only logged.
func (s *Searcher) stopWords() *tokenizer.Tokenizer {
	if s.cfg.StopWordsPath == "" {
		return nil
	}
	tok := tokenizer.New()
	if err := tok.LoadStopWords(s.cfg.StopWordsPath); err != nil {
		s.logger.Warn("searching without stop-words", "error", err)
		return nil
	}
	return tok
}

// Info reports the header and counts of the configured index file.
func (s *Searcher) Info() (segment.Info, error) {
	return s.reader.Stat(s.cfg.IndexPath)
}
