package executor

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/docindex/internal/searcher/parser"
)

// SearchResult holds the matching paths and, for every term that was looked
// up, its document frequency. Terms keeps the lookup order of TermStats keys;
// StopWords lists the query terms left out as stop-words.
type SearchResult struct {
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
	Results   []string       `json:"results"`
	Terms     []string       `json:"terms"`
	StopWords []string       `json:"stop_words"`
	TermStats map[string]int `json:"term_stats"`
}

// Executor evaluates queries against a read-only index.
type Executor struct {
	index  *index.MemoryIndex
	logger *slog.Logger
}

func New(idx *index.MemoryIndex) *Executor {
	return &Executor{
		index:  idx,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute runs plan. A single term is a plain lookup; several terms are
// intersected. A plan with no terms matches nothing.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan) *SearchResult {
	termStats := make(map[string]int, len(plan.Terms))
	for _, term := range plan.Terms {
		termStats[term] = e.index.DocFrequency(term)
	}
	var paths []string
	switch len(plan.Terms) {
	case 0:
		paths = []string{}
	case 1:
		paths = e.QuerySingle(plan.Terms[0])
	default:
		paths = e.QueryMultiple(plan.Terms)
	}
	e.logger.DebugContext(ctx, "query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"dropped", plan.DroppedTerms,
		"results", len(paths),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: len(paths),
		Results:   paths,
		Terms:     plan.Terms,
		StopWords: plan.DroppedTerms,
		TermStats: termStats,
	}
}

// QuerySingle returns the paths of the documents containing word, in
// ascending id order.
func (e *Executor) QuerySingle(word string) []string {
	return e.paths(e.index.DocumentsForWord(word))
}

// QueryMultiple returns the paths of the documents containing every word, in
// ascending id order. An empty word list yields no documents.
func (e *Executor) QueryMultiple(words []string) []string {
	if len(words) == 0 {
		return []string{}
	}
	result := e.index.DocumentsForWord(words[0])
	for _, word := range words[1:] {
		if len(result) == 0 {
			break
		}
		result = intersectSorted(result, e.index.DocumentsForWord(word))
	}
	return e.paths(result)
}

func (e *Executor) paths(ids []index.DocID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.index.FileName(id))
	}
	return out
}

// intersectSorted merges two ascending id lists, keeping ids present in
// both.
func intersectSorted(a, b []index.DocID) []index.DocID {
	out := make([]index.DocID, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
