package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/docindex/internal/indexer/tokenizer"
)

// QueryPlan is a conjunctive query: a document matches when it contains
// every term.
type QueryPlan struct {
	Terms        []string
	DroppedTerms []string
	RawQuery     string
}

// Parse normalises each query argument the same way documents are
// normalised. An argument that normalises to the empty string is kept, so
// that it matches nothing rather than silently widening the query. When tok
// is non-nil, stop-words are moved to DroppedTerms since they are never
// indexed.
func Parse(args []string, tok *tokenizer.Tokenizer) *QueryPlan {
	plan := &QueryPlan{
		Terms:        make([]string, 0, len(args)),
		DroppedTerms: make([]string, 0),
		RawQuery:     strings.Join(args, " "),
	}
	for _, arg := range args {
		term := tokenizer.NormalizeWord(arg)
		if tok != nil && term != "" && tok.IsStopWord(term) {
			plan.DroppedTerms = append(plan.DroppedTerms, term)
			continue
		}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}
