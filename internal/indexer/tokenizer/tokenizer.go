// Package tokenizer provides text normalisation for the indexer. It strips
// ASCII punctuation, lower-cases ASCII letters, folds accented Latin vowels
// and c-cedilla to their base letter, splits on whitespace and removes
// stop-words.
package tokenizer

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

// latin1Lead is the first byte of every two-byte UTF-8 sequence in
// U+00C0..U+00FF.
const latin1Lead = 0xC3

// accentFold maps the second byte of a latin1Lead sequence to its ASCII base
// letter. Bytes not present are left untouched.
var accentFold = map[byte]byte{
	// À Á Â Ã Ä / à á â ã ä
	0x80: 'a', 0x81: 'a', 0x82: 'a', 0x83: 'a', 0x84: 'a',
	0xA0: 'a', 0xA1: 'a', 0xA2: 'a', 0xA3: 'a', 0xA4: 'a',
	// Ç / ç
	0x87: 'c', 0xA7: 'c',
	// È É Ê Ë / è é ê ë
	0x88: 'e', 0x89: 'e', 0x8A: 'e', 0x8B: 'e',
	0xA8: 'e', 0xA9: 'e', 0xAA: 'e', 0xAB: 'e',
	// Ì Í Î Ï / ì í î ï
	0x8C: 'i', 0x8D: 'i', 0x8E: 'i', 0x8F: 'i',
	0xAC: 'i', 0xAD: 'i', 0xAE: 'i', 0xAF: 'i',
	// Ò Ó Ô Õ Ö / ò ó ô õ ö
	0x92: 'o', 0x93: 'o', 0x94: 'o', 0x95: 'o', 0x96: 'o',
	0xB2: 'o', 0xB3: 'o', 0xB4: 'o', 0xB5: 'o', 0xB6: 'o',
	// Ù Ú Û Ü / ù ú û ü
	0x99: 'u', 0x9A: 'u', 0x9B: 'u', 0x9C: 'u',
	0xB9: 'u', 0xBA: 'u', 0xBB: 'u', 0xBC: 'u',
}

// Tokenizer turns raw document text into index terms.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// New returns a Tokenizer with an empty stop-word set.
func New() *Tokenizer {
	return &Tokenizer{stopWords: make(map[string]struct{})}
}

// LoadStopWords reads whitespace-separated words from path and adds their
// normalised forms to the stop-word set. The set is left unchanged when the
// file cannot be read.
func (t *Tokenizer) LoadStopWords(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfiguration, path, fmt.Errorf("reading stop-word file: %w", err))
	}
	t.AddStopWords(strings.FieldsFunc(string(data), isSpace)...)
	return nil
}

// AddStopWords normalises each word and adds the non-empty results to the
// stop-word set.
func (t *Tokenizer) AddStopWords(words ...string) {
	for _, w := range words {
		if n := NormalizeWord(w); n != "" {
			t.stopWords[n] = struct{}{}
		}
	}
}

// IsStopWord reports whether an already normalised word is a stop-word.
func (t *Tokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[word]
	return ok
}

func (t *Tokenizer) StopWordCount() int {
	return len(t.stopWords)
}

// Process splits text on whitespace and returns the normalised terms in
// their original order, skipping empty results and stop-words.
func (t *Tokenizer) Process(text string) []string {
	fields := strings.FieldsFunc(text, isSpace)
	terms := make([]string, 0, len(fields))
	for _, field := range fields {
		term := NormalizeWord(field)
		if term == "" || t.IsStopWord(term) {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// NormalizeWord removes ASCII punctuation, lower-cases A-Z and folds the
// accented letters in accentFold. Every other byte, including unrecognised
// multi-byte sequences, is kept as is. NormalizeWord is idempotent.
func NormalizeWord(word string) string {
	stripped := make([]byte, 0, len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		if isPunctuation(c) {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		stripped = append(stripped, c)
	}

	// Folding runs after stripping so that a sequence split by punctuation
	// folds on the first pass rather than on a later one.
	out := stripped[:0]
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		if c == latin1Lead && i+1 < len(stripped) {
			if base, ok := accentFold[stripped[i+1]]; ok {
				out = append(out, base)
				i++
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}

func isPunctuation(c byte) bool {
	return (c >= 33 && c <= 47) ||
		(c >= 58 && c <= 64) ||
		(c >= 91 && c <= 96) ||
		(c >= 123 && c <= 126)
}

// isSpace matches the C locale whitespace set; multi-byte spaces such as
// U+00A0 are part of a word.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
