package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/docindex/pkg/errors"
)

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase ascii", "Casa", "casa"},
		{"all caps", "AZUL", "azul"},
		{"strips punctuation", "\"Olá!\",", "ola"},
		{"all punctuation ranges", "a!/b:@c[`d{~e", "abcde"},
		{"keeps digits", "Route66", "route66"},
		{"folds lowercase accents", "àáâãäèéêëìíîïòóôõöùúûüç", "aaaaaeeeeiiiiooooouuuuc"},
		{"folds uppercase accents", "ÁGUA", "agua"},
		{"folds cedilla", "Ação", "acao"},
		{"only punctuation", "...", ""},
		{"keeps unrecognised latin1", "ñandú", "ñandu"},
		{"keeps other scripts", "日本", "日本"},
		{"keeps lone lead byte", "a\xc3", "a\xc3"},
		{"folds across stripped punctuation", "\xc3!\xa1", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWord(tt.in))
		})
	}
}

func TestNormalizeWordIdempotent(t *testing.T) {
	inputs := []string{
		"", "Casa", "São-Paulo", "\xc3\xc3\xa1", "\xc3!\xa1", "ÇÃO", "x\xc3", "a--b",
		"Pão_de_Açúcar!", "\xff\xfe", "MiXeD ÉtÉ",
	}
	for _, in := range inputs {
		once := NormalizeWord(in)
		assert.Equal(t, once, NormalizeWord(once), "input %q", in)
	}
}

func TestProcess(t *testing.T) {
	tok := New()
	tok.AddStopWords("de", "A")

	got := tok.Process("Casa de Pedra,\ta casa\n\nAZUL !!! ")
	assert.Equal(t, []string{"casa", "pedra", "casa", "azul"}, got)
}

func TestProcessEmpty(t *testing.T) {
	tok := New()
	assert.Empty(t, tok.Process(""))
	assert.Empty(t, tok.Process(" \t\r\n\v\f"))
}

func TestProcessKeepsNonBreakingSpaceInsideWord(t *testing.T) {
	tok := New()
	assert.Equal(t, []string{"a\u00a0b", "c"}, tok.Process("a\u00a0b c"))
}

func TestStopWordNeverEmitted(t *testing.T) {
	tok := New()
	tok.AddStopWords("Não")
	for _, text := range []string{"não", "NÃO", "nao", "\"não\"", "não não não"} {
		assert.Empty(t, tok.Process(text), "text %q", text)
	}
}

func TestLoadStopWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords.txt")
	require.NoError(t, os.WriteFile(path, []byte("de\nDa  do\n\n...\nÀ\n"), 0644))

	tok := New()
	require.NoError(t, tok.LoadStopWords(path))
	assert.Equal(t, 4, tok.StopWordCount())
	for _, w := range []string{"de", "da", "do", "a"} {
		assert.True(t, tok.IsStopWord(w), w)
	}
	assert.False(t, tok.IsStopWord(""))
}

func TestLoadStopWordsMissingFile(t *testing.T) {
	tok := New()
	tok.AddStopWords("keep")

	err := tok.LoadStopWords(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
	assert.Equal(t, 1, tok.StopWordCount())
}

var sampleTexts = map[string]string{
	"short": "O rápido cão marrom pula sobre o cachorro preguiçoso",
	"medium": `Índices invertidos associam cada palavra aos documentos que a contêm.
        A normalização remove pontuação, converte para minúsculas e remove acentos,
        de modo que consultas e documentos sejam comparados da mesma forma.`,
	"long": strings.Repeat(`Sistemas de recuperação de informação dependem de tokenização,
        remoção de palavras vazias e normalização para produzir termos pesquisáveis.
        A interseção ordenada de conjuntos responde consultas conjuntivas. `, 20),
}

func BenchmarkProcess(b *testing.B) {
	tok := New()
	tok.AddStopWords("o", "a", "de", "que", "e", "da", "para")
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				_ = tok.Process(text)
			}
		})
	}
}

func BenchmarkNormalizeWord(b *testing.B) {
	words := []string{
		"Índice", "invertido", "normalização", "Ação", "PESQUISA",
		"consultas,", "(documentos)", "São", "Paulo!", "coração",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, w := range words {
			_ = NormalizeWord(w)
		}
	}
}
