package keywords_test

import (
	"reflect"
	"testing"

	"github.com/metodolab/metodobot/internal/keywords"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "stop words removed",
			query:    "busca metodologías para antibióticos en salmón",
			expected: []string{"antibioticos", "salmon"},
		},
		{
			name:     "short tokens dropped",
			query:    "pb en té",
			expected: nil,
		},
		{
			name:     "question phrasing",
			query:    "¿Qué técnicas usan para micotoxinas?",
			expected: []string{"tecnicas", "micotoxinas"},
		},
		{
			name:     "all stop words falls back to last qualifying token",
			query:    "buscar metodologías",
			expected: []string{"metodologias"},
		},
		{
			name:     "empty query",
			query:    "",
			expected: nil,
		},
		{
			name:     "punctuation only",
			query:    "¿?!",
			expected: nil,
		},
		{
			name:     "order preserved",
			query:    "organoclorados harina",
			expected: []string{"organoclorados", "harina"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywords.Extract(tt.query)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Extract(%q) = %v, expected %v", tt.query, got, tt.expected)
			}
		})
	}
}

// every extracted keyword must be length >= 3 and outside the stop-word set
func TestExtractInvariants(t *testing.T) {
	queries := []string{
		"busca metodologías para antibióticos en salmón",
		"¿cuáles análisis acreditados existen para la leche?",
		"diquat",
		"LC-MS/MS en carne de bovino",
		"metodologías",
	}

	for _, q := range queries {
		for _, kw := range keywords.Extract(q) {
			if len([]rune(kw)) < 3 {
				t.Errorf("Extract(%q) produced short keyword %q", q, kw)
			}
			// the single-token fallback may legitimately return a stop word;
			// the invariant applies when more than one keyword survives
			if kws := keywords.Extract(q); len(kws) > 1 && keywords.IsStopWord(kw) {
				t.Errorf("Extract(%q) kept stop word %q", q, kw)
			}
		}
	}
}

func TestPrincipal(t *testing.T) {
	principal, matrix := keywords.Principal([]string{"organoclorados", "harina", "plomo"})

	if !reflect.DeepEqual(principal, []string{"organoclorados", "plomo"}) {
		t.Errorf("principal = %v, expected [organoclorados plomo]", principal)
	}
	if !reflect.DeepEqual(matrix, []string{"harina"}) {
		t.Errorf("matrix = %v, expected [harina]", matrix)
	}
}

func TestIsMatrixWord(t *testing.T) {
	if !keywords.IsMatrixWord("Salmón") {
		t.Error("Salmón should be recognized as a matrix word after folding")
	}
	if keywords.IsMatrixWord("tetraciclinas") {
		t.Error("tetraciclinas is a principal term, not a matrix word")
	}
}

func TestJoinFolded(t *testing.T) {
	got := keywords.JoinFolded("Tetraciclinas", "", "Salmón")
	if got != "tetraciclinas salmon" {
		t.Errorf("JoinFolded = %q, expected %q", got, "tetraciclinas salmon")
	}
}
