package similar_test

import (
	"testing"

	"github.com/metodolab/metodobot/internal/similar"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical", "diquat", "diquat", 0},
		{"empty against word", "", "abc", 3},
		{"word against empty", "abc", "", 3},
		{"single substitution", "paraquat", "peraquat", 1},
		{"transposed pair", "salmon", "salmno", 2},
		{"unrelated", "leche", "gcms", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similar.Distance(tt.a, tt.b); got != tt.expected {
				t.Errorf("Distance(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{
			name:     "exact after folding",
			a:        "Salmón",
			b:        "salmon",
			expected: true,
		},
		{
			name:     "containment either direction",
			a:        "tetraciclina",
			b:        "oxitetraciclina",
			expected: true,
		},
		{
			name:     "one-letter typo",
			a:        "aflatoxina",
			b:        "aflatoxna",
			expected: true,
		},
		{
			name:     "two-edit typo",
			a:        "glifosato",
			b:        "glifasato",
			expected: true,
		},
		{
			name:     "proportional error on long words",
			a:        "organofosforados",
			b:        "organofosferados",
			expected: true,
		},
		{
			name:     "short unrelated words",
			a:        "miel",
			b:        "agua",
			expected: false,
		},
		{
			name:     "long unrelated words",
			a:        "zearalenona",
			b:        "fluoroquinolona",
			expected: false,
		},
		{
			name:     "empty input never matches",
			a:        "",
			b:        "salmon",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similar.Match(tt.a, tt.b); got != tt.expected {
				t.Errorf("Match(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestMatchWithin(t *testing.T) {
	// distance 2 fails at threshold 1
	if similar.MatchWithin("leche", "lecra", 1) {
		t.Error("threshold 1 should reject a distance-2 pair of short words")
	}
	if !similar.MatchWithin("leche", "lecha", 1) {
		t.Error("threshold 1 should accept a distance-1 pair")
	}
}

func TestStemEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"plural collapses", "tetraciclinas", "tetraciclina", true},
		{"accented plural", "metodologías", "metodologia", true},
		{"distinct substances", "aflatoxina", "ocratoxina", false},
		{"empty", "", "carne", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similar.StemEqual(tt.a, tt.b); got != tt.expected {
				t.Errorf("StemEqual(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
