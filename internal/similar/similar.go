// Package similar implements the typo-tolerant fuzzy equality used as the
// scorer's secondary matcher. It is never the primary matching path, to keep
// over-broad matches out of the result set.
package similar

import (
	"strings"

	"github.com/kljensen/snowball"

	"github.com/metodolab/metodobot/internal/normalize"
)

// DefaultThreshold is the maximum edit distance treated as a likely typo.
const DefaultThreshold = 2

// longWordLen and longWordRatio relax the absolute threshold for longer
// words, where a proportional error rate is a better typo signal.
const (
	longWordLen   = 6
	longWordRatio = 0.15
)

// Distance computes the Levenshtein edit distance between a and b,
// rune-wise, using a single-row dynamic programming table.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr := make([]int, len(rb)+1)
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = curr
	}
	return prev[len(rb)]
}

// Match reports whether a and b are similar at the default threshold.
func Match(a, b string) bool {
	return MatchWithin(a, b, DefaultThreshold)
}

// MatchWithin reports whether a and b are similar: equal after folding,
// containment in either direction, edit distance within threshold, or a
// proportional distance within longWordRatio when both sides are longer
// than longWordLen runes.
func MatchWithin(a, b string, threshold int) bool {
	a, b = normalize.Fold(a), normalize.Fold(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if containsEither(a, b) {
		return true
	}

	d := Distance(a, b)
	if d <= threshold {
		return true
	}

	la, lb := len([]rune(a)), len([]rune(b))
	if la > longWordLen && lb > longWordLen {
		longest := max(la, lb)
		return float64(d)/float64(longest) <= longWordRatio
	}
	return false
}

// StemEqual reports whether a and b share a Spanish snowball stem, which
// collapses singular/plural and gender variants ("tetraciclina" /
// "tetraciclinas"). Tokens that fail to stem compare literally.
func StemEqual(a, b string) bool {
	a, b = normalize.Fold(a), normalize.Fold(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	sa, err := snowball.Stem(a, "spanish", true)
	if err != nil {
		sa = a
	}
	sb, err := snowball.Stem(b, "spanish", true)
	if err != nil {
		sb = b
	}
	return sa == sb
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
