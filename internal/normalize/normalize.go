// Package normalize folds free text into the canonical comparable form used
// by every matching stage of the engine.
//
// Folding lower-cases, strips diacritic marks (canonical decomposition, drop
// combining marks), replaces punctuation with spaces, and collapses runs of
// whitespace. The result contains only lowercase letters, digits, and single
// spaces, so Fold is idempotent: Fold(Fold(s)) == Fold(s).
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and removes the combining marks,
// so "salmón" folds to "salmon". Built once at package initialization.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the canonical comparable form of text.
// Empty input returns ""; Fold never fails.
func Fold(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)

	// drop diacritics; on a malformed rune sequence keep the lowercased text
	if folded, _, err := transform.String(stripMarks, text); err == nil {
		text = folded
	}

	// single pass: letters and digits are kept, everything else (punctuation
	// and whitespace alike) becomes at most one separating space
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}

// Words folds text and splits it into its space-separated tokens.
func Words(text string) []string {
	folded := Fold(text)
	if folded == "" {
		return nil
	}
	return strings.Split(folded, " ")
}
