package search

import (
	"strings"

	"github.com/metodolab/metodobot/internal/similar"
)

// fieldKind identifies where in a record a rule looks.
type fieldKind int

const (
	fieldName fieldKind = iota
	fieldAnalyte
	// matrix and technique text share one field: both only ever modify a
	// score, they never justify inclusion
	fieldMatrix
)

// rule is one entry of the scoring policy: a named tier with a predicate and
// the weight a hit adds. Rules are evaluated per keyword, per field, in
// declaration order; the first hit within a field wins for that keyword.
type rule struct {
	tier   string
	field  fieldKind
	weight float64
	match  func(text string, words []string, kw string, terms []string) bool
}

// matchExact: the whole field equals the keyword.
func matchExact(text string, _ []string, kw string, _ []string) bool {
	return text == kw
}

// matchWholeWord: the keyword equals one of the field's words, or shares a
// Spanish stem with one (collapses plural/singular variants).
func matchWholeWord(_ string, words []string, kw string, _ []string) bool {
	for _, w := range words {
		if w == kw || similar.StemEqual(w, kw) {
			return true
		}
	}
	return false
}

// matchSynonym: a synonym-expanded term of the keyword occurs in the field.
func matchSynonym(text string, _ []string, kw string, terms []string) bool {
	for _, term := range terms {
		if term == kw || len(term) < 3 {
			continue
		}
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// matchSubstring: the keyword occurs anywhere in the field.
func matchSubstring(text string, _ []string, kw string, _ []string) bool {
	return strings.Contains(text, kw)
}

// matchFuzzy: a field word is edit-distance-similar to the keyword. Lowest
// tier; keeps typo-qualified records from scoring zero.
func matchFuzzy(_ string, words []string, kw string, _ []string) bool {
	for _, w := range words {
		if similar.Match(kw, w) {
			return true
		}
	}
	return false
}

// scoringRules is the full scoring policy, ordered by strict descending
// priority. Name outranks analyte at every tier; matrix/technique tiers are
// bonus-only and award no base relevance (see qualifies for why).
var scoringRules = []rule{
	{tier: "name-exact", field: fieldName, weight: 10, match: matchExact},
	{tier: "name-word", field: fieldName, weight: 8, match: matchWholeWord},
	{tier: "name-synonym", field: fieldName, weight: 6, match: matchSynonym},
	{tier: "name-substring", field: fieldName, weight: 4, match: matchSubstring},
	{tier: "name-fuzzy", field: fieldName, weight: 2.5, match: matchFuzzy},

	{tier: "analyte-exact", field: fieldAnalyte, weight: 7, match: matchExact},
	{tier: "analyte-word", field: fieldAnalyte, weight: 5.5, match: matchWholeWord},
	{tier: "analyte-synonym", field: fieldAnalyte, weight: 4, match: matchSynonym},
	{tier: "analyte-substring", field: fieldAnalyte, weight: 3, match: matchSubstring},
	{tier: "analyte-fuzzy", field: fieldAnalyte, weight: 2, match: matchFuzzy},

	{tier: "matrix-word", field: fieldMatrix, weight: 1.5, match: matchWholeWord},
	{tier: "matrix-substring", field: fieldMatrix, weight: 1, match: matchSubstring},
}

// bonus increments applied after per-keyword scoring
const (
	fullCoverageBonus   = 3   // every keyword matched somewhere
	crossFieldBonus     = 2   // both name and analyte matched
	matrixHitBonus      = 2   // a queried matrix word is present in the record's matrix
	matrixMissPenalty   = 0.5 // multiplier when a queried matrix word is absent
	minSubstringQualLen = 4   // substring length floor for the inclusion rule
)

// qualifies is the hard inclusion predicate: a keyword justifies including a
// record only through its name or analyte fields. A whole-word hit, a
// substring hit of qualifying length, a verified synonym relation, or a
// fuzzy-similar word all qualify; matches confined to matrix, technique, or
// category never do.
func qualifies(f *fieldText, kw string, terms []string) bool {
	for _, field := range []struct {
		text  string
		words []string
	}{
		{f.name, f.nameWords},
		{f.analyte, f.analyteWords},
	} {
		if field.text == "" {
			continue
		}
		if matchWholeWord(field.text, field.words, kw, nil) {
			return true
		}
		if len(kw) >= minSubstringQualLen && strings.Contains(field.text, kw) {
			return true
		}
		if matchSynonym(field.text, nil, kw, terms) {
			return true
		}
		// fuzzy hits are the last resort, word by word
		for _, w := range field.words {
			if similar.Match(kw, w) {
				return true
			}
		}
	}
	return false
}
