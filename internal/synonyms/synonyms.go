// Package synonyms expands query keywords over a static domain thesaurus.
//
// The table maps a canonical analytical term to its related terms (substance
// families, matrix variants, technique spellings). Expansion is a one-hop
// closure: matching either side of an entry unions in the canonical term and
// all of its related terms, and never chains through a second entry.
package synonyms

import (
	"strings"

	"github.com/metodolab/metodobot/internal/normalize"
)

// table is the domain thesaurus, keyed and valued in folded form.
// Static for the process lifetime; never mutated at runtime.
var table = map[string][]string{
	"antibiotico": {
		"antimicrobiano", "antimicrobianos", "fluoroquinolona", "tetraciclina",
		"sulfonamida", "macrolido", "aminoglucosido",
	},
	"micotoxina": {"aflatoxina", "ocratoxina", "fumonisina", "zearalenona"},
	"pesticida": {
		"plaguicida", "organoclorado", "organofosforado", "diquat", "paraquat",
		"glifosato",
	},
	"salmon": {
		"salmones", "salmonidos", "salmonideos", "trucha", "truchas", "pez",
		"peces", "hidrobiologico",
	},
	"carne":  {"carnes", "bovino", "bovina", "porcino", "porcina", "ave", "aves", "pollo", "pollos"},
	"leche":  {"lacteo", "lacteos", "dairy", "producto lacteo"},
	"lcmsms": {"lc ms ms", "lc ms", "lcms", "cromatografia liquida", "espectrometria de masas", "liquid chromatography"},
	"gcms":   {"gc ms", "cromatografia de gases", "gas chromatography"},
	"hplc":   {"cromatografia liquida", "high performance liquid chromatography"},
	"metal":  {"plomo", "cadmio", "mercurio", "arsenico", "metales pesados"},
	"diquat": {"paraquat", "herbicida"},
}

// typoCorrections maps common misspellings to the canonical folded spelling.
// Corrections are applied before expansion; corrected forms join the working
// keyword set alongside the originals.
var typoCorrections = map[string]string{
	"antibotico":     "antibiotico",
	"antiboticos":    "antibioticos",
	"microtoxina":    "micotoxina",
	"microtoxinas":   "micotoxinas",
	"pesticda":       "pesticida",
	"samon":          "salmon",
	"aflatoxna":      "aflatoxina",
	"cromatrografia": "cromatografia",
	"tetraciclnas":   "tetraciclinas",
}

// Related returns the related terms for a canonical table entry, or nil when
// the term is not canonical.
func Related(term string) []string {
	return table[normalize.Fold(term)]
}

// CorrectTypo returns the canonical spelling for a known misspelling, and
// whether a correction applied.
func CorrectTypo(token string) (string, bool) {
	corrected, ok := typoCorrections[normalize.Fold(token)]
	return corrected, ok
}

// Expand returns the one-hop synonym closure of the keywords as a set in
// folded form. The set always contains the folded query itself and every
// keyword (plus typo-corrected spellings of the keywords).
func Expand(query string, kws []string) map[string]struct{} {
	terms := make(map[string]struct{}, len(kws)*2+1)

	if folded := normalize.Fold(query); folded != "" {
		terms[folded] = struct{}{}
	}

	// working set: keywords plus typo corrections
	working := make([]string, 0, len(kws)+2)
	for _, kw := range kws {
		kw = normalize.Fold(kw)
		if kw == "" {
			continue
		}
		working = append(working, kw)
		terms[kw] = struct{}{}
		if corrected, ok := typoCorrections[kw]; ok {
			working = append(working, corrected)
			terms[corrected] = struct{}{}
		}
	}

	for _, kw := range working {
		for canonical, related := range table {
			if overlaps(kw, canonical) {
				terms[canonical] = struct{}{}
				for _, r := range related {
					terms[r] = struct{}{}
				}
				continue
			}
			for _, r := range related {
				if overlaps(kw, r) {
					terms[canonical] = struct{}{}
					for _, rr := range related {
						terms[rr] = struct{}{}
					}
					break
				}
			}
		}
	}

	return terms
}

// overlaps reports the equals / contains / is-contained-by relation used for
// table lookups. Both sides are expected in folded form.
func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	// a 3-rune floor keeps fragments like "ms" from pulling in whole entries
	if len(b) >= 3 && strings.Contains(a, b) {
		return true
	}
	return len(a) >= 3 && strings.Contains(b, a)
}
