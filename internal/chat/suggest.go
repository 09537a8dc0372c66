package chat

import (
	"strings"

	"github.com/metodolab/metodobot/internal/keywords"
	"github.com/metodolab/metodobot/internal/normalize"
)

// MaxSuggestions caps the autocompletion list sent to the widget.
const MaxSuggestions = 5

// commonQueries seed the list so partial input always has something to
// complete against, even before any record field matches.
var commonQueries = []string{
	"Metodologías para antibióticos en salmón",
	"¿Qué técnicas usan para micotoxinas?",
	"Metodologías acreditadas",
	"Análisis de pesticidas en frutas",
	"Metales pesados en agua",
	"LC-MS/MS en carne",
}

// Suggest returns up to MaxSuggestions completions for a partial query,
// drawn from record names and analytes plus the fixed common queries.
// Matching is prefix-first on the folded forms.
func (c *Controller) Suggest(partial string) []string {
	folded := normalize.Fold(partial)
	if len(folded) < 2 {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(s string) bool {
		key := normalize.Fold(s)
		if _, dup := seen[key]; dup {
			return len(out) < MaxSuggestions
		}
		seen[key] = struct{}{}
		out = append(out, s)
		return len(out) < MaxSuggestions
	}

	// prefix matches on common queries rank first
	for _, q := range commonQueries {
		if strings.HasPrefix(normalize.Fold(q), folded) {
			if !add(q) {
				return out
			}
		}
	}

	// then record fields containing any extracted keyword
	kws := keywords.Extract(partial)
	if len(kws) == 0 {
		kws = []string{folded}
	}
	for _, r := range c.recs {
		for _, field := range []string{r.Analyte, r.Name} {
			if field == "" {
				continue
			}
			fieldFolded := normalize.Fold(field)
			for _, kw := range kws {
				if strings.Contains(fieldFolded, kw) {
					if !add(field) {
						return out
					}
					break
				}
			}
		}
	}

	// substring matches on common queries fill remaining slots
	for _, q := range commonQueries {
		if strings.Contains(normalize.Fold(q), folded) {
			if !add(q) {
				return out
			}
		}
	}
	return out
}
