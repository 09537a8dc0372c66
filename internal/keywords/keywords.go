// Package keywords extracts search keywords from user queries.
//
// A keyword is a normalized token of length >= 3 that survives the domain
// stop-word filter. Stop-words cover Spanish articles, prepositions, generic
// question verbs, and generic domain nouns ("metodo", "analisis") that carry
// no discriminating signal against a methodology record set.
package keywords

import (
	"strings"

	"github.com/metodolab/metodobot/internal/normalize"
)

// stopWords is keyed by folded form; tokens shorter than 3 runes never reach
// the lookup but the short entries are kept for use by callers that filter
// raw field text.
var stopWords = map[string]struct{}{
	// articles and prepositions
	"el": {}, "la": {}, "los": {}, "las": {},
	"un": {}, "una": {}, "unos": {}, "unas": {},
	"de": {}, "del": {}, "en": {}, "para": {},
	"con": {}, "por": {}, "sobre": {},

	// question words and generic verbs
	"que": {}, "cual": {}, "cuales": {}, "como": {},
	"donde": {}, "cuando": {}, "hay": {}, "tiene": {},
	"tienen": {}, "hace": {}, "hacen": {}, "usa": {},
	"usan": {}, "busca": {}, "buscar": {}, "quiero": {},
	"existe": {}, "existen": {},

	// generic domain nouns that match every record
	"metodo": {}, "metodos": {}, "metodologia": {}, "metodologias": {},
	"analisis": {}, "ensayo": {}, "ensayos": {},
}

// matrixWords are recognized sample-type terms. They modify relevance but
// never justify a match on their own (see the scorer's hard inclusion rule).
var matrixWords = map[string]struct{}{
	"salmon": {}, "salmones": {}, "trucha": {}, "truchas": {},
	"pez": {}, "peces": {}, "pescado": {}, "pescados": {},
	"carne": {}, "carnes": {}, "bovino": {}, "bovina": {},
	"porcino": {}, "porcina": {}, "ave": {}, "aves": {},
	"pollo": {}, "pollos": {},
	"leche": {}, "lacteo": {}, "lacteos": {},
	"harina": {}, "harinas": {}, "cereal": {}, "cereales": {},
	"agua": {}, "aguas": {}, "miel": {}, "queso": {},
	"huevo": {}, "huevos": {}, "alimento": {}, "alimentos": {},
}

const minTokenLen = 3

// Extract returns the ordered keywords of a query.
//
// The query is folded and split on whitespace; tokens shorter than three
// runes are dropped, then stop-words are removed. If the stop-word filter
// removes every qualifying token, the last qualifying token is returned
// alone (the tail of a question is usually the search target). A query with
// no qualifying tokens at all yields an empty list.
func Extract(query string) []string {
	tokens := normalize.Words(query)
	if len(tokens) == 0 {
		return nil
	}

	var qualifying []string
	for _, tok := range tokens {
		if len([]rune(tok)) >= minTokenLen {
			qualifying = append(qualifying, tok)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	kws := make([]string, 0, len(qualifying))
	for _, tok := range qualifying {
		if _, stop := stopWords[tok]; !stop {
			kws = append(kws, tok)
		}
	}

	if len(kws) == 0 {
		return []string{qualifying[len(qualifying)-1]}
	}
	return kws
}

// IsStopWord reports whether the folded token is in the stop-word set.
func IsStopWord(token string) bool {
	_, ok := stopWords[normalize.Fold(token)]
	return ok
}

// IsMatrixWord reports whether the folded token names a sample matrix class.
func IsMatrixWord(token string) bool {
	_, ok := matrixWords[normalize.Fold(token)]
	return ok
}

// Principal splits keywords into principal terms (substances, methods,
// techniques) and matrix-class terms.
func Principal(kws []string) (principal, matrix []string) {
	for _, kw := range kws {
		if IsMatrixWord(kw) {
			matrix = append(matrix, kw)
			continue
		}
		principal = append(principal, kw)
	}
	return principal, matrix
}

// JoinFolded folds and joins arbitrary field values into one searchable
// string, skipping empties.
func JoinFolded(values ...string) string {
	var parts []string
	for _, v := range values {
		if folded := normalize.Fold(v); folded != "" {
			parts = append(parts, folded)
		}
	}
	return strings.Join(parts, " ")
}
