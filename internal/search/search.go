// Package search implements the relevance scorer and filter over the
// methodology record set.
//
// The scoring policy is data, not control flow: an ordered rule table maps
// (field, tier) to a weight, and a standalone hard-inclusion predicate
// decides whether a keyword can justify including a record at all. A
// field-weighted BM25 score over the record text is the final tie-break
// between candidates the rule table cannot separate.
package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/bm25md"

	"github.com/metodolab/metodobot/internal/keywords"
	"github.com/metodolab/metodobot/internal/normalize"
	"github.com/metodolab/metodobot/internal/records"
	"github.com/metodolab/metodobot/internal/synonyms"
)

// DefaultMaxResults caps the scored candidate list handed to grouping.
const DefaultMaxResults = 25

// fieldText carries the per-record folded field texts, computed once when
// the engine is built.
type fieldText struct {
	name         string
	analyte      string
	matrix       string // matrix + technique
	category     string
	nameWords    []string
	analyteWords []string
}

// Candidate is an ephemeral per-query scoring record.
type Candidate struct {
	Record          records.Record
	Score           float64
	KeywordsMatched int
	NameMatched     bool
	AnalyteMatched  bool
	MatrixMatched   bool

	index int
	bm25  float64
}

// Engine scores and filters a read-only record set. Safe for repeated
// queries; it holds no per-query state.
type Engine struct {
	MaxResults int

	recs   []records.Record
	fields []fieldText
	corpus *bm25md.Corpus
}

// New precomputes field text and the BM25 corpus for a record set.
func New(recs []records.Record) *Engine {
	e := &Engine{
		MaxResults: DefaultMaxResults,
		recs:       recs,
		fields:     make([]fieldText, len(recs)),
		corpus:     bm25md.NewCorpus(),
	}

	parser := bm25md.NewMarkdownFieldParser()
	for i, r := range recs {
		name := keywords.JoinFolded(r.Name, r.NameEN)
		analyte := keywords.JoinFolded(r.Analyte, r.AnalyteEN)
		e.fields[i] = fieldText{
			name:         name,
			analyte:      analyte,
			matrix:       keywords.JoinFolded(r.Matrix, r.MatrixEN, r.Technique, r.TechniqueEN),
			category:     normalize.Fold(r.Category),
			nameWords:    strings.Fields(name),
			analyteWords: strings.Fields(analyte),
		}

		// feed bm25md the record as a small markdown document so the field
		// weights (heading > subheading > body) mirror name > analyte > rest
		doc := fmt.Sprintf("# %s\n\n## %s\n\n%s %s %s",
			name, analyte, e.fields[i].matrix, e.fields[i].category, e.fields[i].analyte)
		e.corpus.AddDocument(bm25md.Document{
			ID:       i,
			Fields:   parser.ParseDocument(doc),
			Original: doc,
		})
	}

	slog.Debug("search engine built", "records", len(recs))
	return e
}

// Search returns the records relevant to a free-text query, best first. The
// list is not deduplicated; grouping happens downstream. An empty record set
// or a query with no extractable keywords yields an empty result.
func (e *Engine) Search(query string) []records.Record {
	cands := e.Score(query)
	out := make([]records.Record, len(cands))
	for i, c := range cands {
		out[i] = c.Record
	}
	return out
}

// Score runs the full scoring pass and returns the surviving candidates in
// final order.
func (e *Engine) Score(query string) []Candidate {
	if len(e.recs) == 0 {
		return nil
	}

	kws := keywords.Extract(query)
	if len(kws) == 0 {
		slog.Debug("query has no keywords", "query", query)
		return nil
	}

	principal, matrixKws := keywords.Principal(kws)

	// per-keyword one-hop synonym closures, shared by scoring and inclusion
	expansions := make(map[string][]string, len(kws))
	for _, kw := range kws {
		expansions[kw] = setToSlice(synonyms.Expand("", []string{kw}))
	}

	var cands []Candidate
	for i := range e.recs {
		c, ok := e.scoreRecord(i, kws, principal, matrixKws, expansions)
		if !ok {
			continue
		}
		c.bm25 = e.corpus.Score(query, i)
		cands = append(cands, c)
	}

	sortCandidates(cands)
	cands = clusterByName(cands, e.fields)

	maxResults := e.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(cands) > maxResults {
		cands = cands[:maxResults]
	}

	slog.Debug("search scored", "query", query, "keywords", len(kws), "results", len(cands))
	return cands
}

// scoreRecord applies the rule table, the hard inclusion filter, and the
// bonus/penalty pass to one record.
func (e *Engine) scoreRecord(i int, kws, principal, matrixKws []string, expansions map[string][]string) (Candidate, bool) {
	f := &e.fields[i]
	c := Candidate{Record: e.recs[i], index: i}

	// hard inclusion: every principal keyword must independently qualify in
	// name or analyte; with no principal keywords, at least one keyword must
	for _, kw := range principal {
		if !qualifies(f, kw, expansions[kw]) {
			return Candidate{}, false
		}
	}
	if len(principal) == 0 {
		any := false
		for _, kw := range kws {
			if qualifies(f, kw, expansions[kw]) {
				any = true
				break
			}
		}
		if !any {
			return Candidate{}, false
		}
	}

	for _, kw := range kws {
		terms := expansions[kw]
		matched := false

		// first hit per field wins; rule order is the priority order
		hit := map[fieldKind]bool{}
		for _, r := range scoringRules {
			if hit[r.field] {
				continue
			}
			text, words := f.fieldFor(r.field)
			if text == "" || !r.match(text, words, kw, terms) {
				continue
			}
			hit[r.field] = true
			c.Score += r.weight
			matched = true
			switch r.field {
			case fieldName:
				c.NameMatched = true
			case fieldAnalyte:
				c.AnalyteMatched = true
			case fieldMatrix:
				c.MatrixMatched = true
			}
		}

		if matched {
			c.KeywordsMatched++
		}
	}

	if c.KeywordsMatched == 0 {
		return Candidate{}, false
	}

	// matrix-class keywords modulate, never filter
	for _, kw := range matrixKws {
		if matrixContains(f, kw, expansions[kw]) {
			c.Score += matrixHitBonus
		} else {
			c.Score *= matrixMissPenalty
		}
	}

	if c.KeywordsMatched == len(kws) {
		c.Score += fullCoverageBonus
	}
	if c.NameMatched && c.AnalyteMatched {
		c.Score += crossFieldBonus
	}

	return c, true
}

func (f *fieldText) fieldFor(kind fieldKind) (string, []string) {
	switch kind {
	case fieldName:
		return f.name, f.nameWords
	case fieldAnalyte:
		return f.analyte, f.analyteWords
	default:
		return f.matrix, strings.Fields(f.matrix)
	}
}

// matrixContains checks a matrix-class keyword (or its synonyms) against the
// record's matrix/technique text.
func matrixContains(f *fieldText, kw string, terms []string) bool {
	if strings.Contains(f.matrix, kw) {
		return true
	}
	for _, term := range terms {
		if len(term) >= 3 && strings.Contains(f.matrix, term) {
			return true
		}
	}
	return false
}

// sortCandidates orders by distinct keywords matched, then rule score, then
// the BM25 tie-break, then record order for determinism.
func sortCandidates(cands []Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.KeywordsMatched != b.KeywordsMatched {
			return a.KeywordsMatched > b.KeywordsMatched
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.bm25 != b.bm25 {
			return a.bm25 > b.bm25
		}
		return a.index < b.index
	})
}

// clusterByName keeps method variants adjacent: every candidate sharing a
// folded name moves up to the rank of its best-placed sibling, preserving
// relative order inside each cluster.
func clusterByName(cands []Candidate, fields []fieldText) []Candidate {
	if len(cands) < 3 {
		return cands
	}

	rank := make(map[string]int, len(cands))
	for pos, c := range cands {
		name := fields[c.index].name
		if _, seen := rank[name]; !seen {
			rank[name] = pos
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return rank[fields[cands[i].index].name] < rank[fields[cands[j].index].name]
	})
	return cands
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for term := range set {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
