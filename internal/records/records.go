// Package records defines the methodology record type and loads the record
// set from its sources: the methodologies API, a rendered HTML table, or a
// local JSON file.
//
// Records are read-only to the rest of the engine. Every optional field has
// an explicit default (empty string, false accreditation) applied at the
// load boundary, so downstream code never deals with absent fields.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoData means every record source was exhausted and there is nothing to
// search. Callers must report "no data" instead of an empty match list.
var ErrNoData = errors.New("records: no data source available")

// Record is one analytical methodology: an analyte measured in a matrix with
// a technique, with optional detection/quantification limits and an
// accreditation flag. Spanish fields carry the primary text; the _en pair
// holds the English variant when the site has one.
type Record struct {
	Name        string `json:"nombre"`
	NameEN      string `json:"nombre_en"`
	Analyte     string `json:"analito"`
	AnalyteEN   string `json:"analito_en"`
	Matrix      string `json:"matriz"`
	MatrixEN    string `json:"matriz_en"`
	Technique   string `json:"tecnica"`
	TechniqueEN string `json:"tecnica_en"`
	Category    string `json:"categoria"`

	// limits are free text like "30 ng/g"; numeric parsing happens at the
	// grouping stage
	DetectionLimit      string `json:"lod"`
	QuantificationLimit string `json:"loq"`

	Accredited bool `json:"acreditada"`
}

// wireRecord tolerates the API's loose accreditation field, which has been
// observed both as a boolean and as display text ("Sí", "✓ Acreditada").
type wireRecord struct {
	Record
	Accredited json.RawMessage `json:"acreditada"`
}

// DecodeRecords parses a JSON array of records, applying field defaults and
// dropping entries with no searchable text at all.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var wire []wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("records: payload is not a record array: %w", err)
	}

	recs := make([]Record, 0, len(wire))
	for _, w := range wire {
		r := w.Record
		r.Accredited = parseAccredited(w.Accredited)
		r.sanitize()
		if r.empty() {
			continue
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// parseAccredited accepts a JSON bool, a truthy Spanish string, or nothing.
func parseAccredited(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return AccreditedText(s)
	}
	return false
}

// AccreditedText reports whether display text marks a method as accredited.
func AccreditedText(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return false
	case strings.Contains(s, "no"):
		return false
	case strings.HasPrefix(s, "s"), strings.Contains(s, "acreditada"),
		strings.Contains(s, "✓"), s == "true", s == "1":
		return true
	}
	return false
}

func (r *Record) sanitize() {
	r.Name = strings.TrimSpace(r.Name)
	r.NameEN = strings.TrimSpace(r.NameEN)
	r.Analyte = strings.TrimSpace(r.Analyte)
	r.AnalyteEN = strings.TrimSpace(r.AnalyteEN)
	r.Matrix = strings.TrimSpace(r.Matrix)
	r.MatrixEN = strings.TrimSpace(r.MatrixEN)
	r.Technique = strings.TrimSpace(r.Technique)
	r.TechniqueEN = strings.TrimSpace(r.TechniqueEN)
	r.Category = strings.TrimSpace(r.Category)
	r.DetectionLimit = strings.TrimSpace(r.DetectionLimit)
	r.QuantificationLimit = strings.TrimSpace(r.QuantificationLimit)
}

func (r *Record) empty() bool {
	return r.Name == "" && r.NameEN == "" && r.Analyte == "" && r.AnalyteEN == ""
}
