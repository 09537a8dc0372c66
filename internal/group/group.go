// Package group folds scored records into user-facing result groups and
// renders them as a chat message fragment.
//
// Records describing the same method (same folded name, matrix, technique,
// and accreditation) collapse into one group that accumulates the distinct
// analytes and the numeric detection/quantification limits.
package group

import (
	"strconv"
	"strings"

	"github.com/metodolab/metodobot/internal/normalize"
	"github.com/metodolab/metodobot/internal/records"
)

// Group is one unit of user-facing output.
type Group struct {
	Name       string
	Matrix     string
	Technique  string
	Accredited bool

	// Analytes keeps insertion order, deduplicated by exact string.
	Analytes []string

	DetectionLimits      []float64
	QuantificationLimits []float64
}

// key is the structural identity of a method; records carry no stable id.
type key struct {
	name, matrix, technique string
	accredited              bool
}

// Build folds records into groups, preserving the order in which each group
// first appears in the (already ranked) record list.
func Build(recs []records.Record) []Group {
	var groups []Group
	index := make(map[key]int, len(recs))

	for _, r := range recs {
		k := key{
			name:       normalize.Fold(r.Name),
			matrix:     normalize.Fold(r.Matrix),
			technique:  normalize.Fold(r.Technique),
			accredited: r.Accredited,
		}

		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{
				Name:       r.Name,
				Matrix:     r.Matrix,
				Technique:  r.Technique,
				Accredited: r.Accredited,
			})
		}

		g := &groups[i]
		if analyte := strings.TrimSpace(r.Analyte); analyte != "" && !containsString(g.Analytes, analyte) {
			g.Analytes = append(g.Analytes, analyte)
		}
		if v, ok := LeadingNumber(r.DetectionLimit); ok {
			g.DetectionLimits = append(g.DetectionLimits, v)
		}
		if v, ok := LeadingNumber(r.QuantificationLimit); ok {
			g.QuantificationLimits = append(g.QuantificationLimits, v)
		}
	}

	return groups
}

// LeadingNumber extracts the leading numeric token of a limit string like
// "30 ng/g" or "0,5 µg/kg" (comma accepted as the decimal separator).
func LeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	end := 0
	seenDigit := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			seenDigit = true
			end++
			continue
		}
		if (c == '.' || c == ',') && seenDigit {
			end++
			continue
		}
		break
	}
	if !seenDigit {
		return 0, false
	}

	token := strings.ReplaceAll(s[:end], ",", ".")
	token = strings.TrimRight(token, ".")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatRange collapses numeric limits to "min-max", or a single value when
// they all agree. Empty input renders "".
func FormatRange(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	if minV == maxV {
		return formatNumber(minV)
	}
	return formatNumber(minV) + "-" + formatNumber(maxV)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
