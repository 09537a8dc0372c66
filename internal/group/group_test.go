package group_test

import (
	"strings"
	"testing"

	"github.com/metodolab/metodobot/internal/group"
	"github.com/metodolab/metodobot/internal/records"
)

func TestBuildCollapsesSameMethod(t *testing.T) {
	recs := []records.Record{
		{Name: "Tetraciclinas", Analyte: "Oxitetraciclina", Matrix: "Salmón", Technique: "LC-MS/MS", Accredited: true, DetectionLimit: "10 ng/g"},
		{Name: "TETRACICLINAS", Analyte: "Clortetraciclina", Matrix: "salmón", Technique: "LC-MS/MS", Accredited: true, DetectionLimit: "10 ng/g", QuantificationLimit: "20 ng/g"},
		{Name: "Tetraciclinas", Analyte: "Doxiciclina", Matrix: "Salmón", Technique: "LC-MS/MS", Accredited: true, DetectionLimit: "20 ng/g"},
	}

	groups := group.Build(recs)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if len(g.Analytes) != 3 {
		t.Errorf("expected 3 analytes, got %v", g.Analytes)
	}
	if g.Analytes[0] != "Oxitetraciclina" || g.Analytes[1] != "Clortetraciclina" {
		t.Errorf("analyte insertion order not preserved: %v", g.Analytes)
	}
	if !g.Accredited {
		t.Error("accreditation lost in grouping")
	}
	if len(g.DetectionLimits) != 3 {
		t.Errorf("expected 3 detection limits, got %v", g.DetectionLimits)
	}
}

func TestBuildSeparatesByStructuralKey(t *testing.T) {
	recs := []records.Record{
		{Name: "Tetraciclinas", Analyte: "Oxitetraciclina", Matrix: "Salmón", Technique: "LC-MS/MS", Accredited: true},
		{Name: "Tetraciclinas", Analyte: "Oxitetraciclina", Matrix: "Carne", Technique: "LC-MS/MS", Accredited: true},
		{Name: "Tetraciclinas", Analyte: "Oxitetraciclina", Matrix: "Salmón", Technique: "LC-MS/MS", Accredited: false},
	}

	groups := group.Build(recs)
	if len(groups) != 3 {
		t.Fatalf("matrix and accreditation changes must split groups, got %d", len(groups))
	}
}

func TestBuildDeduplicatesAnalytes(t *testing.T) {
	recs := []records.Record{
		{Name: "Plomo", Analyte: "Pb total", Matrix: "Agua"},
		{Name: "Plomo", Analyte: "Pb total", Matrix: "Agua"},
	}

	groups := group.Build(recs)
	if len(groups) != 1 || len(groups[0].Analytes) != 1 {
		t.Fatalf("duplicate analytes must collapse: %+v", groups)
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"30 ng/g", 30, true},
		{"0.5 µg/kg", 0.5, true},
		{"0,5 µg/kg", 0.5, true},
		{"12", 12, true},
		{"<10 ng/g", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok := group.LeadingNumber(tt.input)
		if ok != tt.ok || (ok && got != tt.expected) {
			t.Errorf("LeadingNumber(%q) = %v, %v; expected %v, %v",
				tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected string
	}{
		{"range collapses", []float64{10, 10, 20}, "10-20"},
		{"single value", []float64{5}, "5"},
		{"all equal", []float64{7, 7, 7}, "7"},
		{"fractions keep precision", []float64{0.5, 1}, "0.5-1"},
		{"empty", nil, ""},
		{"unsorted input", []float64{20, 5, 10}, "5-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := group.FormatRange(tt.values); got != tt.expected {
				t.Errorf("FormatRange(%v) = %q, expected %q", tt.values, got, tt.expected)
			}
		})
	}
}

func TestRenderSingleGroup(t *testing.T) {
	groups := []group.Group{{
		Name:                 "Tetraciclinas",
		Matrix:               "Salmón",
		Technique:            "LC-MS/MS",
		Accredited:           true,
		Analytes:             []string{"oxitetraciclina", "doxiciclina"},
		DetectionLimits:      []float64{10, 20},
		QuantificationLimits: []float64{30},
	}}

	got := group.Render(groups, "tetraciclinas en salmón")

	for _, want := range []string{
		"Oxitetraciclina",  // capitalized
		"y Doxiciclina",    // "X y Z" phrasing
		"salmón",           // matrix
		"LC-MS/MS",         // technique
		"badge-acreditada", // accreditation badge
		"10-20",            // LOD range collapsed
		"30",               // single LOQ value
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderManyAnalytesExactRemainder(t *testing.T) {
	groups := []group.Group{{
		Name:     "Plaguicidas",
		Analytes: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	}}

	got := group.Render(groups, "plaguicidas")
	if !strings.Contains(got, "y 3 más") {
		t.Errorf("expected exact remainder \"y 3 más\", got:\n%s", got)
	}
	if strings.Contains(got, "varios") {
		t.Error("remainder must be an exact count, never \"varios más\"")
	}
}

func TestRenderMultiGroup(t *testing.T) {
	groups := []group.Group{
		{Name: "Tetraciclinas", Matrix: "Salmón", Analytes: []string{"oxitetraciclina"}},
		{Name: "Sulfonamidas", Matrix: "Carne", Analytes: []string{"sulfametazina"}},
	}

	got := group.Render(groups, "antibióticos")

	if !strings.Contains(got, "<strong>2</strong>") {
		t.Error("multi-group render should state the group count")
	}
	if !strings.Contains(got, "1. Tetraciclinas") || !strings.Contains(got, "2. Sulfonamidas") {
		t.Errorf("groups should be numbered blocks:\n%s", got)
	}
	if !strings.Contains(got, "chatbot-divider") {
		t.Error("blocks should be separated by a divider")
	}
}

func TestRenderOverflowNote(t *testing.T) {
	var groups []group.Group
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		groups = append(groups, group.Group{Name: name, Analytes: []string{name}})
	}

	got := group.Render(groups, "todo")
	if !strings.Contains(got, "Y 2 metodologías más.") {
		t.Errorf("expected exact overflow note, got:\n%s", got)
	}
}

func TestRenderEscapesRecordText(t *testing.T) {
	groups := []group.Group{{
		Name:     `<script>alert("x")</script>`,
		Matrix:   `<img src=x>`,
		Analytes: []string{`<b>plomo</b>`},
	}}

	got := group.Render(groups, `<script>`)
	if strings.Contains(got, "<script>") || strings.Contains(got, "<img") || strings.Contains(got, "<b>plomo") {
		t.Errorf("record-derived text must be escaped:\n%s", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := group.Render(nil, "nada"); got != "" {
		t.Errorf("empty group list should render empty fragment, got %q", got)
	}
}
