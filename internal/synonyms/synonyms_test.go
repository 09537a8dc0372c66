package synonyms_test

import (
	"testing"

	"github.com/metodolab/metodobot/internal/synonyms"
)

func has(set map[string]struct{}, term string) bool {
	_, ok := set[term]
	return ok
}

// expanding a canonical term must yield at least its declared related terms
func TestExpandReflexive(t *testing.T) {
	expanded := synonyms.Expand("micotoxina", []string{"micotoxina"})

	for _, want := range []string{"micotoxina", "aflatoxina", "ocratoxina", "fumonisina", "zearalenona"} {
		if !has(expanded, want) {
			t.Errorf("Expand(micotoxina) missing %q", want)
		}
	}
}

// matching a related term must pull in the canonical term and its siblings
func TestExpandBidirectional(t *testing.T) {
	expanded := synonyms.Expand("aflatoxinas en maiz", []string{"aflatoxinas", "maiz"})

	if !has(expanded, "micotoxina") {
		t.Error("expanding a related term should include the canonical term")
	}
	if !has(expanded, "ocratoxina") {
		t.Error("expanding a related term should include its sibling terms")
	}
	// original keywords and the folded query are always present
	if !has(expanded, "aflatoxinas") || !has(expanded, "maiz") {
		t.Error("original keywords must survive expansion")
	}
	if !has(expanded, "aflatoxinas en maiz") {
		t.Error("folded query must be part of the expanded set")
	}
}

// expansion is one hop: diquat relates to paraquat, and paraquat belongs to
// the pesticida family, but expanding diquat must not chain into that
// family's other members via the second entry's closure
func TestExpandNotTransitive(t *testing.T) {
	expanded := synonyms.Expand("diquat", []string{"diquat"})

	if !has(expanded, "paraquat") || !has(expanded, "herbicida") {
		t.Fatal("diquat entry should expand to paraquat and herbicida")
	}
	// "diquat" is itself listed under pesticida, so that family joins in one
	// hop; "salmon" has no relation at any hop and must stay out
	if has(expanded, "salmon") || has(expanded, "trucha") {
		t.Error("expansion leaked into an unrelated entry")
	}
}

func TestExpandAccentsAndCase(t *testing.T) {
	expanded := synonyms.Expand("Antibióticos", []string{"Antibióticos"})

	if !has(expanded, "tetraciclina") {
		t.Error("folded keyword should match the antibiotico entry")
	}
}

func TestCorrectTypo(t *testing.T) {
	tests := []struct {
		token     string
		expected  string
		corrected bool
	}{
		{"antibotico", "antibiotico", true},
		{"samon", "salmon", true},
		{"tetraciclinas", "", false},
	}

	for _, tt := range tests {
		got, ok := synonyms.CorrectTypo(tt.token)
		if ok != tt.corrected || (ok && got != tt.expected) {
			t.Errorf("CorrectTypo(%q) = %q, %v; expected %q, %v",
				tt.token, got, ok, tt.expected, tt.corrected)
		}
	}
}

func TestExpandTypoCorrection(t *testing.T) {
	expanded := synonyms.Expand("microtoxinas en trigo", []string{"microtoxinas", "trigo"})

	if !has(expanded, "micotoxinas") {
		t.Error("corrected spelling should join the working set")
	}
	if !has(expanded, "aflatoxina") {
		t.Error("corrected spelling should drive synonym expansion")
	}
}

func TestRelated(t *testing.T) {
	if got := synonyms.Related("pesticida"); len(got) == 0 {
		t.Error("Related(pesticida) should list the family terms")
	}
	if got := synonyms.Related("inexistente"); got != nil {
		t.Errorf("Related(inexistente) = %v, expected nil", got)
	}
}
