package group

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxAnalytesListed bounds how many analytes one sentence names before
// collapsing the rest to an exact "y N más" remainder.
const MaxAnalytesListed = 5

// MaxGroupsRendered bounds how many groups one message renders in full; the
// remainder becomes an exact overflow note.
const MaxGroupsRendered = 5

// Render produces the chat message fragment for a ranked group list. All
// record-derived text is HTML-escaped; only the fixed scaffolding is
// literal markup. An empty group list returns ""; the caller decides
// between a not-found message and the remote fallback.
func Render(groups []Group, query string) string {
	switch len(groups) {
	case 0:
		return ""
	case 1:
		var b strings.Builder
		b.WriteString(`<div class="chatbot-results">`)
		b.WriteString("<p>")
		b.WriteString(sentence(groups[0]))
		b.WriteString("</p>")
		b.WriteString(`</div>`)
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<p>Encontré <strong>%d</strong> metodologías relacionadas con "<strong>%s</strong>":</p>`,
		len(groups), html.EscapeString(query))
	b.WriteString(`<div class="chatbot-results">`)

	rendered := groups
	if len(rendered) > MaxGroupsRendered {
		rendered = rendered[:MaxGroupsRendered]
	}
	for i, g := range rendered {
		if i > 0 {
			b.WriteString(`<hr class="chatbot-divider">`)
		}
		fmt.Fprintf(&b, `<div class="chatbot-result-item"><h4>%d. %s</h4><p>%s</p></div>`,
			i+1, html.EscapeString(g.Name), sentence(g))
	}

	if remaining := len(groups) - len(rendered); remaining > 0 {
		fmt.Fprintf(&b, `<p class="chatbot-more">Y %d metodología%s más.</p>`,
			remaining, plural(remaining))
	}

	b.WriteString(`</div>`)
	return b.String()
}

// sentence phrases one group as a natural affirmative sentence.
func sentence(g Group) string {
	var b strings.Builder

	switch len(g.Analytes) {
	case 0:
		fmt.Fprintf(&b, "Analizamos <strong>%s</strong>", html.EscapeString(g.Name))
	case 1:
		fmt.Fprintf(&b, "Analizamos <strong>%s</strong>", html.EscapeString(capitalize(g.Analytes[0])))
	default:
		fmt.Fprintf(&b, "Analizamos <strong>%s</strong>", analyteList(g.Analytes))
	}

	if g.Matrix != "" {
		fmt.Fprintf(&b, " en <em>%s</em>", html.EscapeString(strings.ToLower(g.Matrix)))
	}
	if g.Technique != "" {
		fmt.Fprintf(&b, " mediante %s", html.EscapeString(g.Technique))
	}
	b.WriteString(".")

	if g.Accredited {
		b.WriteString(` <span class="badge-acreditada">✓ Acreditada</span>`)
	}

	if r := FormatRange(g.DetectionLimits); r != "" {
		fmt.Fprintf(&b, " LOD: %s.", html.EscapeString(r))
	}
	if r := FormatRange(g.QuantificationLimits); r != "" {
		fmt.Fprintf(&b, " LOQ: %s.", html.EscapeString(r))
	}

	return b.String()
}

// analyteList joins capitalized analytes as "X, Y y Z", collapsing anything
// past MaxAnalytesListed into an exact remainder count.
func analyteList(analytes []string) string {
	listed := analytes
	remainder := 0
	if len(listed) > MaxAnalytesListed {
		remainder = len(listed) - MaxAnalytesListed
		listed = listed[:MaxAnalytesListed]
	}

	escaped := make([]string, len(listed))
	for i, a := range listed {
		escaped[i] = html.EscapeString(capitalize(a))
	}

	var joined string
	if remainder > 0 {
		joined = fmt.Sprintf("%s y %d más", strings.Join(escaped, ", "), remainder)
	} else if len(escaped) == 1 {
		joined = escaped[0]
	} else {
		joined = strings.Join(escaped[:len(escaped)-1], ", ") + " y " + escaped[len(escaped)-1]
	}
	return joined
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
