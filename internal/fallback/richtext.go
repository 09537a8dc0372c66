package fallback

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
)

// boldPattern rewrites the one markdown construct worth keeping in chat
// bubbles after escaping.
var boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// Renderable post-processes a reasoning answer into a safe chat fragment.
//
// Answers arrive as plain text, markdown, an HTML snippet, or occasionally a
// whole HTML document. HTML is reduced to markdown first (full documents go
// through readability to shed boilerplate); the text is then escaped and
// re-wrapped as paragraph markup, so nothing the remote service produced is
// ever injected verbatim.
func Renderable(answer string) (string, error) {
	text := strings.TrimSpace(answer)
	if text == "" {
		return "", fmt.Errorf("empty answer")
	}

	if looksLikeHTML(text) {
		var err error
		text, err = htmlToText(text)
		if err != nil {
			return "", err
		}
	}

	return paragraphs(text), nil
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"<p", "<div", "<span", "<ul", "<ol", "<br", "<html", "<!doctype", "<h1", "<h2", "<h3", "<table"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// htmlToText reduces HTML to markdown-ish plain text.
func htmlToText(htmlText string) (string, error) {
	lower := strings.ToLower(htmlText)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") {
		article, err := readability.FromReader(strings.NewReader(htmlText), &url.URL{})
		if err != nil {
			return "", fmt.Errorf("extracting answer content: %w", err)
		}
		htmlText = article.Content
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(htmlText)
	if err != nil {
		return "", fmt.Errorf("converting answer: %w", err)
	}
	return markdown, nil
}

// paragraphs escapes text and wraps blank-line-separated blocks in <p> tags,
// restoring bold emphasis afterwards.
func paragraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		escaped := html.EscapeString(block)
		escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")

		b.WriteString("<p>")
		b.WriteString(escaped)
		b.WriteString("</p>")
	}

	if b.Len() == 0 {
		return "<p></p>"
	}
	return b.String()
}
