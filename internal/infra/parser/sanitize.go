package parser

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML removes markup from a feed description: scripts and styles are
// dropped wholesale, remaining tags reduced to their text, entities decoded
// and whitespace collapsed to single spaces.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if !strings.ContainsAny(s, "<&") {
		return collapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// Unparseable fragment: fall back to entity decoding only.
		return collapseWhitespace(html.UnescapeString(s))
	}
	doc.Find("script, style, noscript").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
