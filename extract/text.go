package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// VisibleText reduces raw markup to the text a user would see: scripts,
// styles and head content stripped, whitespace collapsed. Used for the
// full-body fallback pass and for diagnostic samples.
func VisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Normalize(html)
	}
	doc.Find("script, style, noscript, svg, head").Remove()
	return Normalize(doc.Find("body").Text())
}

// Sample truncates text for inclusion in a failure diagnostic. The cut
// backs up to a rune boundary so the sample stays valid UTF-8.
func Sample(text string, max int) string {
	text = Normalize(text)
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}
