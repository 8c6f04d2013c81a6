// Package segmenter splits raw text into sentence units.
//
// Code spans and common abbreviations are shielded behind placeholders
// before boundary detection so their punctuation is never mistaken for a
// sentence end. Segmentation never fails: unparseable input degrades to a
// single sentence.
package segmenter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// abbreviations whose trailing period is not a sentence boundary.
// Matched case-sensitively, longest first.
var abbreviations = []string{
	"e.g.", "i.e.", "etc.",
	"Dr.", "Mr.", "Mrs.", "Ms.", "Prof.", "Sr.", "Jr.", "St.", "vs.",
	"Inc.", "Ltd.", "Co.", "Corp.",
	"U.S.", "U.K.",
}

const (
	fenceMarker = "```"
	// placeholder delimiters; never appear in text and carry no boundary
	// punctuation, so protected spans pass through the scanner intact.
	codeMark   = '\x00'
	abbrevMark = '\x01'
)

// Split segments text into sentences, dropping fragments shorter than
// minSentenceLength characters. Empty or whitespace-only input yields an
// empty slice; text without terminal punctuation yields one sentence.
func Split(text string, minSentenceLength int) []domain.Sentence {
	if strings.TrimSpace(text) == "" {
		return []domain.Sentence{}
	}

	protected, spans := protectCodeSpans(text)
	protected, abbrevs := protectAbbreviations(protected)

	parts := scan(protected)

	sentences := make([]domain.Sentence, 0, len(parts))
	for _, part := range parts {
		part = restoreAbbreviations(part, abbrevs)
		part = restoreCodeSpans(part, spans)
		part = strings.TrimSpace(part)
		if len(part) < minSentenceLength {
			continue
		}
		sentences = append(sentences, domain.Sentence{
			Index: len(sentences),
			Text:  part,
		})
	}

	return sentences
}

// protectCodeSpans replaces fenced and inline code spans with placeholders.
// A fence opener with no closing marker is treated as unmatched and left in
// place; one closing marker found is authoritative.
func protectCodeSpans(text string) (string, []string) {
	var spans []string

	// Fenced blocks first so their inner backticks are not re-paired.
	text = replaceSpans(text, fenceMarker, &spans)
	// Inline code.
	text = replaceSpans(text, "`", &spans)

	return text, spans
}

// replaceSpans swaps every marker..marker span for a placeholder,
// appending the original span text to spans. An opener with no closer is
// left untouched.
func replaceSpans(text, marker string, spans *[]string) string {
	var out strings.Builder
	for {
		start := strings.Index(text, marker)
		if start < 0 {
			break
		}
		end := strings.Index(text[start+len(marker):], marker)
		if end < 0 {
			// Unmatched opener: pass the rest through unprotected.
			break
		}
		end += start + len(marker) + len(marker)

		out.WriteString(text[:start])
		out.WriteString(codePlaceholder(len(*spans)))
		*spans = append(*spans, text[start:end])
		text = text[end:]
	}
	out.WriteString(text)
	return out.String()
}

// protectAbbreviations swaps each known abbreviation's periods for the
// abbreviation placeholder rune.
func protectAbbreviations(text string) (string, []string) {
	replaced := make([]string, 0, len(abbreviations))
	for _, abbrev := range abbreviations {
		if !strings.Contains(text, abbrev) {
			continue
		}
		safe := strings.ReplaceAll(abbrev, ".", string(abbrevMark))
		text = strings.ReplaceAll(text, abbrev, safe)
		replaced = append(replaced, abbrev)
	}
	return text, replaced
}

// restoreAbbreviations puts the original periods back.
func restoreAbbreviations(text string, abbrevs []string) string {
	for _, abbrev := range abbrevs {
		safe := strings.ReplaceAll(abbrev, ".", string(abbrevMark))
		text = strings.ReplaceAll(text, safe, abbrev)
	}
	return text
}

// restoreCodeSpans swaps placeholders back for the original code text.
func restoreCodeSpans(text string, spans []string) string {
	for i, span := range spans {
		text = strings.ReplaceAll(text, codePlaceholder(i), span)
	}
	return text
}

func codePlaceholder(i int) string {
	return fmt.Sprintf("%c%d%c", codeMark, i, codeMark)
}

// scan walks runes and cuts at terminal punctuation followed by whitespace
// and an uppercase letter, or at a newline.
func scan(text string) []string {
	runes := []rune(text)
	var parts []string
	var current strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			if s := current.String(); strings.TrimSpace(s) != "" {
				parts = append(parts, s)
			}
			current.Reset()
			continue
		}

		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			if isBoundary(runes, i) {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
	}

	if s := current.String(); strings.TrimSpace(s) != "" {
		parts = append(parts, s)
	}

	return parts
}

// isBoundary reports whether the terminal at index i is followed by at
// least one whitespace rune and then an uppercase letter.
func isBoundary(runes []rune, i int) bool {
	j := i + 1
	for j < len(runes) && runes[j] != '\n' && unicode.IsSpace(runes[j]) {
		j++
	}
	if j == i+1 {
		// No whitespace after the terminal: not a boundary (e.g. "3.14").
		return false
	}
	if j >= len(runes) {
		return false
	}
	return unicode.IsUpper(runes[j]) || runes[j] == '\n'
}
