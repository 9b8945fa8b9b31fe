// Package sentence provides approximate sentence segmentation used for
// citation statistics. It scans for sentence-terminal punctuation followed by
// whitespace and makes no attempt to handle abbreviations or quotes; chunk
// boundaries are decided elsewhere.
package sentence

import (
	"regexp"
	"strings"
)

// Span is a single sentence with its byte offsets in the source text.
type Span struct {
	Text  string
	Start int
	End   int
}

var terminator = regexp.MustCompile(`[.!?]+\s+`)

// Split returns the ordered sentence spans of text. Each terminal punctuation
// run followed by whitespace closes a span; trailing unterminated text forms a
// final span if non-empty.
func Split(text string) []Span {
	var spans []Span
	cur := 0
	for _, loc := range terminator.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[cur:loc[1]])
		if s != "" {
			spans = append(spans, Span{Text: s, Start: cur, End: loc[1]})
		}
		cur = loc[1]
	}
	if cur < len(text) {
		if rest := strings.TrimSpace(text[cur:]); rest != "" {
			spans = append(spans, Span{Text: rest, Start: cur, End: len(text)})
		}
	}
	return spans
}

// Count returns the number of sentences in text.
func Count(text string) int {
	return len(Split(text))
}
