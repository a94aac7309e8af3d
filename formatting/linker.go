package formatting

import (
	"regexp"
	"strings"
)

// citationToken matches a bracketed run of decimal digits, e.g. "[12]".
var citationToken = regexp.MustCompile(`\[\d+\]`)

// LinkCitations rewrites every known citation token into an in-page anchor
// pointing at its reference entry. Tokens with no entry in cm are left as
// literal text.
func LinkCitations(text string, cm *CitationMap) string {
	if cm.Len() == 0 {
		return text
	}
	return citationToken.ReplaceAllStringFunc(text, func(label string) string {
		if _, ok := cm.Lookup(label); !ok {
			return label
		}
		return citationAnchor(label)
	})
}

func citationAnchor(label string) string {
	var b strings.Builder
	b.WriteString(`<a href="#`)
	b.WriteString(AnchorID(label))
	b.WriteString(`">`)
	b.WriteString(label)
	b.WriteString(`</a>`)
	return b.String()
}

// splitCitations cuts s around citation tokens, keeping the tokens as their
// own parts: "a [1] b" -> ["a ", "[1]", " b"]. Empty parts are omitted.
func splitCitations(s string) []string {
	var parts []string
	last := 0
	for _, loc := range citationToken.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}
