// Package formatting turns a cited language-model answer into an HTML fragment
// and a downloadable document that share one ordered citation map.
//
// Everything here is a pure, synchronous transform: no network access, no
// logging, no persistence. Callers own the CitationMap for the lifetime of a
// request and may hand it to both renderers concurrently since neither
// mutates it.
package formatting

import (
	"errors"
	"strconv"
	"strings"

	"github.com/itish2003/searchdoc/models"
)

// ErrEmptyResults is returned when no search hit carries both a snippet and a
// link.
var ErrEmptyResults = errors.New("formatting: no usable search results")

// CitationMap is an ordered, read-only mapping from citation label to URL.
type CitationMap struct {
	entries models.CitationList
	byLabel map[string]int
}

// BuildCitationMap numbers the usable hits by their position in the full hit
// list, so a skipped hit leaves a gap: hits [A, <no link>, C] produce labels
// [1] and [3]. The second return value is the space-joined snippet context.
func BuildCitationMap(hits []models.SearchHit) (*CitationMap, string, error) {
	cm := &CitationMap{byLabel: make(map[string]int, len(hits))}
	snippets := make([]string, 0, len(hits))

	for i, hit := range hits {
		if hit.Snippet == "" || hit.Link == "" {
			continue
		}
		snippets = append(snippets, hit.Snippet)
		cm.add(i+1, hit.Link)
	}

	if cm.Len() == 0 {
		return nil, "", ErrEmptyResults
	}
	return cm, strings.Join(snippets, " "), nil
}

// NewCitationMap builds a map from explicit citations, keeping their order.
// Duplicate numbers keep the first URL.
func NewCitationMap(citations ...models.Citation) *CitationMap {
	cm := &CitationMap{byLabel: make(map[string]int, len(citations))}
	for _, c := range citations {
		cm.add(c.Number, c.URL)
	}
	return cm
}

func (m *CitationMap) add(number int, url string) {
	label := Label(number)
	if _, dup := m.byLabel[label]; dup {
		return
	}
	m.byLabel[label] = len(m.entries)
	m.entries = append(m.entries, models.Citation{Label: label, Number: number, URL: url})
}

// Lookup returns the URL for a label such as "[2]".
func (m *CitationMap) Lookup(label string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.byLabel[label]
	if !ok {
		return "", false
	}
	return m.entries[i].URL, true
}

// Len returns the number of citations.
func (m *CitationMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the citations in label order.
func (m *CitationMap) Entries() models.CitationList {
	if m == nil {
		return models.CitationList{}
	}
	out := make(models.CitationList, len(m.entries))
	copy(out, m.entries)
	return out
}

// Label formats n as a citation token.
func Label(n int) string {
	return "[" + strconv.Itoa(n) + "]"
}

// AnchorID returns the in-page anchor for a label: "[12]" -> "ref-12".
func AnchorID(label string) string {
	return "ref-" + strings.Trim(label, "[]")
}
