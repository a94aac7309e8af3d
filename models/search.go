package models

import (
	"bytes"
	"encoding/json"
)

// SearchHit is one organic result returned by the search provider. Only
// Snippet and Link take part in citation numbering.
type SearchHit struct {
	Position int    `json:"position,omitempty"`
	Title    string `json:"title,omitempty"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
}

// Citation binds a label such as "[3]" to the URL it stands for.
type Citation struct {
	Label  string `json:"label"`
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// CitationList is an ordered set of citations. It encodes as a JSON object
// keyed by label, preserving order: {"[1]":"http://a","[2]":"http://b"}.
type CitationList []Citation

func (l CitationList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.URL)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
