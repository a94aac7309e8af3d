package formatting

import (
	"io"
	"strings"
)

const (
	headingSize = 14

	defaultStreamBuffer = 32 * 1024
)

// Run is a span of text inside a paragraph. A run with a Link is rendered as
// a native hyperlink to that URL. A zero Size falls back to the encoder's
// body size.
type Run struct {
	Text string
	Link string
	Bold bool
	Size float64
}

// IsLink reports whether the run is rendered as a hyperlink.
func (r Run) IsLink() bool { return r.Link != "" }

// Paragraph is one line of the document.
type Paragraph struct {
	Runs []Run
}

// Document is the format-neutral content of the downloadable answer.
type Document struct {
	Paragraphs []Paragraph
}

// Links lists every hyperlink target in document order.
func (d *Document) Links() []string {
	var links []string
	for _, p := range d.Paragraphs {
		for _, r := range p.Runs {
			if r.IsLink() {
				links = append(links, r.Link)
			}
		}
	}
	return links
}

// BuildDocument lays out the raw, unsanitized answer one paragraph per line.
// Headings, bullets and numbering get no special treatment here; only
// citation tokens found in cm become hyperlink runs.
func BuildDocument(raw string, cm *CitationMap) *Document {
	doc := &Document{}
	doc.Paragraphs = append(doc.Paragraphs, headingParagraph("Answer"))

	for _, line := range strings.Split(raw, "\n") {
		var p Paragraph
		for _, part := range splitCitations(line) {
			run := Run{Text: part}
			if url, ok := cm.Lookup(part); ok {
				run.Link = url
			}
			p.Runs = append(p.Runs, run)
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}

	doc.Paragraphs = append(doc.Paragraphs, headingParagraph("References"))
	for _, c := range cm.Entries() {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Runs: []Run{
			{Text: c.Label + " "},
			{Text: c.URL, Link: c.URL},
		}})
	}
	return doc
}

func headingParagraph(title string) Paragraph {
	return Paragraph{Runs: []Run{{Text: title, Bold: true, Size: headingSize}}}
}

// DocumentEncoder serializes a Document into a binary format.
type DocumentEncoder interface {
	Encode(w io.Writer, doc *Document) error
	ContentType() string
	Extension() string
}

// DocumentRenderer turns an answer into document bytes using its encoder.
type DocumentRenderer struct {
	encoder    DocumentEncoder
	bufferSize int
}

// NewDocumentRenderer creates a renderer that streams through encoder.
func NewDocumentRenderer(encoder DocumentEncoder) *DocumentRenderer {
	return &DocumentRenderer{encoder: encoder, bufferSize: defaultStreamBuffer}
}

func (r *DocumentRenderer) ContentType() string { return r.encoder.ContentType() }

func (r *DocumentRenderer) Extension() string { return r.encoder.Extension() }

// Render encodes the answer and returns the complete buffer. Any failure
// while encoding or collecting bytes is reported as a *StreamError.
func (r *DocumentRenderer) Render(raw string, cm *CitationMap) ([]byte, error) {
	doc := BuildDocument(raw, cm)
	sink := &Sink{}
	err := streamInto(sink, r.bufferSize, func(w io.Writer) error {
		return r.encoder.Encode(w, doc)
	})
	if err != nil {
		return nil, err
	}
	if err := sink.Close(); err != nil {
		return nil, &StreamError{Op: "finalize", Err: err}
	}
	return sink.Bytes(), nil
}

// RenderDocument renders the answer as a PDF.
func RenderDocument(raw string, cm *CitationMap) ([]byte, error) {
	return NewDocumentRenderer(NewPDFEncoder()).Render(raw, cm)
}
