package formatting

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"
	"unicode/utf16"

	pdfread "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocument(t *testing.T) {
	cm := sampleMap(t)

	doc := BuildDocument("Intro [1] and [2].\n- point one [7]", cm)

	require.Len(t, doc.Paragraphs, 6)
	assert.Equal(t, Run{Text: "Answer", Bold: true, Size: headingSize}, doc.Paragraphs[0].Runs[0])
	assert.Equal(t, []Run{
		{Text: "Intro "},
		{Text: "[1]", Link: "http://a"},
		{Text: " and "},
		{Text: "[2]", Link: "http://b"},
		{Text: "."},
	}, doc.Paragraphs[1].Runs)
	// Raw text: the bullet marker is kept and unknown labels stay plain.
	assert.Equal(t, []Run{{Text: "- point one "}, {Text: "[7]"}}, doc.Paragraphs[2].Runs)
	assert.Equal(t, "References", doc.Paragraphs[3].Runs[0].Text)
	assert.Equal(t, []Run{{Text: "[1] "}, {Text: "http://a", Link: "http://a"}}, doc.Paragraphs[4].Runs)

	assert.Equal(t, []string{"http://a", "http://b", "http://a", "http://b"}, doc.Links())
}

func TestBuildDocumentKeepsBlankLines(t *testing.T) {
	doc := BuildDocument("a\n\nb", NewCitationMap())

	// Answer heading, three lines, References heading.
	require.Len(t, doc.Paragraphs, 5)
	assert.Empty(t, doc.Paragraphs[2].Runs)
	assert.Empty(t, doc.Links())
}

func TestRenderDocumentPDF(t *testing.T) {
	cm := sampleMap(t)

	out, err := RenderDocument("Intro [1] and [2].\n- point one", cm)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/URI (http://a)")
	assert.Contains(t, string(out), "/URI (http://b)")
	assert.True(t, bytes.HasSuffix(bytes.TrimSpace(out), []byte("%%EOF")))
}

func TestPDFEncoderDeterministicWithFixedDate(t *testing.T) {
	enc := NewPDFEncoder()
	enc.CreationDate = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := NewDocumentRenderer(enc)
	cm := sampleMap(t)

	first, err := r.Render("x [1]", cm)
	require.NoError(t, err)
	second, err := r.Render("x [1]", cm)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, ".pdf", r.Extension())
}

// utf16BE is how the UTF-8 font path encodes a string inside a content stream.
func utf16BE(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u>>8), byte(u))
	}
	return b
}

func TestPDFEncoderKeepsNonLatinText(t *testing.T) {
	enc := NewPDFEncoder()
	enc.Compress = false

	out, err := NewDocumentRenderer(enc).Render("Zürich café [1]\nΕλλάδα\nМосква\n東京", sampleMap(t))
	require.NoError(t, err)

	for _, word := range []string{"Zürich café ", "Ελλάδα", "Москва", "東京"} {
		assert.True(t, bytes.Contains(out, utf16BE(word)), "content stream is missing %q", word)
	}
	assert.Contains(t, string(out), "/Encoding /Identity-H")
	assert.Contains(t, string(out), "/URI (http://a)")

	r, err := pdfread.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	rd, err := r.GetPlainText()
	require.NoError(t, err)
	text, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Zürich café")
	assert.Contains(t, string(text), "References")
}

// textEncoder writes one line per paragraph, links as <text|url>.
type textEncoder struct{}

func (textEncoder) ContentType() string { return "text/plain" }
func (textEncoder) Extension() string   { return ".txt" }

func (textEncoder) Encode(w io.Writer, doc *Document) error {
	for _, p := range doc.Paragraphs {
		for _, r := range p.Runs {
			var err error
			if r.IsLink() {
				_, err = fmt.Fprintf(w, "<%s|%s>", r.Text, r.Link)
			} else {
				_, err = io.WriteString(w, r.Text)
			}
			if err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func TestDocumentRendererCustomEncoder(t *testing.T) {
	r := NewDocumentRenderer(textEncoder{})

	out, err := r.Render("Intro [1] and [2].", sampleMap(t))
	require.NoError(t, err)

	assert.Equal(t,
		"Answer\n"+
			"Intro <[1]|http://a> and <[2]|http://b>.\n"+
			"References\n"+
			"[1] <http://a|http://a>\n"+
			"[2] <http://b|http://b>\n",
		string(out))
}

var errEncode = errors.New("encoder exploded")

type failingEncoder struct{ textEncoder }

func (failingEncoder) Encode(w io.Writer, _ *Document) error {
	if _, err := io.WriteString(w, "partial"); err != nil {
		return err
	}
	return errEncode
}

func TestDocumentRendererEncoderFailure(t *testing.T) {
	r := NewDocumentRenderer(failingEncoder{})

	out, err := r.Render("x", sampleMap(t))

	assert.Nil(t, out)
	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "encode", se.Op)
	assert.ErrorIs(t, err, errEncode)
}

func TestRenderDocumentWithoutCitations(t *testing.T) {
	out, err := RenderDocument("no citations here", NewCitationMap())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/URI")
}
