package formatting

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// pdfFontFamily is the embedded UTF-8 family every run is drawn with.
const pdfFontFamily = "Go"

// PDFEncoder writes a Document as an A4 PDF. Text is set in the embedded Go
// TrueType fonts with UTF-8 encoding, so every rune keeps its code point in
// the content stream. Scripts the Go fonts carry no glyphs for (CJK) still
// extract correctly but draw as the fallback glyph. Link runs become /URI
// annotations and are drawn underlined in the accent color.
type PDFEncoder struct {
	BodySize     float64
	LineHeight   float64
	Compress     bool
	CreationDate time.Time
}

// NewPDFEncoder returns an encoder with an 11pt body and compressed streams.
func NewPDFEncoder() *PDFEncoder {
	return &PDFEncoder{
		BodySize:   11,
		LineHeight: 6,
		Compress:   true,
	}
}

func (e *PDFEncoder) ContentType() string { return "application/pdf" }

func (e *PDFEncoder) Extension() string { return ".pdf" }

func (e *PDFEncoder) Encode(w io.Writer, doc *Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.Compress)
	pdf.SetCreator("searchdoc", false)
	if !e.CreationDate.IsZero() {
		pdf.SetCreationDate(e.CreationDate)
		pdf.SetModificationDate(e.CreationDate)
		pdf.SetCatalogSort(true)
	}
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "B", gobold.TTF)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	for _, p := range doc.Paragraphs {
		for _, run := range p.Runs {
			e.writeRun(pdf, run)
		}
		pdf.Ln(e.LineHeight)
	}
	return pdf.Output(w)
}

func (e *PDFEncoder) writeRun(pdf *gofpdf.Fpdf, run Run) {
	size, style := e.BodySize, ""
	if run.Size > 0 {
		size = run.Size
	}
	if run.Bold {
		style = "B"
	}

	if !run.IsLink() {
		pdf.SetFont(pdfFontFamily, style, size)
		pdf.Write(e.LineHeight, run.Text)
		return
	}
	pdf.SetFont(pdfFontFamily, style+"U", size)
	pdf.SetTextColor(0, 102, 204)
	pdf.WriteLinkString(e.LineHeight, run.Text, run.Link)
	pdf.SetTextColor(0, 0, 0)
}
