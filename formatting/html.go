package formatting

import (
	"html"
	"strings"
)

const (
	containerOpen = `<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`
	headingOpen   = `<h3 style="color: #0066cc; font-size: 1.2em;">`
	referencesH2  = `<h2 style="color: #0066cc;">References</h2>`
)

// FormatAnswerHTML runs the full HTML path: sanitize, link citations,
// segment, render.
func FormatAnswerHTML(raw string, cm *CitationMap) string {
	linked := LinkCitations(Sanitize(raw), cm)
	return RenderHTML(Segment(linked), cm)
}

// RenderHTML folds blocks into an HTML fragment followed by a references
// list. Block text is expected to be sanitized already; it is written as-is so
// the citation anchors survive. The output depends only on its inputs.
func RenderHTML(blocks []Block, cm *CitationMap) string {
	var b strings.Builder
	b.WriteString(containerOpen)

	inList := false
	for _, blk := range blocks {
		if blk.Kind == KindBulletItem && !inList {
			b.WriteString("<ul>")
			inList = true
		} else if blk.Kind != KindBulletItem && inList {
			b.WriteString("</ul>")
			inList = false
		}
		writeBlock(&b, blk)
	}
	if inList {
		b.WriteString("</ul>")
	}

	writeReferences(&b, cm)
	b.WriteString("</div>")
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block) {
	switch blk.Kind {
	case KindHeadingMerged:
		b.WriteString(headingOpen)
		b.WriteString("<strong>")
		b.WriteString(blk.Number)
		b.WriteString("</strong> ")
		b.WriteString(blk.Text)
		b.WriteString("</h3>")
	case KindHeading:
		b.WriteString(headingOpen)
		b.WriteString(blk.Text)
		b.WriteString("</h3>")
	case KindNumberedPoint:
		b.WriteString("<p><strong>")
		b.WriteString(blk.Number)
		b.WriteString("</strong></p>")
	case KindBulletItem:
		b.WriteString("<li>")
		b.WriteString(blk.Text)
		b.WriteString("</li>")
	case KindParagraph:
		b.WriteString("<p>")
		b.WriteString(blk.Text)
		b.WriteString("</p>")
	}
}

func writeReferences(b *strings.Builder, cm *CitationMap) {
	b.WriteString(referencesH2)
	b.WriteString("<ul>")
	for _, c := range cm.Entries() {
		url := html.EscapeString(c.URL)
		b.WriteString(`<li id="`)
		b.WriteString(AnchorID(c.Label))
		b.WriteString(`">`)
		b.WriteString(c.Label)
		b.WriteString(`: <a href="`)
		b.WriteString(url)
		b.WriteString(`" target="_blank">`)
		b.WriteString(url)
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul>")
}
