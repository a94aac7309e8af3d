package formatting

import (
	"regexp"
	"strings"
)

// BlockKind classifies one line of an answer.
type BlockKind int

const (
	KindEmpty BlockKind = iota
	KindHeadingMerged
	KindHeading
	KindNumberedPoint
	KindBulletItem
	KindParagraph
)

func (k BlockKind) String() string {
	switch k {
	case KindHeadingMerged:
		return "heading_merged"
	case KindHeading:
		return "heading"
	case KindNumberedPoint:
		return "numbered_point"
	case KindBulletItem:
		return "bullet_item"
	case KindParagraph:
		return "paragraph"
	default:
		return "empty"
	}
}

// Block is one renderable unit. Number is set for KindHeadingMerged and
// KindNumberedPoint ("1."); Text holds the remaining content.
type Block struct {
	Kind   BlockKind
	Number string
	Text   string
}

var (
	numberingLine = regexp.MustCompile(`^\d+\.$`)
	headingLine   = regexp.MustCompile(`^\*.*\*$`)
)

type linePattern struct {
	kind  BlockKind
	match func(line string) bool
}

// linePatterns is evaluated top to bottom; the first match wins.
var linePatterns = []linePattern{
	{KindNumberedPoint, numberingLine.MatchString},
	{KindHeading, func(l string) bool { return strings.HasPrefix(l, "*") && strings.HasSuffix(l, "*") }},
	{KindBulletItem, func(l string) bool { return strings.HasPrefix(l, "-") }},
	{KindParagraph, func(l string) bool { return l != "" }},
}

func classifyLine(line string) BlockKind {
	for _, p := range linePatterns {
		if p.match(line) {
			return p.kind
		}
	}
	return KindEmpty
}

// Segment splits text into blocks, one per non-blank line, with a single
// line of look-ahead: a bare "N." line followed by a "*heading*" line is
// merged into one KindHeadingMerged block and the heading line is consumed.
// Only the immediate next line is considered, so "1.", "*A*", "*B*" yields a
// merged heading followed by a standalone heading.
func Segment(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		kind := classifyLine(line)

		if kind == KindNumberedPoint && i+1 < len(lines) && headingLine.MatchString(lines[i+1]) {
			blocks = append(blocks, Block{Kind: KindHeadingMerged, Number: line, Text: lines[i+1]})
			i++
			continue
		}

		switch kind {
		case KindEmpty:
			continue
		case KindNumberedPoint:
			blocks = append(blocks, Block{Kind: kind, Number: line})
		case KindBulletItem:
			blocks = append(blocks, Block{Kind: kind, Text: strings.TrimSpace(line[1:])})
		default:
			blocks = append(blocks, Block{Kind: kind, Text: line})
		}
	}
	return blocks
}
