package formatting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Block
	}{
		{
			name: "numbering merged with heading",
			in:   "1.\n*Overview*\nBody text",
			want: []Block{
				{Kind: KindHeadingMerged, Number: "1.", Text: "*Overview*"},
				{Kind: KindParagraph, Text: "Body text"},
			},
		},
		{
			name: "only the next line is merged",
			in:   "1.\n*A*\n*B*",
			want: []Block{
				{Kind: KindHeadingMerged, Number: "1.", Text: "*A*"},
				{Kind: KindHeading, Text: "*B*"},
			},
		},
		{
			name: "numbering without heading falls through",
			in:   "2.\nplain text",
			want: []Block{
				{Kind: KindNumberedPoint, Number: "2."},
				{Kind: KindParagraph, Text: "plain text"},
			},
		},
		{
			name: "numbering at end of input",
			in:   "intro\n3.",
			want: []Block{
				{Kind: KindParagraph, Text: "intro"},
				{Kind: KindNumberedPoint, Number: "3."},
			},
		},
		{
			name: "look-ahead sees the untrimmed line",
			in:   "1.\n  *Indented*",
			want: []Block{
				{Kind: KindNumberedPoint, Number: "1."},
				{Kind: KindHeading, Text: "*Indented*"},
			},
		},
		{
			name: "bullets strip marker and whitespace",
			in:   "- first\n  -   second  ",
			want: []Block{
				{Kind: KindBulletItem, Text: "first"},
				{Kind: KindBulletItem, Text: "second"},
			},
		},
		{
			name: "blank lines produce nothing",
			in:   "\n  \nonly\n\n",
			want: []Block{
				{Kind: KindParagraph, Text: "only"},
			},
		},
		{
			name: "not a numbering line",
			in:   "1. Start here\n12",
			want: []Block{
				{Kind: KindParagraph, Text: "1. Start here"},
				{Kind: KindParagraph, Text: "12"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.in))
		})
	}
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(""))
}

func TestBlockKindString(t *testing.T) {
	assert.Equal(t, "heading_merged", KindHeadingMerged.String())
	assert.Equal(t, "bullet_item", KindBulletItem.String())
	assert.Equal(t, "empty", BlockKind(99).String())
}
