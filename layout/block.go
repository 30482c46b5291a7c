package layout

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// BlockKind discriminates the ordered block variants.
type BlockKind int

const (
	// TextBlock is a reconstructed paragraph.
	TextBlock BlockKind = iota

	// ImageBlock is an extracted image linked by relative path.
	ImageBlock
)

// Block is the unit the interleaver sorts and serializes: either a
// paragraph of text or an image reference, positioned by vertical origin.
type Block struct {
	Kind BlockKind

	// Y is the vertical origin used for ordering.
	Y float64

	// Text is the paragraph content for TextBlock.
	Text string

	// Path is the image's relative path for ImageBlock.
	Path string

	// Alt is the image's alternative text for ImageBlock.
	Alt string
}

// NewTextBlock creates a text block.
func NewTextBlock(y float64, text string) Block {
	return Block{Kind: TextBlock, Y: y, Text: text}
}

// NewImageBlock creates an image block.
func NewImageBlock(y float64, path, alt string) Block {
	return Block{Kind: ImageBlock, Y: y, Path: path, Alt: alt}
}

// Interleave merges a band's paragraph blocks and image blocks into one
// sequence ordered by strictly descending vertical origin, recovering
// top-to-bottom reading order. The input slices are not modified.
func Interleave(blocks ...[]Block) []Block {
	var merged []Block
	for _, group := range blocks {
		merged = append(merged, group...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Y > merged[j].Y
	})
	return merged
}

// RenderHTML serializes ordered blocks to HTML. A text block becomes a
// paragraph element; an image block becomes a paragraph wrapping an img
// element. Rendering the same blocks twice yields identical output.
func RenderHTML(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Kind {
		case TextBlock:
			sb.WriteString("<p>")
			sb.WriteString(html.EscapeString(block.Text))
			sb.WriteString("</p>")
		case ImageBlock:
			fmt.Fprintf(&sb, `<p><img src="%s" alt="%s" /></p>`,
				block.Path, html.EscapeString(block.Alt))
		}
	}
	return sb.String()
}
