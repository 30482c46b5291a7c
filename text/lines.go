// Package text groups raw positioned text fragments from a PDF page into
// ordered lines. Fragments whose vertical origins fall within a small
// quantization bucket belong to the same line; lines are ordered top to
// bottom and fragments within a line left to right.
package text

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fragment represents a piece of extracted text with its page-space origin.
type Fragment struct {
	Text string
	X, Y float64
}

// Line represents a single line of text on a page.
type Line struct {
	// Y is the vertical origin of the line.
	Y float64

	// Text is the assembled line content: fragments joined left to right
	// with single spaces, whitespace runs collapsed.
	Text string

	// Fragments are the source fragments, sorted left to right.
	Fragments []Fragment
}

// Config holds configuration for line grouping.
type Config struct {
	// BucketSize is the vertical quantization step used to absorb
	// sub-pixel jitter from kerning and rendering. Fragments whose
	// origins round to the same bucket share a line. Default: 2.
	BucketSize float64
}

// DefaultConfig returns the default grouping configuration.
func DefaultConfig() Config {
	return Config{BucketSize: 2}
}

// Grouper clusters positioned fragments into ordered lines.
type Grouper struct {
	config Config
}

// NewGrouper creates a grouper with default configuration.
func NewGrouper() *Grouper {
	return &Grouper{config: DefaultConfig()}
}

// NewGrouperWithConfig creates a grouper with custom configuration.
func NewGrouperWithConfig(config Config) *Grouper {
	if config.BucketSize <= 0 {
		config.BucketSize = DefaultConfig().BucketSize
	}
	return &Grouper{config: config}
}

// Group clusters fragments into lines sorted by descending vertical origin
// (top of page first). Lines whose text normalizes to the empty string are
// dropped.
func (g *Grouper) Group(fragments []Fragment) []Line {
	if len(fragments) == 0 {
		return nil
	}

	buckets := make(map[int64][]Fragment)
	for _, frag := range fragments {
		key := int64(frag.Y/g.config.BucketSize + 0.5)
		if frag.Y < 0 {
			key = int64(frag.Y/g.config.BucketSize - 0.5)
		}
		buckets[key] = append(buckets[key], frag)
	}

	lines := make([]Line, 0, len(buckets))
	for _, frags := range buckets {
		sort.SliceStable(frags, func(i, j int) bool {
			return frags[i].X < frags[j].X
		})

		text := joinFragments(frags)
		if text == "" {
			continue
		}

		lines = append(lines, Line{
			Y:         frags[0].Y,
			Text:      text,
			Fragments: frags,
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Y > lines[j].Y
	})

	return lines
}

// joinFragments assembles line text: fragments joined with single spaces,
// internal whitespace runs collapsed to one space, NFC-normalized.
func joinFragments(frags []Fragment) string {
	parts := make([]string, 0, len(frags))
	for _, frag := range frags {
		parts = append(parts, frag.Text)
	}
	joined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return norm.NFC.String(joined)
}
