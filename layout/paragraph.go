package layout

import (
	"regexp"
	"strings"

	"github.com/newbdez33/examtopics-tools/text"
)

// Paragraph is a run of consecutive band lines merged into one text block.
type Paragraph struct {
	// Y is the vertical origin of the paragraph's first line.
	Y float64

	// Text is the space-joined, whitespace-normalized content.
	Text string
}

// ParagraphConfig holds configuration for paragraph reconstruction.
type ParagraphConfig struct {
	// GapThreshold is the maximum vertical gap between consecutive lines
	// belonging to the same paragraph. A larger gap closes the current
	// paragraph and starts a new one. Default: 18.
	GapThreshold float64
}

// DefaultParagraphConfig returns the default configuration.
func DefaultParagraphConfig() ParagraphConfig {
	return ParagraphConfig{GapThreshold: 18}
}

// noisePatterns match known non-content lines, anchored at the trimmed
// line start: question markers, topic markers, vote counts and answer
// markers. Matching lines are skipped entirely.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^question\s*#\s*\d+`),
	regexp.MustCompile(`(?i)^topic\s+\d+`),
	regexp.MustCompile(`(?i)^most\s+voted`),
	regexp.MustCompile(`(?i)^correct\s+answer:`),
}

// optionPattern matches an answer option line: a single letter A-H
// followed by "." or ")" and whitespace. Option text does not belong to
// the question stem, so the first option line stops the band scan.
var optionPattern = regexp.MustCompile(`^[A-H][.)]\s`)

// ParagraphBuilder merges band lines into paragraphs using a vertical-gap
// heuristic.
type ParagraphBuilder struct {
	config ParagraphConfig
}

// NewParagraphBuilder creates a builder with default configuration.
func NewParagraphBuilder() *ParagraphBuilder {
	return &ParagraphBuilder{config: DefaultParagraphConfig()}
}

// NewParagraphBuilderWithConfig creates a builder with custom configuration.
func NewParagraphBuilderWithConfig(config ParagraphConfig) *ParagraphBuilder {
	if config.GapThreshold <= 0 {
		config.GapThreshold = DefaultParagraphConfig().GapThreshold
	}
	return &ParagraphBuilder{config: config}
}

// Build reconstructs the paragraphs of one band. start and end delimit the
// band in the page's line list: both are exclusive, start being the band's
// anchor line index and end the next anchor's line index (or len(lines)
// for the last band).
func (b *ParagraphBuilder) Build(lines []text.Line, start, end int) []Paragraph {
	if end > len(lines) {
		end = len(lines)
	}

	var paragraphs []Paragraph
	var current []text.Line

	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraphs = append(paragraphs, Paragraph{
			Y:    current[0].Y,
			Text: joinLines(current),
		})
		current = nil
	}

	prevY := 0.0
	for i := start + 1; i < end; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line.Text)

		if isNoiseLine(trimmed) {
			continue
		}
		if optionPattern.MatchString(trimmed) {
			break
		}

		if len(current) > 0 && prevY-line.Y > b.config.GapThreshold {
			flush()
		}
		current = append(current, line)
		prevY = line.Y
	}
	flush()

	return paragraphs
}

func isNoiseLine(trimmed string) bool {
	for _, pattern := range noisePatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func joinLines(lines []text.Line) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
