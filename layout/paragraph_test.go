package layout

import (
	"testing"

	"github.com/newbdez33/examtopics-tools/text"
)

func TestBuild_SingleParagraphStem(t *testing.T) {
	// A band holding one stem line between the anchor and the options.
	lines := []text.Line{
		line("Question #1", 700),
		line("Topic 2", 690),
		line("What is the capital of X?", 670),
		line("A. Paris", 650),
	}

	b := NewParagraphBuilder()
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1: %+v", len(paragraphs), paragraphs)
	}
	if paragraphs[0].Text != "What is the capital of X?" {
		t.Errorf("paragraph = %q, want %q", paragraphs[0].Text, "What is the capital of X?")
	}
	if paragraphs[0].Y != 670 {
		t.Errorf("paragraph Y = %v, want 670", paragraphs[0].Y)
	}
}

func TestBuild_NoiseLinesSkippedEntirely(t *testing.T) {
	lines := []text.Line{
		line("Question #3", 700),
		line("Topic 1", 690),
		line("Most Voted", 680),
		line("Correct Answer: B", 670),
		line("The actual stem text", 660),
	}

	b := NewParagraphBuilder()
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paragraphs))
	}
	if paragraphs[0].Text != "The actual stem text" {
		t.Errorf("paragraph = %q, want only the stem", paragraphs[0].Text)
	}
}

func TestBuild_StopsAtFirstOptionLine(t *testing.T) {
	lines := []text.Line{
		line("Question #4", 700),
		line("Stem before options", 685),
		line("B) Second option", 670),
		line("Text after options should not appear", 655),
	}

	b := NewParagraphBuilder()
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(paragraphs))
	}
	if paragraphs[0].Text != "Stem before options" {
		t.Errorf("paragraph = %q, want %q", paragraphs[0].Text, "Stem before options")
	}
}

func TestBuild_OptionLetterVariants(t *testing.T) {
	stops := []string{"A. first", "B) second", "H. last"}
	for _, stop := range stops {
		lines := []text.Line{
			line("Question #1", 700),
			line(stop, 680),
			line("after", 660),
		}
		if got := NewParagraphBuilder().Build(lines, 0, len(lines)); len(got) != 0 {
			t.Errorf("line %q should stop the scan, got %+v", stop, got)
		}
	}

	// Lines that merely start with a capital letter are not options.
	nonStops := []string{"All of the above applies", "Because of X", "I. Roman numeral list"}
	for _, keep := range nonStops {
		lines := []text.Line{
			line("Question #1", 700),
			line(keep, 680),
		}
		if got := NewParagraphBuilder().Build(lines, 0, len(lines)); len(got) != 1 {
			t.Errorf("line %q should be kept, got %+v", keep, got)
		}
	}
}

func TestBuild_GapSplitsParagraphs(t *testing.T) {
	lines := []text.Line{
		line("Question #2", 700),
		line("First paragraph line one", 680),
		line("first paragraph line two", 668),
		line("Second paragraph after a large gap", 620),
	}

	b := NewParagraphBuilder()
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %+v", len(paragraphs), paragraphs)
	}
	if paragraphs[0].Text != "First paragraph line one first paragraph line two" {
		t.Errorf("paragraph 0 = %q", paragraphs[0].Text)
	}
	if paragraphs[0].Y != 680 {
		t.Errorf("paragraph 0 Y = %v, want 680", paragraphs[0].Y)
	}
	if paragraphs[1].Text != "Second paragraph after a large gap" {
		t.Errorf("paragraph 1 = %q", paragraphs[1].Text)
	}
}

func TestBuild_GapExactlyAtThresholdKeepsParagraph(t *testing.T) {
	lines := []text.Line{
		line("Question #2", 700),
		line("line one", 680),
		line("line two", 662), // gap of exactly 18
	}

	b := NewParagraphBuilder()
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1 (gap of 18 does not split)", len(paragraphs))
	}
}

func TestBuild_CustomGapThreshold(t *testing.T) {
	lines := []text.Line{
		line("Question #2", 700),
		line("one", 690),
		line("two", 682),
	}

	b := NewParagraphBuilderWithConfig(ParagraphConfig{GapThreshold: 5})
	paragraphs := b.Build(lines, 0, len(lines))

	if len(paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2 with tight threshold", len(paragraphs))
	}
}

func TestBuild_BandBoundaries(t *testing.T) {
	lines := []text.Line{
		line("Question #1", 700),
		line("first stem", 680),
		line("Question #2", 500),
		line("second stem", 480),
	}

	b := NewParagraphBuilder()

	// Band of question 1 ends before the next anchor's line.
	first := b.Build(lines, 0, 2)
	if len(first) != 1 || first[0].Text != "first stem" {
		t.Errorf("band 1 = %+v, want only the first stem", first)
	}

	// Last band runs to the end of the page.
	second := b.Build(lines, 2, len(lines))
	if len(second) != 1 || second[0].Text != "second stem" {
		t.Errorf("band 2 = %+v, want only the second stem", second)
	}
}

func TestBuild_EmptyBand(t *testing.T) {
	lines := []text.Line{
		line("Question #1", 700),
	}

	b := NewParagraphBuilder()
	if got := b.Build(lines, 0, len(lines)); len(got) != 0 {
		t.Errorf("got %+v, want no paragraphs", got)
	}
}

func TestBuild_EndClampedToLineCount(t *testing.T) {
	lines := []text.Line{
		line("Question #1", 700),
		line("stem", 680),
	}

	b := NewParagraphBuilder()
	if got := b.Build(lines, 0, 99); len(got) != 1 {
		t.Errorf("got %+v, want 1 paragraph with clamped end", got)
	}
}
