package layout

import (
	"regexp"
	"strconv"

	"github.com/newbdez33/examtopics-tools/text"
)

// Anchor marks a detected "Question #N" line. Anchors partition a page
// into contiguous vertical bands: band i spans from anchor i's line
// (exclusive) down to anchor i+1's line (exclusive), or to the end of the
// page for the last anchor.
type Anchor struct {
	// Number is the question number parsed from the marker.
	Number int

	// Y is the vertical origin of the anchor line.
	Y float64

	// LineIndex is the index of the anchor line in the page's line list.
	LineIndex int
}

// anchorPattern matches a question marker anywhere in a line; the marker
// need not be the entire line content.
var anchorPattern = regexp.MustCompile(`(?i)question\s*#\s*(\d+)`)

// LocateAnchors scans ordered lines for question markers. Input lines are
// ordered by descending vertical origin, so the returned anchors are too.
// Markers whose digit run does not parse are discarded.
func LocateAnchors(lines []text.Line) []Anchor {
	var anchors []Anchor
	for i, line := range lines {
		m := anchorPattern.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		anchors = append(anchors, Anchor{
			Number:    number,
			Y:         line.Y,
			LineIndex: i,
		})
	}
	return anchors
}
