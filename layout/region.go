package layout

import (
	"math"

	"github.com/newbdez33/examtopics-tools/contentstream"
)

// Assignment links an extracted image to the anchor of the band that
// contains it.
type Assignment struct {
	Image  contentstream.ExtractedImage
	Anchor Anchor
}

// AssignRegions maps each image to a question band. An image belongs to
// anchor i when its vertical origin lies in (anchor[i+1].Y, anchor[i].Y],
// the last band extending to the bottom of the page. The half-open
// convention puts an image sitting exactly on a band boundary into the
// band that starts at that boundary.
//
// When no band contains the image (malformed geometry), the nearest anchor
// is used, preferring anchors at or above the image over closer ones
// below. With zero anchors no assignment is made.
func AssignRegions(images []contentstream.ExtractedImage, anchors []Anchor) []Assignment {
	if len(anchors) == 0 {
		return nil
	}

	assignments := make([]Assignment, 0, len(images))
	for _, img := range images {
		anchor, ok := containingBand(img.Y, anchors)
		if !ok {
			anchor = nearestAnchor(img.Y, anchors)
		}
		assignments = append(assignments, Assignment{Image: img, Anchor: anchor})
	}
	return assignments
}

// containingBand returns the anchor whose band contains y. Anchors are
// ordered by descending Y.
func containingBand(y float64, anchors []Anchor) (Anchor, bool) {
	for i, anchor := range anchors {
		if y > anchor.Y {
			continue
		}
		if i+1 < len(anchors) && y <= anchors[i+1].Y {
			continue
		}
		return anchor, true
	}
	return Anchor{}, false
}

// nearestAnchor picks the fallback anchor for an image outside every band:
// the closest anchor at or above the image when one exists, otherwise the
// closest below. This attributes the image to the question whose text
// immediately precedes it.
func nearestAnchor(y float64, anchors []Anchor) Anchor {
	best := anchors[0]
	bestAbove := false
	bestDist := math.Inf(1)

	for _, anchor := range anchors {
		dist := anchor.Y - y
		above := dist >= 0
		abs := math.Abs(dist)

		switch {
		case above && !bestAbove:
			best, bestAbove, bestDist = anchor, true, abs
		case above == bestAbove && abs < bestDist:
			best, bestDist = anchor, abs
		}
	}
	return best
}
