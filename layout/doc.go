// Package layout reconstructs the reading order of exam question pages:
// locating "Question #N" anchors, grouping band lines into paragraphs,
// assigning extracted images to the question band whose vertical range
// contains them, and interleaving text and image blocks into ordered HTML.
package layout
