// Package graphicsstate tracks the PDF graphics state needed to position
// painted content: the current transformation matrix and the save/restore
// stack driven by the q and Q operators.
package graphicsstate

import (
	"github.com/newbdez33/examtopics-tools/model"
)

// GraphicsState represents the graphics state of a content stream as it is
// interpreted. Only the current transformation matrix is tracked; text and
// color state are not needed for image positioning.
type GraphicsState struct {
	// CTM is the current transformation matrix.
	CTM model.Matrix

	stack []model.Matrix
}

// NewGraphicsState creates a graphics state with an identity CTM, the
// initial state at the start of every page.
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: model.Identity(),
	}
}

// Save pushes the current CTM onto the stack (q operator).
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, gs.CTM)
}

// Restore pops the most recently saved CTM from the stack (Q operator).
// A restore with an empty stack resets the CTM to identity; well-formed
// content streams never do this, but malformed ones must not corrupt state.
func (gs *GraphicsState) Restore() {
	if len(gs.stack) == 0 {
		gs.CTM = model.Identity()
		return
	}
	gs.CTM = gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]
}

// Concat composes an incoming matrix into the CTM (cm operator).
func (gs *GraphicsState) Concat(m model.Matrix) {
	gs.CTM = gs.CTM.Multiply(m)
}

// Depth returns the current save stack depth.
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Origin returns the translation components of the CTM, the page-space
// origin of content painted under the current transform.
func (gs *GraphicsState) Origin() model.Point {
	return model.Point{X: gs.CTM.TranslationX(), Y: gs.CTM.TranslationY()}
}
