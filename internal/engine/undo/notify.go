package undo

import "github.com/quillkit/quill/internal/engine/document"

// Callbacks carries the observer hooks an editor wires to its UI.
// Every field is optional. CanUndoChanged and CanRedoChanged fire only
// on actual transitions, never redundantly.
type Callbacks struct {
	CanUndoChanged func(can bool)
	CanRedoChanged func(can bool)

	// OutOfMemory fires when the memory budget rejects a recording.
	OutOfMemory func()

	// FormatModeChanged fires when replay switches the document between
	// rich-text and plain-text mode.
	FormatModeChanged func(richText bool)

	// LastLineJustifyChanged fires when replay restores a trailing-line
	// justification.
	LastLineJustifyChanged func(j document.Justification)
}

// signalChanges emits CanUndoChanged/CanRedoChanged for any transition
// since the last emission.
func (e *Engine) signalChanges() {
	if can := e.CanUndo(); can != e.undoSent {
		e.undoSent = can
		if e.cb.CanUndoChanged != nil {
			e.cb.CanUndoChanged(can)
		}
	}
	if can := e.CanRedo(); can != e.redoSent {
		e.redoSent = can
		if e.cb.CanRedoChanged != nil {
			e.cb.CanRedoChanged(can)
		}
	}
}
