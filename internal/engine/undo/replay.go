package undo

import "github.com/quillkit/quill/internal/engine/document"

// cursorHint accumulates the cursor position replay proposes. Plain
// proposals overwrite each other, so the last op processed wins. A
// lock (mode switches, selection restores) freezes the hint against
// later proposals.
type cursorHint struct {
	pos    document.Offset
	valid  bool
	locked bool
}

func (c *cursorHint) propose(pos document.Offset) {
	if c.locked {
		return
	}
	c.pos, c.valid = pos, true
}

func (c *cursorHint) lock(pos document.Offset) {
	if c.locked {
		return
	}
	c.pos, c.valid, c.locked = pos, true, true
}

// suppress marks the cursor as already placed (a selection was
// restored directly) so no collapsing placement happens at the end.
func (c *cursorHint) suppress() {
	if c.locked {
		return
	}
	c.valid, c.locked = false, true
}

// Undo reverses the most recent group and moves it to the redo queue.
// It returns the resulting cursor position and whether anything was
// undone. Recording is frozen for the duration, so replay's own
// document mutations leave no trace.
func (e *Engine) Undo() (document.Offset, bool) {
	if e.lowMem || len(e.undoQ) == 0 {
		return 0, false
	}
	e.Freeze()
	defer e.Thaw()

	var hint cursorHint

	// A selection change whose range is already selected is satisfied:
	// chain past it into the next group when that is also selection-only,
	// so cursor motions do not each consume an undo step.
	g := e.popUndo()
	for g.selectionOnly() && e.selectionSatisfied(g) &&
		len(e.undoQ) > 0 && e.undoQ[len(e.undoQ)-1].selectionOnly() {
		e.redoQ = append(e.redoQ, g)
		g = e.popUndo()
	}
	e.undoGroup(g, &hint)
	e.redoQ = append(e.redoQ, g)

	e.finishReplay(&hint)
	return e.doc.Cursor(), true
}

// Redo reapplies the most recently undone group and moves it back to
// the undo queue.
func (e *Engine) Redo() (document.Offset, bool) {
	if e.lowMem || len(e.redoQ) == 0 {
		return 0, false
	}
	e.Freeze()
	defer e.Thaw()

	var hint cursorHint
	g := e.popRedo()
	for g.selectionOnly() && e.selectionSatisfied(g) &&
		len(e.redoQ) > 0 && e.redoQ[len(e.redoQ)-1].selectionOnly() {
		e.undoQ = append(e.undoQ, g)
		g = e.popRedo()
	}
	e.redoGroup(g, &hint)
	e.undoQ = append(e.undoQ, g)

	e.finishReplay(&hint)
	return e.doc.Cursor(), true
}

func (e *Engine) popUndo() *group {
	g := e.undoQ[len(e.undoQ)-1]
	e.undoQ = e.undoQ[:len(e.undoQ)-1]
	return g
}

func (e *Engine) popRedo() *group {
	g := e.redoQ[len(e.redoQ)-1]
	e.redoQ = e.redoQ[:len(e.redoQ)-1]
	return g
}

func (e *Engine) finishReplay(hint *cursorHint) {
	if hint.valid {
		e.doc.PlaceCursor(hint.pos)
	}
	e.lastOp = nil
	e.signalChanges()
}

// undoGroup reverses a group's operations newest first.
func (e *Engine) undoGroup(g *group, hint *cursorHint) {
	for i := len(g.ops) - 1; i >= 0; i-- {
		e.undoOp(g.ops[i], hint)
	}
}

// redoGroup reapplies a group's operations in recorded order.
func (e *Engine) redoGroup(g *group, hint *cursorHint) {
	for _, op := range g.ops {
		e.redoOp(op, hint)
	}
}

func (e *Engine) undoOp(op *operation, hint *cursorHint) {
	switch op.kind {
	case KindInsert:
		// Capture the run's styling so redo can bring it back. The
		// snapshots change the operation's cost, so the budget is
		// recharged to keep eviction accounting exact.
		e.memUsed -= len(op.spans) * snapshotCost
		op.spans = e.sweepPlain(op.start, op.end)
		e.memUsed += len(op.spans) * snapshotCost
		e.doc.Delete(op.start, op.end)
		hint.propose(e.skipBullet(op.start))

	case KindDelete:
		e.doc.Insert(op.start, op.text)
		e.doc.RemoveAllSpans(op.start, op.end)
		e.applySnapshots(op.before)
		if op.backward {
			hint.propose(op.end)
		} else {
			hint.propose(op.start)
		}

	case KindSpanToggle, KindRestyle:
		e.doc.RemoveAllSpans(op.start, op.end)
		e.applySnapshots(op.before)
		e.doc.SetSelection(op.start, op.end)
		hint.suppress()

	case KindJustifyFix:
		e.doc.ReplaceJustification(op.start, op.end, op.replJust, op.origJust)

	case KindSelection:
		e.replaySelection(op, hint)

	case KindFormatMode:
		if op.toRich {
			e.doc.SetRichText(false)
		} else {
			e.doc.SetRichText(true)
			e.applySnapshots(op.before)
		}
		hint.lock(op.selStart)
		if e.cb.FormatModeChanged != nil {
			e.cb.FormatModeChanged(e.doc.IsRichText())
		}

	case KindLastLine:
		e.doc.SetLastLineJustify(op.oldJustify)
		if e.cb.LastLineJustifyChanged != nil {
			e.cb.LastLineJustifyChanged(op.oldJustify)
		}
	}
}

func (e *Engine) redoOp(op *operation, hint *cursorHint) {
	switch op.kind {
	case KindInsert:
		e.doc.Insert(op.start, op.text)
		e.applySnapshots(op.spans)
		hint.propose(e.skipBullet(op.end))

	case KindDelete:
		e.doc.Delete(op.start, op.end)
		hint.propose(op.start)

	case KindSpanToggle:
		if op.applied {
			e.doc.ApplySpan(op.ref, op.start, op.end)
		} else {
			e.doc.RemoveSpan(op.ref, op.start, op.end)
		}
		e.doc.SetSelection(op.start, op.end)
		hint.suppress()

	case KindRestyle:
		e.doc.Restyle(op.start, op.end, op.remove, op.apply)
		e.doc.SetSelection(op.start, op.end)
		hint.suppress()

	case KindJustifyFix:
		e.doc.ReplaceJustification(op.start, op.end, op.origJust, op.replJust)

	case KindSelection:
		e.replaySelection(op, hint)

	case KindFormatMode:
		e.doc.SetRichText(op.toRich)
		if op.toRich {
			e.applySnapshots(op.before)
		}
		hint.lock(e.skipBullet(op.selStart))
		if e.cb.FormatModeChanged != nil {
			e.cb.FormatModeChanged(e.doc.IsRichText())
		}

	case KindLastLine:
		e.doc.SetLastLineJustify(op.newJustify)
		if e.cb.LastLineJustifyChanged != nil {
			e.cb.LastLineJustifyChanged(op.newJustify)
		}
	}
}

// replaySelection restores a recorded selection. A range that is
// already selected collapses the cursor to its end instead; the
// chaining loops in Undo and Redo only reach here with such a range
// when the neighbouring group is not selection-only.
func (e *Engine) replaySelection(op *operation, hint *cursorHint) {
	if e.selectionIs(op.selStart, op.selEnd) {
		e.doc.PlaceCursor(op.selEnd)
	} else {
		e.doc.SetSelection(op.selStart, op.selEnd)
	}
	hint.suppress()
}

// selectionSatisfied reports whether the document's selection already
// equals the range a selection-only group records.
func (e *Engine) selectionSatisfied(g *group) bool {
	if len(g.ops) == 0 {
		return false
	}
	op := g.ops[len(g.ops)-1]
	return e.selectionIs(op.selStart, op.selEnd)
}

func (e *Engine) selectionIs(start, end document.Offset) bool {
	if start > end {
		start, end = end, start
	}
	s, en := e.doc.Selection()
	return s == start && en == end
}

// applySnapshots restores a swept styling list, removals first so a
// mixed list never re-removes what it just applied.
func (e *Engine) applySnapshots(snaps []SpanSnapshot) {
	for _, s := range snaps {
		if !s.Applied {
			e.doc.RemoveSpan(s.Ref, s.Start, s.End)
		}
	}
	for _, s := range snaps {
		if s.Applied {
			e.doc.ApplySpan(s.Ref, s.Start, s.End)
		}
	}
}

// skipBullet moves a cursor landing inside a bullet marker past it.
func (e *Engine) skipBullet(pos document.Offset) document.Offset {
	reg := e.doc.Registry()
	for _, ref := range e.doc.SpansAt(pos) {
		if kind, ok := reg.Kind(ref); !ok || kind != document.SpanBullet {
			continue
		}
		if _, end, ok := e.doc.SpanExtent(ref, pos); ok {
			return end
		}
	}
	return pos
}
