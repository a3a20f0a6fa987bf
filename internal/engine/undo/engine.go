package undo

import (
	"strings"
	"unicode/utf8"

	"github.com/quillkit/quill/internal/engine/document"
)

// Depth bounds for the undo and redo queues.
const (
	MinDepth      = 1
	DefaultDepth  = 5
	MaxDepthLimit = 200
)

// Engine records document mutations into a bounded undo queue and
// replays them. It implements document.ChangeListener; wire it with
// doc.SetListener(engine).
type Engine struct {
	doc *document.Document

	undoQ []*group // oldest first, newest at the tail
	redoQ []*group

	pending   *group // open transaction group, not yet queued
	txDepth   int
	frozen    int
	lowMem    bool
	groupDead bool // rest of the current transaction is dropped after a reject

	// lastOp is the merge target for single-character edits; nil when
	// merging has been severed.
	lastOp *operation

	maxDepth int
	memUsed  int
	memLimit int // bytes, 0 means unlimited

	undoSent bool
	redoSent bool

	cb Callbacks
}

var _ document.ChangeListener = (*Engine)(nil)

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithMaxDepth sets the queue depth, clamped to [MinDepth, MaxDepthLimit].
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = clampDepth(n)
	}
}

// WithMemoryLimit sets the recording byte budget. Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(e *Engine) {
		e.memLimit = bytes
	}
}

// WithCallbacks registers observer hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(e *Engine) {
		e.cb = cb
	}
}

// New creates an engine recording changes to doc.
func New(doc *document.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:      doc,
		maxDepth: DefaultDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CanUndo reports whether at least one group can be undone.
func (e *Engine) CanUndo() bool {
	return len(e.undoQ) > 0
}

// CanRedo reports whether at least one group can be redone.
func (e *Engine) CanRedo() bool {
	return len(e.redoQ) > 0
}

// AtCapacity reports whether the next pushed group will evict the
// oldest one.
func (e *Engine) AtCapacity() bool {
	return len(e.undoQ) >= e.maxDepth
}

// MaxDepth returns the configured queue depth.
func (e *Engine) MaxDepth() int {
	return e.maxDepth
}

// MemoryUsed returns the bytes currently charged against the budget.
func (e *Engine) MemoryUsed() int {
	return e.memUsed
}

// Freeze disables recording until a matching Thaw. Calls nest.
func (e *Engine) Freeze() {
	e.frozen++
}

// Thaw re-enables recording disabled by Freeze.
func (e *Engine) Thaw() {
	if e.frozen > 0 {
		e.frozen--
	}
}

// BeginTransaction opens a group. Calls nest by reference count; only
// the outermost pair delimits the group. Opening an outermost
// transaction severs merging into earlier operations.
func (e *Engine) BeginTransaction() {
	if e.txDepth == 0 {
		e.lastOp = nil
		e.groupDead = false
	}
	e.txDepth++
}

// EndTransaction closes a group. When the outermost transaction ends
// the accumulated group, if non-empty, is sealed and pushed.
func (e *Engine) EndTransaction() {
	if e.txDepth == 0 {
		return
	}
	e.txDepth--
	if e.txDepth > 0 {
		return
	}
	if e.pending != nil && len(e.pending.ops) > 0 {
		e.push(e.pending)
	}
	e.pending = nil
	e.groupDead = false
	e.signalChanges()
}

// SetMaxDepth reconfigures the queue depth, clamped to
// [MinDepth, MaxDepthLimit], evicting oldest groups as needed.
// Redo entries are trimmed before undo entries.
func (e *Engine) SetMaxDepth(n int) {
	e.maxDepth = clampDepth(n)
	if excess := len(e.redoQ) - e.maxDepth; excess > 0 {
		for _, g := range e.redoQ[:excess] {
			e.memUsed -= g.cost()
		}
		e.redoQ = e.redoQ[excess:]
	}
	if excess := len(e.undoQ) - e.maxDepth; excess > 0 {
		for _, g := range e.undoQ[:excess] {
			e.memUsed -= g.cost()
		}
		e.undoQ = e.undoQ[excess:]
	}
	e.signalChanges()
}

// SetMemoryLimit reconfigures the recording byte budget. Zero means
// unlimited. Existing history is kept.
func (e *Engine) SetMemoryLimit(bytes int) {
	e.memLimit = bytes
}

// SetLowMemory toggles low-memory mode. Entering it discards all
// history and disables recording until the mode is cleared.
func (e *Engine) SetLowMemory(low bool) {
	if low == e.lowMem {
		return
	}
	e.lowMem = low
	if low {
		e.discardAll()
	}
}

// Reset discards all history.
func (e *Engine) Reset() {
	e.discardAll()
}

func (e *Engine) discardAll() {
	e.undoQ = nil
	e.redoQ = nil
	if e.pending != nil {
		e.pending.ops = nil
	}
	e.lastOp = nil
	e.memUsed = 0
	e.signalChanges()
}

// Recording

// RecordInsert records a text insertion at pos.
func (e *Engine) RecordInsert(pos document.Offset, text string) {
	if e.skipRecording() || text == "" {
		return
	}
	text = sanitizeText(text)
	mergeable := isMergeableText(text)
	if mergeable && e.lastOp != nil && e.canGrow(text) && e.lastOp.mergeInsert(pos, text) {
		e.memUsed += len(text)
		return
	}
	e.append(&operation{
		kind:      KindInsert,
		start:     pos,
		end:       pos + document.Offset(utf8.RuneCountInString(text)),
		text:      text,
		mergeable: mergeable,
	})
}

// RecordDelete records the removal of [start, end). The styling of the
// doomed range is swept so undo can restore it exactly; a deletion
// touching any styled text never merges.
func (e *Engine) RecordDelete(start, end document.Offset, text string, backward bool) {
	if e.skipRecording() || start >= end {
		return
	}
	text = sanitizeText(text)
	before := e.sweepPlain(start, end)
	mergeable := isMergeableText(text) && len(before) == 0
	if mergeable && e.lastOp != nil && e.canGrow(text) && e.lastOp.mergeDelete(start, end, text, backward) {
		e.memUsed += len(text)
		return
	}
	e.append(&operation{
		kind:      KindDelete,
		start:     start,
		end:       end,
		text:      text,
		before:    before,
		backward:  backward,
		mergeable: mergeable,
	})
}

// RecordSpan records a single span applied or removed over [start, end).
func (e *Engine) RecordSpan(start, end document.Offset, ref document.Ref, applied bool) {
	if e.skipRecording() || start >= end {
		return
	}
	e.append(&operation{
		kind:    KindSpanToggle,
		start:   start,
		end:     end,
		ref:     ref,
		applied: applied,
		before:  sweep(e.doc, start, end),
	})
}

// RecordRestyle records a wholesale restyling of [start, end).
func (e *Engine) RecordRestyle(start, end document.Offset, remove, apply []document.Ref) {
	if e.skipRecording() || start >= end {
		return
	}
	e.append(&operation{
		kind:   KindRestyle,
		start:  start,
		end:    end,
		remove: append([]document.Ref(nil), remove...),
		apply:  append([]document.Ref(nil), apply...),
		before: sweep(e.doc, start, end),
	})
}

// RecordModeChange records a rich-text/plain-text mode switch.
// Leaving rich text destroys every span, so the whole document's
// layout is swept first.
func (e *Engine) RecordModeChange(toRichText bool) {
	if e.skipRecording() {
		return
	}
	op := &operation{
		kind:     KindFormatMode,
		toRich:   toRichText,
		selStart: e.doc.Cursor(),
	}
	if !toRichText {
		op.before = sweep(e.doc, 0, e.doc.Len())
	}
	e.append(op)
}

// RecordSelection records a selection change. Only non-empty selections
// inside a transaction are recorded; bare cursor motion is not an
// undoable action, though it may collapse a selection change already
// sitting at the group's tail. Consecutive selection changes in one
// transaction collapse into a single operation.
func (e *Engine) RecordSelection(start, end document.Offset) {
	if e.skipRecording() || e.txDepth == 0 {
		return
	}
	if e.pending != nil && len(e.pending.ops) > 0 {
		if tail := e.pending.ops[len(e.pending.ops)-1]; tail.kind == KindSelection {
			tail.selStart, tail.selEnd = start, end
			return
		}
	}
	if start == end {
		return
	}
	e.append(&operation{kind: KindSelection, selStart: start, selEnd: end})
}

// RecordJustifyFix records a localized justification fix-up where orig
// was replaced by repl over [start, end).
func (e *Engine) RecordJustifyFix(start, end document.Offset, orig, repl document.Ref) {
	if e.skipRecording() {
		return
	}
	e.append(&operation{
		kind:     KindJustifyFix,
		start:    start,
		end:      end,
		origJust: orig,
		replJust: repl,
	})
}

// RecordLastLineJustify records a trailing-line justification change.
func (e *Engine) RecordLastLineJustify(old, new document.Justification) {
	if e.skipRecording() {
		return
	}
	e.append(&operation{kind: KindLastLine, oldJustify: old, newJustify: new})
}

// Internals

// canGrow reports whether merging text into the current operation
// stays inside the memory budget.
func (e *Engine) canGrow(text string) bool {
	return e.memLimit == 0 || e.memUsed+len(text) <= e.memLimit
}

func (e *Engine) skipRecording() bool {
	return e.frozen > 0 || e.lowMem || (e.txDepth > 0 && e.groupDead)
}

// append either queues op directly (outside a transaction, as its own
// group) or accumulates it into the open group. Recording a new
// operation always invalidates the redo queue.
func (e *Engine) append(op *operation) {
	cost := op.cost()
	if e.memLimit > 0 && e.memUsed+cost > e.memLimit {
		e.reject()
		return
	}
	e.memUsed += cost
	e.clearRedo()
	if e.txDepth > 0 {
		if e.pending == nil {
			e.pending = &group{}
		}
		e.pending.ops = append(e.pending.ops, op)
	} else {
		e.push(&group{ops: []*operation{op}})
	}
	if op.mergeable {
		e.lastOp = op
	} else {
		e.lastOp = nil
	}
	e.signalChanges()
}

// push queues a sealed group, evicting the oldest when over depth.
func (e *Engine) push(g *group) {
	e.undoQ = append(e.undoQ, g)
	if excess := len(e.undoQ) - e.maxDepth; excess > 0 {
		for _, old := range e.undoQ[:excess] {
			e.memUsed -= old.cost()
		}
		e.undoQ = e.undoQ[excess:]
	}
}

func (e *Engine) clearRedo() {
	if len(e.redoQ) == 0 {
		return
	}
	for _, g := range e.redoQ {
		e.memUsed -= g.cost()
	}
	e.redoQ = nil
}

// reject handles a recording that busts the memory budget: the
// half-built group is dropped and the rest of the transaction is
// disabled, leaving the queues in a consistent state.
func (e *Engine) reject() {
	if e.cb.OutOfMemory != nil {
		e.cb.OutOfMemory()
	}
	if e.pending != nil && len(e.pending.ops) > 0 {
		for _, op := range e.pending.ops {
			e.memUsed -= op.cost()
		}
		e.pending.ops = nil
	}
	if e.txDepth > 0 {
		e.groupDead = true
	}
	e.lastOp = nil
}

// sweepPlain sweeps [start, end) minus image-marker spans. Embedded
// objects are not recreated by undo; their placeholder characters come
// back as plain spaces.
func (e *Engine) sweepPlain(start, end document.Offset) []SpanSnapshot {
	snaps := sweep(e.doc, start, end)
	out := snaps[:0]
	reg := e.doc.Registry()
	for _, s := range snaps {
		if kind, ok := reg.Kind(s.Ref); ok && kind == document.SpanImage {
			continue
		}
		out = append(out, s)
	}
	return out
}

func sanitizeText(text string) string {
	return strings.ReplaceAll(text, string(document.ObjectReplacementChar), " ")
}

func clampDepth(n int) int {
	if n < MinDepth {
		return MinDepth
	}
	if n > MaxDepthLimit {
		return MaxDepthLimit
	}
	return n
}
