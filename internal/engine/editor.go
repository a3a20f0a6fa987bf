// Package engine assembles the document model and the undo engine
// into a single editing facade. It re-exports the types callers touch
// most, so most consumers only import this package.
package engine

import (
	"github.com/quillkit/quill/internal/engine/document"
	"github.com/quillkit/quill/internal/engine/undo"
)

// Re-export commonly used types for convenience.
type (
	// Offset is a character position in the document.
	Offset = document.Offset

	// Span is a style predicate plus its parameter.
	Span = document.Span

	// SpanKind identifies a style predicate.
	SpanKind = document.SpanKind

	// Ref is an interned span handle.
	Ref = document.Ref

	// Justification is a paragraph justification.
	Justification = document.Justification

	// Callbacks carries the undo engine's observer hooks.
	Callbacks = undo.Callbacks
)

// Editor couples a document with its undo history. Every mutation made
// through the editor (or directly on its document) is recorded.
type Editor struct {
	doc  *document.Document
	hist *undo.Engine
}

// Option configures an Editor.
type Option func(*settings)

type settings struct {
	docOpts  []document.Option
	undoOpts []undo.Option
}

// WithPlainText starts the document in plain-text mode.
func WithPlainText() Option {
	return func(s *settings) {
		s.docOpts = append(s.docOpts, document.WithPlainText())
	}
}

// WithUndoDepth sets the undo/redo queue depth.
func WithUndoDepth(n int) Option {
	return func(s *settings) {
		s.undoOpts = append(s.undoOpts, undo.WithMaxDepth(n))
	}
}

// WithUndoBudget sets the undo byte budget. Zero means unlimited.
func WithUndoBudget(bytes int) Option {
	return func(s *settings) {
		s.undoOpts = append(s.undoOpts, undo.WithMemoryLimit(bytes))
	}
}

// WithCallbacks registers undo observer hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(s *settings) {
		s.undoOpts = append(s.undoOpts, undo.WithCallbacks(cb))
	}
}

// New creates an empty editor with history recording wired up.
func New(opts ...Option) *Editor {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	doc := document.New(s.docOpts...)
	hist := undo.New(doc, s.undoOpts...)
	doc.SetListener(hist)
	return &Editor{doc: doc, hist: hist}
}

// Document returns the underlying document.
func (e *Editor) Document() *document.Document {
	return e.doc
}

// History returns the undo engine.
func (e *Editor) History() *undo.Engine {
	return e.hist
}

// Text returns the document text.
func (e *Editor) Text() string {
	return e.doc.Text()
}

// Insert inserts text at pos.
func (e *Editor) Insert(pos Offset, text string) (Offset, error) {
	return e.doc.Insert(pos, text)
}

// Delete removes [start, end).
func (e *Editor) Delete(start, end Offset) error {
	return e.doc.Delete(start, end)
}

// Style covers [start, end) with span.
func (e *Editor) Style(span Span, start, end Offset) error {
	return e.doc.ApplySpan(e.doc.Intern(span), start, end)
}

// Unstyle uncovers [start, end) for span.
func (e *Editor) Unstyle(span Span, start, end Offset) error {
	return e.doc.RemoveSpan(e.doc.Intern(span), start, end)
}

// Transaction runs fn as one atomic undo step.
func (e *Editor) Transaction(fn func() error) error {
	e.hist.BeginTransaction()
	defer e.hist.EndTransaction()
	return fn()
}

// Silent runs fn with history recording frozen. Used for bulk
// programmatic edits such as document loading.
func (e *Editor) Silent(fn func() error) error {
	e.hist.Freeze()
	defer e.hist.Thaw()
	return fn()
}

// Undo reverses the most recent undo step.
func (e *Editor) Undo() (Offset, bool) {
	return e.hist.Undo()
}

// Redo reapplies the most recently undone step.
func (e *Editor) Redo() (Offset, bool) {
	return e.hist.Redo()
}

// CanUndo reports whether an undo step is available.
func (e *Editor) CanUndo() bool {
	return e.hist.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool {
	return e.hist.CanRedo()
}
