package document

import (
	"errors"

	"github.com/google/uuid"
)

// Offset is a character (rune) position in the document.
type Offset = int

// ObjectReplacementChar stands in for embedded objects such as images.
const ObjectReplacementChar = '￼'

// Errors returned by document operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// ChangeListener observes low-level document mutations. Each hook fires
// before the mutation is applied, so the listener can still read the
// pre-mutation text and span layout. The undo engine implements this
// interface; a nil listener disables all reporting.
type ChangeListener interface {
	// RecordInsert reports text about to be inserted at pos.
	RecordInsert(pos Offset, text string)

	// RecordDelete reports [start, end) about to be deleted. text is the
	// doomed text; backward is true when the deletion eats text before
	// the cursor (backspace direction).
	RecordDelete(start, end Offset, text string, backward bool)

	// RecordSpan reports a single span application (applied=true) or
	// removal (applied=false) over [start, end).
	RecordSpan(start, end Offset, ref Ref, applied bool)

	// RecordRestyle reports that [start, end) is about to be restyled
	// wholesale: every handle in remove uncovered, every handle in
	// apply covered. Fired while the old span layout is still intact.
	RecordRestyle(start, end Offset, remove, apply []Ref)

	// RecordModeChange reports a rich-text/plain-text mode switch. Fired
	// while the old span layout is still intact.
	RecordModeChange(toRichText bool)

	// RecordSelection reports the new selection bounds.
	RecordSelection(start, end Offset)

	// RecordJustifyFix reports a localized justification fix-up on
	// [start, end): orig is replaced by repl (repl may be RefNone).
	RecordJustifyFix(start, end Offset, orig, repl Ref)

	// RecordLastLineJustify reports a trailing-line justification change.
	RecordLastLineJustify(old, new Justification)
}

// Document is a tagged rich-text document: character-addressed text,
// an attribute-span layer, a selection, and a format mode.
//
// Document is not safe for concurrent use; the editing model is
// single-threaded and re-entrant (see the undo engine).
type Document struct {
	text     []rune
	spans    *spanLayer
	registry *Registry

	selAnchor Offset
	selHead   Offset

	richText bool
	lastLine Justification

	listener ChangeListener
}

// Option is a functional option for configuring a Document.
type Option func(*Document)

// WithRegistry shares an existing span registry.
func WithRegistry(r *Registry) Option {
	return func(d *Document) {
		if r != nil {
			d.registry = r
		}
	}
}

// WithPlainText starts the document in plain-text mode.
func WithPlainText() Option {
	return func(d *Document) {
		d.richText = false
	}
}

// New creates an empty rich-text document.
func New(opts ...Option) *Document {
	d := &Document{
		spans:    newSpanLayer(),
		registry: NewRegistry(),
		richText: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromString creates a document with initial content. The initial
// load is not reported to any listener.
func NewFromString(s string, opts ...Option) *Document {
	d := New(opts...)
	d.text = []rune(s)
	return d
}

// SetListener registers the change listener. Pass nil to detach.
func (d *Document) SetListener(l ChangeListener) {
	d.listener = l
}

// Registry returns the document's span registry.
func (d *Document) Registry() *Registry {
	return d.registry
}

// Intern is shorthand for Registry().Intern.
func (d *Document) Intern(span Span) Ref {
	return d.registry.Intern(span)
}

// Read operations

// Text returns the full document text.
func (d *Document) Text() string {
	return string(d.text)
}

// TextRange returns the text in [start, end).
func (d *Document) TextRange(start, end Offset) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.text) {
		end = len(d.text)
	}
	if start >= end {
		return ""
	}
	return string(d.text[start:end])
}

// Len returns the document length in characters.
func (d *Document) Len() Offset {
	return len(d.text)
}

// SpansAt returns the span handles active at pos, sorted.
func (d *Document) SpansAt(pos Offset) []Ref {
	return d.spans.refsAt(pos)
}

// NextSpanBoundary returns the nearest span toggle point strictly after
// pos, if any.
func (d *Document) NextSpanBoundary(pos Offset) (Offset, bool) {
	return d.spans.boundaryAfter(pos)
}

// TogglesSpanAt reports whether any span turns on or off exactly at pos.
func (d *Document) TogglesSpanAt(pos Offset) bool {
	return d.spans.togglesAt(pos)
}

// SpanExtent returns the contiguous run of ref containing pos.
func (d *Document) SpanExtent(ref Ref, pos Offset) (start, end Offset, ok bool) {
	return d.spans.extent(ref, pos)
}

// Selection returns the current selection bounds (start <= end).
func (d *Document) Selection() (start, end Offset) {
	if d.selAnchor <= d.selHead {
		return d.selAnchor, d.selHead
	}
	return d.selHead, d.selAnchor
}

// Cursor returns the cursor (selection head) position.
func (d *Document) Cursor() Offset {
	return d.selHead
}

// IsRichText reports whether the document is in rich-text mode.
func (d *Document) IsRichText() bool {
	return d.richText
}

// LastLineJustify returns the trailing-line justification.
func (d *Document) LastLineJustify() Justification {
	return d.lastLine
}

// Write operations

// Insert inserts text at pos and moves the cursor past it.
// Returns the end offset of the inserted text.
func (d *Document) Insert(pos Offset, text string) (Offset, error) {
	if pos < 0 || pos > len(d.text) {
		return 0, ErrOffsetOutOfRange
	}
	if text == "" {
		return pos, nil
	}
	if d.listener != nil {
		d.listener.RecordInsert(pos, text)
	}
	runes := []rune(text)
	d.text = append(d.text[:pos:pos], append(runes, d.text[pos:]...)...)
	d.spans.shiftForInsert(pos, len(runes))
	end := pos + len(runes)
	d.selAnchor, d.selHead = end, end
	return end, nil
}

// Delete removes [start, end) and collapses the cursor to start.
func (d *Document) Delete(start, end Offset) error {
	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	if start == end {
		return nil
	}
	if d.listener != nil {
		backward := d.selHead >= end
		d.listener.RecordDelete(start, end, string(d.text[start:end]), backward)
	}
	d.text = append(d.text[:start], d.text[end:]...)
	d.spans.shiftForDelete(start, end)
	d.selAnchor, d.selHead = start, start
	return nil
}

// ApplySpan covers [start, end) with the span behind ref.
func (d *Document) ApplySpan(ref Ref, start, end Offset) error {
	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	if !d.richText || start == end || ref == RefNone {
		return nil
	}
	if d.listener != nil {
		d.listener.RecordSpan(start, end, ref, true)
	}
	d.spans.apply(ref, start, end)
	return nil
}

// RemoveSpan uncovers [start, end) for the span behind ref.
func (d *Document) RemoveSpan(ref Ref, start, end Offset) error {
	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	if start == end || ref == RefNone {
		return nil
	}
	if d.listener != nil {
		d.listener.RecordSpan(start, end, ref, false)
	}
	d.spans.remove(ref, start, end)
	return nil
}

// RemoveAllSpans strips every span from [start, end). Used by replay
// and mode switching; individual removals are not reported.
func (d *Document) RemoveAllSpans(start, end Offset) {
	d.spans.removeAll(start, end)
}

// Restyle replaces the styling of [start, end) wholesale: every handle
// in remove is uncovered, then every handle in apply is covered. The
// prior layout is reported once via RecordRestyle so it can be
// snapshotted before the individual span changes land.
func (d *Document) Restyle(start, end Offset, remove, apply []Ref) error {
	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	if !d.richText || start == end {
		return nil
	}
	if d.listener != nil {
		d.listener.RecordRestyle(start, end, remove, apply)
	}
	for _, ref := range remove {
		d.spans.remove(ref, start, end)
	}
	for _, ref := range apply {
		if ref != RefNone {
			d.spans.apply(ref, start, end)
		}
	}
	return nil
}

// ReplaceJustification handles a localized justification fix-up, such
// as the one needed after two differently-aligned lines are joined:
// orig is removed from [start, end) and repl (if any) applied.
func (d *Document) ReplaceJustification(start, end Offset, orig, repl Ref) error {
	if start < 0 || start > end || end > len(d.text) {
		return ErrRangeInvalid
	}
	if d.listener != nil {
		d.listener.RecordJustifyFix(start, end, orig, repl)
	}
	d.spans.remove(orig, start, end)
	if repl != RefNone {
		d.spans.apply(repl, start, end)
	}
	return nil
}

// SetSelection selects [start, end).
func (d *Document) SetSelection(start, end Offset) {
	start = d.clamp(start)
	end = d.clamp(end)
	if d.listener != nil {
		d.listener.RecordSelection(start, end)
	}
	d.selAnchor, d.selHead = start, end
}

// PlaceCursor collapses the selection to a cursor at pos.
func (d *Document) PlaceCursor(pos Offset) {
	d.SetSelection(pos, pos)
}

// SetRichText switches between rich-text and plain-text mode.
// Switching to plain text destroys every span; the listener is
// notified first so the layout can be captured.
func (d *Document) SetRichText(rich bool) {
	if rich == d.richText {
		return
	}
	if d.listener != nil {
		d.listener.RecordModeChange(rich)
	}
	d.richText = rich
	if !rich {
		d.spans.clear()
	}
}

// SetLastLineJustify updates the trailing-line justification.
func (d *Document) SetLastLineJustify(j Justification) {
	if j == d.lastLine {
		return
	}
	if d.listener != nil {
		d.listener.RecordLastLineJustify(d.lastLine, j)
	}
	d.lastLine = j
}

// InsertImage inserts an object-replacement character at pos tagged
// with an image span. An empty id is replaced with a fresh uuid.
// Returns the id used.
func (d *Document) InsertImage(pos Offset, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	end, err := d.Insert(pos, string(ObjectReplacementChar))
	if err != nil {
		return "", err
	}
	ref := d.registry.Intern(Span{Kind: SpanImage, Value: id})
	if err := d.ApplySpan(ref, pos, end); err != nil {
		return "", err
	}
	return id, nil
}

func (d *Document) clamp(pos Offset) Offset {
	if pos < 0 {
		return 0
	}
	if pos > len(d.text) {
		return len(d.text)
	}
	return pos
}
