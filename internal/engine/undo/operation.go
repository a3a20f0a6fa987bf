package undo

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/quillkit/quill/internal/engine/document"
)

// Kind identifies what a recorded operation changed.
type Kind int

const (
	// KindInsert is a text insertion.
	KindInsert Kind = iota
	// KindDelete is a text removal.
	KindDelete
	// KindSpanToggle is a single span applied or removed over a range.
	KindSpanToggle
	// KindRestyle is a wholesale restyling of a range.
	KindRestyle
	// KindJustifyFix is a localized justification fix-up.
	KindJustifyFix
	// KindSelection is a selection change.
	KindSelection
	// KindFormatMode is a rich-text/plain-text mode switch.
	KindFormatMode
	// KindLastLine is a trailing-line justification change.
	KindLastLine
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindSpanToggle:
		return "span-toggle"
	case KindRestyle:
		return "restyle"
	case KindJustifyFix:
		return "justify-fix"
	case KindSelection:
		return "selection"
	case KindFormatMode:
		return "format-mode"
	case KindLastLine:
		return "last-line"
	}
	return "unknown"
}

// SpanSnapshot is a reconstructable styling instruction: apply
// (or remove) one span over one sub-range.
type SpanSnapshot struct {
	Ref     document.Ref
	Start   document.Offset
	End     document.Offset
	Applied bool
}

// operation is one reversible document mutation. Fields are used per
// kind; see the Record methods for which.
type operation struct {
	kind Kind

	start document.Offset
	end   document.Offset
	text  string

	backward bool // delete direction

	ref     document.Ref // toggled span
	applied bool

	remove []document.Ref // restyle handle lists
	apply  []document.Ref

	// before is the swept styling of [start, end) prior to the change.
	// For KindFormatMode it covers the whole document.
	before []SpanSnapshot

	// spans holds styling to reapply to an insertion on redo. Captured
	// lazily the first time the insertion is undone.
	spans []SpanSnapshot

	origJust document.Ref
	replJust document.Ref

	selStart document.Offset
	selEnd   document.Offset

	toRich bool

	oldJustify document.Justification
	newJustify document.Justification

	mergeable bool
}

// group is one atomic unit of undo/redo, ops in chronological order.
type group struct {
	ops []*operation
}

// Accounting weights for the optional memory budget.
const (
	opBaseCost   = 64
	snapshotCost = 24
)

func (op *operation) cost() int {
	return opBaseCost + len(op.text) + (len(op.before)+len(op.spans))*snapshotCost
}

func (g *group) cost() int {
	total := 0
	for _, op := range g.ops {
		total += op.cost()
	}
	return total
}

func (g *group) selectionOnly() bool {
	for _, op := range g.ops {
		if op.kind != KindSelection {
			return false
		}
	}
	return len(g.ops) > 0
}

// isMergeableText reports whether text is a single grapheme cluster
// other than a newline.
func isMergeableText(text string) bool {
	if text == "" || strings.ContainsRune(text, '\n') {
		return false
	}
	return uniseg.GraphemeClusterCount(text) == 1
}

// breaksWordMerge reports whether joining next after prev (in reading
// order) crosses a space-to-non-space boundary. Words and runs of
// spaces stay separate undo units; a space folds into the word before
// it.
func breaksWordMerge(prev, next string) bool {
	if prev == "" || next == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsSpace(last) && !unicode.IsSpace(first)
}

// mergeInsert folds a single-character insertion into op when it lands
// exactly at op's end and does not cross a word boundary.
func (op *operation) mergeInsert(pos document.Offset, text string) bool {
	if op.kind != KindInsert || !op.mergeable {
		return false
	}
	if pos != op.end || breaksWordMerge(op.text, text) {
		return false
	}
	op.text += text
	op.end += document.Offset(utf8.RuneCountInString(text))
	return true
}

// mergeDelete folds a single-character deletion into op when it is
// contiguous in the same direction. Offsets arrive post-shift, so a
// run of forward deletions repeats op's start while a run of backward
// deletions walks its start down.
func (op *operation) mergeDelete(start, end document.Offset, text string, backward bool) bool {
	if op.kind != KindDelete || !op.mergeable || backward != op.backward {
		return false
	}
	if backward {
		if end != op.start || breaksWordMerge(text, op.text) {
			return false
		}
		op.text = text + op.text
		op.start = start
		return true
	}
	if start != op.start || breaksWordMerge(op.text, text) {
		return false
	}
	op.text += text
	op.end += end - start
	return true
}
