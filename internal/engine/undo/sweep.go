package undo

import (
	"sort"

	"github.com/quillkit/quill/internal/engine/document"
)

// sweep captures every span active anywhere in [start, end) as minimal
// sub-ranges clipped to the window, each tagged Applied. The result
// covers each span identity with no gaps and no overlaps, so replay
// can restore the styling of the range exactly. The scan walks span
// boundaries, not characters, so cost is proportional to the number of
// toggle points inside the window.
func sweep(doc *document.Document, start, end document.Offset) []SpanSnapshot {
	if start >= end {
		return nil
	}

	// Run starts for spans currently open, scoped to this call.
	open := make(map[document.Ref]document.Offset)
	for _, ref := range doc.SpansAt(start) {
		open[ref] = start
	}

	var out []SpanSnapshot
	pos := start
	for {
		next, ok := doc.NextSpanBoundary(pos)
		if !ok || next >= end {
			break
		}
		active := make(map[document.Ref]bool)
		for _, ref := range doc.SpansAt(next) {
			active[ref] = true
			if _, isOpen := open[ref]; !isOpen {
				open[ref] = next
			}
		}
		for ref, runStart := range open {
			if !active[ref] {
				out = append(out, SpanSnapshot{Ref: ref, Start: runStart, End: next, Applied: true})
				delete(open, ref)
			}
		}
		pos = next
	}
	for ref, runStart := range open {
		out = append(out, SpanSnapshot{Ref: ref, Start: runStart, End: end, Applied: true})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}
