package document

import "sort"

// spanRun is one contiguous application of a span: [start, end).
type spanRun struct {
	start Offset
	end   Offset
}

// spanLayer tracks, per span handle, the sorted, non-overlapping,
// coalesced list of runs the span covers. Adjacent runs of the same
// handle are merged, so run edges are exactly the span's toggle points.
type spanLayer struct {
	runs map[Ref][]spanRun
}

func newSpanLayer() *spanLayer {
	return &spanLayer{runs: make(map[Ref][]spanRun)}
}

// apply covers [start, end) with ref, merging into existing runs.
func (l *spanLayer) apply(ref Ref, start, end Offset) {
	if start >= end || ref == RefNone {
		return
	}
	runs := l.runs[ref]
	out := runs[:0:0]
	placed := false
	for _, r := range runs {
		if r.end < start || r.start > end {
			if !placed && r.start > end {
				out = append(out, spanRun{start, end})
				placed = true
			}
			out = append(out, r)
			continue
		}
		// Overlapping or touching: fold into the new run.
		if r.start < start {
			start = r.start
		}
		if r.end > end {
			end = r.end
		}
	}
	if !placed {
		out = append(out, spanRun{start, end})
		sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	}
	l.runs[ref] = out
}

// remove uncovers [start, end) for ref, splitting runs as needed.
func (l *spanLayer) remove(ref Ref, start, end Offset) {
	if start >= end {
		return
	}
	runs, ok := l.runs[ref]
	if !ok {
		return
	}
	out := runs[:0:0]
	for _, r := range runs {
		if r.end <= start || r.start >= end {
			out = append(out, r)
			continue
		}
		if r.start < start {
			out = append(out, spanRun{r.start, start})
		}
		if r.end > end {
			out = append(out, spanRun{end, r.end})
		}
	}
	if len(out) == 0 {
		delete(l.runs, ref)
	} else {
		l.runs[ref] = out
	}
}

// removeAll uncovers [start, end) for every span.
func (l *spanLayer) removeAll(start, end Offset) {
	for ref := range l.runs {
		l.remove(ref, start, end)
	}
}

// clear drops every run.
func (l *spanLayer) clear() {
	l.runs = make(map[Ref][]spanRun)
}

// refsAt returns the handles active at pos, sorted for determinism.
func (l *spanLayer) refsAt(pos Offset) []Ref {
	var refs []Ref
	for ref, runs := range l.runs {
		for _, r := range runs {
			if pos >= r.start && pos < r.end {
				refs = append(refs, ref)
				break
			}
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}

// boundaryAfter returns the nearest run edge strictly after pos.
func (l *spanLayer) boundaryAfter(pos Offset) (Offset, bool) {
	best := Offset(-1)
	for _, runs := range l.runs {
		for _, r := range runs {
			for _, edge := range [2]Offset{r.start, r.end} {
				if edge > pos && (best < 0 || edge < best) {
					best = edge
				}
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// togglesAt reports whether any span turns on or off exactly at pos.
func (l *spanLayer) togglesAt(pos Offset) bool {
	for _, runs := range l.runs {
		for _, r := range runs {
			if r.start == pos || r.end == pos {
				return true
			}
		}
	}
	return false
}

// extent returns the run of ref containing pos.
func (l *spanLayer) extent(ref Ref, pos Offset) (Offset, Offset, bool) {
	for _, r := range l.runs[ref] {
		if pos >= r.start && pos < r.end {
			return r.start, r.end, true
		}
	}
	return 0, 0, false
}

// shiftForInsert adjusts runs for n characters inserted at pos.
// A run strictly containing pos stretches; a run whose edge touches pos
// does not absorb the new text.
func (l *spanLayer) shiftForInsert(pos Offset, n Offset) {
	for ref, runs := range l.runs {
		for i, r := range runs {
			switch {
			case r.start >= pos:
				runs[i] = spanRun{r.start + n, r.end + n}
			case r.end > pos:
				runs[i] = spanRun{r.start, r.end + n}
			}
		}
		l.runs[ref] = runs
	}
}

// shiftForDelete adjusts runs for the removal of [start, end).
func (l *spanLayer) shiftForDelete(start, end Offset) {
	n := end - start
	clip := func(x Offset) Offset {
		switch {
		case x <= start:
			return x
		case x >= end:
			return x - n
		default:
			return start
		}
	}
	for ref, runs := range l.runs {
		out := runs[:0]
		for _, r := range runs {
			nr := spanRun{clip(r.start), clip(r.end)}
			if nr.start < nr.end {
				out = append(out, nr)
			}
		}
		if len(out) == 0 {
			delete(l.runs, ref)
		} else {
			l.runs[ref] = coalesce(out)
		}
	}
}

// coalesce merges touching runs of an already-sorted list.
func coalesce(runs []spanRun) []spanRun {
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
		} else {
			out = append(out, r)
		}
	}
	return out
}
