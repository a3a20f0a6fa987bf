package undo

import (
	"testing"

	"github.com/quillkit/quill/internal/engine/document"
)

func newTestEditor(text string, opts ...Option) (*document.Document, *Engine) {
	doc := document.NewFromString(text)
	eng := New(doc, opts...)
	doc.SetListener(eng)
	return doc, eng
}

// typeText inserts text one character at a time, the way keystrokes
// arrive.
func typeText(doc *document.Document, pos document.Offset, text string) document.Offset {
	for _, r := range text {
		pos, _ = doc.Insert(pos, string(r))
	}
	return pos
}

// Merge Tests

func TestTypingMergesIntoOneOperation(t *testing.T) {
	doc, eng := newTestEditor("")
	eng.BeginTransaction()
	typeText(doc, 0, "hello")
	eng.EndTransaction()

	if len(eng.undoQ) != 1 {
		t.Fatalf("groups = %d, want 1", len(eng.undoQ))
	}
	g := eng.undoQ[0]
	if len(g.ops) != 1 {
		t.Fatalf("ops = %d, want 1", len(g.ops))
	}
	if g.ops[0].text != "hello" {
		t.Errorf("merged text = %q, want %q", g.ops[0].text, "hello")
	}
}

func TestTypingSplitsAtWordBoundary(t *testing.T) {
	doc, eng := newTestEditor("")
	eng.BeginTransaction()
	typeText(doc, 0, "hello world")
	eng.EndTransaction()

	if len(eng.undoQ) != 1 {
		t.Fatalf("groups = %d, want 1", len(eng.undoQ))
	}
	g := eng.undoQ[0]
	if len(g.ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(g.ops))
	}
	if g.ops[0].text != "hello " || g.ops[1].text != "world" {
		t.Errorf("split = %q + %q, want %q + %q",
			g.ops[0].text, g.ops[1].text, "hello ", "world")
	}
}

func TestNewlineNeverMerges(t *testing.T) {
	doc, eng := newTestEditor("")
	typeText(doc, 0, "ab")
	if _, err := doc.Insert(2, "\n"); err != nil {
		t.Fatal(err)
	}
	typeText(doc, 3, "cd")

	if len(eng.undoQ) != 3 {
		t.Errorf("groups = %d, want 3 (text, newline, text)", len(eng.undoQ))
	}
}

func TestBackspaceRunMerges(t *testing.T) {
	doc, eng := newTestEditor("hello")
	doc.PlaceCursor(5)
	if err := doc.Delete(4, 5); err != nil {
		t.Fatal(err)
	}
	if err := doc.Delete(3, 4); err != nil {
		t.Fatal(err)
	}

	if len(eng.undoQ) != 1 {
		t.Fatalf("groups = %d, want 1", len(eng.undoQ))
	}
	op := eng.undoQ[0].ops[0]
	if op.text != "lo" || op.start != 3 || op.end != 5 {
		t.Errorf("merged delete = %q [%d,%d), want %q [3,5)", op.text, op.start, op.end, "lo")
	}
	if !op.backward {
		t.Error("backspace run not marked backward")
	}
}

func TestForwardDeleteRunMerges(t *testing.T) {
	doc, eng := newTestEditor("hello")
	doc.PlaceCursor(1)
	if err := doc.Delete(1, 2); err != nil {
		t.Fatal(err)
	}
	if err := doc.Delete(1, 2); err != nil {
		t.Fatal(err)
	}

	if len(eng.undoQ) != 1 {
		t.Fatalf("groups = %d, want 1", len(eng.undoQ))
	}
	op := eng.undoQ[0].ops[0]
	if op.text != "el" || op.start != 1 || op.end != 3 {
		t.Errorf("merged delete = %q [%d,%d), want %q [1,3)", op.text, op.start, op.end, "el")
	}
	if op.backward {
		t.Error("delete-key run marked backward")
	}
}

func TestOppositeDeleteDirectionsDoNotMerge(t *testing.T) {
	doc, eng := newTestEditor("hello")
	doc.PlaceCursor(3)
	if err := doc.Delete(2, 3); err != nil { // backspace
		t.Fatal(err)
	}
	if err := doc.Delete(2, 3); err != nil { // delete key
		t.Fatal(err)
	}

	if len(eng.undoQ) != 2 {
		t.Errorf("groups = %d, want 2", len(eng.undoQ))
	}
}

func TestBackspacingSplitsAtWordBoundary(t *testing.T) {
	doc, eng := newTestEditor("hi there")
	doc.PlaceCursor(8)
	for pos := document.Offset(8); pos > 0; pos-- {
		if err := doc.Delete(pos-1, pos); err != nil {
			t.Fatal(err)
		}
	}

	if len(eng.undoQ) != 2 {
		t.Fatalf("groups = %d, want 2", len(eng.undoQ))
	}
	if got := eng.undoQ[0].ops[0].text; got != "there" {
		t.Errorf("first unit = %q, want %q", got, "there")
	}
	if got := eng.undoQ[1].ops[0].text; got != "hi " {
		t.Errorf("second unit = %q, want %q", got, "hi ")
	}
}

func TestStyledDeleteNeverMerges(t *testing.T) {
	doc, eng := newTestEditor("hello")
	bold := doc.Intern(document.Span{Kind: document.SpanBold})
	doc.SetListener(nil)
	if err := doc.ApplySpan(bold, 0, 5); err != nil {
		t.Fatal(err)
	}
	doc.SetListener(eng)

	doc.PlaceCursor(5)
	if err := doc.Delete(4, 5); err != nil {
		t.Fatal(err)
	}
	if err := doc.Delete(3, 4); err != nil {
		t.Fatal(err)
	}

	if len(eng.undoQ) != 2 {
		t.Errorf("groups = %d, want 2 (styled deletes stay separate)", len(eng.undoQ))
	}
}

func TestOutermostTransactionSeversMerging(t *testing.T) {
	doc, eng := newTestEditor("")
	eng.BeginTransaction()
	typeText(doc, 0, "a")
	eng.EndTransaction()
	eng.BeginTransaction()
	typeText(doc, 1, "b")
	eng.EndTransaction()

	if len(eng.undoQ) != 2 {
		t.Errorf("groups = %d, want 2 (no merge across transactions)", len(eng.undoQ))
	}
}

// Queue Tests

func TestNestedTransactionsFormOneGroup(t *testing.T) {
	doc, eng := newTestEditor("")
	eng.BeginTransaction()
	if _, err := doc.Insert(0, "ab"); err != nil {
		t.Fatal(err)
	}
	eng.BeginTransaction()
	if _, err := doc.Insert(2, "cd"); err != nil {
		t.Fatal(err)
	}
	eng.EndTransaction()
	if _, err := doc.Insert(4, "ef"); err != nil {
		t.Fatal(err)
	}
	eng.EndTransaction()

	if len(eng.undoQ) != 1 {
		t.Fatalf("groups = %d, want 1", len(eng.undoQ))
	}
	if len(eng.undoQ[0].ops) != 3 {
		t.Errorf("ops = %d, want 3", len(eng.undoQ[0].ops))
	}
}

func TestEmptyTransactionPushesNothing(t *testing.T) {
	_, eng := newTestEditor("x")
	eng.BeginTransaction()
	eng.EndTransaction()
	if eng.CanUndo() {
		t.Error("empty transaction became undoable")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	doc, eng := newTestEditor("")
	pos := document.Offset(0)
	for i := 0; i < DefaultDepth+5; i++ {
		var err error
		pos, err = doc.Insert(pos, "ab")
		if err != nil {
			t.Fatal(err)
		}
	}

	if !eng.CanUndo() {
		t.Fatal("CanUndo false after recording")
	}
	if !eng.AtCapacity() {
		t.Error("AtCapacity false at the bound")
	}

	undone := 0
	for eng.CanUndo() {
		if _, ok := eng.Undo(); !ok {
			t.Fatal("Undo failed with CanUndo true")
		}
		undone++
	}
	if undone != DefaultDepth {
		t.Errorf("undone %d groups, want %d", undone, DefaultDepth)
	}
	// The evicted prefix is unrecoverable.
	if doc.Text() != "ababababab" {
		t.Errorf("text after exhausting undo = %q", doc.Text())
	}
}

func TestSetMaxDepthTrims(t *testing.T) {
	doc, eng := newTestEditor("")
	pos := document.Offset(0)
	for i := 0; i < 5; i++ {
		pos, _ = doc.Insert(pos, "ab")
	}
	eng.SetMaxDepth(2)
	if len(eng.undoQ) != 2 {
		t.Errorf("groups after SetMaxDepth(2) = %d, want 2", len(eng.undoQ))
	}
	if eng.MaxDepth() != 2 {
		t.Errorf("MaxDepth = %d", eng.MaxDepth())
	}
}

func TestSetMaxDepthClamped(t *testing.T) {
	_, eng := newTestEditor("")
	eng.SetMaxDepth(0)
	if eng.MaxDepth() != MinDepth {
		t.Errorf("MaxDepth = %d, want %d", eng.MaxDepth(), MinDepth)
	}
	eng.SetMaxDepth(100000)
	if eng.MaxDepth() != MaxDepthLimit {
		t.Errorf("MaxDepth = %d, want %d", eng.MaxDepth(), MaxDepthLimit)
	}
}

func TestFreezeDisablesRecording(t *testing.T) {
	doc, eng := newTestEditor("")
	eng.Freeze()
	if _, err := doc.Insert(0, "ab"); err != nil {
		t.Fatal(err)
	}
	eng.Thaw()
	if eng.CanUndo() {
		t.Error("frozen mutation was recorded")
	}
	if _, err := doc.Insert(2, "cd"); err != nil {
		t.Fatal(err)
	}
	if !eng.CanUndo() {
		t.Error("recording did not resume after Thaw")
	}
}

// Failure Tests

func TestLowMemoryDiscardsHistory(t *testing.T) {
	doc, eng := newTestEditor("")
	if _, err := doc.Insert(0, "ab"); err != nil {
		t.Fatal(err)
	}
	eng.SetLowMemory(true)
	if eng.CanUndo() || eng.CanRedo() {
		t.Error("history survived low-memory mode")
	}
	if _, err := doc.Insert(2, "cd"); err != nil {
		t.Fatal(err)
	}
	if eng.CanUndo() {
		t.Error("recording not disabled in low-memory mode")
	}
	if _, ok := eng.Undo(); ok {
		t.Error("Undo succeeded in low-memory mode")
	}

	eng.SetLowMemory(false)
	if _, err := doc.Insert(4, "ef"); err != nil {
		t.Fatal(err)
	}
	if !eng.CanUndo() {
		t.Error("recording did not resume after low-memory mode")
	}
}

func TestMemoryBudgetRejectsAndDisablesGroup(t *testing.T) {
	oomCount := 0
	doc, eng := newTestEditor("",
		WithMemoryLimit(100),
		WithCallbacks(Callbacks{OutOfMemory: func() { oomCount++ }}))

	eng.BeginTransaction()
	if _, err := doc.Insert(0, "ab"); err != nil { // fits
		t.Fatal(err)
	}
	if _, err := doc.Insert(2, "cd"); err != nil { // busts the budget
		t.Fatal(err)
	}
	if _, err := doc.Insert(4, "ef"); err != nil { // dropped silently
		t.Fatal(err)
	}
	eng.EndTransaction()

	if oomCount != 1 {
		t.Errorf("OutOfMemory fired %d times, want 1", oomCount)
	}
	if eng.CanUndo() {
		t.Error("partial group survived the budget reject")
	}
	if eng.MemoryUsed() != 0 {
		t.Errorf("MemoryUsed = %d after discard, want 0", eng.MemoryUsed())
	}

	// The next transaction records normally.
	eng.BeginTransaction()
	if _, err := doc.Insert(6, "x"); err != nil {
		t.Fatal(err)
	}
	eng.EndTransaction()
	if !eng.CanUndo() {
		t.Error("recording did not recover after the rejected group")
	}
}

func TestInsertUndoSnapshotChargesBudget(t *testing.T) {
	doc, eng := newTestEditor("")
	typeText(doc, 0, "ab")
	bold := doc.Intern(document.Span{Kind: document.SpanBold})
	doc.SetListener(nil)
	if err := doc.ApplySpan(bold, 0, 2); err != nil {
		t.Fatal(err)
	}
	doc.SetListener(eng)

	// Undoing the insert sweeps the styling into the redo entry, which
	// must be charged so a later eviction subtracts exactly what was
	// added.
	if _, ok := eng.Undo(); !ok {
		t.Fatal("Undo failed")
	}
	if want := opBaseCost + len("ab") + snapshotCost; eng.MemoryUsed() != want {
		t.Errorf("MemoryUsed after undo = %d, want %d", eng.MemoryUsed(), want)
	}

	if _, err := doc.Insert(0, "x"); err != nil {
		t.Fatal(err)
	}
	if got, want := eng.MemoryUsed(), opBaseCost+1; got != want {
		t.Errorf("MemoryUsed after redo drop = %d, want %d", got, want)
	}
}

func TestEmptySelectionNotRecorded(t *testing.T) {
	doc, eng := newTestEditor("hello")
	eng.BeginTransaction()
	doc.PlaceCursor(3)
	eng.EndTransaction()
	if eng.CanUndo() {
		t.Error("bare cursor placement produced an undo group")
	}

	// A cursor collapse still lands on a selection change already
	// sitting at the group's tail.
	eng.BeginTransaction()
	doc.SetSelection(0, 5)
	doc.PlaceCursor(2)
	eng.EndTransaction()
	if len(eng.undoQ) != 1 || len(eng.undoQ[0].ops) != 1 {
		t.Fatalf("queue shape = %d groups, want 1 group with 1 op", len(eng.undoQ))
	}
	if op := eng.undoQ[0].ops[0]; op.selStart != 2 || op.selEnd != 2 {
		t.Errorf("tail selection = [%d,%d), want collapsed at 2", op.selStart, op.selEnd)
	}
}

// Notification Tests

func TestCanUndoChangedFiresOnTransitionsOnly(t *testing.T) {
	var calls []bool
	doc, eng := newTestEditor("",
		WithCallbacks(Callbacks{CanUndoChanged: func(can bool) { calls = append(calls, can) }}))

	pos, _ := doc.Insert(0, "ab")
	if _, err := doc.Insert(pos, "cd"); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || !calls[0] {
		t.Fatalf("calls after two records = %v, want [true]", calls)
	}

	for eng.CanUndo() {
		eng.Undo()
	}
	if len(calls) != 2 || calls[1] {
		t.Errorf("calls after exhausting undo = %v, want [true false]", calls)
	}
}

func TestRedoInvalidation(t *testing.T) {
	doc, eng := newTestEditor("")
	pos, _ := doc.Insert(0, "ab")
	if _, err := doc.Insert(pos, "cd"); err != nil {
		t.Fatal(err)
	}
	if _, ok := eng.Undo(); !ok {
		t.Fatal("Undo failed")
	}
	if !eng.CanRedo() {
		t.Fatal("CanRedo false after undo")
	}
	if _, err := doc.Insert(2, "zz"); err != nil {
		t.Fatal(err)
	}
	if eng.CanRedo() {
		t.Error("redo queue survived a new recording")
	}
}
