package undo

import (
	"testing"

	"github.com/quillkit/quill/internal/engine/document"
)

func sweepFixture(t *testing.T) (*document.Document, document.Ref, document.Ref) {
	t.Helper()
	doc := document.NewFromString("abcdefghij")
	bold := doc.Intern(document.Span{Kind: document.SpanBold})
	italic := doc.Intern(document.Span{Kind: document.SpanItalic})
	if err := doc.ApplySpan(bold, 1, 3); err != nil {
		t.Fatal(err)
	}
	if err := doc.ApplySpan(italic, 2, 5); err != nil {
		t.Fatal(err)
	}
	return doc, bold, italic
}

func TestSweepWholeWindow(t *testing.T) {
	doc, bold, italic := sweepFixture(t)
	got := sweep(doc, 0, 10)
	want := []SpanSnapshot{
		{Ref: bold, Start: 1, End: 3, Applied: true},
		{Ref: italic, Start: 2, End: 5, Applied: true},
	}
	if len(got) != len(want) {
		t.Fatalf("snapshots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSweepClipsToWindow(t *testing.T) {
	doc, bold, italic := sweepFixture(t)
	got := sweep(doc, 2, 4)
	want := []SpanSnapshot{
		{Ref: bold, Start: 2, End: 3, Applied: true},
		{Ref: italic, Start: 2, End: 4, Applied: true},
	}
	if len(got) != len(want) {
		t.Fatalf("snapshots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSweepEmptyWindow(t *testing.T) {
	doc, _, _ := sweepFixture(t)
	if got := sweep(doc, 3, 3); got != nil {
		t.Errorf("zero-length sweep = %v, want nil", got)
	}
}

func TestSweepBoundaryCoincidence(t *testing.T) {
	doc, bold, _ := sweepFixture(t)

	// Window ending exactly where a span starts must not leak a
	// zero-length snapshot.
	if got := sweep(doc, 0, 1); len(got) != 0 {
		t.Errorf("sweep before any span = %v, want none", got)
	}
	// Window starting exactly at a span end excludes it.
	got := sweep(doc, 3, 6)
	for _, s := range got {
		if s.Ref == bold {
			t.Errorf("bold leaked into [3,6): %+v", s)
		}
	}
	for _, s := range got {
		if s.Start >= s.End {
			t.Errorf("zero-length snapshot %+v", s)
		}
	}
}

func TestSweepCoversGapsCorrectly(t *testing.T) {
	doc := document.NewFromString("abcdefghij")
	bold := doc.Intern(document.Span{Kind: document.SpanBold})
	if err := doc.ApplySpan(bold, 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := doc.ApplySpan(bold, 5, 7); err != nil {
		t.Fatal(err)
	}
	got := sweep(doc, 0, 10)
	want := []SpanSnapshot{
		{Ref: bold, Start: 0, End: 2, Applied: true},
		{Ref: bold, Start: 5, End: 7, Applied: true},
	}
	if len(got) != len(want) {
		t.Fatalf("snapshots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snapshot %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
