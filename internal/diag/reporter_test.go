package diag

import (
	"testing"

	"grammarref/internal/source"
)

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(4)
	r := BagReporter{Bag: bag}

	b := ReportError(r, RefDuplicateDefinition, source.Span{Start: 1, End: 2}, "duplicate").
		WithSubject("X").
		WithAnchors("p1", "p2").
		WithNote(source.Span{Start: 0, End: 1}, "first defined here")
	b.Emit()
	b.Emit()

	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Subject != "X" || len(d.Anchors) != 2 || len(d.Notes) != 1 {
		t.Fatalf("builder lost data: %+v", d)
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(RuleMissingArrow, source.Span{}, "a")) {
		t.Fatal("first add must succeed")
	}
	if bag.Add(NewError(RuleMissingArrow, source.Span{}, "b")) {
		t.Fatal("second add must hit the limit")
	}
	if !bag.HasErrors() || bag.HasAtLeast(SevError+1) {
		t.Fatal("unexpected severity query result")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := NewError(RefUnresolvedReference, source.Span{Start: 5, End: 9}, "unresolved")
	r.Report(d)
	r.Report(d)
	d.Subject = "other"
	r.Report(d)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}
