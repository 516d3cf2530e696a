package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	if got := a.Cover(b); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("cover: got %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("cover across files must be a no-op, got %v", got)
	}
}

func TestSpanSub(t *testing.T) {
	s := Span{File: 3, Start: 100, End: 120}
	tests := []struct {
		name     string
		from, to uint32
		want     Span
	}{
		{"inner", 2, 5, Span{File: 3, Start: 102, End: 105}},
		{"clamped end", 10, 50, Span{File: 3, Start: 110, End: 120}},
		{"start past end", 30, 40, Span{File: 3, Start: 120, End: 120}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sub(tt.from, tt.to); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanLess(t *testing.T) {
	if !(Span{File: 0, Start: 9}).Less(Span{File: 1, Start: 0}) {
		t.Error("file order must dominate")
	}
	if (Span{File: 1, Start: 4, End: 6}).Less(Span{File: 1, Start: 4, End: 5}) {
		t.Error("end order violated")
	}
}
