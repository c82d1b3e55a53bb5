package tui

import "testing"

func TestFocusFirstNonEmpty(t *testing.T) {
	cases := []struct {
		name      string
		sizes     []int
		wantPanel int
		wantOK    bool
	}{
		{name: "first panel", sizes: []int{2, 1, 0}, wantPanel: 0, wantOK: true},
		{name: "skips empty", sizes: []int{0, 0, 3}, wantPanel: 2, wantOK: true},
		{name: "all empty", sizes: []int{0, 0, 0}, wantPanel: 1, wantOK: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := focusState{panel: 1, row: 4}
			ok := f.focusFirstNonEmpty(tc.sizes)
			if ok != tc.wantOK || f.panel != tc.wantPanel {
				t.Fatalf("focusFirstNonEmpty(%v) = %t at panel %d", tc.sizes, ok, f.panel)
			}
			if ok && f.row != 0 {
				t.Fatalf("expected row reset, got %d", f.row)
			}
		})
	}
}

func TestFocusPanelNavigationSkipsEmpty(t *testing.T) {
	sizes := []int{1, 0, 2}
	f := focusState{}

	if !f.nextPanel(sizes) || f.panel != 2 {
		t.Fatalf("expected next from 0 to land on 2, got %d", f.panel)
	}
	f.row = 1
	if f.nextPanel(sizes) {
		t.Fatal("expected saturation at last non-empty panel")
	}
	if f.panel != 2 || f.row != 1 {
		t.Fatalf("expected focus unchanged on saturation, got %+v", f)
	}
	if !f.prevPanel(sizes) || f.panel != 0 || f.row != 0 {
		t.Fatalf("expected prev from 2 to land on 0 row 0, got %+v", f)
	}
	if f.prevPanel(sizes) {
		t.Fatal("expected saturation at first panel")
	}
}

func TestFocusRowWraps(t *testing.T) {
	sizes := []int{3, 0, 0}
	f := focusState{}
	f.rowUp(sizes)
	if f.row != 2 {
		t.Fatalf("expected wrap to bottom, got %d", f.row)
	}
	f.rowDown(sizes)
	if f.row != 0 {
		t.Fatalf("expected wrap to top, got %d", f.row)
	}
	f.rowDown(sizes)
	if f.row != 1 {
		t.Fatalf("expected row 1, got %d", f.row)
	}

	empty := focusState{panel: 1}
	empty.rowDown(sizes)
	empty.rowUp(sizes)
	if empty.row != 0 {
		t.Fatalf("expected no-op on empty panel, got %d", empty.row)
	}
}

func TestFocusPanelFallsBack(t *testing.T) {
	f := focusState{}
	if !f.focusPanel([]int{1, 0, 1}, 2) || f.panel != 2 {
		t.Fatalf("expected explicit panel, got %d", f.panel)
	}
	if !f.focusPanel([]int{0, 1, 0}, 2) || f.panel != 1 {
		t.Fatalf("expected fallback to first non-empty, got %d", f.panel)
	}
	if f.focusPanel([]int{0, 0, 0}, 0) {
		t.Fatal("expected false for all-empty board")
	}
}

func TestFocusClamp(t *testing.T) {
	f := focusState{panel: 1, row: 5}
	if !f.clamp([]int{0, 2, 0}) || f.panel != 1 || f.row != 0 {
		t.Fatalf("expected stale row reset, got %+v", f)
	}
	f = focusState{panel: 0, row: 0}
	if !f.clamp([]int{0, 0, 1}) || f.panel != 2 {
		t.Fatalf("expected move off emptied panel, got %+v", f)
	}
	f = focusState{panel: 2, row: 1}
	if !f.clamp([]int{0, 0, 2}) || f.row != 1 {
		t.Fatalf("expected valid focus kept, got %+v", f)
	}
}

func TestWrapIndex(t *testing.T) {
	if got := wrapIndex(0, -1, 5); got != 4 {
		t.Fatalf("wrapIndex(0,-1,5) = %d", got)
	}
	if got := wrapIndex(4, 1, 5); got != 0 {
		t.Fatalf("wrapIndex(4,1,5) = %d", got)
	}
	if got := wrapIndex(3, 1, 0); got != 0 {
		t.Fatalf("wrapIndex with zero total = %d", got)
	}
}
