package tui

import "github.com/hylla/kanban/internal/domain"

// focusState tracks the focused status panel and the row inside it.
// Every method takes the current panel sizes; the state never caches them.
type focusState struct {
	panel int
	row   int
}

// focusFirstNonEmpty focuses row 0 of the first non-empty panel in status order.
// It reports false and leaves focus untouched when every panel is empty.
func (f *focusState) focusFirstNonEmpty(sizes []int) bool {
	for panel, n := range sizes {
		if n > 0 {
			f.panel = panel
			f.row = 0
			return true
		}
	}
	return false
}

// focusPanel focuses row 0 of panel, falling back to the first non-empty panel when it is empty.
func (f *focusState) focusPanel(sizes []int, panel int) bool {
	if panel >= 0 && panel < len(sizes) && sizes[panel] > 0 {
		f.panel = panel
		f.row = 0
		return true
	}
	return f.focusFirstNonEmpty(sizes)
}

// nextPanel moves to the nearest non-empty panel on the right. It saturates at the last one.
func (f *focusState) nextPanel(sizes []int) bool {
	for panel := f.panel + 1; panel < len(sizes); panel++ {
		if sizes[panel] > 0 {
			f.panel = panel
			f.row = 0
			return true
		}
	}
	return false
}

// prevPanel moves to the nearest non-empty panel on the left. It saturates at the first one.
func (f *focusState) prevPanel(sizes []int) bool {
	for panel := min(f.panel, len(sizes)) - 1; panel >= 0; panel-- {
		if sizes[panel] > 0 {
			f.panel = panel
			f.row = 0
			return true
		}
	}
	return false
}

// rowDown moves one row down, wrapping to the top.
func (f *focusState) rowDown(sizes []int) {
	if n := f.panelSize(sizes); n > 0 {
		f.row = wrapIndex(f.row, 1, n)
	}
}

// rowUp moves one row up, wrapping to the bottom.
func (f *focusState) rowUp(sizes []int) {
	if n := f.panelSize(sizes); n > 0 {
		f.row = wrapIndex(f.row, -1, n)
	}
}

// clamp repairs focus after the board changed shape. An empty or unknown panel moves
// focus to the first non-empty panel; a stale row resets to 0.
func (f *focusState) clamp(sizes []int) bool {
	n := f.panelSize(sizes)
	if n == 0 {
		return f.focusFirstNonEmpty(sizes)
	}
	if f.row < 0 || f.row >= n {
		f.row = 0
	}
	return true
}

// status returns the focused panel as a task status.
func (f focusState) status() domain.Status {
	return domain.Status(f.panel)
}

// panelSize returns the size of the focused panel, or 0 when it is out of range.
func (f focusState) panelSize(sizes []int) int {
	if f.panel < 0 || f.panel >= len(sizes) {
		return 0
	}
	return sizes[f.panel]
}

// wrapIndex returns current+delta wrapped into [0, total).
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := (current + delta) % total
	if next < 0 {
		next += total
	}
	return next
}
