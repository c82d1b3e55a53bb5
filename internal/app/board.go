package app

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hylla/kanban/internal/domain"
)

// BoardOrder selects how tasks are ordered inside one status panel.
type BoardOrder string

// BoardOrderCategory and related constants define the supported panel orderings.
const (
	// BoardOrderCategory clusters tasks by category, most recently moved first within a cluster.
	BoardOrderCategory BoardOrder = "category"
	// BoardOrderUpdated orders purely by most recently moved first.
	BoardOrderUpdated BoardOrder = "updated"
)

// ParseBoardOrder normalizes a configured ordering name. Blank selects BoardOrderCategory.
func ParseBoardOrder(raw string) (BoardOrder, error) {
	switch BoardOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BoardOrderCategory:
		return BoardOrderCategory, nil
	case BoardOrderUpdated:
		return BoardOrderUpdated, nil
	default:
		return "", ErrInvalidBoardOrder
	}
}

// Board is the status grouping of every task. All statuses are always present.
type Board struct {
	groups [domain.StatusCount][]domain.Task
}

// GroupByStatus groups tasks into one ordered sequence per status.
// The result is a pure function of the input and order; it is rebuilt after every mutation.
func GroupByStatus(tasks []domain.Task, order BoardOrder) Board {
	var b Board
	for _, status := range domain.Statuses() {
		b.groups[status] = []domain.Task{}
	}
	for _, task := range tasks {
		if !task.Status.Valid() {
			continue
		}
		b.groups[task.Status] = append(b.groups[task.Status], task)
	}
	for _, status := range domain.Statuses() {
		sortPanel(b.groups[status], order)
	}
	return b
}

// sortPanel orders one status group in place.
func sortPanel(tasks []domain.Task, order BoardOrder) {
	slices.SortStableFunc(tasks, func(a, b domain.Task) int {
		if order != BoardOrderUpdated {
			if c := compareCategory(a, b); c != 0 {
				return c
			}
		}
		// Most recently moved first.
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// compareCategory clusters categorized tasks by name and sorts uncategorized tasks last.
func compareCategory(a, b domain.Task) int {
	aNone, bNone := a.CategoryID == "", b.CategoryID == ""
	switch {
	case aNone && bNone:
		return 0
	case aNone:
		return 1
	case bNone:
		return -1
	}
	if c := cmp.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	return cmp.Compare(a.CategoryID, b.CategoryID)
}

// Tasks returns the ordered tasks for one status. Invalid statuses yield nil.
func (b Board) Tasks(status domain.Status) []domain.Task {
	if !status.Valid() {
		return nil
	}
	return b.groups[status]
}

// Len returns the number of tasks in one status panel.
func (b Board) Len(status domain.Status) int {
	return len(b.Tasks(status))
}

// Sizes returns the task count of every panel in status order.
func (b Board) Sizes() []int {
	out := make([]int, 0, domain.StatusCount)
	for _, status := range domain.Statuses() {
		out = append(out, len(b.groups[status]))
	}
	return out
}

// Total returns the number of tasks across all panels.
func (b Board) Total() int {
	total := 0
	for _, group := range b.groups {
		total += len(group)
	}
	return total
}

// IsEmpty reports whether no panel holds a task.
func (b Board) IsEmpty() bool {
	return b.Total() == 0
}
