package domain

// Status is the position of a task on the board. Values are totally ordered.
type Status int

// StatusTodo and related constants enumerate every valid status in board order.
const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
)

// statusLabels stores display labels indexed by status.
var statusLabels = [...]string{
	StatusTodo:       "To do",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
}

// Statuses returns every status in ascending order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// StatusCount is the number of board panels.
const StatusCount = len(statusLabels)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s >= StatusTodo && s <= StatusDone
}

// String returns the display label.
func (s Status) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return statusLabels[s]
}

// ParseStatus validates a raw persisted status value.
func ParseStatus(raw int) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return StatusTodo, ErrInvalidStatus
	}
	return s, nil
}
