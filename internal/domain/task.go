package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the longest accepted task title, in runes.
const MaxTitleLength = 100

type Task struct {
	ID         string
	Title      string
	Body       string
	Status     Status
	CategoryID string
	// Category is resolved by the store on read and is empty for uncategorized tasks.
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TaskInput struct {
	ID         string
	Title      string
	Body       string
	Status     Status
	CategoryID string
	Category   string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if err := ValidateTitle(in.Title); err != nil {
		return Task{}, err
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		ID:         in.ID,
		Title:      in.Title,
		Body:       in.Body,
		Status:     in.Status,
		CategoryID: in.CategoryID,
		Category:   strings.TrimSpace(in.Category),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// Promote moves the task one status forward. A done task stays done and keeps its timestamp.
func (t *Task) Promote(now time.Time) bool {
	if t.Status >= StatusDone {
		return false
	}
	t.Status++
	t.UpdatedAt = now.UTC()
	return true
}

// Regress moves the task one status back. A todo task stays todo and keeps its timestamp.
func (t *Task) Regress(now time.Time) bool {
	if t.Status <= StatusTodo {
		return false
	}
	t.Status--
	t.UpdatedAt = now.UTC()
	return true
}

// UpdateDetails replaces title and body. UpdatedAt tracks status movement only, so it is left alone.
func (t *Task) UpdateDetails(title, body string) error {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return err
	}
	t.Title = title
	t.Body = body
	return nil
}

// SetCategory points the task at a category, or clears it when id is blank.
func (t *Task) SetCategory(id, name string) {
	id = strings.TrimSpace(id)
	if id == "" {
		t.CategoryID = ""
		t.Category = ""
		return
	}
	t.CategoryID = id
	t.Category = strings.TrimSpace(name)
}

// ValidateTitle reports ErrInvalidTitle for blank or over-long titles.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrInvalidTitle
	}
	return nil
}
