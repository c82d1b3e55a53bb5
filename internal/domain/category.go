package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCategoryNameLength is the longest accepted category name, in runes.
const MaxCategoryNameLength = 30

// Category groups tasks. Tasks hold a weak reference to it; a category never owns tasks.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewCategory constructs a category from a non-blank name.
func NewCategory(id, name string, now time.Time) (Category, error) {
	id = strings.TrimSpace(id)
	name = NormalizeCategoryName(name)
	if id == "" {
		return Category{}, ErrInvalidID
	}
	if name == "" {
		return Category{}, ErrInvalidCategoryName
	}
	if err := ValidateCategoryName(name); err != nil {
		return Category{}, err
	}
	return Category{
		ID:        id,
		Name:      name,
		CreatedAt: now.UTC(),
	}, nil
}

// NormalizeCategoryName trims surrounding whitespace. A blank result means "no category".
func NormalizeCategoryName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateCategoryName accepts blank names and rejects names longer than MaxCategoryNameLength.
func ValidateCategoryName(name string) error {
	if utf8.RuneCountInString(NormalizeCategoryName(name)) > MaxCategoryNameLength {
		return ErrInvalidCategoryName
	}
	return nil
}
