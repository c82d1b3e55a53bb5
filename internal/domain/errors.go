package domain

import "errors"

var (
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidTitle        = errors.New("invalid title")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidCategoryName = errors.New("invalid category name")
)
