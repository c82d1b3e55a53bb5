package app

import (
	"context"

	"github.com/hylla/kanban/internal/domain"
)

// Repository is the persistent task store used by the service.
type Repository interface {
	// CreateTask and UpdateTask store a non-nil new category in the same transaction as the task.
	CreateTask(context.Context, domain.Task, *domain.Category) error
	UpdateTask(context.Context, domain.Task, *domain.Category) error
	GetTask(context.Context, string) (domain.Task, error)
	DeleteTask(context.Context, string) error
	ListTasks(context.Context) ([]domain.Task, error)
	CountTasks(context.Context) (int, error)

	GetCategoryByName(context.Context, string) (domain.Category, error)
	ListCategories(context.Context) ([]domain.Category, error)
}
