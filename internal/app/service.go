package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/kanban/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	BoardOrder BoardOrder
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo       Repository
	idGen      IDGenerator
	clock      Clock
	boardOrder BoardOrder
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	order, err := ParseBoardOrder(string(cfg.BoardOrder))
	if err != nil {
		order = BoardOrderCategory
	}
	return &Service{
		repo:       repo,
		idGen:      idGen,
		clock:      clock,
		boardOrder: order,
	}
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title        string
	Body         string
	Status       domain.Status
	CategoryName string
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID       string
	Title        string
	Body         string
	CategoryName string
}

// CreateTask creates task, materializing its category on first use.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return domain.Task{}, err
	}
	if err := domain.ValidateCategoryName(in.CategoryName); err != nil {
		return domain.Task{}, err
	}
	category, newCategory, err := s.resolveCategory(ctx, in.CategoryName)
	if err != nil {
		return domain.Task{}, err
	}

	task, err := domain.NewTask(domain.TaskInput{
		ID:     s.idGen(),
		Title:  in.Title,
		Body:   in.Body,
		Status: in.Status,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	task.SetCategory(category.ID, category.Name)
	if err := s.repo.CreateTask(ctx, task, newCategory); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// UpdateTask replaces title, body and category. UpdatedAt is left untouched.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return domain.Task{}, err
	}
	if err := domain.ValidateCategoryName(in.CategoryName); err != nil {
		return domain.Task{}, err
	}
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	category, newCategory, err := s.resolveCategory(ctx, in.CategoryName)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(in.Title, in.Body); err != nil {
		return domain.Task{}, err
	}
	task.SetCategory(category.ID, category.Name)
	if err := s.repo.UpdateTask(ctx, task, newCategory); err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// PromoteTask moves a task one status forward. A done task is returned unchanged and not persisted.
func (s *Service) PromoteTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.transitionTask(ctx, taskID, (*domain.Task).Promote)
}

// RegressTask moves a task one status back. A todo task is returned unchanged and not persisted.
func (s *Service) RegressTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.transitionTask(ctx, taskID, (*domain.Task).Regress)
}

// transitionTask applies one status transition and persists it when effective.
func (s *Service) transitionTask(ctx context.Context, taskID string, apply func(*domain.Task, time.Time) bool) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	if !apply(&task, s.transitionTime(task)) {
		return task, nil
	}
	if err := s.repo.UpdateTask(ctx, task, nil); err != nil {
		return domain.Task{}, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

// transitionTime returns a timestamp strictly after the task's last status movement.
func (s *Service) transitionTime(task domain.Task) time.Time {
	now := s.clock().UTC()
	if !now.After(task.UpdatedAt) {
		now = task.UpdatedAt.Add(time.Microsecond)
	}
	return now
}

// DeleteTask deletes task.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ListTasks lists tasks.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx)
}

// CountTasks returns the number of stored tasks.
func (s *Service) CountTasks(ctx context.Context) (int, error) {
	return s.repo.CountTasks(ctx)
}

// ListCategories lists categories.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// LoadBoard rebuilds the status board from the store.
func (s *Service) LoadBoard(ctx context.Context) (Board, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Board{}, fmt.Errorf("list tasks: %w", err)
	}
	return GroupByStatus(tasks, s.boardOrder), nil
}

// BoardOrder returns the configured in-panel ordering rule.
func (s *Service) BoardOrder() BoardOrder {
	return s.boardOrder
}

// resolveCategory resolves a category by exact name. A blank name yields the zero category.
// An unknown name yields a new category, also returned as newCategory for the caller to store with the task.
func (s *Service) resolveCategory(ctx context.Context, name string) (category domain.Category, newCategory *domain.Category, err error) {
	name = domain.NormalizeCategoryName(name)
	if name == "" {
		return domain.Category{}, nil, nil
	}
	category, err = s.repo.GetCategoryByName(ctx, name)
	if err == nil {
		return category, nil, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Category{}, nil, fmt.Errorf("lookup category %q: %w", name, err)
	}
	category, err = domain.NewCategory(s.idGen(), name, s.clock())
	if err != nil {
		return domain.Category{}, nil, err
	}
	return category, &category, nil
}
