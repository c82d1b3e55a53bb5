package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/hylla/kanban/internal/app"
	"github.com/hylla/kanban/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// taskColumns lists the task projection shared by every task read.
var taskColumns = []string{
	"t.id",
	"t.title",
	"t.body",
	"t.status",
	"COALESCE(t.category_id, '')",
	"COALESCE(c.name, '')",
	"t.created_at",
	"t.updated_at",
}

// Repository stores tasks and categories in a single sqlite database.
type Repository struct {
	db *sql.DB
}

// Open opens the database file at path, creating it and its schema when missing.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return openWith(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return openWith(db)
}

// openWith pins db to one connection and applies the schema.
func openWith(db *sql.DB) (*Repository, error) {
	// Pragmas and :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	repo := newRepository(db)
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// newRepository wraps an already opened handle without migrating it.
func newRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema. Every statement is idempotent.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			status INTEGER NOT NULL DEFAULT 0 CHECK (status BETWEEN 0 AND 2),
			category_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status_updated_at ON tasks(status, updated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// execer is the statement surface shared by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// withTx runs fn in one transaction, rolling back when fn fails.
func (r *Repository) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateTask inserts a new task row. A non-nil newCategory is inserted in the same transaction.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task, newCategory *domain.Category) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if newCategory != nil {
			if err := insertCategory(ctx, tx, *newCategory); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks(id, title, body, status, category_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Title, t.Body, int(t.Status), nullableID(t.CategoryID), ts(t.CreatedAt), ts(t.UpdatedAt))
		return err
	})
}

// UpdateTask overwrites every mutable column of an existing task.
// A non-nil newCategory is inserted in the same transaction and rolled back with it.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task, newCategory *domain.Category) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if newCategory != nil {
			if err := insertCategory(ctx, tx, *newCategory); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, body = ?, status = ?, category_id = ?, updated_at = ?
			WHERE id = ?
		`, t.Title, t.Body, int(t.Status), nullableID(t.CategoryID), ts(t.UpdatedAt), t.ID)
		if err != nil {
			return err
		}
		return translateNoRows(res)
	})
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	query, args, err := selectTasks().Where(squirrel.Eq{"t.id": id}).ToSql()
	if err != nil {
		return domain.Task{}, fmt.Errorf("build task query: %w", err)
	}
	return scanTask(r.db.QueryRowContext(ctx, query, args...))
}

// DeleteTask removes one task. The category row is left in place.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return translateNoRows(res)
	})
}

// ListTasks returns every task with its category name resolved.
func (r *Repository) ListTasks(ctx context.Context) ([]domain.Task, error) {
	query, args, err := selectTasks().OrderBy("t.updated_at DESC", "t.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build task query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// CountTasks returns the number of stored tasks.
func (r *Repository) CountTasks(ctx context.Context) (int, error) {
	query, args, err := squirrel.Select("COUNT(*)").From("tasks").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// insertCategory inserts a category row.
func insertCategory(ctx context.Context, db execer, c domain.Category) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO categories(id, name, created_at)
		VALUES (?, ?, ?)
	`, c.ID, c.Name, ts(c.CreatedAt))
	return err
}

// GetCategoryByName returns the category with exactly this name.
func (r *Repository) GetCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	query, args, err := selectCategories().Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return domain.Category{}, fmt.Errorf("build category query: %w", err)
	}
	return scanCategory(r.db.QueryRowContext(ctx, query, args...))
}

// ListCategories lists categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query, args, err := selectCategories().OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// selectTasks builds the shared task projection joined with category names.
func selectTasks() squirrel.SelectBuilder {
	return squirrel.Select(taskColumns...).
		From("tasks t").
		LeftJoin("categories c ON c.id = t.category_id")
}

// selectCategories builds the shared category projection.
func selectCategories() squirrel.SelectBuilder {
	return squirrel.Select("id", "name", "created_at").From("categories")
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask decodes one task row. Rows carrying an unknown status are rejected.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		statusRaw  int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Body,
		&statusRaw,
		&t.CategoryID,
		&t.Category,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	status, err := domain.ParseStatus(statusRaw)
	if err != nil {
		return domain.Task{}, fmt.Errorf("decode task %s status %d: %w", t.ID, statusRaw, err)
	}
	t.Status = status
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanCategory decodes one category row.
func scanCategory(s scanner) (domain.Category, error) {
	var (
		c          domain.Category
		createdRaw string
	)
	if err := s.Scan(&c.ID, &c.Name, &createdRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, app.ErrNotFound
		}
		return domain.Category{}, err
	}
	c.CreatedAt = parseTS(createdRaw)
	return c, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// nullableID maps a blank reference to SQL NULL.
func nullableID(id string) any {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	return id
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
