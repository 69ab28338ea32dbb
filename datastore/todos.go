package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/coreybb/todo-api/models"
)

// TodoRepository persists todos. Every query is filtered by the owning
// user's ID, so one user's rows are invisible to every other user.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) CreateTodo(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Title, todo.Description,
		todo.Completed, toMillis(todo.CreatedAt), toMillis(todo.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

// GetTodoByID retrieves a single todo owned by userID. A todo owned by
// someone else yields the same sql.ErrNoRows as a missing one.
func (r *TodoRepository) GetTodoByID(ctx context.Context, userID, todoID string) (*models.Todo, error) {
	query := `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2
	`
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, todoID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get todo by ID: %w", err)
	}
	return todo, nil
}

// ListTodos returns a window of the user's todos, newest first, plus the
// total count of rows matching the filter. A nil completed pointer means no
// completion filter.
func (r *TodoRepository) ListTodos(ctx context.Context, userID string, skip, limit int, completed *bool) ([]models.Todo, int, error) {
	countQuery := `SELECT COUNT(*) FROM todos WHERE user_id = $1`
	listQuery := `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	countArgs := []any{userID}
	listArgs := []any{userID, limit, skip}

	if completed != nil {
		countQuery = `SELECT COUNT(*) FROM todos WHERE user_id = $1 AND completed = $2`
		listQuery = `
			SELECT id, user_id, title, description, completed, created_at, updated_at
			FROM todos
			WHERE user_id = $1 AND completed = $2
			ORDER BY created_at DESC, id
			LIMIT $3 OFFSET $4
		`
		countArgs = []any{userID, *completed}
		listArgs = []any{userID, *completed, limit, skip}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, *todo)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating todo rows: %w", err)
	}

	return todos, total, nil
}

// UpdateTodo overwrites the mutable fields of the todo, scoped to its owner.
// Returns sql.ErrNoRows (wrapped) when the row is absent or owned by another
// user.
func (r *TodoRepository) UpdateTodo(ctx context.Context, todo *models.Todo) error {
	query := `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		todo.Title, todo.Description, todo.Completed, toMillis(todo.UpdatedAt),
		todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return requireRowAffected(result, "update todo")
}

// DeleteTodo removes the todo, scoped to its owner. Deleting an absent row
// returns sql.ErrNoRows (wrapped).
func (r *TodoRepository) DeleteTodo(ctx context.Context, userID, todoID string) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return requireRowAffected(result, "delete todo")
}

// GetTodoStats aggregates completion counts over the user's own todos.
func (r *TodoRepository) GetTodoStats(ctx context.Context, userID string) (*models.TodoStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0)
		FROM todos
		WHERE user_id = $1
	`
	var stats models.TodoStats
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.Total, &stats.Completed); err != nil {
		return nil, fmt.Errorf("failed to count todo stats: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}
	return &stats, nil
}

// scanTodo is the single row-to-entity mapping for the todos table.
func scanTodo(row rowScanner) (*models.Todo, error) {
	var todo models.Todo
	var createdAt, updatedAt int64
	err := row.Scan(
		&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
		&todo.Completed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	todo.CreatedAt = fromMillis(createdAt)
	todo.UpdatedAt = fromMillis(updatedAt)
	return &todo, nil
}
