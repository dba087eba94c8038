// Package tasks provides the PostgreSQL-backed, ownership-scoped task store.
// Every statement is constrained by user_id, so a task owned by someone else
// behaves exactly like a task that does not exist.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// sortColumns maps API sort fields to columns. Anything else is rejected
// before it can reach the ORDER BY clause.
var sortColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// SortableField reports whether field is an allowed sort key.
func SortableField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// PostgresRepository implements task storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a task for its owner and returns the stored row.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (user_id, description, completed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, task.UserID, task.Description, task.Completed).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// List returns the owner's tasks, filtered, ordered and paged per q.
// The ORDER BY always ends with the primary key so paging is deterministic.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, q Query) ([]*models.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, description, completed, created_at, updated_at FROM tasks WHERE user_id = $1`)

	args := []any{ownerID}
	if q.Completed != nil {
		args = append(args, *q.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	column := "created_at"
	if q.SortField != "" {
		col, ok := sortColumns[q.SortField]
		if !ok {
			return nil, common.NewValidationError("sortBy", "is not a sortable field")
		}
		column = col
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id", column, direction)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if q.Skip > 0 {
		args = append(args, q.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		var item models.Task
		if err := rows.Scan(&item.ID, &item.UserID, &item.Description,
			&item.Completed, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns the owner's task or common.ErrorNotFound. A task owned by
// another user also yields ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID string, taskID string) (*models.Task, error) {
	query := `
		SELECT id, user_id, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $2 AND user_id = $1
	`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, ownerID, taskID).
		Scan(&task.ID, &task.UserID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Update applies the non-nil fields in one statement and returns the updated
// row; zero rows updated means absent-or-foreign and maps to ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, ownerID string, taskID string, description *string, completed *bool) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET description = COALESCE($3, description),
		    completed = COALESCE($4, completed),
		    updated_at = now()
		WHERE id = $2 AND user_id = $1
		RETURNING id, user_id, description, completed, created_at, updated_at
	`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, ownerID, taskID, description, completed).
		Scan(&task.ID, &task.UserID, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Delete removes the owner's task; absent-or-foreign maps to ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID string, taskID string) error {
	query := `
		DELETE FROM tasks
		WHERE id = $2 AND user_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, ownerID, taskID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
