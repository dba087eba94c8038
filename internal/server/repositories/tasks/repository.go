package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Query narrows and orders a task listing. A nil Completed means no filter;
// Limit <= 0 means no limit.
type Query struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     int
	Skip      int
}

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context, ownerID string, q Query) ([]*models.Task, error)
	GetByID(ctx context.Context, ownerID string, taskID string) (*models.Task, error)
	Update(ctx context.Context, ownerID string, taskID string, description *string, completed *bool) (*models.Task, error)
	Delete(ctx context.Context, ownerID string, taskID string) error
}
