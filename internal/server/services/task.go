package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/validation"
)

// TaskService implements owner-scoped task CRUD. Every operation takes the
// authenticated owner's ID; a task belonging to someone else behaves exactly
// like a task that does not exist.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// Create validates the request body and stores a new task owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, body map[string]any) (*models.Task, error) {
	input, err := validation.TaskCreate(body)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:      ownerID,
		Description: *input.Description,
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	return s.repomanager.Tasks(s.db).Create(ctx, task)
}

// List returns the owner's tasks matching the query.
func (s *TaskService) List(ctx context.Context, ownerID string, q tasks.Query) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, ownerID, q)
}

// Get returns one of the owner's tasks by ID.
func (s *TaskService) Get(ctx context.Context, ownerID string, taskID string) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).GetByID(ctx, ownerID, taskID)
}

// Update validates the patch body and applies it to one of the owner's tasks,
// returning the updated row.
func (s *TaskService) Update(ctx context.Context, ownerID string, taskID string, body map[string]any) (*models.Task, error) {
	input, err := validation.TaskPatch(body)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).Update(ctx, ownerID, taskID, input.Description, input.Completed)
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, ownerID string, taskID string) error {
	return s.repomanager.Tasks(s.db).Delete(ctx, ownerID, taskID)
}
