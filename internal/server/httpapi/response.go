package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// userView is the wire shape of a user. Credentials never appear here.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type taskView struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewOfUser(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func viewOfTask(t *models.Task) taskView {
	return taskView{ID: t.ID, Description: t.Description, Completed: t.Completed, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func viewOfTasks(list []*models.Task) []taskView {
	views := make([]taskView, 0, len(list))
	for _, t := range list {
		views = append(views, viewOfTask(t))
	}
	return views
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(ctx, "writing response", "error", err)
	}
}

// writeError maps service errors onto the wire. Authentication failures are
// deliberately uniform, and unexpected errors never leak detail to clients.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if ve, ok := common.AsValidationError(err); ok {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorBody{Error: ve.Reason, Field: ve.Field})
		return
	}

	switch {
	case errors.Is(err, common.ErrorUnauthenticated):
		s.writeJSON(ctx, w, http.StatusUnauthorized, errorBody{Error: "please authenticate"})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(ctx, w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		s.writeJSON(ctx, w, http.StatusServiceUnavailable, errorBody{Error: "service unavailable"})
	}
}
