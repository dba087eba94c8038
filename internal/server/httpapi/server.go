// Package httpapi exposes the service layer over REST. Authentication is a
// bearer token in the Authorization header; every failure to authenticate
// yields the same 401 body regardless of cause.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/validation"
)

const shutdownTimeout = 5 * time.Second

// TokenValidator checks a bearer token and returns the owning user ID.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// UserAPI is the slice of the user service the handlers need.
type UserAPI interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*models.User, error)
	Update(ctx context.Context, userID string, patch *validation.UserPatch) (*models.User, string, error)
	Delete(ctx context.Context, userID string) error
	SetAvatar(ctx context.Context, userID string, data []byte) error
	Avatar(ctx context.Context, userID string) ([]byte, string, error)
	DeleteAvatar(ctx context.Context, userID string) error
}

// TaskAPI is the slice of the task service the handlers need.
type TaskAPI interface {
	Create(ctx context.Context, ownerID string, body map[string]any) (*models.Task, error)
	List(ctx context.Context, ownerID string, q tasks.Query) ([]*models.Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*models.Task, error)
	Update(ctx context.Context, ownerID, taskID string, body map[string]any) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID string) error
}

type Server struct {
	addr   string
	tokens TokenValidator
	users  UserAPI
	tasks  TaskAPI
	logger logging.Logger
	router *mux.Router
}

func NewServer(addr string, tokens TokenValidator, users UserAPI, tasks TaskAPI, logger logging.Logger) *Server {
	s := &Server{
		addr:   addr,
		tokens: tokens,
		users:  users,
		tasks:  tasks,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/users", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/avatar", s.handleAvatarByID).Methods(http.MethodGet)

	r.Handle("/users/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	r.Handle("/users/logoutAll", s.requireAuth(s.handleLogoutAll)).Methods(http.MethodPost)
	r.Handle("/users/me", s.requireAuth(s.handleGetMe)).Methods(http.MethodGet)
	r.Handle("/users/me", s.requireAuth(s.handlePatchMe)).Methods(http.MethodPatch)
	r.Handle("/users/me", s.requireAuth(s.handleDeleteMe)).Methods(http.MethodDelete)
	r.Handle("/users/me/avatar", s.requireAuth(s.handleUploadAvatar)).Methods(http.MethodPost)
	r.Handle("/users/me/avatar", s.requireAuth(s.handleDeleteAvatar)).Methods(http.MethodDelete)

	r.Handle("/tasks", s.requireAuth(s.handleCreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks", s.requireAuth(s.handleListTasks)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", s.requireAuth(s.handleGetTask)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", s.requireAuth(s.handlePatchTask)).Methods(http.MethodPatch)
	r.Handle("/tasks/{id}", s.requireAuth(s.handleDeleteTask)).Methods(http.MethodDelete)

	return r
}

// Handler returns the configured router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
