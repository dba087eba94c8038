package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var body map[string]any
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	task, err := s.tasks.Create(r.Context(), id.UserID, body)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusCreated, viewOfTask(task))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	q, err := parseTaskQuery(r.URL.Query())
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	list, err := s.tasks.List(r.Context(), id.UserID, q)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, viewOfTasks(list))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	task, err := s.tasks.Get(r.Context(), id.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, viewOfTask(task))
}

func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var body map[string]any
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), id.UserID, mux.Vars(r)["id"], body)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, viewOfTask(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := s.tasks.Delete(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

// parseTaskQuery interprets ?completed=, ?limit=, ?skip= and
// ?sortBy=field:direction. Unknown sort fields are caught further down by
// the repository.
func parseTaskQuery(values url.Values) (tasks.Query, error) {
	var q tasks.Query

	if v := values.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, common.NewValidationError("completed", "must be true or false")
		}
		q.Completed = &b
	}

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, common.NewValidationError("limit", "must be a non-negative integer")
		}
		q.Limit = n
	}

	if v := values.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, common.NewValidationError("skip", "must be a non-negative integer")
		}
		q.Skip = n
	}

	if v := values.Get("sortBy"); v != "" {
		field, direction, found := strings.Cut(v, ":")
		q.SortField = field
		if found {
			switch direction {
			case "asc":
			case "desc":
				q.SortDesc = true
			default:
				return q, common.NewValidationError("sortBy", "direction must be asc or desc")
			}
		}
	}

	return q, nil
}
