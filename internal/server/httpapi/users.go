package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/blob"
	"github.com/dmitrijs2005/taskkeeper/internal/server/validation"
)

const maxJSONBody = 64 << 10

type sessionResponse struct {
	User  userView `json:"user"`
	Token string   `json:"token,omitempty"`
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return common.NewValidationError("body", "must be valid JSON")
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	user, token, err := s.users.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{User: viewOfUser(user), Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	user, token, err := s.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{User: viewOfUser(user), Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := s.users.Logout(r.Context(), id.UserID, id.Token); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := s.users.LogoutAll(r.Context(), id.UserID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	user, err := s.users.Get(r.Context(), id.UserID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, viewOfUser(user))
}

func (s *Server) handlePatchMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var body map[string]any
	if err := decodeJSONBody(r, &body); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	patch, err := validation.UserPatchBody(body)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}

	user, token, err := s.users.Update(r.Context(), id.UserID, patch)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{User: viewOfUser(user), Token: token})
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := s.users.Delete(r.Context(), id.UserID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	if err := r.ParseMultipartForm(blob.MaxAvatarBytes); err != nil {
		s.writeError(r.Context(), w, common.NewValidationError("avatar", "must be a multipart upload"))
		return
	}
	file, _, err := r.FormFile("avatar")
	if err != nil {
		s.writeError(r.Context(), w, common.NewValidationError("avatar", "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, blob.MaxAvatarBytes+1))
	if err != nil {
		s.writeError(r.Context(), w, common.ErrorUnavailable)
		return
	}

	if err := s.users.SetAvatar(r.Context(), id.UserID, data); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	if err := s.users.DeleteAvatar(r.Context(), id.UserID); err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, struct{}{})
}

// handleAvatarByID serves a user's avatar publicly by user ID.
func (s *Server) handleAvatarByID(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	data, contentType, err := s.users.Avatar(r.Context(), userID)
	if err != nil {
		s.writeError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error(r.Context(), "writing avatar response", "error", err)
	}
}
