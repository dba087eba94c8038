package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

type contextKey int

const identityKey contextKey = iota

// identity is the authenticated caller, carried in the request context. The
// raw token is kept so logout can revoke exactly the session that made the
// request.
type identity struct {
	UserID string
	Token  string
}

func identityFrom(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey).(identity)
	return id, ok
}

// requireAuth extracts and validates the bearer token. Missing header,
// malformed header, bad signature and revoked token all produce the same
// response.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(r.Context(), w, common.ErrorUnauthenticated)
			return
		}

		userID, err := s.tokens.Validate(r.Context(), token)
		if err != nil {
			// Authentication failures stay uniform; a store outage during
			// the membership check is not one and maps to 503.
			s.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity{UserID: userID, Token: token})
		next(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
