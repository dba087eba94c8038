// Package services contains server-side business logic. This file implements
// TokenService, which owns the session-token lifecycle: issuing signed bearer
// tokens, validating them against the owner's active set, and revocation.
package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// TokenService issues, validates and revokes session tokens. A token is only
// valid while its hash is present in the owner's stored set, so revocation
// and password changes kill sessions even though the signature still checks
// out.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secretKey   []byte
	validity    time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		secretKey:   []byte(cfg.SecretKey),
		validity:    cfg.TokenValidity,
	}
}

// HashToken computes the stored digest of a bearer token. Plaintext tokens
// never reach the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Issue mints a signed token for userID and appends its hash to the user's
// active set.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	return s.IssueWith(ctx, s.db, userID)
}

// IssueWith is Issue bound to an explicit DBTX so callers can mint a token
// inside an enclosing transaction (password change does this).
func (s *TokenService) IssueWith(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.secretKey, s.validity)
	if err != nil {
		return "", common.ErrorInternal
	}

	repo := s.repomanager.SessionTokens(db)
	if err := repo.Add(ctx, userID, HashToken(token)); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}
	return token, nil
}

// Validate verifies the token signature and membership in the owner's active
// set, returning the owning user ID. Bad signature, revoked token and
// unknown user are indistinguishable: all yield ErrorUnauthenticated.
func (s *TokenService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthenticated
	}

	userID, err := auth.GetUserIDFromToken(token, s.secretKey)
	if err != nil {
		return "", common.ErrorUnauthenticated
	}

	repo := s.repomanager.SessionTokens(s.db)
	exists, err := repo.Exists(ctx, userID, HashToken(token))
	if err != nil {
		return "", common.ErrorUnavailable
	}
	if !exists {
		return "", common.ErrorUnauthenticated
	}
	return userID, nil
}

// Revoke removes exactly the one matching token from the user's set.
func (s *TokenService) Revoke(ctx context.Context, userID string, token string) error {
	repo := s.repomanager.SessionTokens(s.db)
	if err := repo.Delete(ctx, userID, HashToken(token)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthenticated
		}
		return fmt.Errorf("revoking session token: %w", err)
	}
	return nil
}

// RevokeAll clears the user's entire active set ("log out of all devices").
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.RevokeAllWith(ctx, s.db, userID)
}

// RevokeAllWith is RevokeAll bound to an explicit DBTX.
func (s *TokenService) RevokeAllWith(ctx context.Context, db dbx.DBTX, userID string) error {
	repo := s.repomanager.SessionTokens(db)
	if err := repo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoking session tokens: %w", err)
	}
	return nil
}
