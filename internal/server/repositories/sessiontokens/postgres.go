// Package sessiontokens persists the active-session set for each user.
// Rows hold token hashes only; membership checks hit a unique
// (user_id, token_hash) index while the serial ID keeps issuance order
// for listing.
package sessiontokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// PostgresRepository implements session-token storage over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends a token hash to the user's active set.
func (r *PostgresRepository) Add(ctx context.Context, userID string, tokenHash string) error {
	query := `
		INSERT INTO session_tokens (user_id, token_hash)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Exists reports whether the hash is still in the user's active set.
func (r *PostgresRepository) Exists(ctx context.Context, userID string, tokenHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM session_tokens
			WHERE user_id = $1 AND token_hash = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Delete removes exactly the one matching token. Deleting a token that is
// already gone yields common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, userID string, tokenHash string) error {
	query := `
		DELETE FROM session_tokens
		WHERE user_id = $1 AND token_hash = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, tokenHash)
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

// DeleteAllForUser clears the user's entire active set. Used on password
// change and logout-of-all-devices.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM session_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForUser returns the user's sessions in issuance order.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.SessionToken, error) {
	query := `
		SELECT id, user_id, token_hash, created_at
		FROM session_tokens
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.SessionToken
	for rows.Next() {
		var item models.SessionToken
		if err := rows.Scan(&item.ID, &item.UserID, &item.TokenHash, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
