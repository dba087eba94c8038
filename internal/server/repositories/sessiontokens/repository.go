package sessiontokens

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID string, tokenHash string) error
	Exists(ctx context.Context, userID string, tokenHash string) (bool, error)
	Delete(ctx context.Context, userID string, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	ListForUser(ctx context.Context, userID string) ([]*models.SessionToken, error)
}
