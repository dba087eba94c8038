// Package blob stores avatar images in an S3-compatible object store.
// Payloads are validated (content-type allow-list, size cap) before anything
// reaches storage.
package blob

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/google/uuid"
)

// MaxAvatarBytes caps avatar uploads at 1 MiB.
const MaxAvatarBytes = 1 << 20

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Store is the object-storage surface the user service depends on.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey returns a fresh storage key partitioned by date.
func NewObjectKey() string {
	d := time.Now()
	return fmt.Sprintf("avatars/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// SniffImage validates an avatar payload and returns its detected content
// type. The type is sniffed from the bytes, never trusted from the request.
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", common.NewValidationError("avatar", "is empty")
	}
	if len(data) > MaxAvatarBytes {
		return "", common.NewValidationError("avatar", "exceeds the 1 MiB limit")
	}
	contentType := http.DetectContentType(data)
	if _, ok := allowedContentTypes[contentType]; !ok {
		return "", common.NewValidationError("avatar", "must be a JPEG or PNG image")
	}
	return contentType, nil
}
