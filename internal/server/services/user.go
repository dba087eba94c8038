package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/cryptox"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/blob"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/notify"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/validation"
)

// Mailer is the notification surface the user service depends on. Delivery
// is fire and forget.
type Mailer interface {
	Enqueue(ctx context.Context, msg notify.Message)
}

// UserService implements account lifecycle: signup, login, profile updates,
// avatar storage and account deletion.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	mailer      Mailer
	blobs       blob.Store
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, mailer Mailer, blobs blob.Store) *UserService {
	return &UserService{db: db, repomanager: m, tokens: tokens, mailer: mailer, blobs: blobs}
}

// hashCredentials derives a fresh salt and hash for a plaintext password.
// It refuses to proceed if the derived hash somehow equals the plaintext,
// so a plaintext password can never reach the credential store.
func hashCredentials(password string) (salt []byte, hash []byte, err error) {
	plaintext := []byte(password)
	defer common.WipeByteArray(plaintext)

	salt = cryptox.NewSalt()
	hash = cryptox.HashPassword(plaintext, salt)
	if bytes.Equal(hash, plaintext) {
		return nil, nil, common.ErrorInternal
	}
	return salt, hash, nil
}

// Register creates an account and logs the new user in, returning the user
// and their first session token.
func (s *UserService) Register(ctx context.Context, name string, email string, password string) (*models.User, string, error) {
	trimmedName, normalized, err := validation.Signup(name, email, password)
	if err != nil {
		return nil, "", err
	}

	salt, hash, err := hashCredentials(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         trimmedName,
		Email:        normalized,
		PasswordHash: hash,
		Salt:         salt,
	}

	var token string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		token, err = s.tokens.IssueWith(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			return nil, "", common.NewValidationError("email", "is already in use")
		}
		return nil, "", err
	}

	s.mailer.Enqueue(ctx, notify.Message{Email: user.Email, Name: user.Name, Kind: notify.KindWelcome})
	return user, token, nil
}

// Login verifies credentials and issues a new session token. Unknown email
// and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email string, password string) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthenticated
		}
		return nil, "", common.ErrorUnavailable
	}

	candidate := []byte(password)
	defer common.WipeByteArray(candidate)
	if !cryptox.VerifyPassword(candidate, user.Salt, user.PasswordHash) {
		return nil, "", common.ErrorUnauthenticated
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes exactly the session token used for this request.
func (s *UserService) Logout(ctx context.Context, userID string, token string) error {
	return s.tokens.Revoke(ctx, userID, token)
}

// LogoutAll revokes every session token the user holds.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAll(ctx, userID)
}

// Get returns the user's own profile.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// Update applies a validated profile patch. A password change atomically
// revokes all existing sessions and returns a freshly issued token; for
// other patches the returned token is empty.
func (s *UserService) Update(ctx context.Context, userID string, patch *validation.UserPatch) (*models.User, string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = validation.NormalizeEmail(*patch.Email)
	}
	if patch.Password != nil {
		salt, hash, err := hashCredentials(*patch.Password)
		if err != nil {
			return nil, "", err
		}
		user.Salt = salt
		user.PasswordHash = hash
	}

	var token string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Update(ctx, user); err != nil {
			return err
		}
		if patch.Password == nil {
			return nil
		}
		if err := s.tokens.RevokeAllWith(ctx, tx, userID); err != nil {
			return err
		}
		token, err = s.tokens.IssueWith(ctx, tx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorEmailTaken) {
			return nil, "", common.NewValidationError("email", "is already in use")
		}
		return nil, "", err
	}
	return user, token, nil
}

// Delete removes the account. Tasks and session tokens go with it, the
// stored avatar is cleaned up best effort, and a cancellation notice is
// queued.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repomanager.Users(s.db).Delete(ctx, userID); err != nil {
		return err
	}

	if user.AvatarKey != "" {
		_ = s.blobs.Delete(ctx, user.AvatarKey)
	}

	s.mailer.Enqueue(ctx, notify.Message{Email: user.Email, Name: user.Name, Kind: notify.KindCancellation})
	return nil
}

// SetAvatar validates an uploaded image, stores it and points the profile at
// the new object. A previous avatar object is removed best effort.
func (s *UserService) SetAvatar(ctx context.Context, userID string, data []byte) error {
	contentType, err := blob.SniffImage(data)
	if err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}

	key := blob.NewObjectKey()
	if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("storing avatar: %w", err)
	}

	if err := s.repomanager.Users(s.db).SetAvatarKey(ctx, userID, key); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return err
	}

	if user.AvatarKey != "" {
		_ = s.blobs.Delete(ctx, user.AvatarKey)
	}
	return nil
}

// Avatar fetches a user's avatar bytes and content type. Users without an
// avatar are reported as not found.
func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.AvatarKey == "" {
		return nil, "", common.ErrorNotFound
	}

	data, contentType, err := s.blobs.Get(ctx, user.AvatarKey)
	if err != nil {
		return nil, "", common.ErrorUnavailable
	}
	return data, contentType, nil
}

// DeleteAvatar clears the profile's avatar reference and removes the object.
func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarKey == "" {
		return common.ErrorNotFound
	}

	if err := s.repomanager.Users(s.db).SetAvatarKey(ctx, userID, ""); err != nil {
		return err
	}
	_ = s.blobs.Delete(ctx, user.AvatarKey)
	return nil
}
