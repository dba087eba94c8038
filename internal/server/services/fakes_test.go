package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/notify"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessiontokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// In-memory repository fakes. The DBTX handed to the manager is ignored,
// tests that exercise transactions pair these with a sqlmock database.

type fakeUserRepo struct {
	seq   int
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorEmailTaken
		}
	}
	r.seq++
	stored := *user
	stored.ID = fmt.Sprintf("u-%d", r.seq)
	r.users[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return common.ErrorEmailTaken
		}
	}
	copied := *user
	copied.AvatarKey = stored.AvatarKey
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetAvatarKey(ctx context.Context, userID string, key string) error {
	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	u.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, userID)
	return nil
}

type fakeTokenRepo struct {
	hashes map[string]map[string]bool
	addErr error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{hashes: make(map[string]map[string]bool)}
}

func (r *fakeTokenRepo) Add(ctx context.Context, userID string, tokenHash string) error {
	if r.addErr != nil {
		return r.addErr
	}
	if r.hashes[userID] == nil {
		r.hashes[userID] = make(map[string]bool)
	}
	r.hashes[userID][tokenHash] = true
	return nil
}

func (r *fakeTokenRepo) Exists(ctx context.Context, userID string, tokenHash string) (bool, error) {
	return r.hashes[userID][tokenHash], nil
}

func (r *fakeTokenRepo) Delete(ctx context.Context, userID string, tokenHash string) error {
	if !r.hashes[userID][tokenHash] {
		return common.ErrorNotFound
	}
	delete(r.hashes[userID], tokenHash)
	return nil
}

func (r *fakeTokenRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	delete(r.hashes, userID)
	return nil
}

func (r *fakeTokenRepo) ListForUser(ctx context.Context, userID string) ([]*models.SessionToken, error) {
	var result []*models.SessionToken
	for hash := range r.hashes[userID] {
		result = append(result, &models.SessionToken{UserID: userID, TokenHash: hash})
	}
	return result, nil
}

func (r *fakeTokenRepo) count(userID string) int {
	return len(r.hashes[userID])
}

type fakeTaskRepo struct {
	seq   int
	tasks map[string]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*models.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.seq++
	stored := *task
	stored.ID = fmt.Sprintf("t-%d", r.seq)
	r.tasks[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *fakeTaskRepo) List(ctx context.Context, ownerID string, q tasks.Query) ([]*models.Task, error) {
	var result []*models.Task
	for _, t := range r.tasks {
		if t.UserID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, ownerID string, taskID string) (*models.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, ownerID string, taskID string, description *string, completed *bool) (*models.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	if description != nil {
		t.Description = *description
	}
	if completed != nil {
		t.Completed = *completed
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, ownerID string, taskID string) error {
	t, ok := r.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

type fakeRepoManager struct {
	userRepo  *fakeUserRepo
	tokenRepo *fakeTokenRepo
	taskRepo  *fakeTaskRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		userRepo:  newFakeUserRepo(),
		tokenRepo: newFakeTokenRepo(),
		taskRepo:  newFakeTaskRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.userRepo }
func (m *fakeRepoManager) SessionTokens(db dbx.DBTX) sessiontokens.Repository {
	return m.tokenRepo
}
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository { return m.taskRepo }

type fakeMailer struct {
	messages []notify.Message
}

func (f *fakeMailer) Enqueue(ctx context.Context, msg notify.Message) {
	f.messages = append(f.messages, msg)
}

type fakeBlobStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte), contentTypes: make(map[string]string)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	f.contentTypes[key] = contentType
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", common.ErrorNotFound
	}
	return data, f.contentTypes[key], nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	delete(f.contentTypes, key)
	return nil
}
