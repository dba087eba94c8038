package sessiontokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestAdd(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+session_tokens\s*\(user_id,\s*token_hash\)`).
		WithArgs("u-1", "hash-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Add(context.Background(), "u-1", "hash-1"); err != nil {
		t.Fatalf("Add error: %v", err)
	}
}

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("u-1", "hash-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "u-1", "hash-1")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if !ok {
		t.Fatal("expected membership")
	}
}

func TestExists_Revoked(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("u-1", "hash-gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.Exists(context.Background(), "u-1", "hash-gone")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if ok {
		t.Fatal("revoked token must not be a member")
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+session_tokens\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+token_hash\s*=\s*\$2`).
		WithArgs("u-1", "hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "u-1", "hash-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_AlreadyGone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+session_tokens`).
		WithArgs("u-1", "hash-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "u-1", "hash-1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDeleteAllForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+session_tokens\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteAllForUser(context.Background(), "u-1"); err != nil {
		t.Fatalf("DeleteAllForUser error: %v", err)
	}
}

func TestListForUser_IssuanceOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "created_at"}).
		AddRow(int64(1), "u-1", "hash-a", now).
		AddRow(int64(2), "u-1", "hash-b", now)
	mock.ExpectQuery(`SELECT\s+id,\s*user_id,\s*token_hash,\s*created_at\s+FROM\s+session_tokens.+ORDER\s+BY\s+id`).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListForUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListForUser error: %v", err)
	}
	if len(got) != 2 || got[0].TokenHash != "hash-a" || got[1].TokenHash != "hash-b" {
		t.Fatalf("unexpected result: %+v", got)
	}
}
