package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	repo := NewPostgresRepository(db)
	repo.hash = func(p string) (string, error) { return "hashed:" + p, nil }
	return repo, mock, db
}

var userCols = []string{"id", "username", "email", "full_name", "avatar", "cover_image", "created_at", "updated_at"}

func userRow(id, username string) *sqlmock.Rows {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows(userCols).AddRow(id, username, username+"@example.com", "Full "+username, "http://a/"+username, "", ts, ts)
}

func TestCreate_HashesAndLowercases(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(username,\s*email,\s*full_name,\s*avatar,\s*cover_image,\s*password\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,`
	mock.ExpectQuery(q).
		WithArgs("alice", "alice@example.com", "Alice", "http://a/avatar", "", "hashed:pw").
		WillReturnRows(userRow("u-1", "alice"))

	got, err := repo.Create(context.Background(), NewUser{
		Username: "Alice", Email: "ALICE@example.com", FullName: "Alice", Avatar: "http://a/avatar", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice", got.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), NewUser{Username: "a", Email: "a@x", Password: "p"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_HashError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	repo.hash = func(string) (string, error) { return "", errors.New("too long") }

	_, err := repo.Create(context.Background(), NewUser{Username: "a", Email: "a@x", Password: "p"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "nothing must be written")
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs("u-1").WillReturnRows(userRow("u-1", "alice"))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("u-2").WillReturnError(errors.New("db err"))

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "u-2")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsernameOrEmail_NormalizesInput(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+users\s+WHERE\s+\(\$1\s*<>\s*''\s+AND\s+username\s*=\s*\$1\)\s+OR\s+\(\$2\s*<>\s*''\s+AND\s+email\s*=\s*\$2\)`
	mock.ExpectQuery(q).WithArgs("", "bob@example.com").WillReturnRows(userRow("u-2", "bob"))

	u, err := repo.GetByUsernameOrEmail(context.Background(), "  ", " Bob@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
}

func TestGetPasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+password\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow("$2a$10$hash"))

	h, err := repo.GetPasswordHash(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", h)
}

func TestUpdateFields_WithoutPasswordDoesNotTouchHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	hashCalls := 0
	repo.hash = func(p string) (string, error) { hashCalls++; return "h", nil }

	name, email := "New Name", "NEW@example.com"
	q := `(?s)^UPDATE\s+users\s+SET\s+full_name\s*=\s*\$1,\s*email\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$3\s+RETURNING`
	mock.ExpectQuery(q).WithArgs("New Name", "new@example.com", "u-1").WillReturnRows(userRow("u-1", "alice"))

	_, err := repo.UpdateFields(context.Background(), "u-1", Fields{FullName: &name, Email: &email})
	require.NoError(t, err)
	assert.Zero(t, hashCalls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_PasswordIsHashed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	pw := "new-secret"
	q := `(?s)^UPDATE\s+users\s+SET\s+password\s*=\s*\$1,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$2\s+RETURNING`
	mock.ExpectQuery(q).WithArgs("hashed:new-secret", "u-1").WillReturnRows(userRow("u-1", "alice"))

	_, err := repo.UpdateFields(context.Background(), "u-1", Fields{Password: &pw})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_EmptyIsRead(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+id\s*=\s*\$1$`).WithArgs("u-1").WillReturnRows(userRow("u-1", "alice"))

	u, err := repo.UpdateFields(context.Background(), "u-1", Fields{})
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
}

func TestUpdateFields_EmailConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	email := "taken@example.com"
	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.UpdateFields(context.Background(), "u-1", Fields{Email: &email})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestChannelProfile(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cols := []string{"id", "username", "full_name", "email", "avatar", "cover_image", "subs", "subscribed_to", "is_subscribed"}
	mock.ExpectQuery(`(?s)FROM\s+users\s+u\s+WHERE\s+u\.username\s*=\s*\$1`).WithArgs("chan", "viewer").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c-1", "chan", "Channel", "c@x", "a", "c", int64(3), int64(1), true))
	mock.ExpectQuery(`(?s)FROM\s+users\s+u\s+WHERE\s+u\.username\s*=\s*\$1`).WithArgs("nobody", "viewer").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.ChannelProfile(context.Background(), " Chan ", "viewer")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.SubscribersCount)
	assert.Equal(t, int64(1), p.ChannelsSubscribedToCount)
	assert.True(t, p.IsSubscribed)

	_, err = repo.ChannelProfile(context.Background(), "nobody", "viewer")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWatchHistory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now()
	cols := []string{"id", "video_file", "thumbnail", "title", "description", "duration", "views",
		"is_published", "owner_id", "created_at", "updated_at", "oid", "ousername", "ofull_name", "oavatar", "likes"}
	rows := sqlmock.NewRows(cols).
		AddRow("v2", "f2", "t2", "second", "d", 1.5, int64(4), true, "o1", ts, ts, "o1", "owner", "Owner", "av", int64(2)).
		AddRow("v1", "f1", "t1", "first", "d", 3.0, int64(9), true, "o1", ts, ts, "o1", "owner", "Owner", "av", int64(0))
	mock.ExpectQuery(`(?s)FROM\s+watch_history\s+h.*ORDER\s+BY\s+h\.watched_at\s+DESC`).WithArgs("u-1").WillReturnRows(rows)

	got, err := repo.WatchHistory(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "v2", got[0].ID)
	assert.Equal(t, "owner", got[0].Owner.Username)
	assert.Equal(t, int64(2), got[0].LikesCount)
}

func TestAddToWatchHistory_Upserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+watch_history.*ON\s+CONFLICT\s+\(user_id,\s*video_id\)\s+DO\s+UPDATE`).
		WithArgs("u-1", "v-1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddToWatchHistory(context.Background(), "u-1", "v-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
