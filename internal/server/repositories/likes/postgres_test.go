package likes

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
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
	return NewPostgresRepository(db), mock, db
}

func TestToggle_LikeThenUnlike(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+likes\s+WHERE\s+video\s*=\s*\$1\s+AND\s+liked_by\s*=\s*\$2`).
		WithArgs("v1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT\s+INTO\s+likes\s+\(video,\s*liked_by\)\s+VALUES\s+\(\$1,\s*\$2\)\s+ON\s+CONFLICT\s+DO\s+NOTHING`).
		WithArgs("v1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+likes\s+WHERE\s+video\s*=`).
		WithArgs("v1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))

	liked, err := repo.Toggle(context.Background(), models.LikeVideo, "v1", "u1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.Toggle(context.Background(), models.LikeVideo, "v1", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggle_UsesTargetColumn(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+likes\s+WHERE\s+tweet\s*=`).WithArgs("t1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT\s+INTO\s+likes\s+\(tweet,`).WithArgs("t1", "u1").WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Toggle(context.Background(), models.LikeTweet, "t1", "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestToggle_InvalidTarget(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Toggle(context.Background(), models.LikeTarget("users"), "x", "u1")
	assert.ErrorIs(t, err, common.ErrorValidation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLikedVideos(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	cols := []string{"id", "video_file", "thumbnail", "title", "description", "duration", "views",
		"is_published", "owner_id", "created_at", "updated_at", "oid", "ou", "of", "oa", "likes"}
	mock.ExpectQuery(`(?s)FROM\s+likes\s+lk\s+JOIN\s+videos\s+v`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("v1", "f", "t", "title", "d", 1.0, int64(2), true, "o1", now, now, "o1", "own", "Own", "a", int64(3)))

	got, err := repo.LikedVideos(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].LikesCount)
}

func TestCountOnOwnerVideos(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+likes\s+l\s+JOIN\s+videos`).WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(12)))

	n, err := repo.CountOnOwnerVideos(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
