package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/blobstore"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

type nopBlobs struct{}

func (nopBlobs) Upload(context.Context, string) (blobstore.Object, error) {
	return blobstore.Object{}, errors.New("not used")
}

func (nopBlobs) Delete(context.Context, string) error { return nil }

func (nopBlobs) KeyFromURL(string) (string, bool) { return "", false }

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenSecret = "access-secret"
	cfg.RefreshTokenSecret = "refresh-secret"
	cfg.UploadDir = t.TempDir()
	cfg.LogLevel = "error"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func stubBlobStore(t *testing.T, err error) {
	t.Helper()
	orig := newBlobStore
	newBlobStore = func(context.Context, *config.Config, logging.Logger) (services.BlobStore, error) {
		if err != nil {
			return nil, err
		}
		return nopBlobs{}, nil
	}
	t.Cleanup(func() { newBlobStore = orig })
}

func newMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewApp_RequiresConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)

	app, err := NewApp(testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, app.logger)
}

func TestBuildHandler_ServesRoutes(t *testing.T) {
	stubBlobStore(t, nil)
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	h, cleanup, err := app.buildHandler(context.Background(), newMockDB(t), repomanager.NewPostgresRepositoryManager())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vidtube_http_requests_total")
}

func TestBuildHandler_RedisReadiness(t *testing.T) {
	stubBlobStore(t, nil)
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"
	app, err := NewApp(cfg)
	require.NoError(t, err)

	h, cleanup, err := app.buildHandler(context.Background(), newMockDB(t), repomanager.NewPostgresRepositoryManager())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data["db"])
	assert.Equal(t, "unavailable", body.Data["redis"])
}

func TestBuildHandler_BlobStoreFailure(t *testing.T) {
	stubBlobStore(t, errors.New("no credentials"))
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	_, _, err = app.buildHandler(context.Background(), newMockDB(t), repomanager.NewPostgresRepositoryManager())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob store init error")
}

func TestRun_DatabaseFailure(t *testing.T) {
	orig := openDB
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("connection refused") }
	t.Cleanup(func() { openDB = orig })

	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	err = app.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}
