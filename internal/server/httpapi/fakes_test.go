package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/cryptox"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/ratelimit"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

var alice = models.User{ID: "11111111-1111-1111-1111-111111111111", Username: "alice", Email: "alice@example.com", FullName: "Alice"}

const alicePassword = "s3cret-pass"

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	users  *memUsers
	tokens *memTokens
}

func (f *fakeRepoMgr) Users(dbx.DBTX) users.Repository                 { return f.users }
func (f *fakeRepoMgr) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return f.tokens }

type memUsers struct {
	users.Repository

	mu     sync.Mutex
	byID   map[string]models.User
	hashes map[string]string
}

func (m *memUsers) add(t *testing.T, u models.User, password string) {
	t.Helper()
	h, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = u
	m.hashes[u.ID] = h
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if (username != "" && u.Username == strings.ToLower(username)) || (email != "" && u.Email == strings.ToLower(email)) {
			cp := u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetPasswordHash(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[id]
	if !ok {
		return "", common.ErrorNotFound
	}
	return h, nil
}

type memTokens struct {
	refreshtokens.Repository

	mu     sync.Mutex
	slots  map[string]string
	writes int
}

func (m *memTokens) current(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[id]
}

func (m *memTokens) Get(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[userID], nil
}

func (m *memTokens) Set(ctx context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[userID] = token
	m.writes++
	return nil
}

func (m *memTokens) Swap(ctx context.Context, userID, old, new string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old == "" || m.slots[userID] != old {
		return false, nil
	}
	m.slots[userID] = new
	m.writes++
	return true, nil
}

func (m *memTokens) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, userID)
	m.writes++
	return nil
}

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	keys       []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.retryAfter, f.err
}

// --- fixture ---

type fixture struct {
	t       *testing.T
	cfg     *config.Config
	repos   *fakeRepoMgr
	metrics *metrics.Recorder
	server  http.Handler
}

type fixtureOption func(*Options)

func withLimiter(l ratelimit.Limiter) fixtureOption {
	return func(o *Options) { o.Limiter = l }
}

func withChecks(checks map[string]Check) fixtureOption {
	return func(o *Options) { o.Checks = checks }
}

func withTrustProxy() fixtureOption {
	return func(o *Options) { o.Config.TrustProxy = true }
}

func withOrigins(origins ...string) fixtureOption {
	return func(o *Options) { o.Config.CORSOrigins = origins }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		CORSOrigins:        []string{"*"},
		UploadDir:          t.TempDir(),
		MaxJSONBytes:       1 << 10,
		MaxUploadBytes:     1 << 20,
	}
	repos := &fakeRepoMgr{
		users:  &memUsers{byID: map[string]models.User{}, hashes: map[string]string{}},
		tokens: &memTokens{slots: map[string]string{}},
	}
	repos.users.add(t, alice, alicePassword)

	log := logging.Nop{}
	sessions := services.NewSessionService(nil, repos, cfg)
	svc := Services{
		Sessions:      sessions,
		Users:         services.NewUserService(nil, repos, sessions, nil, log),
		Videos:        services.NewVideoService(nil, repos, nil, log),
		Comments:      services.NewCommentService(nil, repos),
		Likes:         services.NewLikeService(nil, repos),
		Tweets:        services.NewTweetService(nil, repos),
		Subscriptions: services.NewSubscriptionService(nil, repos),
		Playlists:     services.NewPlaylistService(nil, repos),
		Dashboard:     services.NewDashboardService(nil, repos),
	}

	o := Options{Config: cfg, Metrics: metrics.New(), Logger: log}
	for _, opt := range opts {
		opt(&o)
	}
	h, err := NewHandler(svc, o)
	require.NoError(t, err)

	return &fixture{t: t, cfg: cfg, repos: repos, metrics: o.Metrics, server: h.Routes()}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	f.t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// login signs alice in and returns the response cookies by name.
func (f *fixture) login() map[string]*http.Cookie {
	f.t.Helper()
	rec := f.do(jsonRequest(http.MethodPost, "/api/v1/users/login", `{"username":"alice","password":"`+alicePassword+`"}`))
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return cookiesByName(rec)
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

type decoded struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d), rec.Body.String())
	return d
}
