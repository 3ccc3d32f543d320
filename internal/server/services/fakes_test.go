package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/cryptox"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/blobstore"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/comments"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/likes"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/playlists"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/tweets"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- repository manager ---

type fakeRepoMgr struct {
	repomanager.RepositoryManager

	users     *memUsers
	tokens    *memTokens
	videos    videos.Repository
	comments  comments.Repository
	likes     likes.Repository
	tweets    tweets.Repository
	subs      subscriptions.Repository
	playlists playlists.Repository
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{users: newMemUsers(), tokens: newMemTokens()}
}

func (f *fakeRepoMgr) Users(dbx.DBTX) users.Repository                 { return f.users }
func (f *fakeRepoMgr) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return f.tokens }
func (f *fakeRepoMgr) Videos(dbx.DBTX) videos.Repository               { return f.videos }
func (f *fakeRepoMgr) Comments(dbx.DBTX) comments.Repository           { return f.comments }
func (f *fakeRepoMgr) Likes(dbx.DBTX) likes.Repository                 { return f.likes }
func (f *fakeRepoMgr) Tweets(dbx.DBTX) tweets.Repository               { return f.tweets }
func (f *fakeRepoMgr) Subscriptions(dbx.DBTX) subscriptions.Repository { return f.subs }
func (f *fakeRepoMgr) Playlists(dbx.DBTX) playlists.Repository         { return f.playlists }

// --- users ---

type memUsers struct {
	users.Repository

	mu       sync.Mutex
	byID     map[string]*models.User
	hashes   map[string]string
	history  map[string][]string
	nextID   int
	getErr   error
	writes   int
	profiles map[string]*models.ChannelProfile
}

func newMemUsers() *memUsers {
	return &memUsers{
		byID:     map[string]*models.User{},
		hashes:   map[string]string{},
		history:  map[string][]string{},
		profiles: map[string]*models.ChannelProfile{},
	}
}

func (m *memUsers) add(t *testing.T, u models.User, password string) *models.User {
	t.Helper()
	h, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.byID[u.ID] = &cp
	m.hashes[u.ID] = h
	return &cp
}

func (m *memUsers) Create(ctx context.Context, in users.NewUser) (*models.User, error) {
	h, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == strings.ToLower(in.Username) || u.Email == strings.ToLower(in.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	m.nextID++
	u := &models.User{
		ID:         fmt.Sprintf("%08d-0000-0000-0000-000000000000", m.nextID),
		Username:   strings.ToLower(in.Username),
		Email:      strings.ToLower(in.Email),
		FullName:   in.FullName,
		Avatar:     in.Avatar,
		CoverImage: in.CoverImage,
	}
	m.byID[u.ID] = u
	m.hashes[u.ID] = h
	m.writes++
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if (username != "" && u.Username == strings.ToLower(username)) || (email != "" && u.Email == strings.ToLower(email)) {
			cp := *u
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

func (m *memUsers) UpdateFields(ctx context.Context, id string, f users.Fields) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if f.Email != nil {
		for oid, o := range m.byID {
			if oid != id && o.Email == strings.ToLower(*f.Email) {
				return nil, common.ErrorAlreadyExists
			}
		}
		u.Email = strings.ToLower(*f.Email)
	}
	if f.FullName != nil {
		u.FullName = *f.FullName
	}
	if f.Avatar != nil {
		u.Avatar = *f.Avatar
	}
	if f.CoverImage != nil {
		u.CoverImage = *f.CoverImage
	}
	if f.Password != nil {
		h, err := cryptox.HashPassword(*f.Password)
		if err != nil {
			return nil, err
		}
		m.hashes[id] = h
	}
	m.writes++
	cp := *u
	return &cp, nil
}

func (m *memUsers) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (m *memUsers) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.VideoWithOwner{}
	for _, id := range m.history[userID] {
		out = append(out, models.VideoWithOwner{Video: models.Video{ID: id}})
	}
	return out, nil
}

func (m *memUsers) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := []string{videoID}
	for _, id := range m.history[userID] {
		if id != videoID {
			h = append(h, id)
		}
	}
	m.history[userID] = h
	return nil
}

// --- refresh tokens ---

type memTokens struct {
	refreshtokens.Repository

	mu     sync.Mutex
	slots  map[string]string
	setErr error
	writes int
}

func newMemTokens() *memTokens {
	return &memTokens{slots: map[string]string{}}
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
	if m.setErr != nil {
		return m.setErr
	}
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

// --- blob store ---

type fakeBlobs struct {
	mu        sync.Mutex
	uploadErr map[string]error
	uploaded  []string
	deleted   []string
}

func (f *fakeBlobs) Upload(ctx context.Context, localPath string) (blobstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[localPath]; err != nil {
		return blobstore.Object{}, err
	}
	f.uploaded = append(f.uploaded, localPath)
	key := "k/" + localPath
	return blobstore.Object{Key: key, URL: "http://cdn/" + key}, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobs) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "http://cdn/") {
		return "", false
	}
	return strings.TrimPrefix(url, "http://cdn/"), true
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
	}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	got, _ := common.StatusOf(err)
	assert.Equal(t, want, got, "error: %v", err)
}

func assertMessage(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	_, msg := common.StatusOf(err)
	assert.Equal(t, want, msg)
}

var (
	alice = models.User{ID: "11111111-1111-1111-1111-111111111111", Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	bob   = models.User{ID: "22222222-2222-2222-2222-222222222222", Username: "bob", Email: "bob@example.com", FullName: "Bob"}
)
