package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideos struct {
	videos.Repository

	byID      map[string]*models.Video
	details   *models.VideoDetails
	listOut   []models.VideoWithOwner
	listTotal int64
	listErr   error

	lastFilter models.VideoFilter
	lastUpdate videos.Update
	created    *models.Video
	deleted    []string
	views      int
	totals     [2]int64
	totalsErr  error
}

func (f *fakeVideos) GetByID(ctx context.Context, id string) (*models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) GetDetails(ctx context.Context, id, viewerID string) (*models.VideoDetails, error) {
	if f.details == nil || f.details.ID != id {
		return nil, common.ErrorNotFound
	}
	cp := *f.details
	return &cp, nil
}

func (f *fakeVideos) List(ctx context.Context, fl models.VideoFilter, p models.Page) ([]models.VideoWithOwner, int64, error) {
	f.lastFilter = fl
	return f.listOut, f.listTotal, f.listErr
}

func (f *fakeVideos) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	cp := *v
	cp.ID = "v-new"
	f.created = &cp
	return &cp, nil
}

func (f *fakeVideos) Update(ctx context.Context, id string, u videos.Update) (*models.Video, error) {
	f.lastUpdate = u
	v := *f.byID[id]
	v.Title = u.Title
	if u.Thumbnail != "" {
		v.Thumbnail = u.Thumbnail
	}
	return &v, nil
}

func (f *fakeVideos) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVideos) TogglePublish(ctx context.Context, id string) (*models.Video, error) {
	v := *f.byID[id]
	v.IsPublished = !v.IsPublished
	return &v, nil
}

func (f *fakeVideos) IncrementViews(ctx context.Context, id string) error {
	f.views++
	return nil
}

func (f *fakeVideos) ChannelTotals(ctx context.Context, ownerID string) (int64, int64, error) {
	return f.totals[0], f.totals[1], f.totalsErr
}

func newVideoFixture(t *testing.T) (*VideoService, *fakeRepoMgr, *fakeVideos, *fakeBlobs) {
	t.Helper()
	rm := newFakeRepoMgr()
	fv := &fakeVideos{byID: map[string]*models.Video{
		"v1": {ID: "v1", OwnerID: alice.ID, Title: "t", VideoFile: "http://cdn/k/v1.mp4", Thumbnail: "http://cdn/k/v1.png", IsPublished: true},
	}}
	rm.videos = fv
	blobs := &fakeBlobs{uploadErr: map[string]error{}}
	return NewVideoService(nil, rm, blobs, logging.Nop{}), rm, fv, blobs
}

func TestVideoList_OwnerSeesUnpublished(t *testing.T) {
	s, _, fv, _ := newVideoFixture(t)
	fv.listOut = []models.VideoWithOwner{{Video: models.Video{ID: "v1"}}}
	fv.listTotal = 11
	ctx := context.Background()

	page, err := s.List(ctx, alice.ID, models.VideoFilter{OwnerID: alice.ID}, models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.True(t, fv.lastFilter.IncludeUnpublished)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)

	_, err = s.List(ctx, bob.ID, models.VideoFilter{OwnerID: alice.ID}, models.Page{})
	require.NoError(t, err)
	assert.False(t, fv.lastFilter.IncludeUnpublished)

	_, err = s.List(ctx, bob.ID, models.VideoFilter{Sort: models.VideoSort{Field: "password"}}, models.Page{})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestVideoPublish(t *testing.T) {
	s, _, fv, blobs := newVideoFixture(t)
	ctx := context.Background()

	_, err := s.Publish(ctx, alice.ID, PublishInput{Title: "t", Description: "d", VideoPath: stagedFile(t, "v.mp4")})
	assertMessage(t, err, "Thumbnail is required")

	vp, tp := stagedFile(t, "v.mp4"), stagedFile(t, "t.png")
	v, err := s.Publish(ctx, alice.ID, PublishInput{Title: " t ", Description: "d", Duration: 12.5, VideoPath: vp, ThumbnailPath: tp})
	require.NoError(t, err)
	assert.Equal(t, "t", v.Title)
	assert.Equal(t, "http://cdn/k/"+vp, fv.created.VideoFile)
	assert.Equal(t, 12.5, fv.created.Duration)
	assert.True(t, fv.created.IsPublished)
	assert.Empty(t, blobs.deleted)
}

func TestVideoPublish_ThumbnailFailureRollsBackVideoObject(t *testing.T) {
	s, _, _, blobs := newVideoFixture(t)

	vp, tp := stagedFile(t, "v.mp4"), stagedFile(t, "t.png")
	blobs.uploadErr[tp] = errors.New("s3 down")

	_, err := s.Publish(context.Background(), alice.ID, PublishInput{Title: "t", Description: "d", VideoPath: vp, ThumbnailPath: tp})
	assertStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, []string{"k/" + vp}, blobs.deleted)
}

func TestVideoWatch_CountsViewAndHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rm := newFakeRepoMgr()
	fv := &fakeVideos{details: &models.VideoDetails{Video: models.Video{ID: "v1", OwnerID: alice.ID, Views: 4, IsPublished: true}}}
	rm.videos = fv
	s := NewVideoService(db, rm, &fakeBlobs{}, logging.Nop{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	d, err := s.Watch(context.Background(), "v1", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Views)
	assert.Equal(t, 1, fv.views)
	assert.Equal(t, []string{"v1"}, rm.users.history[bob.ID])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoWatch_UnpublishedHiddenFromOthers(t *testing.T) {
	rm := newFakeRepoMgr()
	rm.videos = &fakeVideos{details: &models.VideoDetails{Video: models.Video{ID: "v1", OwnerID: alice.ID}}}
	s := NewVideoService(nil, rm, &fakeBlobs{}, logging.Nop{})

	_, err := s.Watch(context.Background(), "v1", bob.ID)
	assertStatus(t, err, http.StatusNotFound)

	_, err = s.Watch(context.Background(), "v2", bob.ID)
	assertMessage(t, err, "Video not found")
}

func TestVideoUpdate(t *testing.T) {
	s, _, fv, blobs := newVideoFixture(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "v1", bob.ID, VideoUpdate{Title: "x", Description: "y"})
	assertStatus(t, err, http.StatusForbidden)

	v, err := s.Update(ctx, "v1", alice.ID, VideoUpdate{Title: "x", Description: "y"})
	require.NoError(t, err)
	assert.Equal(t, "x", v.Title)
	assert.Empty(t, fv.lastUpdate.Thumbnail)
	assert.Empty(t, blobs.deleted)

	tp := stagedFile(t, "new.png")
	_, err = s.Update(ctx, "v1", alice.ID, VideoUpdate{Title: "x", Description: "y", ThumbnailPath: tp})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/k/"+tp, fv.lastUpdate.Thumbnail)
	assert.Equal(t, []string{"k/v1.png"}, blobs.deleted)
}

func TestVideoDelete(t *testing.T) {
	s, _, fv, blobs := newVideoFixture(t)
	ctx := context.Background()

	assertStatus(t, s.Delete(ctx, "v1", bob.ID), http.StatusForbidden)
	assertStatus(t, s.Delete(ctx, "missing", alice.ID), http.StatusNotFound)

	require.NoError(t, s.Delete(ctx, "v1", alice.ID))
	assert.Equal(t, []string{"v1"}, fv.deleted)
	assert.ElementsMatch(t, []string{"k/v1.mp4", "k/v1.png"}, blobs.deleted)
}

func TestVideoTogglePublish(t *testing.T) {
	s, _, _, _ := newVideoFixture(t)

	v, err := s.TogglePublish(context.Background(), "v1", alice.ID)
	require.NoError(t, err)
	assert.False(t, v.IsPublished)

	_, err = s.TogglePublish(context.Background(), "v1", bob.ID)
	assertStatus(t, err, http.StatusForbidden)
}
