package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
)

// PublishInput describes a new video. Both paths point at staged uploads.
type PublishInput struct {
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// VideoUpdate edits a video. An empty ThumbnailPath keeps the current one.
type VideoUpdate struct {
	Title         string
	Description   string
	ThumbnailPath string
}

type VideoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger
}

func NewVideoService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, logger logging.Logger) *VideoService {
	return &VideoService{db: db, repomanager: m, blobs: blobs, logger: logger.With("module", "videos")}
}

// List pages through videos. Unpublished videos are included only when the
// viewer lists their own channel.
func (s *VideoService) List(ctx context.Context, viewerID string, f models.VideoFilter, p models.Page) (models.Paginated[models.VideoWithOwner], error) {
	if f.Sort.Field != "" && !videos.ValidSortField(f.Sort.Field) {
		return models.Paginated[models.VideoWithOwner]{}, common.BadRequest("Invalid sortBy field")
	}
	f.IncludeUnpublished = f.OwnerID != "" && f.OwnerID == viewerID

	docs, total, err := s.repomanager.Videos(s.db).List(ctx, f, p)
	if err != nil {
		return models.Paginated[models.VideoWithOwner]{}, common.Internal("Failed to fetch videos", err)
	}
	return models.NewPaginated(docs, total, p), nil
}

func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishInput) (*models.Video, error) {
	defer discardTemp(in.VideoPath, in.ThumbnailPath)

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, common.BadRequest("Title and description are required")
	}
	if in.VideoPath == "" {
		return nil, common.BadRequest("Video file is required")
	}
	if in.ThumbnailPath == "" {
		return nil, common.BadRequest("Thumbnail is required")
	}
	if in.Duration < 0 {
		return nil, common.BadRequest("Duration must not be negative")
	}

	file, err := s.blobs.Upload(ctx, in.VideoPath)
	if err != nil {
		return nil, common.Internal("Error while uploading video", err)
	}
	thumb, err := s.blobs.Upload(ctx, in.ThumbnailPath)
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, file.URL)
		return nil, common.Internal("Error while uploading thumbnail", err)
	}

	v, err := s.repomanager.Videos(s.db).Create(ctx, &models.Video{
		VideoFile:   file.URL,
		Thumbnail:   thumb.URL,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		IsPublished: true,
		OwnerID:     ownerID,
	})
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, file.URL)
		deleteBlob(ctx, s.blobs, s.logger, thumb.URL)
		return nil, common.Internal("Failed to save video", err)
	}
	s.logger.Info(ctx, "video published", "video_id", v.ID, "owner_id", ownerID)
	return v, nil
}

// Watch returns the video as seen by viewerID, counting the view and
// recording it in the viewer's history.
func (s *VideoService) Watch(ctx context.Context, videoID, viewerID string) (*models.VideoDetails, error) {
	d, err := s.repomanager.Videos(s.db).GetDetails(ctx, videoID, viewerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Video not found")
		}
		return nil, common.Internal("Failed to fetch video", err)
	}
	if !d.IsPublished && d.OwnerID != viewerID {
		return nil, common.NotFound("Video not found")
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Videos(tx).IncrementViews(ctx, videoID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).AddToWatchHistory(ctx, viewerID, videoID)
	})
	if err != nil {
		return nil, common.Internal("Failed to record view", err)
	}
	d.Views++
	return d, nil
}

// owned loads the video and checks that userID owns it.
func (s *VideoService) owned(ctx context.Context, videoID, userID string) (*models.Video, error) {
	v, err := s.repomanager.Videos(s.db).GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Video not found")
		}
		return nil, common.Internal("Failed to fetch video", err)
	}
	if v.OwnerID != userID {
		return nil, common.Forbidden("You are not the owner of this video")
	}
	return v, nil
}

func (s *VideoService) Update(ctx context.Context, videoID, userID string, in VideoUpdate) (*models.Video, error) {
	defer discardTemp(in.ThumbnailPath)

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, common.BadRequest("Title and description are required")
	}

	current, err := s.owned(ctx, videoID, userID)
	if err != nil {
		return nil, err
	}

	var thumbURL string
	if in.ThumbnailPath != "" {
		thumb, err := s.blobs.Upload(ctx, in.ThumbnailPath)
		if err != nil {
			return nil, common.Internal("Error while uploading thumbnail", err)
		}
		thumbURL = thumb.URL
	}

	v, err := s.repomanager.Videos(s.db).Update(ctx, videoID, videos.Update{
		Title:       in.Title,
		Description: in.Description,
		Thumbnail:   thumbURL,
	})
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, thumbURL)
		return nil, common.Internal("Failed to update video", err)
	}
	if thumbURL != "" {
		deleteBlob(ctx, s.blobs, s.logger, current.Thumbnail)
	}
	return v, nil
}

// Delete removes the video row, then its stored objects.
func (s *VideoService) Delete(ctx context.Context, videoID, userID string) error {
	v, err := s.owned(ctx, videoID, userID)
	if err != nil {
		return err
	}
	if err := s.repomanager.Videos(s.db).Delete(ctx, videoID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound("Video not found")
		}
		return common.Internal("Failed to delete video", err)
	}
	deleteBlob(ctx, s.blobs, s.logger, v.VideoFile)
	deleteBlob(ctx, s.blobs, s.logger, v.Thumbnail)
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, videoID, userID string) (*models.Video, error) {
	if _, err := s.owned(ctx, videoID, userID); err != nil {
		return nil, err
	}
	v, err := s.repomanager.Videos(s.db).TogglePublish(ctx, videoID)
	if err != nil {
		return nil, common.Internal("Failed to toggle publish status", err)
	}
	return v, nil
}
