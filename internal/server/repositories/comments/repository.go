// Package comments provides the Postgres-backed store for video comments.
package comments

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, videoID, ownerID, content string) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByVideo(ctx context.Context, videoID, viewerID string, p models.Page) ([]models.CommentView, int64, error)
}
