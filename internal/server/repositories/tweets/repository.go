// Package tweets provides the Postgres-backed store for short posts.
package tweets

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ownerID, content string) (*models.Tweet, error)
	GetByID(ctx context.Context, id string) (*models.Tweet, error)
	Update(ctx context.Context, id, content string) (*models.Tweet, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.TweetView, error)
}
