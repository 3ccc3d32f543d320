// Package videos provides the Postgres-backed video store.
package videos

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Update carries the editable fields of a video. An empty Thumbnail keeps
// the current one.
type Update struct {
	Title       string
	Description string
	Thumbnail   string
}

type Repository interface {
	Create(ctx context.Context, v *models.Video) (*models.Video, error)
	GetByID(ctx context.Context, id string) (*models.Video, error)
	GetDetails(ctx context.Context, id, viewerID string) (*models.VideoDetails, error)
	List(ctx context.Context, f models.VideoFilter, p models.Page) ([]models.VideoWithOwner, int64, error)
	Update(ctx context.Context, id string, u Update) (*models.Video, error)
	Delete(ctx context.Context, id string) error
	TogglePublish(ctx context.Context, id string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	ChannelTotals(ctx context.Context, ownerID string) (videos int64, views int64, err error)
}
