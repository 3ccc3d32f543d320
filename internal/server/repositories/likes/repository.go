// Package likes provides the Postgres-backed store for likes on videos,
// comments and tweets.
package likes

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	// Toggle flips userID's like on the target and reports the new state.
	Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
	// CountOnOwnerVideos counts likes received by all videos of ownerID.
	CountOnOwnerVideos(ctx context.Context, ownerID string) (int64, error)
}
