// Package playlists provides the Postgres-backed store for user playlists
// and their ordered videos.
package playlists

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ownerID, name, description string) (*models.Playlist, error)
	GetByID(ctx context.Context, id string) (*models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (*models.Playlist, error)
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error)
	Details(ctx context.Context, id string) (*models.PlaylistDetails, error)
	// AddVideo appends videoID; adding a video already present is a no-op.
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}
