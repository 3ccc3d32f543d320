package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

type PlaylistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPlaylistService(db *sql.DB, m repomanager.RepositoryManager) *PlaylistService {
	return &PlaylistService{db: db, repomanager: m}
}

func (s *PlaylistService) Create(ctx context.Context, userID, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, common.BadRequest("Name and description are required")
	}
	p, err := s.repomanager.Playlists(s.db).Create(ctx, userID, name, description)
	if err != nil {
		return nil, common.Internal("Failed to create playlist", err)
	}
	return p, nil
}

func (s *PlaylistService) ListByUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	out, err := s.repomanager.Playlists(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, common.Internal("Failed to fetch playlists", err)
	}
	return out, nil
}

func (s *PlaylistService) Get(ctx context.Context, playlistID string) (*models.PlaylistDetails, error) {
	d, err := s.repomanager.Playlists(s.db).Details(ctx, playlistID)
	if err != nil {
		return nil, lookupErr(err, "Playlist not found", "Failed to fetch playlist")
	}
	return d, nil
}

func (s *PlaylistService) owned(ctx context.Context, playlistID, userID string) error {
	p, err := s.repomanager.Playlists(s.db).GetByID(ctx, playlistID)
	if err != nil {
		return lookupErr(err, "Playlist not found", "Failed to fetch playlist")
	}
	if p.OwnerID != userID {
		return common.Forbidden("You are not the owner of this playlist")
	}
	return nil
}

func (s *PlaylistService) Update(ctx context.Context, playlistID, userID, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, common.BadRequest("Name and description are required")
	}
	if err := s.owned(ctx, playlistID, userID); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Playlists(s.db).Update(ctx, playlistID, name, description)
	if err != nil {
		return nil, lookupErr(err, "Playlist not found", "Failed to update playlist")
	}
	return p, nil
}

func (s *PlaylistService) Delete(ctx context.Context, playlistID, userID string) error {
	if err := s.owned(ctx, playlistID, userID); err != nil {
		return err
	}
	if err := s.repomanager.Playlists(s.db).Delete(ctx, playlistID); err != nil {
		return lookupErr(err, "Playlist not found", "Failed to delete playlist")
	}
	return nil
}

func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, userID string) (*models.PlaylistDetails, error) {
	if err := s.owned(ctx, playlistID, userID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Videos(s.db).GetByID(ctx, videoID); err != nil {
		return nil, lookupErr(err, "Video not found", "Failed to fetch video")
	}
	if err := s.repomanager.Playlists(s.db).AddVideo(ctx, playlistID, videoID); err != nil {
		return nil, lookupErr(err, "Video not found", "Failed to add video to playlist")
	}
	return s.Get(ctx, playlistID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, userID string) (*models.PlaylistDetails, error) {
	if err := s.owned(ctx, playlistID, userID); err != nil {
		return nil, err
	}
	if err := s.repomanager.Playlists(s.db).RemoveVideo(ctx, playlistID, videoID); err != nil {
		return nil, common.Internal("Failed to remove video from playlist", err)
	}
	return s.Get(ctx, playlistID)
}
