package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

var likeTargetNames = map[models.LikeTarget]string{
	models.LikeVideo:   "Video",
	models.LikeComment: "Comment",
	models.LikeTweet:   "Tweet",
}

type LikeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewLikeService(db *sql.DB, m repomanager.RepositoryManager) *LikeService {
	return &LikeService{db: db, repomanager: m}
}

// Toggle flips userID's like on the target. It returns the new state and the
// message describing it.
func (s *LikeService) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, string, error) {
	name, ok := likeTargetNames[target]
	if !ok {
		return false, "", common.BadRequest("Invalid like target")
	}
	liked, err := s.repomanager.Likes(s.db).Toggle(ctx, target, targetID, userID)
	if err != nil {
		return false, "", lookupErr(err, name+" not found", "Failed to toggle like")
	}
	if liked {
		return true, name + " liked successfully", nil
	}
	return false, name + " unliked successfully", nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	out, err := s.repomanager.Likes(s.db).LikedVideos(ctx, userID)
	if err != nil {
		return nil, common.Internal("Failed to fetch liked videos", err)
	}
	return out, nil
}
