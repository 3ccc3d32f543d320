package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

func (s *CommentService) List(ctx context.Context, videoID, viewerID string, p models.Page) (models.Paginated[models.CommentView], error) {
	var empty models.Paginated[models.CommentView]
	if _, err := s.repomanager.Videos(s.db).GetByID(ctx, videoID); err != nil {
		return empty, lookupErr(err, "Video not found", "Failed to fetch video")
	}
	docs, total, err := s.repomanager.Comments(s.db).ListByVideo(ctx, videoID, viewerID, p)
	if err != nil {
		return empty, common.Internal("Failed to fetch comments", err)
	}
	return models.NewPaginated(docs, total, p), nil
}

func (s *CommentService) Add(ctx context.Context, videoID, userID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.BadRequest("Content is required")
	}
	c, err := s.repomanager.Comments(s.db).Create(ctx, videoID, userID, content)
	if err != nil {
		return nil, lookupErr(err, "Video not found", "Failed to add comment")
	}
	return c, nil
}

func (s *CommentService) owned(ctx context.Context, commentID, userID string) error {
	c, err := s.repomanager.Comments(s.db).GetByID(ctx, commentID)
	if err != nil {
		return lookupErr(err, "Comment not found", "Failed to fetch comment")
	}
	if c.OwnerID != userID {
		return common.Forbidden("You are not the owner of this comment")
	}
	return nil
}

func (s *CommentService) Update(ctx context.Context, commentID, userID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.BadRequest("Content is required")
	}
	if err := s.owned(ctx, commentID, userID); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Comments(s.db).Update(ctx, commentID, content)
	if err != nil {
		return nil, lookupErr(err, "Comment not found", "Failed to update comment")
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	if err := s.owned(ctx, commentID, userID); err != nil {
		return err
	}
	if err := s.repomanager.Comments(s.db).Delete(ctx, commentID); err != nil {
		return lookupErr(err, "Comment not found", "Failed to delete comment")
	}
	return nil
}
