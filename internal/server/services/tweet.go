package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

type TweetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTweetService(db *sql.DB, m repomanager.RepositoryManager) *TweetService {
	return &TweetService{db: db, repomanager: m}
}

func (s *TweetService) Create(ctx context.Context, userID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.BadRequest("Content is required")
	}
	t, err := s.repomanager.Tweets(s.db).Create(ctx, userID, content)
	if err != nil {
		return nil, common.Internal("Failed to create tweet", err)
	}
	return t, nil
}

func (s *TweetService) ListByUser(ctx context.Context, ownerID, viewerID string) ([]models.TweetView, error) {
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, ownerID); err != nil {
		return nil, lookupErr(err, "User not found", "Failed to fetch user")
	}
	out, err := s.repomanager.Tweets(s.db).ListByOwner(ctx, ownerID, viewerID)
	if err != nil {
		return nil, common.Internal("Failed to fetch tweets", err)
	}
	return out, nil
}

func (s *TweetService) owned(ctx context.Context, tweetID, userID string) error {
	t, err := s.repomanager.Tweets(s.db).GetByID(ctx, tweetID)
	if err != nil {
		return lookupErr(err, "Tweet not found", "Failed to fetch tweet")
	}
	if t.OwnerID != userID {
		return common.Forbidden("You are not the owner of this tweet")
	}
	return nil
}

func (s *TweetService) Update(ctx context.Context, tweetID, userID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.BadRequest("Content is required")
	}
	if err := s.owned(ctx, tweetID, userID); err != nil {
		return nil, err
	}
	t, err := s.repomanager.Tweets(s.db).Update(ctx, tweetID, content)
	if err != nil {
		return nil, lookupErr(err, "Tweet not found", "Failed to update tweet")
	}
	return t, nil
}

func (s *TweetService) Delete(ctx context.Context, tweetID, userID string) error {
	if err := s.owned(ctx, tweetID, userID); err != nil {
		return err
	}
	if err := s.repomanager.Tweets(s.db).Delete(ctx, tweetID); err != nil {
		return lookupErr(err, "Tweet not found", "Failed to delete tweet")
	}
	return nil
}
