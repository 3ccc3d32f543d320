package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes if already
// subscribed, and reports the new state.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, common.BadRequest("You cannot subscribe to your own channel")
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, channelID); err != nil {
		return false, lookupErr(err, "Channel not found", "Failed to fetch channel")
	}
	on, err := s.repomanager.Subscriptions(s.db).Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, lookupErr(err, "Channel not found", "Failed to toggle subscription")
	}
	return on, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID, viewerID string) ([]models.Subscriber, error) {
	out, err := s.repomanager.Subscriptions(s.db).Subscribers(ctx, channelID, viewerID)
	if err != nil {
		return nil, common.Internal("Failed to fetch subscribers", err)
	}
	return out, nil
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	out, err := s.repomanager.Subscriptions(s.db).SubscribedChannels(ctx, subscriberID)
	if err != nil {
		return nil, common.Internal("Failed to fetch subscribed channels", err)
	}
	return out, nil
}
