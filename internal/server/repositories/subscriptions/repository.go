// Package subscriptions provides the Postgres-backed store for channel
// subscriptions.
package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	// Toggle flips the subscription and reports whether it now exists.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelID, viewerID string) ([]models.Subscriber, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
}
