package models

import "time"

type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Subscriber is an entry of a channel's subscriber list. IsSubscribed tells
// whether the viewer follows that subscriber back.
type Subscriber struct {
	Owner
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"subscribedToSubscriber"`
}

// SubscribedChannel is an entry of the channels a user follows.
type SubscribedChannel struct {
	Owner
	SubscribersCount int64  `json:"subscribersCount"`
	LatestVideo      *Video `json:"latestVideo"`
}
