package models

import "time"

type Video struct {
	ID          string    `json:"id"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoWithOwner is a list item: the video, its owner and its like count.
type VideoWithOwner struct {
	Video
	Owner      Owner `json:"ownerDetails"`
	LikesCount int64 `json:"likesCount"`
}

// ChannelOwner is an owner summary enriched with the viewer's relation to it.
type ChannelOwner struct {
	Owner
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoDetails is the single-video view.
type VideoDetails struct {
	Video
	Owner      ChannelOwner `json:"ownerDetails"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// VideoSort is a validated ORDER BY for video listings.
type VideoSort struct {
	Field string
	Desc  bool
}

// VideoFilter selects videos for listing.
type VideoFilter struct {
	Query   string
	OwnerID string
	// IncludeUnpublished is honoured only for the owner's own listing.
	IncludeUnpublished bool
	Sort               VideoSort
}
