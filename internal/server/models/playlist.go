package models

import "time"

type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type PlaylistSummary struct {
	Playlist
	TotalVideos int64 `json:"totalVideos"`
	TotalViews  int64 `json:"totalViews"`
}

type PlaylistDetails struct {
	PlaylistSummary
	Owner  Owner            `json:"owner"`
	Videos []VideoWithOwner `json:"videos"`
}
