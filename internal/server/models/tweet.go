package models

import "time"

type Tweet struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TweetView struct {
	Tweet
	Owner      Owner `json:"ownerDetails"`
	LikesCount int64 `json:"likesCount"`
	IsLiked    bool  `json:"isLiked"`
}
