package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentView struct {
	Comment
	Owner      Owner `json:"ownerDetails"`
	LikesCount int64 `json:"likesCount"`
	IsLiked    bool  `json:"isLiked"`
}
