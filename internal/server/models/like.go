package models

// LikeTarget names the kind of object a like points at. Its value is also the
// column holding the target id in the likes table.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

func (t LikeTarget) Valid() bool {
	switch t {
	case LikeVideo, LikeComment, LikeTweet:
		return true
	}
	return false
}
