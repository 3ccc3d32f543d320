package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type contentRequest struct {
	Content string `json:"content"`
}

// orEmpty keeps empty lists as [] rather than null in responses.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// comments

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	page, err := h.svc.Comments.List(r.Context(), videoID, u.ID, pageFrom(r))
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, page, "Video comments fetched successfully")
	return nil
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	var req contentRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := h.svc.Comments.Add(r.Context(), videoID, u.ID, req.Content)
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, c, "Comment added successfully")
	return nil
}

func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	commentID, err := pathID(r, "commentId", "comment id")
	if err != nil {
		return err
	}
	var req contentRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	c, err := h.svc.Comments.Update(r.Context(), commentID, u.ID, req.Content)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, c, "Comment updated successfully")
	return nil
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	commentID, err := pathID(r, "commentId", "comment id")
	if err != nil {
		return err
	}
	if err := h.svc.Comments.Delete(r.Context(), commentID, u.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Comment deleted successfully")
	return nil
}

// likes

type likeRoute struct {
	target models.LikeTarget
	param  string
	label  string
}

var (
	likeVideo   = likeRoute{models.LikeVideo, "videoId", "video id"}
	likeComment = likeRoute{models.LikeComment, "commentId", "comment id"}
	likeTweet   = likeRoute{models.LikeTweet, "tweetId", "tweet id"}
)

func (h *Handler) toggleLike(lr likeRoute) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, err := currentUserOf(r)
		if err != nil {
			return err
		}
		id, err := pathID(r, lr.param, lr.label)
		if err != nil {
			return err
		}
		liked, message, err := h.svc.Likes.Toggle(r.Context(), lr.target, id, u.ID)
		if err != nil {
			return err
		}
		respond(w, http.StatusOK, map[string]bool{"isLiked": liked}, message)
		return nil
	}
}

func (h *Handler) likedVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videos, err := h.svc.Likes.LikedVideos(r.Context(), u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(videos), "Liked videos fetched successfully")
	return nil
}

// tweets

func (h *Handler) createTweet(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	var req contentRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	t, err := h.svc.Tweets.Create(r.Context(), u.ID, req.Content)
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, t, "Tweet created successfully")
	return nil
}

func (h *Handler) userTweets(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	ownerID, err := pathID(r, "userId", "user id")
	if err != nil {
		return err
	}
	tweets, err := h.svc.Tweets.ListByUser(r.Context(), ownerID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(tweets), "User tweets fetched successfully")
	return nil
}

func (h *Handler) updateTweet(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	tweetID, err := pathID(r, "tweetId", "tweet id")
	if err != nil {
		return err
	}
	var req contentRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	t, err := h.svc.Tweets.Update(r.Context(), tweetID, u.ID, req.Content)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, t, "Tweet updated successfully")
	return nil
}

func (h *Handler) deleteTweet(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	tweetID, err := pathID(r, "tweetId", "tweet id")
	if err != nil {
		return err
	}
	if err := h.svc.Tweets.Delete(r.Context(), tweetID, u.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Tweet deleted successfully")
	return nil
}

// subscriptions

func (h *Handler) toggleSubscription(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	channelID, err := pathID(r, "channelId", "channel id")
	if err != nil {
		return err
	}
	subscribed, err := h.svc.Subscriptions.Toggle(r.Context(), u.ID, channelID)
	if err != nil {
		return err
	}
	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	respond(w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
	return nil
}

func (h *Handler) channelSubscribers(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	channelID, err := pathID(r, "channelId", "channel id")
	if err != nil {
		return err
	}
	subs, err := h.svc.Subscriptions.Subscribers(r.Context(), channelID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(subs), "Subscribers fetched successfully")
	return nil
}

func (h *Handler) subscribedChannels(w http.ResponseWriter, r *http.Request) error {
	subscriberID, err := pathID(r, "subscriberId", "subscriber id")
	if err != nil {
		return err
	}
	channels, err := h.svc.Subscriptions.SubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(channels), "Subscribed channels fetched successfully")
	return nil
}

// playlists

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r playlistRequest) trimmed() (string, string) {
	return strings.TrimSpace(r.Name), strings.TrimSpace(r.Description)
}

func (h *Handler) createPlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	name, description := req.trimmed()
	p, err := h.svc.Playlists.Create(r.Context(), u.ID, name, description)
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, p, "Playlist created successfully")
	return nil
}

func (h *Handler) userPlaylists(w http.ResponseWriter, r *http.Request) error {
	ownerID, err := pathID(r, "userId", "user id")
	if err != nil {
		return err
	}
	lists, err := h.svc.Playlists.ListByUser(r.Context(), ownerID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(lists), "User playlists fetched successfully")
	return nil
}

func (h *Handler) getPlaylist(w http.ResponseWriter, r *http.Request) error {
	playlistID, err := pathID(r, "playlistId", "playlist id")
	if err != nil {
		return err
	}
	p, err := h.svc.Playlists.Get(r.Context(), playlistID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, p, "Playlist fetched successfully")
	return nil
}

func (h *Handler) updatePlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	playlistID, err := pathID(r, "playlistId", "playlist id")
	if err != nil {
		return err
	}
	var req playlistRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	name, description := req.trimmed()
	p, err := h.svc.Playlists.Update(r.Context(), playlistID, u.ID, name, description)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, p, "Playlist updated successfully")
	return nil
}

func (h *Handler) deletePlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	playlistID, err := pathID(r, "playlistId", "playlist id")
	if err != nil {
		return err
	}
	if err := h.svc.Playlists.Delete(r.Context(), playlistID, u.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Playlist deleted successfully")
	return nil
}

// playlistVideoIDs reads the {videoId}/{playlistId} pair of the add and
// remove routes.
func playlistVideoIDs(r *http.Request) (videoID, playlistID string, err error) {
	if videoID, err = pathID(r, "videoId", "video id"); err != nil {
		return "", "", err
	}
	if playlistID, err = pathID(r, "playlistId", "playlist id"); err != nil {
		return "", "", err
	}
	return videoID, playlistID, nil
}

func (h *Handler) addToPlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, playlistID, err := playlistVideoIDs(r)
	if err != nil {
		return err
	}
	p, err := h.svc.Playlists.AddVideo(r.Context(), playlistID, videoID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, p, "Video added to playlist successfully")
	return nil
}

func (h *Handler) removeFromPlaylist(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, playlistID, err := playlistVideoIDs(r)
	if err != nil {
		return err
	}
	p, err := h.svc.Playlists.RemoveVideo(r.Context(), playlistID, videoID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, p, "Video removed from playlist successfully")
	return nil
}
