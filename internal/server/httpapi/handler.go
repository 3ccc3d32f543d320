// Package httpapi is the HTTP/JSON transport of the API server: routing,
// middleware, cookie delivery of session tokens and the response envelope.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/ratelimit"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

const (
	defaultJSONLimit   = 16 << 10
	defaultUploadLimit = 512 << 20
)

// Services bundles the domain services the handlers call into.
type Services struct {
	Sessions      *services.SessionService
	Users         *services.UserService
	Videos        *services.VideoService
	Comments      *services.CommentService
	Likes         *services.LikeService
	Tweets        *services.TweetService
	Subscriptions *services.SubscriptionService
	Playlists     *services.PlaylistService
	Dashboard     *services.DashboardService
}

// Check probes a dependency for /readyz.
type Check func(ctx context.Context) error

type Options struct {
	Config  *config.Config
	Limiter ratelimit.Limiter
	Metrics *metrics.Recorder
	Logger  logging.Logger
	// Checks run on /readyz, keyed by dependency name.
	Checks map[string]Check
}

type Handler struct {
	svc         Services
	cfg         *config.Config
	limiter     ratelimit.Limiter
	metrics     *metrics.Recorder
	logger      logging.Logger
	checks      map[string]Check
	cors        corsPolicy
	jsonLimit   int64
	uploadLimit int64
}

func NewHandler(svc Services, opts Options) (*Handler, error) {
	h := &Handler{
		svc:         svc,
		cfg:         opts.Config,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		checks:      opts.Checks,
		jsonLimit:   opts.Config.MaxJSONBytes,
		uploadLimit: opts.Config.MaxUploadBytes,
	}
	if h.limiter == nil {
		h.limiter = ratelimit.Unlimited{}
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	if h.logger == nil {
		h.logger = logging.Nop{}
	}
	h.logger = h.logger.With("module", "http")
	if h.jsonLimit <= 0 {
		h.jsonLimit = defaultJSONLimit
	}
	if h.uploadLimit <= 0 {
		h.uploadLimit = defaultUploadLimit
	}

	policy, err := newCORSPolicy(opts.Config.CORSOrigins)
	if err != nil {
		return nil, err
	}
	h.cors = policy
	return h, nil
}

// Routes returns the full handler chain: request id, access log, metrics,
// CORS and the body limit around the router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.wrap(h.liveness))
	mux.HandleFunc("GET /readyz", h.wrap(h.readiness))
	mux.Handle("GET /metrics", h.metrics.Handler())
	mux.HandleFunc("GET /api/v1/healthcheck", h.wrap(h.healthcheck))

	// users
	mux.Handle("POST /api/v1/users/register", h.throttled(h.wrap(h.register)))
	mux.Handle("POST /api/v1/users/login", h.throttled(h.wrap(h.login)))
	mux.Handle("POST /api/v1/users/refresh-token", h.throttled(h.wrap(h.refreshToken)))
	mux.Handle("POST /api/v1/users/logout", h.private(h.logout))
	mux.Handle("POST /api/v1/users/change-password", h.private(h.changePassword))
	mux.Handle("GET /api/v1/users/current-user", h.private(h.currentUser))
	mux.Handle("PATCH /api/v1/users/update-account", h.private(h.updateAccount))
	mux.Handle("PATCH /api/v1/users/avatar", h.private(h.updateAvatar))
	mux.Handle("PATCH /api/v1/users/cover-image", h.private(h.updateCoverImage))
	mux.Handle("GET /api/v1/users/c/{username}", h.private(h.channelProfile))
	mux.Handle("GET /api/v1/users/history", h.private(h.watchHistory))

	// videos
	mux.Handle("GET /api/v1/videos", h.private(h.listVideos))
	mux.Handle("POST /api/v1/videos", h.private(h.publishVideo))
	mux.Handle("GET /api/v1/videos/{videoId}", h.private(h.getVideo))
	mux.Handle("PATCH /api/v1/videos/{videoId}", h.private(h.updateVideo))
	mux.Handle("DELETE /api/v1/videos/{videoId}", h.private(h.deleteVideo))
	mux.Handle("PATCH /api/v1/videos/toggle/publish/{videoId}", h.private(h.togglePublish))

	// comments
	mux.Handle("GET /api/v1/comments/{videoId}", h.private(h.listComments))
	mux.Handle("POST /api/v1/comments/{videoId}", h.private(h.addComment))
	mux.Handle("PATCH /api/v1/comments/c/{commentId}", h.private(h.updateComment))
	mux.Handle("DELETE /api/v1/comments/c/{commentId}", h.private(h.deleteComment))

	// likes
	mux.Handle("POST /api/v1/likes/toggle/v/{videoId}", h.private(h.toggleLike(likeVideo)))
	mux.Handle("POST /api/v1/likes/toggle/c/{commentId}", h.private(h.toggleLike(likeComment)))
	mux.Handle("POST /api/v1/likes/toggle/t/{tweetId}", h.private(h.toggleLike(likeTweet)))
	mux.Handle("GET /api/v1/likes/videos", h.private(h.likedVideos))

	// tweets
	mux.Handle("POST /api/v1/tweets", h.private(h.createTweet))
	mux.Handle("GET /api/v1/tweets/user/{userId}", h.private(h.userTweets))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", h.private(h.updateTweet))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", h.private(h.deleteTweet))

	// subscriptions
	mux.Handle("POST /api/v1/subscriptions/c/{channelId}", h.private(h.toggleSubscription))
	mux.Handle("GET /api/v1/subscriptions/c/{channelId}", h.private(h.channelSubscribers))
	mux.Handle("GET /api/v1/subscriptions/u/{subscriberId}", h.private(h.subscribedChannels))

	// playlists
	mux.Handle("POST /api/v1/playlists", h.private(h.createPlaylist))
	mux.Handle("GET /api/v1/playlists/user/{userId}", h.private(h.userPlaylists))
	mux.Handle("GET /api/v1/playlists/{playlistId}", h.private(h.getPlaylist))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", h.private(h.updatePlaylist))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", h.private(h.deletePlaylist))
	mux.Handle("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", h.private(h.addToPlaylist))
	mux.Handle("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", h.private(h.removeFromPlaylist))

	// dashboard
	mux.Handle("GET /api/v1/dashboard/stats", h.private(h.channelStats))
	mux.Handle("GET /api/v1/dashboard/videos", h.private(h.channelVideos))

	mux.HandleFunc("/", h.wrap(h.notFound))

	var chain http.Handler = mux
	chain = h.bodyLimit(chain)
	chain = h.corsMiddleware(chain)
	chain = h.metricsMiddleware(chain)
	chain = h.accessLog(chain)
	chain = h.requestID(chain)
	return chain
}

// private guards fn with the access-token check.
func (h *Handler) private(fn apiFunc) http.Handler {
	return h.requireAuth(h.wrap(fn))
}
