package httpapi

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/netx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

func contextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// userFromContext returns the principal resolved by requireAuth.
func userFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// statusWriter remembers the status code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

// requestID tags the request with the incoming X-Request-Id or a fresh one
// and echoes it on the response.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(common.RequestIDHeaderName))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusWriter(w)
		start := time.Now()
		next.ServeHTTP(sw, r)
		h.logger.Info(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_ip", h.clientIP(r))
	})
}

// metricsMiddleware labels requests with the matched route pattern, which the
// mux sets on the request during dispatch. Handlers between here and the mux
// must therefore pass the request on unchanged.
func (h *Handler) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := newStatusWriter(w)
		start := time.Now()
		next.ServeHTTP(sw, r)
		h.metrics.ObserveRequest(r.Method, r.Pattern, sw.status, time.Since(start))
	})
}

func (h *Handler) bodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
		}
		next.ServeHTTP(w, r)
	})
}

// accessToken reads the token from a Bearer Authorization header or, when
// there is none, the accessToken cookie.
func accessToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(common.AccessTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		u, err := h.svc.Sessions.VerifyAccess(r.Context(), accessToken(r))
		if err != nil {
			return err
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), u)))
		return nil
	})
}

// clientIP honours proxy headers only when the config trusts the proxy.
func (h *Handler) clientIP(r *http.Request) string {
	return netx.ClientIP(r, h.cfg.TrustProxy)
}

// throttled applies the login limiter, keyed by client address. A limiter
// failure lets the request through.
func (h *Handler) throttled(next http.Handler) http.Handler {
	return h.wrap(func(w http.ResponseWriter, r *http.Request) error {
		allowed, retryAfter, err := h.limiter.Allow(r.Context(), h.clientIP(r))
		if err != nil {
			h.logger.Warn(r.Context(), "rate limiter unavailable", "error", err)
		} else if !allowed {
			if retryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
			}
			return common.TooManyRequests("Too many requests, please try again later")
		}
		next.ServeHTTP(w, r)
		return nil
	})
}
