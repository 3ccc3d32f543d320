package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/netx"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

func (h *Handler) secureCookies(r *http.Request) bool {
	return h.cfg.CookieSecure || netx.IsSecureRequest(r)
}

func (h *Handler) cookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// setSessionCookies delivers both tokens, each living as long as the token.
func (h *Handler) setSessionCookies(w http.ResponseWriter, r *http.Request, pair *services.TokenPair) {
	http.SetCookie(w, h.cookie(r, common.AccessTokenCookieName, pair.AccessToken, int(h.cfg.AccessTokenTTL.Seconds())))
	http.SetCookie(w, h.cookie(r, common.RefreshTokenCookieName, pair.RefreshToken, int(h.cfg.RefreshTokenTTL.Seconds())))
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie(r, common.AccessTokenCookieName, "", -1))
	http.SetCookie(w, h.cookie(r, common.RefreshTokenCookieName, "", -1))
}

// refreshTokenFrom prefers the cookie and falls back to the body field.
func refreshTokenFrom(r *http.Request, body string) string {
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return body
}
