package common

// Cookie names carrying the credential pair. The same values are echoed in
// JSON response bodies.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// RequestIDHeaderName is propagated on every response.
const RequestIDHeaderName = "X-Request-Id"
