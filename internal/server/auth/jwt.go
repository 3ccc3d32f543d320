// Package auth holds the JWT primitives behind the session layer: signing and
// parsing of access and refresh tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims identify the principal for the lifetime of an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// RefreshClaims carry only the principal id. ID (jti) is random so that two
// tokens minted in the same second still differ.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// Identity is what an access token says about its holder.
type Identity struct {
	UserID   string
	Username string
	Email    string
	FullName string
}

// now is a seam for tests.
var now = time.Now

func GenerateAccessToken(id Identity, secret []byte, ttl time.Duration) (string, error) {
	t := now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(t),
			ExpiresAt: jwt.NewNumericDate(t.Add(ttl)),
		},
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
		FullName: id.FullName,
	})
	return token.SignedString(secret)
}

func GenerateRefreshToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	t := now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(t),
			ExpiresAt: jwt.NewNumericDate(t.Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Errors are common.ErrTokenExpired or common.ErrInvalidToken.
func ParseAccessToken(tokenString string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(tokenString, claims, secret); err != nil {
		return nil, err
	}
	if !validSubject(claims.UserID) {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken is ParseAccessToken for refresh tokens.
func ParseRefreshToken(tokenString string, secret []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(tokenString, claims, secret); err != nil {
		return nil, err
	}
	if !validSubject(claims.UserID) {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// validSubject reports whether id is a principal id, which is always a UUID.
func validSubject(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func parse(tokenString string, claims jwt.Claims, secret []byte) error {
	if tokenString == "" {
		return common.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
