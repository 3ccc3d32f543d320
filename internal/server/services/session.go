// Package services contains server-side business logic. This file implements
// SessionService, which owns the token lifecycle: issue, verify, rotate and
// revoke.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

const (
	msgUnauthorized       = "Unauthorized request"
	msgInvalidAccess      = "Invalid access token"
	msgInvalidRefresh     = "Invalid refresh token"
	msgRefreshUsed        = "Refresh token is expired or used"
	msgTokenGenerationErr = "Something went wrong while generating refresh and access token"
)

// SessionService issues and verifies credentials. Each principal has at most
// one trusted refresh token; issuing a new one replaces the previous value.
type SessionService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *SessionService {
	return &SessionService{
		db:            db,
		repomanager:   m,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}
}

func (s *SessionService) mint(u *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(auth.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}, s.accessSecret, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(u.ID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Issue mints a token pair for a principal whose password has already been
// checked and stores the refresh token as the principal's current one.
func (s *SessionService) Issue(ctx context.Context, u *models.User) (*TokenPair, error) {
	pair, err := s.mint(u)
	if err != nil {
		return nil, common.Internal(msgTokenGenerationErr, err)
	}
	if err := s.repomanager.RefreshTokens(s.db).Set(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, common.Internal(msgTokenGenerationErr, err)
	}
	return pair, nil
}

// VerifyAccess resolves the principal behind an access token.
func (s *SessionService) VerifyAccess(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.Unauthorized(msgUnauthorized)
	}
	claims, err := auth.ParseAccessToken(token, s.accessSecret)
	if err != nil {
		return nil, common.Unauthorized(msgInvalidAccess)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgInvalidAccess)
		}
		return nil, common.Internal("Failed to load user", err)
	}
	return u, nil
}

// Refresh rotates the principal's refresh token. The incoming token must be
// the one currently stored; the replacement is written with a compare-and-swap
// so that of two concurrent refreshes with the same token only one succeeds.
func (s *SessionService) Refresh(ctx context.Context, incoming string) (*TokenPair, error) {
	if incoming == "" {
		return nil, common.Unauthorized(msgUnauthorized)
	}
	claims, err := auth.ParseRefreshToken(incoming, s.refreshSecret)
	if err != nil {
		return nil, common.Unauthorized(msgInvalidRefresh)
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgInvalidRefresh)
		}
		return nil, common.Internal("Failed to load user", err)
	}

	tokens := s.repomanager.RefreshTokens(s.db)
	current, err := tokens.Get(ctx, u.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized(msgInvalidRefresh)
		}
		return nil, common.Internal("Failed to load refresh token", err)
	}
	if current == "" || subtle.ConstantTimeCompare([]byte(current), []byte(incoming)) != 1 {
		return nil, common.Unauthorized(msgRefreshUsed)
	}

	pair, err := s.mint(u)
	if err != nil {
		return nil, common.Internal(msgTokenGenerationErr, err)
	}
	swapped, err := tokens.Swap(ctx, u.ID, incoming, pair.RefreshToken)
	if err != nil {
		return nil, common.Internal(msgTokenGenerationErr, err)
	}
	if !swapped {
		return nil, common.Unauthorized(msgRefreshUsed)
	}
	return pair, nil
}

// Revoke forgets the principal's refresh token. Access tokens already handed
// out stay valid until they expire.
func (s *SessionService) Revoke(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).Clear(ctx, userID); err != nil {
		return common.Internal("Failed to revoke session", err)
	}
	return nil
}
