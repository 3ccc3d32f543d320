// Package users provides the Postgres-backed principal store: user records,
// password hashes, channel profiles and watch history.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// NewUser is the input of Create. Password is plaintext; the repository
// hashes it before it is written.
type NewUser struct {
	Username   string
	Email      string
	FullName   string
	Avatar     string
	CoverImage string
	Password   string
}

// Fields is a partial update. Nil fields are left untouched. Password is
// plaintext and is hashed only when present.
type Fields struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
	Password   *string
}

func (f Fields) empty() bool {
	return f.FullName == nil && f.Email == nil && f.Avatar == nil && f.CoverImage == nil && f.Password == nil
}

type Repository interface {
	Create(ctx context.Context, u NewUser) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetPasswordHash(ctx context.Context, id string) (string, error)
	UpdateFields(ctx context.Context, id string, f Fields) (*models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error)
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}
