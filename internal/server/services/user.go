package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/cryptox"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
)

// RegisterInput is a sign-up request. AvatarPath and CoverPath point at
// staged uploads; CoverPath may be empty.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

// UserService handles accounts: registration, login/logout, profile changes
// and channel views.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    *SessionService
	blobs       BlobStore
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions *SessionService, blobs BlobStore, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		blobs:       blobs,
		logger:      logger.With("module", "users"),
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	defer discardTemp(in.AvatarPath, in.CoverPath)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" || in.Email == "" || in.FullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.BadRequest("All fields are required")
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByUsernameOrEmail(ctx, in.Username, in.Email); err == nil {
		return nil, common.Conflict("User with email or username already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.Internal("Failed to check existing users", err)
	}

	if in.AvatarPath == "" {
		return nil, common.BadRequest("Avatar file is required")
	}
	avatar, err := s.blobs.Upload(ctx, in.AvatarPath)
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "error", err)
		return nil, common.BadRequest("Failed to upload avatar")
	}

	var coverURL string
	if in.CoverPath != "" {
		cover, err := s.blobs.Upload(ctx, in.CoverPath)
		if err != nil {
			s.logger.Warn(ctx, "cover image upload failed, continuing without it", "error", err)
		} else {
			coverURL = cover.URL
		}
	}

	u, err := repo.Create(ctx, users.NewUser{
		Username:   in.Username,
		Email:      in.Email,
		FullName:   in.FullName,
		Avatar:     avatar.URL,
		CoverImage: coverURL,
		Password:   in.Password,
	})
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, avatar.URL)
		deleteBlob(ctx, s.blobs, s.logger, coverURL)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("User with email or username already exists")
		}
		return nil, common.Internal("Something went wrong while registering the user", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and starts a session.
func (s *UserService) Login(ctx context.Context, username, email, password string) (*models.User, *TokenPair, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, nil, common.BadRequest("Username or email is required")
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.NotFound("User does not exist")
		}
		return nil, nil, common.Internal("Failed to load user", err)
	}

	ok, err := s.verifySecret(ctx, u.ID, password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, common.Unauthorized("Invalid user credentials")
	}

	pair, err := s.sessions.Issue(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *UserService) verifySecret(ctx context.Context, userID, password string) (bool, error) {
	hash, err := s.repomanager.Users(s.db).GetPasswordHash(ctx, userID)
	if err != nil {
		return false, common.Internal("Failed to load credentials", err)
	}
	ok, err := cryptox.CheckPassword(hash, password)
	if err != nil {
		return false, common.Internal("Failed to verify credentials", err)
	}
	return ok, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.sessions.Revoke(ctx, userID)
}

// ChangePassword replaces the password and ends the current session.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return common.BadRequest("Old and new password are required")
	}
	ok, err := s.verifySecret(ctx, userID, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return common.BadRequest("Invalid old password")
	}

	if _, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, users.Fields{Password: &newPassword}); err != nil {
		return common.Internal("Failed to change password", err)
	}
	return s.sessions.Revoke(ctx, userID)
}

func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, common.BadRequest("All fields are required")
	}

	u, err := s.repomanager.Users(s.db).UpdateFields(ctx, userID, users.Fields{FullName: &fullName, Email: &email})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("Email is already in use")
		}
		return nil, common.Internal("Failed to update account", err)
	}
	return u, nil
}

// UpdateAvatar swaps the avatar for the staged upload at localPath and drops
// the previous object.
func (s *UserService) UpdateAvatar(ctx context.Context, u *models.User, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, common.BadRequest("Avatar file is missing")
	}
	obj, err := s.blobs.Upload(ctx, localPath)
	if err != nil {
		s.logger.Error(ctx, "avatar upload failed", "error", err)
		return nil, common.BadRequest("Error while uploading avatar")
	}

	updated, err := s.repomanager.Users(s.db).UpdateFields(ctx, u.ID, users.Fields{Avatar: &obj.URL})
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, obj.URL)
		return nil, common.Internal("Failed to update avatar", err)
	}
	deleteBlob(ctx, s.blobs, s.logger, u.Avatar)
	return updated, nil
}

func (s *UserService) UpdateCoverImage(ctx context.Context, u *models.User, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, common.BadRequest("Cover image file is missing")
	}
	obj, err := s.blobs.Upload(ctx, localPath)
	if err != nil {
		s.logger.Error(ctx, "cover image upload failed", "error", err)
		return nil, common.BadRequest("Error while uploading cover image")
	}

	updated, err := s.repomanager.Users(s.db).UpdateFields(ctx, u.ID, users.Fields{CoverImage: &obj.URL})
	if err != nil {
		deleteBlob(ctx, s.blobs, s.logger, obj.URL)
		return nil, common.Internal("Failed to update cover image", err)
	}
	deleteBlob(ctx, s.blobs, s.logger, u.CoverImage)
	return updated, nil
}

func (s *UserService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.BadRequest("Username is missing")
	}
	p, err := s.repomanager.Users(s.db).ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("Channel does not exist")
		}
		return nil, common.Internal("Failed to load channel", err)
	}
	return p, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	h, err := s.repomanager.Users(s.db).WatchHistory(ctx, userID)
	if err != nil {
		return nil, common.Internal("Failed to load watch history", err)
	}
	return h, nil
}
