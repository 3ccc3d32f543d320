package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/cryptox"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
)

const userColumns = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db   dbx.DBTX
	hash func(string) (string, error)
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, hash: cryptox.HashPassword}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func wrapErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return common.ErrorAlreadyExists
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

// Create stores a new user. Username and email are lowercased.
// Duplicates yield common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, nu NewUser) (*models.User, error) {
	hash, err := r.hash(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `
		INSERT INTO users (username, email, full_name, avatar, cover_image, password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		strings.ToLower(nu.Username), strings.ToLower(nu.Email), nu.FullName, nu.Avatar, nu.CoverImage, hash))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(username))))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

// GetByUsernameOrEmail matches either identifier; blank ones are ignored.
func (r *PostgresRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		LIMIT 1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		strings.ToLower(strings.TrimSpace(username)), strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

// GetPasswordHash is used only by credential verification.
func (r *PostgresRepository) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	if err := r.db.QueryRowContext(ctx, `SELECT password FROM users WHERE id = $1`, id).Scan(&hash); err != nil {
		return "", wrapErr(err)
	}
	return hash, nil
}

// UpdateFields applies a partial update and returns the updated user.
// When f.Password is set it is hashed first; otherwise the stored hash is
// not touched.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id string, f Fields) (*models.User, error) {
	if f.empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if f.FullName != nil {
		add("full_name", *f.FullName)
	}
	if f.Email != nil {
		add("email", strings.ToLower(*f.Email))
	}
	if f.Avatar != nil {
		add("avatar", *f.Avatar)
	}
	if f.CoverImage != nil {
		add("cover_image", *f.CoverImage)
	}
	if f.Password != nil {
		hash, err := r.hash(*f.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		add("password", hash)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

// ChannelProfile loads a channel by username together with its subscription
// counters, as seen by viewerID.
func (r *PostgresRepository) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.email, u.avatar, u.cover_image,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
			EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id::text = $2)
		FROM users u
		WHERE u.username = $1`

	p := &models.ChannelProfile{}
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(username)), viewerID).Scan(
		&p.ID, &p.Username, &p.FullName, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed)
	if err != nil {
		return nil, wrapErr(err)
	}
	return p, nil
}

// WatchHistory returns watched videos with their owners, most recent first.
func (r *PostgresRepository) WatchHistory(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	query := `
		SELECT ` + videos.WithOwnerColumns + `
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return videos.ScanWithOwner(rows)
}

// AddToWatchHistory records a view; re-watching moves the video to the front.
func (r *PostgresRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	query := `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at`

	if _, err := r.db.ExecContext(ctx, query, userID, videoID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
