package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
)

const playlistColumns = `p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at`

// totals computes the published video count and their views for alias p.
const totals = `
	(SELECT COUNT(*) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = p.id AND v.is_published),
	(SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = p.id AND v.is_published)`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func playlistDest(p *models.Playlist) []any {
	return []any{&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt}
}

func wrapErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsForeignKeyViolation(err):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID, name, description string) (*models.Playlist, error) {
	query := `INSERT INTO playlists AS p (owner_id, name, description) VALUES ($1, $2, $3) RETURNING ` + playlistColumns

	p := &models.Playlist{}
	if err := r.db.QueryRowContext(ctx, query, ownerID, name, description).Scan(playlistDest(p)...); err != nil {
		return nil, wrapErr(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Playlist, error) {
	p := &models.Playlist{}
	if err := r.db.QueryRowContext(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id).Scan(playlistDest(p)...); err != nil {
		return nil, wrapErr(err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	query := `
		UPDATE playlists AS p SET name = $2, description = $3, updated_at = now()
		WHERE p.id = $1
		RETURNING ` + playlistColumns

	p := &models.Playlist{}
	if err := r.db.QueryRowContext(ctx, query, id, name, description).Scan(playlistDest(p)...); err != nil {
		return nil, wrapErr(err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	query := `
		SELECT ` + playlistColumns + `,` + totals + `
		FROM playlists p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.PlaylistSummary, 0)
	for rows.Next() {
		var s models.PlaylistSummary
		if err := rows.Scan(append(playlistDest(&s.Playlist), &s.TotalVideos, &s.TotalViews)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Details loads the playlist, its owner and its published videos in
// playlist order.
func (r *PostgresRepository) Details(ctx context.Context, id string) (*models.PlaylistDetails, error) {
	query := `
		SELECT ` + playlistColumns + `,` + totals + `,
			u.id, u.username, u.full_name, u.avatar
		FROM playlists p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1`

	d := &models.PlaylistDetails{}
	dest := append(playlistDest(&d.Playlist), &d.TotalVideos, &d.TotalViews,
		&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.Avatar)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		return nil, wrapErr(err)
	}

	vq := `
		SELECT ` + videos.WithOwnerColumns + `
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE pv.playlist_id = $1 AND v.is_published
		ORDER BY pv.position`

	rows, err := r.db.QueryContext(ctx, vq, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	d.Videos, err = videos.ScanWithOwner(rows)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *PostgresRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	query := `
		INSERT INTO playlist_videos (playlist_id, video_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM playlist_videos WHERE playlist_id = $1
		ON CONFLICT (playlist_id, video_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, playlistID, videoID); err != nil {
		return wrapErr(err)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RemoveVideo is a no-op when the video is not in the playlist.
func (r *PostgresRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`, playlistID, videoID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `UPDATE playlists SET updated_at = now() WHERE id = $1`, playlistID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
