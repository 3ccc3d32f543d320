package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

const videoColumns = `v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views,
	v.is_published, v.owner_id, v.created_at, v.updated_at`

// WithOwnerColumns selects a video (alias v), its owner (alias o) and its
// like count, in the order ScanWithOwner expects.
const WithOwnerColumns = videoColumns + `,
	o.id, o.username, o.full_name, o.avatar,
	(SELECT COUNT(*) FROM likes l WHERE l.video = v.id)`

// Rows is the subset of *sql.Rows the scanners need.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func videoDest(v *models.Video) []any {
	return []any{&v.ID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description, &v.Duration, &v.Views,
		&v.IsPublished, &v.OwnerID, &v.CreatedAt, &v.UpdatedAt}
}

// ScanWithOwner drains rows selected with WithOwnerColumns.
func ScanWithOwner(rows Rows) ([]models.VideoWithOwner, error) {
	out := make([]models.VideoWithOwner, 0)
	for rows.Next() {
		var v models.VideoWithOwner
		dest := append(videoDest(&v.Video), &v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.Avatar, &v.LikesCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

// ValidSortField reports whether field can be used in VideoSort.
func ValidSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

func orderBy(s models.VideoSort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = "v.created_at"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return col + " " + dir + ", v.id"
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func wrapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, in *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos AS v (video_file, thumbnail, title, description, duration, is_published, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + videoColumns

	v := &models.Video{}
	err := r.db.QueryRowContext(ctx, query,
		in.VideoFile, in.Thumbnail, in.Title, in.Description, in.Duration, in.IsPublished, in.OwnerID,
	).Scan(videoDest(v)...)
	if err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = $1`

	v := &models.Video{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(videoDest(v)...); err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}

// GetDetails loads the single-video view: owner with subscriber count and
// the viewer's like/subscription flags.
func (r *PostgresRepository) GetDetails(ctx context.Context, id, viewerID string) (*models.VideoDetails, error) {
	query := `
		SELECT ` + videoColumns + `,
			o.id, o.username, o.full_name, o.avatar,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = o.id),
			EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = o.id AND s.subscriber_id::text = $2),
			(SELECT COUNT(*) FROM likes l WHERE l.video = v.id),
			EXISTS (SELECT 1 FROM likes l WHERE l.video = v.id AND l.liked_by::text = $2)
		FROM videos v
		JOIN users o ON o.id = v.owner_id
		WHERE v.id = $1`

	d := &models.VideoDetails{}
	dest := append(videoDest(&d.Video),
		&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.Avatar,
		&d.Owner.SubscribersCount, &d.Owner.IsSubscribed,
		&d.LikesCount, &d.IsLiked)
	if err := r.db.QueryRowContext(ctx, query, id, viewerID).Scan(dest...); err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

// List returns one page of videos matching f and the total match count.
func (r *PostgresRepository) List(ctx context.Context, f models.VideoFilter, p models.Page) ([]models.VideoWithOwner, int64, error) {
	p = p.Normalize()

	where := `
		WHERE ($1 = '' OR v.title ILIKE '%' || $1 || '%' OR v.description ILIKE '%' || $1 || '%')
			AND ($2 = '' OR v.owner_id::text = $2)
			AND (v.is_published OR $3)`
	args := []any{f.Query, f.OwnerID, f.IncludeUnpublished}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos v`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + WithOwnerColumns + `
		FROM videos v
		JOIN users o ON o.id = v.owner_id` + where + `
		ORDER BY ` + orderBy(f.Sort) + `
		LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out, err := ScanWithOwner(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, u Update) (*models.Video, error) {
	query := `
		UPDATE videos AS v
		SET title = $2, description = $3, thumbnail = COALESCE(NULLIF($4, ''), v.thumbnail), updated_at = now()
		WHERE v.id = $1
		RETURNING ` + videoColumns

	v := &models.Video{}
	if err := r.db.QueryRowContext(ctx, query, id, u.Title, u.Description, u.Thumbnail).Scan(videoDest(v)...); err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}

// Delete removes the video; likes, comments, playlist entries and history
// rows go with it.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) TogglePublish(ctx context.Context, id string) (*models.Video, error) {
	query := `
		UPDATE videos AS v
		SET is_published = NOT v.is_published, updated_at = now()
		WHERE v.id = $1
		RETURNING ` + videoColumns

	v := &models.Video{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(videoDest(v)...); err != nil {
		return nil, wrapErr(err)
	}
	return v, nil
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// ChannelTotals counts the owner's videos and sums their views.
func (r *PostgresRepository) ChannelTotals(ctx context.Context, ownerID string) (int64, int64, error) {
	var videos, views int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1`, ownerID,
	).Scan(&videos, &views)
	if err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return videos, views, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
