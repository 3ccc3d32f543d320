package subscriptions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		subscriberID, channelID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// Subscribers lists who follows channelID. IsSubscribed on each entry tells
// whether viewerID follows that subscriber.
func (r *PostgresRepository) Subscribers(ctx context.Context, channelID, viewerID string) ([]models.Subscriber, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.avatar,
			(SELECT COUNT(*) FROM subscriptions x WHERE x.channel_id = u.id),
			EXISTS (SELECT 1 FROM subscriptions x WHERE x.channel_id = u.id AND x.subscriber_id::text = $2)
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
		ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, channelID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Subscriber, 0)
	for rows.Next() {
		var s models.Subscriber
		if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Avatar, &s.SubscribersCount, &s.IsSubscribed); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// SubscribedChannels lists the channels subscriberID follows, each with its
// latest published video.
func (r *PostgresRepository) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	query := `
		SELECT u.id, u.username, u.full_name, u.avatar,
			(SELECT COUNT(*) FROM subscriptions x WHERE x.channel_id = u.id),
			lv.id, lv.video_file, lv.thumbnail, lv.title, lv.description, lv.duration, lv.views,
			lv.is_published, lv.owner_id, lv.created_at, lv.updated_at
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		LEFT JOIN LATERAL (
			SELECT * FROM videos v
			WHERE v.owner_id = u.id AND v.is_published
			ORDER BY v.created_at DESC
			LIMIT 1
		) lv ON TRUE
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.SubscribedChannel, 0)
	for rows.Next() {
		var (
			c  models.SubscribedChannel
			lv nullVideo
		)
		if err := rows.Scan(&c.ID, &c.Username, &c.FullName, &c.Avatar, &c.SubscribersCount,
			&lv.ID, &lv.VideoFile, &lv.Thumbnail, &lv.Title, &lv.Description, &lv.Duration, &lv.Views,
			&lv.IsPublished, &lv.OwnerID, &lv.CreatedAt, &lv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.LatestVideo = lv.video()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// nullVideo receives the LEFT JOIN side of SubscribedChannels.
type nullVideo struct {
	ID          sql.NullString
	VideoFile   sql.NullString
	Thumbnail   sql.NullString
	Title       sql.NullString
	Description sql.NullString
	Duration    sql.NullFloat64
	Views       sql.NullInt64
	IsPublished sql.NullBool
	OwnerID     sql.NullString
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

func (n nullVideo) video() *models.Video {
	if !n.ID.Valid {
		return nil
	}
	return &models.Video{
		ID:          n.ID.String,
		VideoFile:   n.VideoFile.String,
		Thumbnail:   n.Thumbnail.String,
		Title:       n.Title.String,
		Description: n.Description.String,
		Duration:    n.Duration.Float64,
		Views:       n.Views.Int64,
		IsPublished: n.IsPublished.Bool,
		OwnerID:     n.OwnerID.String,
		CreatedAt:   n.CreatedAt.Time,
		UpdatedAt:   n.UpdatedAt.Time,
	}
}
