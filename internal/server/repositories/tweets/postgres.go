package tweets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

const tweetColumns = `t.id, t.content, t.owner_id, t.created_at, t.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func tweetDest(t *models.Tweet) []any {
	return []any{&t.ID, &t.Content, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt}
}

func wrapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID, content string) (*models.Tweet, error) {
	query := `INSERT INTO tweets AS t (owner_id, content) VALUES ($1, $2) RETURNING ` + tweetColumns

	t := &models.Tweet{}
	if err := r.db.QueryRowContext(ctx, query, ownerID, content).Scan(tweetDest(t)...); err != nil {
		return nil, wrapErr(err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	t := &models.Tweet{}
	if err := r.db.QueryRowContext(ctx, `SELECT `+tweetColumns+` FROM tweets t WHERE t.id = $1`, id).Scan(tweetDest(t)...); err != nil {
		return nil, wrapErr(err)
	}
	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, content string) (*models.Tweet, error) {
	query := `UPDATE tweets AS t SET content = $2, updated_at = now() WHERE t.id = $1 RETURNING ` + tweetColumns

	t := &models.Tweet{}
	if err := r.db.QueryRowContext(ctx, query, id, content).Scan(tweetDest(t)...); err != nil {
		return nil, wrapErr(err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tweets WHERE id = $1`, id)
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

// ListByOwner returns the owner's tweets, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID, viewerID string) ([]models.TweetView, error) {
	query := `
		SELECT ` + tweetColumns + `,
			o.id, o.username, o.full_name, o.avatar,
			(SELECT COUNT(*) FROM likes l WHERE l.tweet = t.id),
			EXISTS (SELECT 1 FROM likes l WHERE l.tweet = t.id AND l.liked_by::text = $2)
		FROM tweets t
		JOIN users o ON o.id = t.owner_id
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC, t.id`

	rows, err := r.db.QueryContext(ctx, query, ownerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.TweetView, 0)
	for rows.Next() {
		var t models.TweetView
		dest := append(tweetDest(&t.Tweet),
			&t.Owner.ID, &t.Owner.Username, &t.Owner.FullName, &t.Owner.Avatar, &t.LikesCount, &t.IsLiked)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
