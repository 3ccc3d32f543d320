package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

const commentColumns = `c.id, c.content, c.video_id, c.owner_id, c.created_at, c.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func commentDest(c *models.Comment) []any {
	return []any{&c.ID, &c.Content, &c.VideoID, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt}
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

func (r *PostgresRepository) Create(ctx context.Context, videoID, ownerID, content string) (*models.Comment, error) {
	query := `
		INSERT INTO comments AS c (video_id, owner_id, content)
		VALUES ($1, $2, $3)
		RETURNING ` + commentColumns

	c := &models.Comment{}
	if err := r.db.QueryRowContext(ctx, query, videoID, ownerID, content).Scan(commentDest(c)...); err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c := &models.Comment{}
	err := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id).Scan(commentDest(c)...)
	if err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, content string) (*models.Comment, error) {
	query := `
		UPDATE comments AS c SET content = $2, updated_at = now()
		WHERE c.id = $1
		RETURNING ` + commentColumns

	c := &models.Comment{}
	if err := r.db.QueryRowContext(ctx, query, id, content).Scan(commentDest(c)...); err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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

// ListByVideo returns a page of comments, newest first, with like counters
// from the viewer's perspective.
func (r *PostgresRepository) ListByVideo(ctx context.Context, videoID, viewerID string, p models.Page) ([]models.CommentView, int64, error) {
	p = p.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT ` + commentColumns + `,
			o.id, o.username, o.full_name, o.avatar,
			(SELECT COUNT(*) FROM likes l WHERE l.comment = c.id),
			EXISTS (SELECT 1 FROM likes l WHERE l.comment = c.id AND l.liked_by::text = $2)
		FROM comments c
		JOIN users o ON o.id = c.owner_id
		WHERE c.video_id = $1
		ORDER BY c.created_at DESC, c.id
		LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, videoID, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.CommentView, 0)
	for rows.Next() {
		var c models.CommentView
		dest := append(commentDest(&c.Comment),
			&c.Owner.ID, &c.Owner.Username, &c.Owner.FullName, &c.Owner.Avatar, &c.LikesCount, &c.IsLiked)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}
