package likes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Toggle removes an existing like or inserts a new one. A concurrent insert
// of the same like is absorbed by the unique index.
func (r *PostgresRepository) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (bool, error) {
	if !target.Valid() {
		return false, fmt.Errorf("like target %q: %w", target, common.ErrorValidation)
	}
	col := string(target)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM likes WHERE %s = $1 AND liked_by = $2`, col), targetID, userID)
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
		fmt.Sprintf(`INSERT INTO likes (%s, liked_by) VALUES ($1, $2) ON CONFLICT DO NOTHING`, col), targetID, userID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

// LikedVideos returns published videos the user liked, most recent like first.
func (r *PostgresRepository) LikedVideos(ctx context.Context, userID string) ([]models.VideoWithOwner, error) {
	query := `
		SELECT ` + videos.WithOwnerColumns + `
		FROM likes lk
		JOIN videos v ON v.id = lk.video
		JOIN users o ON o.id = v.owner_id
		WHERE lk.liked_by = $1 AND v.is_published
		ORDER BY lk.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return videos.ScanWithOwner(rows)
}

func (r *PostgresRepository) CountOnOwnerVideos(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video WHERE v.owner_id = $1`, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
