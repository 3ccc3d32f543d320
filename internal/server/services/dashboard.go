package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m}
}

// Stats gathers the channel totals. The three queries are independent and
// run concurrently.
func (s *DashboardService) Stats(ctx context.Context, ownerID string) (*models.ChannelStats, error) {
	var st models.ChannelStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		st.TotalVideos, st.TotalViews, err = s.repomanager.Videos(s.db).ChannelTotals(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		st.TotalLikes, err = s.repomanager.Likes(s.db).CountOnOwnerVideos(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		st.TotalSubscribers, err = s.repomanager.Subscriptions(s.db).CountSubscribers(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, common.Internal("Failed to fetch channel stats", err)
	}
	return &st, nil
}

// Videos lists all of the owner's videos, unpublished included, newest first.
func (s *DashboardService) Videos(ctx context.Context, ownerID string, p models.Page) (models.Paginated[models.VideoWithOwner], error) {
	f := models.VideoFilter{
		OwnerID:            ownerID,
		IncludeUnpublished: true,
		Sort:               models.VideoSort{Field: "createdAt", Desc: true},
	}
	docs, total, err := s.repomanager.Videos(s.db).List(ctx, f, p)
	if err != nil {
		return models.Paginated[models.VideoWithOwner]{}, common.Internal("Failed to fetch channel videos", err)
	}
	return models.NewPaginated(docs, total, p), nil
}
