package statssvc

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kp7829294-create/libzone/model"
	"github.com/kp7829294-create/libzone/util/clock"
)

type Repo interface {
	CountBooks(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role model.Role) (int64, error)
	CountActiveLoans(ctx context.Context) (int64, error)
	CountOverdueLoans(ctx context.Context, now time.Time) (int64, error)
}

type Service interface {
	// Get runs the four counts concurrently. They are not taken from one snapshot.
	Get(ctx context.Context) (*model.Stats, error)
}

type service struct {
	r     Repo
	clock clock.Clock
}

func New(r Repo, clk clock.Clock) Service { return &service{r: r, clock: clk} }

func (s *service) Get(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	now := s.clock.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalBooks, err = s.r.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveUsers, err = s.r.CountUsersByRole(ctx, model.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		out.IssuedBooks, err = s.r.CountActiveLoans(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Overdue, err = s.r.CountOverdueLoans(ctx, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
