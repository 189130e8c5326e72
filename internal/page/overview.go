package page

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/coachtui/woflo/internal/model"
)

type OverviewAPI interface {
	ListScheduleRuns(ctx context.Context) ([]model.ScheduleRun, error)
	ListWorkOrders(ctx context.Context, status string) ([]model.WorkOrder, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
}

// LoadOverview fetches the three lists concurrently. On the first failure
// the others are cancelled and the Overview carries only Err.
func LoadOverview(ctx context.Context, api OverviewAPI) Overview {
	var o Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		o.Runs, err = api.ListScheduleRuns(ctx)
		return errors.Wrap(err, "schedule runs")
	})
	g.Go(func() error {
		var err error
		o.WorkOrders, err = api.ListWorkOrders(ctx, "")
		return errors.Wrap(err, "work orders")
	})
	g.Go(func() error {
		var err error
		o.Tasks, err = api.ListTasks(ctx)
		return errors.Wrap(err, "tasks")
	})
	if err := g.Wait(); err != nil {
		return Overview{Err: err}
	}
	return o
}

type RunAPI interface {
	GetScheduleRun(ctx context.Context, id string) (model.ScheduleRun, error)
	ListScheduleItems(ctx context.Context, runID string) ([]model.ScheduleItem, error)
}

// ScheduleRunDetail is one run and its assignments.
type ScheduleRunDetail struct {
	Run   model.ScheduleRun
	Items []model.ScheduleItem
	Err   error
}

func LoadScheduleRun(ctx context.Context, api RunAPI, id string) ScheduleRunDetail {
	var d ScheduleRunDetail
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Run, err = api.GetScheduleRun(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		d.Items, err = api.ListScheduleItems(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return ScheduleRunDetail{Err: err}
	}
	return d
}
