package page

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/model"
)

// DefaultHorizon is how far ahead a new run plans.
const DefaultHorizon = 7 * 24 * time.Hour

type ScheduleAPI interface {
	ListScheduleRuns(ctx context.Context) ([]model.ScheduleRun, error)
	CreateScheduleRun(ctx context.Context, req model.CreateScheduleRun) (model.ScheduleRun, error)
}

// Schedule is the controller behind the schedule board.
type Schedule struct {
	*Controller[model.ScheduleRun]
	api ScheduleAPI
	log *zap.Logger
}

func NewSchedule(api ScheduleAPI, log *zap.Logger) *Schedule {
	if log == nil {
		log = zap.NewNop()
	}
	fetch := func(ctx context.Context, _ string) ([]model.ScheduleRun, error) {
		return api.ListScheduleRuns(ctx)
	}
	return &Schedule{
		Controller: NewController[model.ScheduleRun]("schedule", fetch, log),
		api:        api,
		log:        log,
	}
}

// CreateRun asks the backend for a new run over [start, end]. Horizon order
// is the backend's to check. On success the list is re-fetched; on failure
// the current state is left alone.
func (s *Schedule) CreateRun(ctx context.Context, start, end time.Time) Notice {
	run, err := s.api.CreateScheduleRun(ctx, model.CreateScheduleRun{
		HorizonStart: start,
		HorizonEnd:   end,
		Trigger:      "manual",
	})
	if err != nil {
		s.log.Warn("create schedule run failed", zap.Error(err))
		return Failure("Failed to create schedule", err)
	}
	s.log.Info("schedule run created", zap.String("run_id", run.ID), zap.String("job_id", run.JobID))
	s.Refresh(ctx)
	return Success("Schedule run " + ShortID(run.ID) + " queued")
}

// CreateDefaultRun plans from now over DefaultHorizon.
func (s *Schedule) CreateDefaultRun(ctx context.Context, now time.Time) Notice {
	return s.CreateRun(ctx, now, now.Add(DefaultHorizon))
}

type ScheduleStats struct {
	Total     int
	Succeeded int
	Running   int
	Failed    int
}

func ScheduleAggregates(runs []model.ScheduleRun) ScheduleStats {
	stats := ScheduleStats{Total: len(runs)}
	for _, r := range runs {
		switch r.Status {
		case model.RunSucceeded:
			stats.Succeeded++
		case model.RunRunning:
			stats.Running++
		case model.RunFailed:
			stats.Failed++
		}
	}
	return stats
}
