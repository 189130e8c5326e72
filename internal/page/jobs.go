package page

import (
	"context"

	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/model"
)

type JobAPI interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
}

// Jobs lists backend queue records as-is.
type Jobs struct {
	*Controller[model.Job]
}

func NewJobs(api JobAPI, log *zap.Logger) *Jobs {
	fetch := func(ctx context.Context, _ string) ([]model.Job, error) {
		return api.ListJobs(ctx)
	}
	return &Jobs{Controller: NewController[model.Job]("jobs", fetch, log)}
}
