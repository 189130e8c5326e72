package page

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/model"
)

type fakeOverviewAPI struct {
	runs     []model.ScheduleRun
	orders   []model.WorkOrder
	tasks    []model.Task
	tasksErr error
}

func (f fakeOverviewAPI) ListScheduleRuns(context.Context) ([]model.ScheduleRun, error) {
	return f.runs, nil
}

func (f fakeOverviewAPI) ListWorkOrders(_ context.Context, status string) ([]model.WorkOrder, error) {
	if status != "" {
		return nil, nil
	}
	return f.orders, nil
}

func (f fakeOverviewAPI) ListTasks(context.Context) ([]model.Task, error) {
	return f.tasks, f.tasksErr
}

func TestLoadOverview(t *testing.T) {
	api := fakeOverviewAPI{
		runs:   []model.ScheduleRun{{ID: "r1", Status: model.RunSucceeded}},
		orders: []model.WorkOrder{{ID: "w1", Priority: 5}, {ID: "w2", Priority: 2}},
		tasks:  []model.Task{{ID: "t1", Status: model.TaskTodo, LockFlag: true}},
	}
	o := LoadOverview(context.Background(), api)
	require.NoError(t, o.Err)
	assert.Len(t, o.Runs, 1)
	assert.Len(t, o.WorkOrders, 2, "overview lists every work order")
	assert.Len(t, o.Tasks, 1)
}

func TestLoadOverviewFailureDropsPartialData(t *testing.T) {
	api := fakeOverviewAPI{
		runs:     []model.ScheduleRun{{ID: "r1", Status: model.RunSucceeded}},
		tasksErr: &apiclient.APIError{Status: http.StatusInternalServerError, Reason: "boom"},
	}
	o := LoadOverview(context.Background(), api)
	require.Error(t, o.Err)
	assert.Nil(t, o.Runs)
	var apiErr *apiclient.APIError
	assert.ErrorAs(t, o.Err, &apiErr)
	assert.Contains(t, o.Err.Error(), "tasks")
}

type fakeRunAPI struct {
	run   model.ScheduleRun
	items []model.ScheduleItem
}

func (f fakeRunAPI) GetScheduleRun(_ context.Context, id string) (model.ScheduleRun, error) {
	if id != f.run.ID {
		return model.ScheduleRun{}, &apiclient.APIError{Status: http.StatusNotFound, Reason: "Schedule not found"}
	}
	return f.run, nil
}

func (f fakeRunAPI) ListScheduleItems(_ context.Context, id string) ([]model.ScheduleItem, error) {
	if id != f.run.ID {
		return nil, &apiclient.APIError{Status: http.StatusNotFound, Reason: "Schedule not found"}
	}
	return f.items, nil
}

func TestLoadScheduleRun(t *testing.T) {
	api := fakeRunAPI{
		run:   model.ScheduleRun{ID: "run-1", Status: model.RunSucceeded},
		items: []model.ScheduleItem{{ID: "i1", TaskID: "t1"}},
	}
	d := LoadScheduleRun(context.Background(), api, "run-1")
	require.NoError(t, d.Err)
	assert.Equal(t, "run-1", d.Run.ID)
	assert.Len(t, d.Items, 1)

	d = LoadScheduleRun(context.Background(), api, "other")
	assert.True(t, apiclient.IsNotFound(d.Err))
	assert.Empty(t, d.Run.ID)
}
