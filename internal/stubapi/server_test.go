package stubapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/store"
)

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newStub(t *testing.T, token string, seed bool) (*apiclient.Client, *store.SQLite) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	if seed {
		require.NoError(t, Seed(context.Background(), st, fixedNow))
	}

	srv := httptest.NewServer(Server{Store: st, Token: token, Log: zaptest.NewLogger(t), Now: func() time.Time { return fixedNow }}.Router())
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL, Token: token, Logger: zaptest.NewLogger(t)}), st
}

func TestHealthz(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	defer st.Close()

	rec := httptest.NewRecorder()
	Server{Store: st}.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestTokenRequired(t *testing.T) {
	client, _ := newStub(t, "s3cret", false)

	_, err := client.WithCredential("").ListTasks(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Reason)

	_, err = client.WithCredential("wrong").ListTasks(context.Background())
	require.Error(t, err)

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreateScheduleRunThenList(t *testing.T) {
	client, _ := newStub(t, "", false)
	ctx := context.Background()

	start := fixedNow
	end := fixedNow.Add(7 * 24 * time.Hour)
	created, err := client.CreateScheduleRun(ctx, model.CreateScheduleRun{HorizonStart: start, HorizonEnd: end})
	require.NoError(t, err)
	assert.Equal(t, model.RunQueued, created.Status)
	assert.NotEmpty(t, created.JobID)

	runs, err := client.ListScheduleRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, created.ID, runs[0].ID)
	assert.Equal(t, "manual", runs[0].Trigger)
	require.NotNil(t, runs[0].HorizonStart)
	assert.True(t, start.Equal(*runs[0].HorizonStart))

	jobs, err := client.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Contains(t, string(jobs[0]), `"type":"schedule_run"`)

	job, err := client.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Contains(t, string(job), created.ID)
}

func TestCreateScheduleRunInvertedHorizon(t *testing.T) {
	client, _ := newStub(t, "", false)
	ctx := context.Background()

	_, err := client.CreateScheduleRun(ctx, model.CreateScheduleRun{HorizonStart: fixedNow, HorizonEnd: fixedNow.Add(-time.Hour)})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "horizon_end must be after horizon_start", apiErr.Reason)

	runs, err := client.ListScheduleRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCreateWorkOrderRoundTrip(t *testing.T) {
	client, _ := newStub(t, "", false)
	ctx := context.Background()

	due := model.DayOf(fixedNow.AddDate(0, 0, 3))
	draft := model.WorkOrderDraft{UnitID: "TRK-1", AssetType: "tractor", Priority: 4, DueDate: &due, Location: "Yard", PartsRequired: true}
	wo, err := client.CreateWorkOrder(ctx, draft)
	require.NoError(t, err)

	back := model.WorkOrderDraft{UnitID: wo.UnitID, AssetType: wo.AssetType, Priority: wo.Priority, DueDate: wo.DueDate, Location: wo.Location, Notes: wo.Notes, PartsRequired: wo.PartsRequired}
	if diff := cmp.Diff(draft, back); diff != "" {
		t.Fatalf("work order round trip (-sent +got):\n%s", diff)
	}
	assert.False(t, wo.PartsReady)

	tasks, err := client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, wo.ID, tasks[0].WorkOrderID)

	todo, err := client.ListWorkOrders(ctx, "todo")
	require.NoError(t, err)
	assert.Len(t, todo, 1)
	done, err := client.ListWorkOrders(ctx, "completed")
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestCreateWorkOrderValidation(t *testing.T) {
	client, _ := newStub(t, "", false)
	_, err := client.CreateWorkOrder(context.Background(), model.WorkOrderDraft{Priority: 9})

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "unit_id: field required; asset_type: field required; priority: ensure this value is between 1 and 5", apiErr.Reason)
}

func TestPatchTaskLock(t *testing.T) {
	client, _ := newStub(t, "", true)
	ctx := context.Background()

	tasks, err := client.ListTasks(ctx)
	require.NoError(t, err)
	var target model.Task
	for _, task := range tasks {
		if task.LockFlag {
			target = task
		}
	}
	require.NotEmpty(t, target.ID, "seed has a locked task")

	unlocked := false
	got, err := client.PatchTask(ctx, target.ID, model.TaskPatch{LockFlag: &unlocked})
	require.NoError(t, err)
	assert.False(t, got.LockFlag)
	assert.Empty(t, got.LockedTechID)
	assert.Equal(t, target.Status, got.Status)

	_, err = client.PatchTask(ctx, "does-not-exist", model.TaskPatch{LockFlag: &unlocked})
	assert.True(t, apiclient.IsNotFound(err))

	low, high := 90, 30
	_, err = client.PatchTask(ctx, target.ID, model.TaskPatch{DurationMinutesLow: &low, DurationMinutesHigh: &high})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestSeedIsIdempotentAndConsistent(t *testing.T) {
	client, st := newStub(t, "", true)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, st, fixedNow))

	orders, err := client.ListWorkOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	runs, err := client.ListScheduleRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run, err := client.GetScheduleRun(ctx, runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunSucceeded, run.Status)

	items, err := client.ListScheduleItems(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = client.ListScheduleItems(ctx, "missing")
	assert.True(t, apiclient.IsNotFound(err))
	_, err = client.GetScheduleRun(ctx, "missing")
	assert.True(t, apiclient.IsNotFound(err))
	_, err = client.GetJob(ctx, "missing")
	assert.True(t, apiclient.IsNotFound(err))
}
