package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/coachtui/woflo/internal/model"
)

func (c *Client) CreateScheduleRun(ctx context.Context, req model.CreateScheduleRun) (model.ScheduleRun, error) {
	if req.Trigger == "" {
		req.Trigger = "manual"
	}
	return call[model.ScheduleRun](ctx, c, http.MethodPost, "/schedules", req)
}

func (c *Client) ListScheduleRuns(ctx context.Context) ([]model.ScheduleRun, error) {
	return callList[model.ScheduleRun](ctx, c, http.MethodGet, "/schedules", nil)
}

func (c *Client) GetScheduleRun(ctx context.Context, id string) (model.ScheduleRun, error) {
	return call[model.ScheduleRun](ctx, c, http.MethodGet, "/schedules/"+url.PathEscape(id), nil)
}

func (c *Client) ListScheduleItems(ctx context.Context, runID string) ([]model.ScheduleItem, error) {
	return callList[model.ScheduleItem](ctx, c, http.MethodGet, "/schedules/"+url.PathEscape(runID)+"/items", nil)
}

// ListWorkOrders lists work orders, optionally restricted to one status.
// An empty status means no filter.
func (c *Client) ListWorkOrders(ctx context.Context, status string) ([]model.WorkOrder, error) {
	endpoint := "/work-orders"
	if status != "" {
		endpoint += "?" + url.Values{"status": {status}}.Encode()
	}
	return callList[model.WorkOrder](ctx, c, http.MethodGet, endpoint, nil)
}

func (c *Client) CreateWorkOrder(ctx context.Context, draft model.WorkOrderDraft) (model.WorkOrder, error) {
	return call[model.WorkOrder](ctx, c, http.MethodPost, "/work-orders", draft)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	return callList[model.Task](ctx, c, http.MethodGet, "/tasks", nil)
}

func (c *Client) PatchTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	return call[model.Task](ctx, c, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch)
}

// ListJobs returns the job records untouched.
func (c *Client) ListJobs(ctx context.Context) ([]model.Job, error) {
	const endpoint = "/jobs"
	raw, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var jobs []model.Job
	if err := json.Unmarshal(raw, &jobs); err != nil {
		return nil, &ProtocolError{Method: http.MethodGet, Endpoint: endpoint, Err: err}
	}
	if jobs == nil {
		return nil, &ProtocolError{Method: http.MethodGet, Endpoint: endpoint, Err: errors.New("expected a JSON array")}
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (model.Job, error) {
	endpoint := "/jobs/" + url.PathEscape(id)
	raw, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ProtocolError{Method: http.MethodGet, Endpoint: endpoint, Err: err}
	}
	if probe == nil {
		return nil, &ProtocolError{Method: http.MethodGet, Endpoint: endpoint, Err: errors.New("expected a JSON object")}
	}
	return model.Job(raw), nil
}
