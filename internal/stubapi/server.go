// Package stubapi is a small stand-in for the scheduling backend's /v1 HTTP
// surface, backed by SQLite. It never runs the optimizer: schedule runs stay
// queued unless seeded otherwise.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/logging"
	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/store"
)

type Server struct {
	Store *store.SQLite
	// Token, when set, is required as "Authorization: Bearer <Token>".
	Token string
	Log   *zap.Logger
	Now   func() time.Time
}

func (s Server) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Server) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

func (s Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.logger()))
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.auth)
		r.Post("/schedules", s.handleCreateSchedule)
		r.Get("/schedules", s.handleListSchedules)
		r.Get("/schedules/{id}", s.handleGetSchedule)
		r.Get("/schedules/{id}/items", s.handleListScheduleItems)
		r.Get("/work-orders", s.handleListWorkOrders)
		r.Post("/work-orders", s.handleCreateWorkOrder)
		r.Get("/tasks", s.handleListTasks)
		r.Patch("/tasks/{id}", s.handlePatchTask)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
	})

	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createScheduleRequest struct {
	HorizonStart *time.Time `json:"horizon_start"`
	HorizonEnd   *time.Time `json:"horizon_end"`
	Trigger      string     `json:"trigger"`
}

func (s Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	var missing []fieldError
	if req.HorizonStart == nil {
		missing = append(missing, fieldError{Loc: []string{"body", "horizon_start"}, Msg: "field required", Type: "missing"})
	}
	if req.HorizonEnd == nil {
		missing = append(missing, fieldError{Loc: []string{"body", "horizon_end"}, Msg: "field required", Type: "missing"})
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": missing})
		return
	}
	if !req.HorizonEnd.After(*req.HorizonStart) {
		writeDetail(w, http.StatusUnprocessableEntity, "horizon_end must be after horizon_start")
		return
	}
	if req.Trigger == "" {
		req.Trigger = "manual"
	}

	now := s.now()
	run := model.ScheduleRun{
		ID:           uuid.NewString(),
		Status:       model.RunQueued,
		Trigger:      req.Trigger,
		HorizonStart: req.HorizonStart,
		HorizonEnd:   req.HorizonEnd,
		JobID:        uuid.NewString(),
		CreatedAt:    &now,
	}
	job := map[string]any{
		"id":     run.JobID,
		"type":   "schedule_run",
		"status": "queued",
		"payload": map[string]any{
			"schedule_run_id":    run.ID,
			"horizon_start":      req.HorizonStart.Format(time.RFC3339),
			"horizon_end":        req.HorizonEnd.Format(time.RFC3339),
			"time_limit_seconds": 30,
		},
		"attempts":     0,
		"max_attempts": 1,
		"created_at":   now,
	}

	if err := store.PutValue(ctx, s.Store, store.KindScheduleRun, run.ID, string(run.Status), "", now, run); err != nil {
		s.internal(w, errors.Wrap(err, "create schedule run"))
		return
	}
	if err := store.PutValue(ctx, s.Store, store.KindJob, run.JobID, "queued", run.ID, now, job); err != nil {
		s.internal(w, errors.Wrap(err, "enqueue schedule job"))
		return
	}
	s.logger().Info("schedule run queued", zap.String("run_id", run.ID), zap.String("job_id", run.JobID))

	writeJSON(w, http.StatusOK, map[string]any{"id": run.ID, "status": run.Status, "job_id": run.JobID})
}

func (s Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListValues[model.ScheduleRun](r.Context(), s.Store, store.KindScheduleRun, store.Filter{Limit: 50})
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	run, err := store.GetValue[model.ScheduleRun](r.Context(), s.Store, store.KindScheduleRun, chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr(w, err, "Schedule run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s Server) handleListScheduleItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := s.Store.Get(ctx, store.KindScheduleRun, id); err != nil {
		s.notFoundOr(w, err, "Schedule run not found")
		return
	}
	items, err := store.ListValues[model.ScheduleItem](ctx, s.Store, store.KindScheduleItem, store.Filter{ParentID: &id})
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s Server) handleListWorkOrders(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		f.Status = &raw
	}
	orders, err := store.ListValues[model.WorkOrder](r.Context(), s.Store, store.KindWorkOrder, f)
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s Server) handleCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft model.WorkOrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	var problems []fieldError
	if strings.TrimSpace(draft.UnitID) == "" {
		problems = append(problems, fieldError{Loc: []string{"body", "unit_id"}, Msg: "field required", Type: "missing"})
	}
	if strings.TrimSpace(draft.AssetType) == "" {
		problems = append(problems, fieldError{Loc: []string{"body", "asset_type"}, Msg: "field required", Type: "missing"})
	}
	if draft.Priority == 0 {
		draft.Priority = 3
	}
	if draft.Priority < 1 || draft.Priority > 5 {
		problems = append(problems, fieldError{Loc: []string{"body", "priority"}, Msg: "ensure this value is between 1 and 5", Type: "value_error"})
	}
	if len(problems) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": problems})
		return
	}

	now := s.now()
	wo := model.WorkOrder{
		ID:            uuid.NewString(),
		UnitID:        draft.UnitID,
		Priority:      draft.Priority,
		Status:        model.WorkOrderTodo,
		DueDate:       draft.DueDate,
		AssetType:     draft.AssetType,
		PartsRequired: draft.PartsRequired,
		PartsReady:    !draft.PartsRequired,
		Location:      draft.Location,
		Notes:         draft.Notes,
	}
	// Each new order starts with one repair task.
	task := model.Task{
		ID:                  uuid.NewString(),
		WorkOrderID:         wo.ID,
		Kind:                model.KindRepair,
		Status:              model.TaskTodo,
		DurationMinutesLow:  60,
		DurationMinutesHigh: 120,
	}
	if err := store.PutValue(ctx, s.Store, store.KindWorkOrder, wo.ID, string(wo.Status), wo.UnitID, now, wo); err != nil {
		s.internal(w, errors.Wrap(err, "create work order"))
		return
	}
	if err := store.PutValue(ctx, s.Store, store.KindTask, task.ID, string(task.Status), wo.ID, now, task); err != nil {
		s.internal(w, errors.Wrap(err, "create task"))
		return
	}
	s.logger().Info("work order created", zap.String("work_order_id", wo.ID), zap.Int("priority", wo.Priority))

	writeJSON(w, http.StatusCreated, wo)
}

func (s Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := store.ListValues[model.Task](r.Context(), s.Store, store.KindTask, store.Filter{})
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	task, err := store.GetValue[model.Task](ctx, s.Store, store.KindTask, id)
	if err != nil {
		s.notFoundOr(w, err, "Task not found")
		return
	}
	patch.Apply(&task)
	if !task.LockFlag {
		task.LockedTechID, task.LockedBayID = "", ""
		task.LockedStartAt, task.LockedEndAt = nil, nil
	}
	if err := task.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := store.UpdateValue(ctx, s.Store, store.KindTask, id, string(task.Status), task); err != nil {
		s.internal(w, errors.Wrap(err, "update task"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		f.Status = &raw
	}
	f.Limit = 100
	recs, err := s.Store.List(r.Context(), store.KindJob, f)
	if err != nil {
		s.internal(w, err)
		return
	}
	jobs := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		jobs = append(jobs, rec.Body)
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Store.Get(r.Context(), store.KindJob, chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr(w, err, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.Body)
}

// fieldError is one entry of a FastAPI-style validation failure.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (s Server) notFoundOr(w http.ResponseWriter, err error, detail string) {
	if errors.Is(err, model.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, detail)
		return
	}
	s.internal(w, err)
}

func (s Server) internal(w http.ResponseWriter, err error) {
	s.logger().Error("stub backend failure", zap.Error(err))
	writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]any{"detail": detail})
}
