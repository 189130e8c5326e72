package stubapi

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/store"
)

// Seed fills an empty store with a small shop: three work orders, their
// tasks (one locked), and one finished schedule run with assignments. It
// does nothing if work orders already exist.
func Seed(ctx context.Context, st *store.SQLite, now time.Time) error {
	n, err := st.Count(ctx, store.KindWorkOrder)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	now = now.UTC().Truncate(time.Minute)
	day := func(d int) *model.Date {
		v := model.DayOf(now.AddDate(0, 0, d))
		return &v
	}
	at := func(h int) *time.Time {
		v := now.Add(time.Duration(h) * time.Hour)
		return &v
	}

	orders := []model.WorkOrder{
		{ID: uuid.NewString(), UnitID: "TRK-1042", Priority: 5, Status: model.WorkOrderInProgress, DueDate: day(1), AssetType: "tractor", PartsRequired: true, PartsReady: true, Location: "Bay 2", Notes: "Coolant leak at water pump"},
		{ID: uuid.NewString(), UnitID: "TRL-2201", Priority: 3, Status: model.WorkOrderTodo, DueDate: day(4), AssetType: "trailer", PartsRequired: true},
		{ID: uuid.NewString(), UnitID: "TRK-0977", Priority: 2, Status: model.WorkOrderCompleted, AssetType: "tractor", PartsReady: true},
	}
	tasks := []model.Task{
		{ID: uuid.NewString(), WorkOrderID: orders[0].ID, Kind: model.KindRepair, Status: model.TaskInProgress, DurationMinutesLow: 90, DurationMinutesHigh: 180, RequiredSkill: "cooling", RequiredSkillIsHard: true, RequiredBayType: "heavy", LockFlag: true, LockedTechID: "tech-ana", LockedBayID: "bay-2"},
		{ID: uuid.NewString(), WorkOrderID: orders[0].ID, Kind: model.KindInspection, Status: model.TaskScheduled, DurationMinutesLow: 30, DurationMinutesHigh: 45, EarliestStart: at(4), LatestFinish: at(28)},
		{ID: uuid.NewString(), WorkOrderID: orders[1].ID, Kind: model.KindPM, Status: model.TaskTodo, DurationMinutesLow: 120, DurationMinutesHigh: 150, RequiredSkill: "brakes", RequiredBayType: "standard"},
		{ID: uuid.NewString(), WorkOrderID: orders[2].ID, Kind: model.KindRepair, Status: model.TaskCompleted, DurationMinutesLow: 60, DurationMinutesHigh: 60},
	}

	wall := int64(4210)
	objective := 142.0
	count := 2
	run := model.ScheduleRun{
		ID:                 uuid.NewString(),
		Status:             model.RunSucceeded,
		Trigger:            "manual",
		HorizonStart:       at(-24),
		HorizonEnd:         at(6 * 24),
		SolverWallTimeMS:   &wall,
		ObjectiveValue:     &objective,
		ObjectiveBreakdown: &model.ObjectiveBreakdown{DueDatePenalty: 100, PriorityPenalty: 40, SkillMismatchPenalty: 2},
		TaskCount:          &count,
		JobID:              uuid.NewString(),
		CreatedAt:          at(-24),
	}
	items := []model.ScheduleItem{
		{ID: uuid.NewString(), TaskID: tasks[0].ID, TechnicianID: "tech-ana", TechnicianName: "Ana Ruiz", BayID: "bay-2", BayName: "Bay 2 (heavy)", StartAt: *at(-2), EndAt: *at(1), IsLocked: true},
		{ID: uuid.NewString(), TaskID: tasks[1].ID, TechnicianID: "tech-sam", TechnicianName: "Sam Okafor", BayID: "bay-1", BayName: "Bay 1", StartAt: *at(5), EndAt: *at(6)},
	}
	job := map[string]any{
		"id":           run.JobID,
		"type":         "schedule_run",
		"status":       "done",
		"payload":      map[string]any{"schedule_run_id": run.ID, "time_limit_seconds": 30},
		"attempts":     1,
		"max_attempts": 1,
		"created_at":   run.CreatedAt,
	}

	for i, wo := range orders {
		if err := store.PutValue(ctx, st, store.KindWorkOrder, wo.ID, string(wo.Status), wo.UnitID, now.Add(time.Duration(i)*time.Second), wo); err != nil {
			return errors.Wrap(err, "seed work order")
		}
	}
	for i, t := range tasks {
		if err := store.PutValue(ctx, st, store.KindTask, t.ID, string(t.Status), t.WorkOrderID, now.Add(time.Duration(i)*time.Second), t); err != nil {
			return errors.Wrap(err, "seed task")
		}
	}
	if err := store.PutValue(ctx, st, store.KindScheduleRun, run.ID, string(run.Status), "", *run.CreatedAt, run); err != nil {
		return errors.Wrap(err, "seed schedule run")
	}
	for _, item := range items {
		if err := store.PutValue(ctx, st, store.KindScheduleItem, item.ID, "", run.ID, *run.CreatedAt, item); err != nil {
			return errors.Wrap(err, "seed schedule item")
		}
	}
	if err := store.PutValue(ctx, st, store.KindJob, run.JobID, "done", run.ID, *run.CreatedAt, job); err != nil {
		return errors.Wrap(err, "seed job")
	}
	return nil
}
