package page

import (
	"context"

	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/model"
)

// TaskGroupOrder is the order task groups are listed in.
var TaskGroupOrder = []model.TaskStatus{
	model.TaskTodo,
	model.TaskScheduled,
	model.TaskInProgress,
	model.TaskCompleted,
}

type TaskAPI interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	PatchTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
}

type Tasks struct {
	*Controller[model.Task]
	api TaskAPI
	log *zap.Logger
}

func NewTasks(api TaskAPI, log *zap.Logger) *Tasks {
	if log == nil {
		log = zap.NewNop()
	}
	fetch := func(ctx context.Context, _ string) ([]model.Task, error) {
		return api.ListTasks(ctx)
	}
	return &Tasks{
		Controller: NewController[model.Task]("tasks", fetch, log),
		api:        api,
		log:        log,
	}
}

// SetLock sets or clears a task's manual lock, then re-fetches.
func (t *Tasks) SetLock(ctx context.Context, id string, locked bool) Notice {
	task, err := t.api.PatchTask(ctx, id, model.TaskPatch{LockFlag: &locked})
	if err != nil {
		t.log.Warn("task lock failed", zap.String("task_id", id), zap.Bool("locked", locked), zap.Error(err))
		if locked {
			return Failure("Failed to lock task", err)
		}
		return Failure("Failed to unlock task", err)
	}
	t.log.Info("task lock changed", zap.String("task_id", task.ID), zap.Bool("locked", task.LockFlag))
	t.Refresh(ctx)
	if locked {
		return Success("Task #" + ShortID(task.ID) + " locked")
	}
	return Success("Task #" + ShortID(task.ID) + " unlocked")
}

type TaskStats struct {
	Todo       int
	Scheduled  int
	InProgress int
	Completed  int
}

func TaskAggregates(tasks []model.Task) TaskStats {
	var stats TaskStats
	for _, t := range tasks {
		switch t.Status {
		case model.TaskTodo:
			stats.Todo++
		case model.TaskScheduled:
			stats.Scheduled++
		case model.TaskInProgress:
			stats.InProgress++
		case model.TaskCompleted:
			stats.Completed++
		}
	}
	return stats
}

type TaskGroup struct {
	Status model.TaskStatus
	Tasks  []model.Task
}

// GroupTasks buckets tasks by status in TaskGroupOrder, skipping empty
// buckets. Tasks with any other status end up in trailing groups in order
// of first appearance.
func GroupTasks(tasks []model.Task) []TaskGroup {
	buckets := make(map[model.TaskStatus][]model.Task)
	var extra []model.TaskStatus
	for _, t := range tasks {
		if _, seen := buckets[t.Status]; !seen && !knownTaskStatus(t.Status) {
			extra = append(extra, t.Status)
		}
		buckets[t.Status] = append(buckets[t.Status], t)
	}

	var groups []TaskGroup
	for _, status := range append(append([]model.TaskStatus{}, TaskGroupOrder...), extra...) {
		if len(buckets[status]) > 0 {
			groups = append(groups, TaskGroup{Status: status, Tasks: buckets[status]})
		}
	}
	return groups
}

func knownTaskStatus(s model.TaskStatus) bool {
	for _, known := range TaskGroupOrder {
		if s == known {
			return true
		}
	}
	return false
}
