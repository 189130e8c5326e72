package model

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalid marks a record that decoded but does not satisfy its invariants.
var ErrInvalid = errors.New("invalid record")

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalid)
}

func (r ScheduleRun) Validate() error {
	if r.ID == "" {
		return invalid("schedule run: missing id")
	}
	if r.Status == "" {
		return invalid("schedule run %s: missing status", r.ID)
	}
	if r.HorizonStart != nil && r.HorizonEnd != nil && r.HorizonStart.After(*r.HorizonEnd) {
		return invalid("schedule run %s: horizon_start after horizon_end", r.ID)
	}
	return nil
}

func (w WorkOrder) Validate() error {
	if w.ID == "" {
		return invalid("work order: missing id")
	}
	if w.UnitID == "" {
		return invalid("work order %s: missing unit_id", w.ID)
	}
	if w.Priority < 1 {
		return invalid("work order %s: priority %d is not positive", w.ID, w.Priority)
	}
	return nil
}

func (t Task) Validate() error {
	if t.ID == "" {
		return invalid("task: missing id")
	}
	if t.WorkOrderID == "" {
		return invalid("task %s: missing work_order_id", t.ID)
	}
	if t.DurationMinutesLow < 0 || t.DurationMinutesLow > t.DurationMinutesHigh {
		return invalid("task %s: duration range [%d, %d] is not ordered",
			t.ID, t.DurationMinutesLow, t.DurationMinutesHigh)
	}
	if t.EarliestStart != nil && t.LatestFinish != nil && t.EarliestStart.After(*t.LatestFinish) {
		return invalid("task %s: earliest_start after latest_finish", t.ID)
	}
	return nil
}

func (i ScheduleItem) Validate() error {
	if i.ID == "" {
		return invalid("schedule item: missing id")
	}
	if i.TaskID == "" {
		return invalid("schedule item %s: missing task_id", i.ID)
	}
	if i.StartAt.After(i.EndAt) {
		return invalid("schedule item %s: start_at after end_at", i.ID)
	}
	return nil
}
