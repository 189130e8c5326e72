package model

import (
	"encoding/json"
	"errors"
	"time"
)

type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

type WorkOrderStatus string

const (
	WorkOrderTodo       WorkOrderStatus = "todo"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderBlocked    WorkOrderStatus = "blocked"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskScheduled  TaskStatus = "scheduled"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskKind string

const (
	KindRepair     TaskKind = "repair"
	KindPM         TaskKind = "pm"
	KindInspection TaskKind = "inspection"
	KindOther      TaskKind = "other"
)

var ErrNotFound = errors.New("not found")

// ObjectiveBreakdown splits a run's objective score into its penalty terms.
type ObjectiveBreakdown struct {
	DueDatePenalty       float64 `json:"due_date_penalty"`
	PriorityPenalty      float64 `json:"priority_penalty"`
	SkillMismatchPenalty float64 `json:"skill_mismatch_penalty"`
}

// ScheduleRun is one optimizer invocation over a time horizon.
//
// The create endpoint answers with a partial record (id, status, job_id), so
// the horizon bounds are optional on decode.
type ScheduleRun struct {
	ID                 string              `json:"id"`
	Status             RunStatus           `json:"status"`
	Trigger            string              `json:"trigger,omitempty"`
	HorizonStart       *time.Time          `json:"horizon_start,omitempty"`
	HorizonEnd         *time.Time          `json:"horizon_end,omitempty"`
	SolverWallTimeMS   *int64              `json:"solver_wall_time_ms,omitempty"`
	ObjectiveValue     *float64            `json:"objective_value,omitempty"`
	ObjectiveBreakdown *ObjectiveBreakdown `json:"objective_breakdown,omitempty"`
	TaskCount          *int                `json:"task_count,omitempty"`
	JobID              string              `json:"job_id,omitempty"`
	CreatedAt          *time.Time          `json:"created_at,omitempty"`
}

// CreateScheduleRun is the body of POST /schedules.
type CreateScheduleRun struct {
	HorizonStart time.Time `json:"horizon_start"`
	HorizonEnd   time.Time `json:"horizon_end"`
	Trigger      string    `json:"trigger,omitempty"`
}

// WorkOrder is a unit of repair or maintenance demand tied to an asset.
type WorkOrder struct {
	ID            string          `json:"id"`
	UnitID        string          `json:"unit_id"`
	Priority      int             `json:"priority"`
	Status        WorkOrderStatus `json:"status"`
	DueDate       *Date           `json:"due_date,omitempty"`
	AssetType     string          `json:"asset_type"`
	PartsReady    bool            `json:"parts_ready"`
	PartsRequired bool            `json:"parts_required"`
	Location      string          `json:"location,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// WorkOrderDraft is the partial work order sent to POST /work-orders.
type WorkOrderDraft struct {
	UnitID        string `json:"unit_id"`
	AssetType     string `json:"asset_type"`
	Priority      int    `json:"priority"`
	DueDate       *Date  `json:"due_date,omitempty"`
	Location      string `json:"location,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PartsRequired bool   `json:"parts_required"`
}

// Task is an atomic unit of work under a work order.
type Task struct {
	ID                  string     `json:"id"`
	WorkOrderID         string     `json:"work_order_id"`
	Kind                TaskKind   `json:"type"`
	Status              TaskStatus `json:"status"`
	DurationMinutesLow  int        `json:"duration_minutes_low"`
	DurationMinutesHigh int        `json:"duration_minutes_high"`
	RequiredSkill       string     `json:"required_skill,omitempty"`
	RequiredSkillIsHard bool       `json:"required_skill_is_hard"`
	RequiredBayType     string     `json:"required_bay_type,omitempty"`
	EarliestStart       *time.Time `json:"earliest_start,omitempty"`
	LatestFinish        *time.Time `json:"latest_finish,omitempty"`
	LockFlag            bool       `json:"lock_flag"`
	LockedTechID        string     `json:"locked_tech_id,omitempty"`
	LockedBayID         string     `json:"locked_bay_id,omitempty"`
	LockedStartAt       *time.Time `json:"locked_start_at,omitempty"`
	LockedEndAt         *time.Time `json:"locked_end_at,omitempty"`
}

// TaskPatch is used for partial updates. Nil fields are left untouched.
type TaskPatch struct {
	Status              *TaskStatus `json:"status,omitempty"`
	RequiredSkill       *string     `json:"required_skill,omitempty"`
	RequiredSkillIsHard *bool       `json:"required_skill_is_hard,omitempty"`
	RequiredBayType     *string     `json:"required_bay_type,omitempty"`
	DurationMinutesLow  *int        `json:"duration_minutes_low,omitempty"`
	DurationMinutesHigh *int        `json:"duration_minutes_high,omitempty"`
	LockFlag            *bool       `json:"lock_flag,omitempty"`
	LockedTechID        *string     `json:"locked_tech_id,omitempty"`
	LockedBayID         *string     `json:"locked_bay_id,omitempty"`
}

// Apply copies the set fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.RequiredSkill != nil {
		t.RequiredSkill = *p.RequiredSkill
	}
	if p.RequiredSkillIsHard != nil {
		t.RequiredSkillIsHard = *p.RequiredSkillIsHard
	}
	if p.RequiredBayType != nil {
		t.RequiredBayType = *p.RequiredBayType
	}
	if p.DurationMinutesLow != nil {
		t.DurationMinutesLow = *p.DurationMinutesLow
	}
	if p.DurationMinutesHigh != nil {
		t.DurationMinutesHigh = *p.DurationMinutesHigh
	}
	if p.LockFlag != nil {
		t.LockFlag = *p.LockFlag
	}
	if p.LockedTechID != nil {
		t.LockedTechID = *p.LockedTechID
	}
	if p.LockedBayID != nil {
		t.LockedBayID = *p.LockedBayID
	}
}

// ScheduleItem is the optimizer's assignment of a task to a technician, bay
// and time window.
type ScheduleItem struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name,omitempty"`
	BayID          string    `json:"bay_id"`
	BayName        string    `json:"bay_name,omitempty"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
	IsLocked       bool      `json:"is_locked"`
}

// Job is a backend queue record. The dashboard never looks inside it.
type Job = json.RawMessage
