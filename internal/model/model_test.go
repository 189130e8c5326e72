package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateAcceptsDayAndInstant(t *testing.T) {
	var wo WorkOrder
	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","unit_id":"u1","priority":2,"due_date":"2025-03-14"}`), &wo))
	require.NotNil(t, wo.DueDate)
	assert.Equal(t, "2025-03-14", wo.DueDate.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"w1","unit_id":"u1","priority":2,"due_date":"2025-03-14T09:30:00Z"}`), &wo))
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), wo.DueDate.Time())

	err := json.Unmarshal([]byte(`{"id":"w1","due_date":"next tuesday"}`), &wo)
	assert.Error(t, err)
}

func TestDateMarshalKeepsPrecision(t *testing.T) {
	day := DayOf(time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC))
	b, err := json.Marshal(day)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-01-02"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, day.Equal(back))
}

func TestValidate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	cases := []struct {
		name    string
		record  interface{ Validate() error }
		invalid bool
	}{
		{"run ok", ScheduleRun{ID: "r1", Status: RunQueued, HorizonStart: &start, HorizonEnd: &end}, false},
		{"run partial create response", ScheduleRun{ID: "r1", Status: RunQueued, JobID: "j1"}, false},
		{"run missing status", ScheduleRun{ID: "r1"}, true},
		{"run inverted horizon", ScheduleRun{ID: "r1", Status: RunQueued, HorizonStart: &end, HorizonEnd: &start}, true},
		{"work order ok", WorkOrder{ID: "w1", UnitID: "u1", Priority: 5}, false},
		{"work order zero priority", WorkOrder{ID: "w1", UnitID: "u1"}, true},
		{"work order missing unit", WorkOrder{ID: "w1", Priority: 1}, true},
		{"task ok", Task{ID: "t1", WorkOrderID: "w1", DurationMinutesLow: 30, DurationMinutesHigh: 60}, false},
		{"task orphan", Task{ID: "t1", DurationMinutesHigh: 60}, true},
		{"task inverted duration", Task{ID: "t1", WorkOrderID: "w1", DurationMinutesLow: 90, DurationMinutesHigh: 60}, true},
		{"task inverted window", Task{ID: "t1", WorkOrderID: "w1", EarliestStart: &end, LatestFinish: &start}, true},
		{"item ok", ScheduleItem{ID: "i1", TaskID: "t1", StartAt: start, EndAt: end}, false},
		{"item inverted", ScheduleItem{ID: "i1", TaskID: "t1", StartAt: end, EndAt: start}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.record.Validate()
			if !tc.invalid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestTaskPatchApply(t *testing.T) {
	task := Task{ID: "t1", WorkOrderID: "w1", Status: TaskTodo, DurationMinutesHigh: 30}
	locked := true
	status := TaskScheduled
	TaskPatch{LockFlag: &locked, Status: &status}.Apply(&task)

	assert.True(t, task.LockFlag)
	assert.Equal(t, TaskScheduled, task.Status)
	assert.Equal(t, 30, task.DurationMinutesHigh)
}
