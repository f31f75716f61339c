package plan

import (
	"fmt"
)

// Task represents a single planned task on a calendar day.
type Task struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Completed   bool   `json:"completed"`
}

// Scheduled returns true if the task has a time of day assigned.
func (t *Task) Scheduled() bool {
	return t.Time != ""
}

// taskRecord is the persisted form of a Task. Pointer fields distinguish
// absent keys from zero values when reading old or hand-edited files.
type taskRecord struct {
	ID          *int    `json:"id"`
	Description *string `json:"description"`
	Time        string  `json:"time"`
	Completed   bool    `json:"completed"`
}

// task converts a persisted record back into a Task. A record without a
// description is unusable. Missing time and completed fields take their
// zero values; an id present in the record is kept as-is, even zero, and
// the store numbers records that have none.
func (r taskRecord) task() (Task, error) {
	if r.Description == nil {
		return Task{}, fmt.Errorf("missing required field description")
	}
	t := Task{
		Description: *r.Description,
		Time:        r.Time,
		Completed:   r.Completed,
	}
	if r.ID != nil {
		t.ID = *r.ID
	}
	return t, nil
}
