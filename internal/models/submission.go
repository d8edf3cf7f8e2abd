package models

import (
	"time"

	"github.com/google/uuid"
)

// Option is one of the valid choices workers vote among for a task.
type Option struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is a worker's vote for one task option. At most one per
// (worker, task), enforced by a unique constraint.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	WorkerID  uuid.UUID `json:"worker_id"`
	TaskID    uuid.UUID `json:"task_id"`
	OptionID  uuid.UUID `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}
