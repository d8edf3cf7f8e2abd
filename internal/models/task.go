package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the task lifecycle state. Transitions are guarded by
// CanTransitionTo so illegal moves (e.g. SETTLED back to ACTIVE) are
// rejected in code, not just by convention.
type TaskStatus string

const (
	TaskStatusDraft     TaskStatus = "DRAFT"
	TaskStatusActive    TaskStatus = "ACTIVE"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusSettled   TaskStatus = "SETTLED"
)

// taskTransitions is the allowed lifecycle graph. SETTLED is terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusDraft:     {TaskStatusActive},
	TaskStatusActive:    {TaskStatusCompleted, TaskStatusSettled},
	TaskStatusCompleted: {TaskStatusSettled},
	TaskStatusSettled:   {},
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s TaskStatus) Terminal() bool {
	return len(taskTransitions[s]) == 0
}

type Task struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Budget       int64      `json:"budget"`
	FundedAmount int64      `json:"funded_amount"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RemainingBudget is the credit gap between budget and funded amount.
func (t *Task) RemainingBudget() int64 {
	return t.Budget - t.FundedAmount
}

// FullyFunded reports whether the task no longer needs funding.
func (t *Task) FullyFunded() bool {
	return t.FundedAmount >= t.Budget
}
