package models

import "testing"

func TestTaskStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to TaskStatus }{
		{TaskStatusDraft, TaskStatusActive},
		{TaskStatusActive, TaskStatusCompleted},
		{TaskStatusActive, TaskStatusSettled},
		{TaskStatusCompleted, TaskStatusSettled},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Errorf("%s -> %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to TaskStatus }{
		{TaskStatusDraft, TaskStatusCompleted},
		{TaskStatusDraft, TaskStatusSettled},
		{TaskStatusActive, TaskStatusDraft},
		{TaskStatusCompleted, TaskStatusActive},
		{TaskStatusSettled, TaskStatusActive},
		{TaskStatusSettled, TaskStatusDraft},
		{TaskStatusSettled, TaskStatusCompleted},
	}
	for _, tr := range denied {
		if tr.from.CanTransitionTo(tr.to) {
			t.Errorf("%s -> %s should be rejected", tr.from, tr.to)
		}
	}

	if !TaskStatusSettled.Terminal() {
		t.Error("SETTLED should be terminal")
	}
	if TaskStatusActive.Terminal() {
		t.Error("ACTIVE should not be terminal")
	}
}

func TestTaskFunding(t *testing.T) {
	task := &Task{Budget: 100, FundedAmount: 30}
	if got := task.RemainingBudget(); got != 70 {
		t.Errorf("remaining: got %d, want 70", got)
	}
	if task.FullyFunded() {
		t.Error("30/100 should not be fully funded")
	}
	task.FundedAmount = 100
	if !task.FullyFunded() {
		t.Error("100/100 should be fully funded")
	}
}

func TestPayoutStatusTerminal(t *testing.T) {
	if PayoutStatusPending.Terminal() {
		t.Error("PENDING should not be terminal")
	}
	if !PayoutStatusSuccess.Terminal() || !PayoutStatusFailed.Terminal() {
		t.Error("SUCCESS and FAILED should be terminal")
	}
}
