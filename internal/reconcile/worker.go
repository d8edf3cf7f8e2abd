package reconcile

import (
	"context"

	"github.com/riverqueue/river"
)

// SweepArgs is the periodic payout reconciliation job. It carries no
// payload; each run scans for stuck locks.
type SweepArgs struct{}

func (SweepArgs) Kind() string { return "payout_reconcile_sweep" }

// SweepWorker runs the sweeper as a River job.
type SweepWorker struct {
	river.WorkerDefaults[SweepArgs]
	sweeper *Sweeper
}

func NewSweepWorker(sweeper *Sweeper) *SweepWorker {
	return &SweepWorker{sweeper: sweeper}
}

func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepArgs]) error {
	_, err := w.sweeper.Sweep(ctx)
	return err
}
