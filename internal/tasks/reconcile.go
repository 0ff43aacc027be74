// Package tasks runs scheduled maintenance jobs.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusbridge/internal/observability"
	"campusbridge/internal/repository"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 3 * time.Minute

// ReconcileTask periodically repairs denormalized like and reply counters.
type ReconcileTask struct {
	counters repository.CounterRepository
	cron     *cron.Cron
	schedule string

	mu      sync.Mutex
	running bool
}

// NewReconcileTask validates schedule (standard 5-field cron or a descriptor
// such as "@every 10m") without starting the scheduler.
func NewReconcileTask(counters repository.CounterRepository, schedule string) (*ReconcileTask, error) {
	t := &ReconcileTask{
		counters: counters,
		cron:     cron.New(),
		schedule: schedule,
	}
	if _, err := t.cron.AddFunc(schedule, t.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return t, nil
}

// Start runs the scheduler in the background.
func (t *ReconcileTask) Start() {
	observability.LogAsyncOperationStart(context.Background(), "counter_reconcile_scheduler", map[string]interface{}{
		"schedule": t.schedule,
	})
	t.cron.Start()
}

// Stop halts scheduling. The returned context is done once a running pass finishes.
func (t *ReconcileTask) Stop() context.Context {
	return t.cron.Stop()
}

func (t *ReconcileTask) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()
	_, _ = t.RunOnce(ctx)
}

// RunOnce performs one reconciliation pass. Overlapping passes are skipped.
func (t *ReconcileTask) RunOnce(ctx context.Context) (repository.ReconcileReport, error) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return repository.ReconcileReport{}, nil
	}
	t.running = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	start := time.Now()
	observability.LogAsyncOperationStart(ctx, "counter_reconcile", nil)

	report, err := t.counters.Reconcile(ctx)
	if err != nil {
		observability.LogAsyncOperationError(ctx, "counter_reconcile", err, nil)
		return report, err
	}

	var repaired int64
	for _, d := range report.Drift {
		if d.Rows > 0 {
			observability.CounterDriftRepaired.WithLabelValues(d.Table, d.Column).Add(float64(d.Rows))
			repaired += d.Rows
		}
	}
	observability.LogAsyncOperationEnd(ctx, "counter_reconcile", time.Since(start), map[string]interface{}{
		"rows_repaired":  repaired,
		"orphaned_likes": report.OrphanedLikes,
		"posts_evicted":  len(report.RepairedPosts),
	})
	return report, nil
}
