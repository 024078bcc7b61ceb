// Package scanner checks a sequence of targets and counts the ones
// violating their policy.
package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jheddings/safenet/internal/model"
	"github.com/jheddings/safenet/internal/target"
	"golang.org/x/sync/errgroup"
)

// Observer is notified after each target has been checked. Calls
// are serialized, so implementations need no locking of their own.
type Observer interface {
	OnTargetDone(index, total int, outcome *target.Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(index, total int, outcome *target.Outcome)

// OnTargetDone implements Observer.
func (fx ObserverFunc) OnTargetDone(index, total int, outcome *target.Outcome) {
	fx(index, total, outcome)
}

// Scanner checks targets. The zero value is a valid sequential scanner.
type Scanner struct {
	// Parallelism is the OPTIONAL maximum number of targets checked
	// at the same time. Setting a value <= 1 is equivalent to setting
	// 1, which checks targets one after the other in order.
	Parallelism int

	// Logger is the OPTIONAL logger.
	Logger model.Logger

	// Observers are OPTIONAL observers.
	Observers []Observer
}

// Result is the result of a scan.
type Result struct {
	// Total is the number of targets we were asked to check.
	Total int

	// Checked is the number of targets we checked.
	Checked int

	// Failed is the number of checked targets violating their policy.
	Failed int

	// Skipped is the number of targets not checked because the
	// scan was interrupted.
	Skipped int

	// Interrupted is true when the context was done during the scan,
	// so some outcomes may be missing or reflect the interruption.
	Interrupted bool

	// Duration is the wall clock duration of the scan.
	Duration time.Duration

	// Outcomes contains the outcome of each target in declaration
	// order. The entry of a skipped target is nil.
	Outcomes []*target.Outcome
}

// Run checks every target and returns the result. Failing targets do
// not stop the scan. When ctx is done we stop starting new checks, wait
// for the ones in flight, and mark the result as interrupted.
func (s *Scanner) Run(ctx context.Context, targets []*target.Target) *Result {
	logger := model.ValidLoggerOrDefault(s.Logger)
	parallelism := max(s.Parallelism, 1)
	total := len(targets)
	logger.Infof("scanning %d targets (parallelism: %d)", total, parallelism)

	start := time.Now()
	outcomes := make([]*target.Outcome, total)
	var (
		checked atomic.Int64
		failed  atomic.Int64
		mu      sync.Mutex
	)

	group := &errgroup.Group{}
	group.SetLimit(parallelism)
	for idx, tg := range targets {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			// the context may be done while we were waiting for a slot
			if ctx.Err() != nil {
				return nil
			}
			outcome := tg.Evaluate(ctx)
			outcomes[idx] = outcome
			checked.Add(1)
			if !outcome.Verdict.Passed {
				failed.Add(1)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, obs := range s.Observers {
				obs.OnTargetDone(idx, total, outcome)
			}
			return nil
		})
	}
	_ = group.Wait()

	result := &Result{
		Total:    total,
		Checked:  int(checked.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
		Outcomes: outcomes,
	}
	result.Skipped = total - result.Checked
	result.Interrupted = ctx.Err() != nil
	if result.Interrupted {
		logger.Warnf("scan interrupted: %d targets skipped", result.Skipped)
	}
	logger.Infof("checked %d targets: %d failed in %s", result.Checked, result.Failed, result.Duration)
	return result
}
