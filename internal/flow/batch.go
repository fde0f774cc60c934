package flow

import (
	"sync"
	"sync/atomic"

	"dexlens/internal/model"
)

// BatchResult pairs one input method with its analysis outcome, preserving
// the caller's ability to tell which input an error belongs to.
type BatchResult struct {
	Method   *model.Method
	Branches []Branching
	Err      error
}

// AnalyseBranchesBatch runs AnalyseBranches over methods on a fixed-size
// worker pool (spec §4.6 "safe to execute on independent worker threads"
// / §5 "data-parallel worker pool; workers own disjoint partitions").
// Results are order-preserving with respect to methods, via a pre-sized
// result slice indexed by the caller's position rather than a channel
// fan-in. cancel, if non-nil, is polled between methods so a caller can
// stop the batch early without tearing down goroutines mid-method.
func AnalyseBranchesBatch(methods []*model.Method, ctx *model.Context, conservative bool, opts Options, workers int, cancel *atomic.Bool) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(methods))

	type job struct{ idx int }
	jobs := make(chan job, len(methods))
	for i := range methods {
		jobs <- job{idx: i}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if cancel != nil && cancel.Load() {
					return
				}
				m := methods[j.idx]
				branches, err := AnalyseBranches(m, ctx, conservative, opts)
				results[j.idx] = BatchResult{Method: m, Branches: branches, Err: err}
			}
		}()
	}
	wg.Wait()
	return results
}
