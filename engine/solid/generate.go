package solid

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/shower/common"
	"github.com/Carmen-Shannon/shower/engine/geometry"
)

// GenerateAll builds every solid in parallel on a worker pool and returns the cached
// geometry in input order.
//
// Parameters:
//   - solids: the solids to build
//   - workers: pool size; values <= 0 use one worker per CPU
//
// Returns:
//   - []*geometry.Cached: one entry per solid
func GenerateAll(solids []Solid, workers int) []*geometry.Cached {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]*geometry.Cached, len(solids))
	if len(solids) == 0 {
		return out
	}

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	pool := worker.NewDynamicWorkerPool(workers, 256, time.Second)
	var wg sync.WaitGroup
	start := time.Now()
	for i, s := range solids {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				out[i] = s.Generate()
				return nil, nil
			},
		})
	}
	wg.Wait()

	common.Logger().Debug("solids generated",
		"count", len(solids),
		"workers", workers,
		"elapsed", time.Since(start),
	)
	return out
}
