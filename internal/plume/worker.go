package plume

import (
	"context"
	"sync"
)

// ringPool is a fixed-size worker pool for ring generation. Rings are
// fully independent, so jobs carry only the ring index and each worker
// writes into a disjoint slice segment; no synchronization beyond the
// WaitGroup is needed and results are order-independent.
type ringPool struct {
	workers int
}

func newRingPool(workers int) *ringPool {
	return &ringPool{workers: workers}
}

// run executes fn(r) for every ring index in [0, n) across the pool,
// stopping early if the context is cancelled. Ring generation itself
// cannot fail; cancellation is reported by the caller via ctx.Err.
func (p *ringPool) run(ctx context.Context, n int, fn func(r int)) {
	jobs := make(chan int, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				fn(r)
			}
		}()
	}

	for r := 0; r < n; r++ {
		select {
		case jobs <- r:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
