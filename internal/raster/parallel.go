package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a requested worker count: anything below 1 means one
// worker per available CPU.
func Workers(n int) int {
	if n < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ParallelRows splits [0, height) into contiguous bands and calls fn once per
// band, each on its own goroutine. It returns after every band is done, so
// callers may treat it as a barrier between stages. Bands are disjoint;
// fn must only write output rows inside its band.
func ParallelRows(height, workers int, fn func(y0, y1 int)) {
	workers = min(Workers(workers), height)
	if workers <= 1 {
		fn(0, height)
		return
	}

	var g errgroup.Group
	for t := 0; t < workers; t++ {
		y0, y1 := bandRange(height, workers, t)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}

// bandRange returns band i of n over [0, height); the last band absorbs the
// remainder.
func bandRange(height, n, i int) (int, int) {
	size := height / n
	start := i * size
	if i == n-1 {
		return start, height
	}
	return start, start + size
}
