package normal

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// bandsPerWorker keeps workers busy when rows cost different amounts, which
// happens whenever the selection covers only part of the raster.
const bandsPerWorker = 4

// forEachRow calls fn once for every row of r. Rows are grouped into bands
// and bands run concurrently on at most workers goroutines. fn must only
// touch pixels on its own row. A cancelled ctx stops bands that have not
// started and its error is returned.
func forEachRow(ctx context.Context, r image.Rectangle, workers int, fn func(y int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := r.Dy() / (workers * bandsPerWorker)
	if band < 1 {
		band = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y0 := r.Min.Y; y0 < r.Max.Y; y0 += band {
		y1 := min(y0+band, r.Max.Y)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for y := y0; y < y1; y++ {
				fn(y)
			}
			return nil
		})
	}
	return g.Wait()
}
