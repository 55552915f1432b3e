package closure

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const saturateChunk = 512

// SaturateParallel is Saturate spread over workers goroutines. Each
// context is written by exactly one worker.
func SaturateParallel(ctx context.Context, st *SymbolTable, store *EdgeStore, rels []Relation, workers int) ([]Context, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		return Saturate(st, store, rels), nil
	}

	n := st.Len()
	contexts := make([]Context, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += saturateChunk {
		hi := min(lo+saturateChunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			worklist := make([]TermID, 0, 64)
			for c := lo; c < hi; c++ {
				worklist = saturateOne(&contexts[c], TermID(c), st, store, rels, worklist[:0])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contexts, nil
}
