package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"digital.vasic.praspel/pkg/registry"
)

// runParallel executes subjects concurrently, at most
// maxConcurrency at a time. Results keep the order of ids; subjects
// that could not run are left out and their errors joined. Each
// goroutine builds its own checker.
func runParallel(
	ctx context.Context,
	r *DefaultRunner,
	runID string,
	ids []registry.ID,
	maxConcurrency int,
) ([]*Result, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, maxConcurrency)
		ordered = make([]*Result, len(ids))
		errs    = make([]error, len(ids))
	)

	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = fmt.Errorf("subject %s: %w", id, ctx.Err())
				return
			}

			s, err := r.registry.Get(id)
			if err != nil {
				errs[i] = fmt.Errorf("subject %s: %w", id, err)
				return
			}
			ordered[i], errs[i] = r.executeSubject(ctx, runID, s)
		}()
	}
	wg.Wait()

	results := make([]*Result, 0, len(ids))
	for _, res := range ordered {
		if res != nil {
			results = append(results, res)
		}
	}
	return results, errors.Join(errs...)
}
