// Package parallel runs independent tasks concurrently.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled bool // Whether parallel execution is enabled.
	Workers int  // Maximum number of tasks running at once.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled: n > 1,
		Workers: n,
	}
}

// For executes f(ctx, i) for i in [0, n) and returns f's error per index.
// Every task runs regardless of the others' errors. Falls back to sequential
// execution if parallelism is disabled or there is a single task.
func For(ctx context.Context, n int, f func(ctx context.Context, i int) error, cfg Config) []error {
	errs := make([]error, n)
	if !cfg.Enabled || cfg.Workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			errs[i] = f(ctx, i)
		}
		return errs
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = f(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
