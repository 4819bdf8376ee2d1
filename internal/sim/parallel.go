package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulations concurrently. Each run gets its own
// universe from build, so no bodies are shared between goroutines.
type Ensemble struct {
	build   func(run int) (*Simulator, Config, error)
	numRuns int
}

func NewEnsemble(numRuns int, build func(run int) (*Simulator, Config, error)) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

// Run returns one result per run, in run order. The first error from any run cancels
// the others and is returned.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	for i := range e.numRuns {
		g.Go(func() error {
			sim, cfg, err := e.build(i)
			if err != nil {
				return err
			}
			results[i], err = sim.Run(ctx, cfg)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
