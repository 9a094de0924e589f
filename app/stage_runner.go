package app

import (
	"context"
	"fmt"
	"time"

	"causalnotes/domain/causal"
	"causalnotes/domain/regression"
	"causalnotes/internal"
	"causalnotes/ports"
)

// StageRunner executes the two stages every run shares, generation and
// estimation, and logs how long each took.
type StageRunner struct {
	generator ports.DatasetGenerator
	estimator ports.Estimator
	logger    *internal.Logger
}

// NewStageRunner creates a new stage runner
func NewStageRunner(generator ports.DatasetGenerator, estimator ports.Estimator) *StageRunner {
	return &StageRunner{
		generator: generator,
		estimator: estimator,
		logger:    internal.DefaultLogger,
	}
}

// Generate draws a dataset from structure.
func (r *StageRunner) Generate(ctx context.Context, structure causal.Structure, n int, seed int64) (*causal.Dataset, error) {
	start := time.Now()
	ds, err := r.generator.Generate(ctx, structure, n, seed)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	r.logger.Debug("generated %d x %d (seed %d) in %s", ds.Len(), len(ds.Names), seed, time.Since(start))
	return ds, nil
}

// Fit regresses outcome on regressors.
func (r *StageRunner) Fit(ctx context.Context, data ports.ColumnSource, outcome string, regressors []string) (*regression.Result, error) {
	start := time.Now()
	res, err := r.estimator.Fit(ctx, data, outcome, regressors)
	if err != nil {
		return nil, fmt.Errorf("fit %s on %v: %w", outcome, regressors, err)
	}
	r.logger.Debug("fit %s in %s", res.Formula(), time.Since(start))
	return res, nil
}
