package app

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"causalnotes/adapters/stats/describe"
	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/domain/regression"
	"causalnotes/internal"
	"causalnotes/internal/report"
	"causalnotes/internal/scenarios"
	"causalnotes/ports"

	"golang.org/x/sync/errgroup"
)

// ExperimentService runs the generate, fit twice, compare pipeline.
type ExperimentService struct {
	stages      *StageRunner
	ledger      ports.RunLedger
	catalog     *scenarios.Catalog
	maxParallel int
	logger      *internal.Logger
	now         func() time.Time
}

// NewExperimentService wires the pipeline. maxParallel bounds RunAll.
func NewExperimentService(stages *StageRunner, ledger ports.RunLedger, catalog *scenarios.Catalog, maxParallel int) *ExperimentService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &ExperimentService{
		stages:      stages,
		ledger:      ledger,
		catalog:     catalog,
		maxParallel: maxParallel,
		logger:      internal.DefaultLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RunResult is the in-memory outcome of one scenario run.
type RunResult struct {
	RunID      core.RunID
	Scenario   scenarios.Scenario
	Dataset    *causal.Dataset
	Comparison *regression.Comparison
	Summary    *describe.Summary
	// OVB is set when the scenario names a treatment and the long model is defined.
	OVB       *float64
	CreatedAt time.Time
}

// Report turns a run into its printable form.
func (r *RunResult) Report() *report.Report {
	return &report.Report{
		Title:      r.Scenario.Title,
		Scenario:   r.Scenario.Name,
		Note:       r.Scenario.Note,
		RunID:      r.RunID.String(),
		Seed:       r.Dataset.Seed,
		N:          r.Dataset.Len(),
		Comparison: r.Comparison,
		Summary:    r.Summary,
		OVB:        r.OVB,
	}
}

// Catalog exposes the scenarios this service can run.
func (s *ExperimentService) Catalog() *scenarios.Catalog {
	return s.catalog
}

// Generate draws a scenario's dataset.
func (s *ExperimentService) Generate(ctx context.Context, sc scenarios.Scenario) (*causal.Dataset, error) {
	return s.stages.Generate(ctx, sc.Structure, sc.N, sc.Seed)
}

// Fit regresses outcome on regressors.
func (s *ExperimentService) Fit(ctx context.Context, data ports.ColumnSource, outcome string, regressors []string) (*regression.Result, error) {
	return s.stages.Fit(ctx, data, outcome, regressors)
}

// Compare fits outcome on base, then on base plus control.
func (s *ExperimentService) Compare(ctx context.Context, data ports.ColumnSource, outcome string, base []string, control string) (*regression.Comparison, error) {
	if control == "" {
		return nil, fmt.Errorf("%w: no candidate control", core.ErrInvalidComparison)
	}
	with := append(slices.Clone(base), control)
	return s.CompareSets(ctx, data, outcome, base, with)
}

// CompareSets fits outcome on two regressor sets that must differ by exactly
// one variable. The set without that variable is reported as Without
// regardless of argument order.
func (s *ExperimentService) CompareSets(ctx context.Context, data ports.ColumnSource, outcome string, a, b []string) (*regression.Comparison, error) {
	onlyA, onlyB := difference(a, b), difference(b, a)
	var without, with []string
	var candidate string
	switch {
	case len(onlyA) == 0 && len(onlyB) == 1:
		without, with, candidate = a, b, onlyB[0]
	case len(onlyA) == 1 && len(onlyB) == 0:
		without, with, candidate = b, a, onlyA[0]
	default:
		return nil, fmt.Errorf("%w: sets %v and %v must differ by exactly one variable", core.ErrInvalidComparison, a, b)
	}

	res0, err := s.stages.Fit(ctx, data, outcome, without)
	if err != nil {
		return nil, err
	}
	res1, err := s.stages.Fit(ctx, data, outcome, with)
	if err != nil {
		return nil, err
	}
	return &regression.Comparison{
		Outcome:   outcome,
		Candidate: candidate,
		Without:   res0,
		With:      res1,
	}, nil
}

// RunScenario evaluates the scenario and appends the run to the ledger.
func (s *ExperimentService) RunScenario(ctx context.Context, sc scenarios.Scenario) (*RunResult, error) {
	res, err := s.Evaluate(ctx, sc)
	if err != nil {
		return nil, err
	}

	record := ports.RunRecord{
		ID:          res.RunID,
		Scenario:    sc.Name,
		Seed:        res.Dataset.Seed,
		N:           res.Dataset.Len(),
		Fingerprint: res.Dataset.Fingerprint(),
		Comparison:  res.Comparison,
		CreatedAt:   res.CreatedAt,
	}
	if err := s.ledger.Store(ctx, record); err != nil {
		return nil, fmt.Errorf("store run %s: %w", res.RunID, err)
	}

	s.logger.Info("run %s: %s seed=%d n=%d shift=%.4f", res.RunID, sc.Name, record.Seed, record.N, res.Comparison.Shift())
	return res, nil
}

// Evaluate generates the scenario's dataset and compares the two fits
// without touching the ledger.
func (s *ExperimentService) Evaluate(ctx context.Context, sc scenarios.Scenario) (*RunResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	ds, err := s.Generate(ctx, sc)
	if err != nil {
		return nil, err
	}
	cmp, err := s.Compare(ctx, ds, sc.Outcome, sc.Base, sc.Control)
	if err != nil {
		return nil, err
	}
	cmp.Treatment = sc.Treatment
	cmp.TrueEffect = sc.TrueEffect

	summary, err := describe.Summarize(ds)
	if err != nil {
		return nil, err
	}

	res := &RunResult{
		RunID:      core.NewRunID(),
		Scenario:   sc,
		Dataset:    ds,
		Comparison: cmp,
		Summary:    summary,
		CreatedAt:  s.now(),
	}
	if sc.Treatment != "" && !cmp.With.RankDeficient {
		ovb, err := s.OmittedVariableBias(ctx, ds, sc, cmp.With)
		if err == nil {
			res.OVB = &ovb
		} else {
			s.logger.Warn("omitted-variable bias for %s: %v", sc.Name, err)
		}
	}
	return res, nil
}

// OmittedVariableBias is γ·δ: the control's coefficient in the long model
// times the treatment's coefficient when the control is regressed on the base
// set. It equals the short-minus-long treatment coefficient in-sample. With
// the treatment as the only base regressor, δ reduces to cov(T, Z)/var(T).
func (s *ExperimentService) OmittedVariableBias(ctx context.Context, ds *causal.Dataset, sc scenarios.Scenario, long *regression.Result) (float64, error) {
	gamma := long.Estimate(sc.Control)
	if len(sc.Base) == 1 {
		return describe.OmittedVariableBias(ds, sc.Treatment, sc.Control, gamma)
	}
	aux, err := s.stages.Fit(ctx, ds, sc.Control, sc.Base)
	if err != nil {
		return math.NaN(), err
	}
	if aux.RankDeficient {
		return math.NaN(), fmt.Errorf("%w: %s on %v", core.ErrRankDeficient, sc.Control, sc.Base)
	}
	return gamma * aux.Estimate(sc.Treatment), nil
}

// RunNamed resolves ref (a catalog name or YAML path) and runs it. A nil
// seed or zero n keeps the scenario's own.
func (s *ExperimentService) RunNamed(ctx context.Context, ref string, seed *int64, n int) (*RunResult, error) {
	sc, err := s.catalog.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if seed != nil {
		sc = sc.With(*seed, n)
	} else {
		sc = sc.With(sc.Seed, n)
	}
	return s.RunScenario(ctx, sc)
}

// RunAll runs scenarios concurrently, at most maxParallel at a time. Results
// keep the input order. Each run draws from its own seeded stream, so the
// outcome does not depend on scheduling.
func (s *ExperimentService) RunAll(ctx context.Context, list []scenarios.Scenario) ([]*RunResult, error) {
	results := make([]*RunResult, len(list))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	var mu sync.Mutex
	done := 0
	for i, sc := range list {
		i, sc := i, sc
		g.Go(func() error {
			res, err := s.RunScenario(ctx, sc)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			results[i] = res

			mu.Lock()
			done++
			s.logger.Debug("run-all: %d/%d done", done, len(list))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Runs lists ledger entries newest first.
func (s *ExperimentService) Runs(ctx context.Context, filters ports.RunFilters) ([]ports.RunRecord, error) {
	return s.ledger.List(ctx, filters)
}

// Run fetches one ledger entry.
func (s *ExperimentService) Run(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	return s.ledger.Get(ctx, id)
}

// difference returns the elements of a missing from b, in a's order.
func difference(a, b []string) []string {
	var out []string
	for _, x := range a {
		if !slices.Contains(b, x) && !slices.Contains(out, x) {
			out = append(out, x)
		}
	}
	return out
}
