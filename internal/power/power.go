// Package power sizes two-arm A/B tests on a continuous metric: minimum
// detectable effect, required sample size and simulated power.
package power

import (
	"context"
	"fmt"
	"math"

	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/ports"

	"gonum.org/v1/gonum/stat/distuv"
)

// TreatmentColumn is the dummy regressor used by SimulatePower.
const TreatmentColumn = "treated"

// Design describes an experiment. Alpha is two-sided; Power is 1-β.
type Design struct {
	Alpha      float64 `json:"alpha"`
	Power      float64 `json:"power"`
	StdDev     float64 `json:"std_dev"`
	NTotal     int     `json:"n_total"`
	TreatShare float64 `json:"treat_share"`
}

// DefaultDesign is the usual 5% / 80% balanced design.
func DefaultDesign() Design {
	return Design{Alpha: 0.05, Power: 0.8, StdDev: 1, NTotal: 1000, TreatShare: 0.5}
}

// validateShape checks everything except NTotal, which SampleSize does not need.
func (d Design) validateShape() error {
	switch {
	case !(d.Alpha > 0 && d.Alpha < 1):
		return core.NewValidationError("alpha", fmt.Sprintf("must be in (0,1), got %g", d.Alpha))
	case !(d.Power > 0 && d.Power < 1):
		return core.NewValidationError("power", fmt.Sprintf("must be in (0,1), got %g", d.Power))
	case !(d.StdDev > 0) || math.IsInf(d.StdDev, 0):
		return core.NewValidationError("std_dev", fmt.Sprintf("must be positive, got %g", d.StdDev))
	case !(d.TreatShare > 0 && d.TreatShare < 1):
		return core.NewValidationError("treat_share", fmt.Sprintf("must be in (0,1), got %g", d.TreatShare))
	}
	return nil
}

// Validate checks the full design.
func (d Design) Validate() error {
	if err := d.validateShape(); err != nil {
		return err
	}
	if d.NTotal < 4 {
		return core.NewValidationError("n_total", fmt.Sprintf("need at least 4 units, got %d", d.NTotal))
	}
	return nil
}

// multiplier is z(1-α/2) + z(power).
func (d Design) multiplier() float64 {
	return distuv.UnitNormal.Quantile(1-d.Alpha/2) + distuv.UnitNormal.Quantile(d.Power)
}

// balance is p(1-p), the share term of the difference-in-means variance.
func (d Design) balance() float64 {
	return d.TreatShare * (1 - d.TreatShare)
}

// StdErr is the standard error of the difference in means.
func (d Design) StdErr() float64 {
	return d.StdDev / math.Sqrt(d.balance()*float64(d.NTotal))
}

// MDE is the smallest true effect detected with probability Power.
func MDE(d Design) (float64, error) {
	if err := d.Validate(); err != nil {
		return math.NaN(), err
	}
	return d.multiplier() * d.StdErr(), nil
}

// SampleSize is the smallest total N whose MDE does not exceed mde.
// d.NTotal is ignored.
func SampleSize(d Design, mde float64) (int, error) {
	if err := d.validateShape(); err != nil {
		return 0, err
	}
	if !(mde > 0) || math.IsInf(mde, 0) {
		return 0, core.NewValidationError("mde", fmt.Sprintf("must be positive, got %g", mde))
	}
	m := d.multiplier()
	n := m * m * d.StdDev * d.StdDev / (d.balance() * mde * mde)
	return int(math.Ceil(n)), nil
}

// AnalyticPower is the normal-approximation power against effect. The
// rejection region on the wrong side is ignored.
func AnalyticPower(d Design, effect float64) (float64, error) {
	if err := d.Validate(); err != nil {
		return math.NaN(), err
	}
	z := distuv.UnitNormal.Quantile(1 - d.Alpha/2)
	return distuv.UnitNormal.CDF(math.Abs(effect)/d.StdErr() - z), nil
}

// Simulator estimates power by Monte Carlo: each replicate draws a fresh
// experiment from its own seeded stream and tests the treatment dummy by OLS.
type Simulator struct {
	rng       ports.RNGPort
	estimator ports.Estimator
}

// NewSimulator creates a simulator
func NewSimulator(rng ports.RNGPort, estimator ports.Estimator) *Simulator {
	return &Simulator{rng: rng, estimator: estimator}
}

// SimulatePower returns the fraction of replicates rejecting at d.Alpha.
func (s *Simulator) SimulatePower(ctx context.Context, d Design, effect float64, replicates int, seed int64) (float64, error) {
	if err := d.Validate(); err != nil {
		return math.NaN(), err
	}
	if replicates <= 0 {
		return math.NaN(), core.NewValidationError("replicates", "must be positive")
	}

	nTreated := int(math.Round(d.TreatShare * float64(d.NTotal)))
	if nTreated == 0 || nTreated == d.NTotal {
		return math.NaN(), core.NewValidationError("treat_share", "leaves an arm empty")
	}
	treated := make([]float64, d.NTotal)
	for i := 0; i < nTreated; i++ {
		treated[i] = 1
	}

	rejected := 0
	for r := 0; r < replicates; r++ {
		stream, err := s.rng.Stream(ctx, "power", r, seed)
		if err != nil {
			return math.NaN(), err
		}
		y := make([]float64, d.NTotal)
		for i := range y {
			y[i] = effect*treated[i] + d.StdDev*stream.NormFloat64()
		}

		ds, err := causal.NewDataset(seed, []string{TreatmentColumn, "y"}, map[string][]float64{
			TreatmentColumn: treated,
			"y":             y,
		})
		if err != nil {
			return math.NaN(), err
		}
		res, err := s.estimator.Fit(ctx, ds, "y", []string{TreatmentColumn})
		if err != nil {
			return math.NaN(), fmt.Errorf("replicate %d: %w", r, err)
		}
		if c, ok := res.Coefficient(TreatmentColumn); ok && c.Significant(d.Alpha) {
			rejected++
		}
	}
	return float64(rejected) / float64(replicates), nil
}
