package regression

import (
	"math"
)

// InterceptName is the name reported for the implicit intercept column.
const InterceptName = "const"

// Coefficient is one row of a regression table.
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TStat    float64 `json:"t_stat"`
	PValue   float64 `json:"p_value"`
}

// Significant reports whether the coefficient's two-sided p-value is below alpha.
func (c Coefficient) Significant(alpha float64) bool {
	return !math.IsNaN(c.PValue) && c.PValue < alpha
}

// Defined reports whether the estimate is a finite number.
func (c Coefficient) Defined() bool {
	return !math.IsNaN(c.Estimate) && !math.IsInf(c.Estimate, 0)
}

// Result is an immutable OLS fit of Outcome on an intercept plus Regressors.
type Result struct {
	Outcome          string        `json:"outcome"`
	Regressors       []string      `json:"regressors"`
	N                int           `json:"n"`
	DF               int           `json:"df_resid"`
	Coefficients     []Coefficient `json:"coefficients"`
	RSquared         float64       `json:"r_squared"`
	AdjRSquared      float64       `json:"adj_r_squared"`
	ResidualStdError float64       `json:"residual_std_error"`
	FStat            float64       `json:"f_stat"`
	FPValue          float64       `json:"f_p_value"`
	RankDeficient    bool          `json:"rank_deficient"`
}

// Coefficient looks a coefficient up by regressor name ("const" for the intercept).
func (r *Result) Coefficient(name string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Estimate returns the point estimate for name, or NaN when absent.
func (r *Result) Estimate(name string) float64 {
	c, ok := r.Coefficient(name)
	if !ok {
		return math.NaN()
	}
	return c.Estimate
}

// Formula renders the model the way the articles write it, e.g. "Y ~ T + Z".
func (r *Result) Formula() string {
	f := r.Outcome + " ~ "
	if len(r.Regressors) == 0 {
		return f + "1"
	}
	for i, name := range r.Regressors {
		if i > 0 {
			f += " + "
		}
		f += name
	}
	return f
}

// Comparison holds two fits that differ only by one candidate control.
type Comparison struct {
	Outcome   string  `json:"outcome"`
	Treatment string  `json:"treatment,omitempty"`
	Candidate string  `json:"candidate"`
	Without   *Result `json:"without"`
	With      *Result `json:"with"`
	// TrueEffect is the structural treatment effect when known (simulations).
	TrueEffect *float64 `json:"true_effect,omitempty"`
}

// Shift is the change in the treatment coefficient caused by adding Candidate.
func (c *Comparison) Shift() float64 {
	if c.Treatment == "" || c.Without == nil || c.With == nil {
		return math.NaN()
	}
	return c.With.Estimate(c.Treatment) - c.Without.Estimate(c.Treatment)
}

// Bias returns the treatment-coefficient bias of each fit against TrueEffect.
func (c *Comparison) Bias() (without, with float64) {
	if c.TrueEffect == nil || c.Treatment == "" {
		return math.NaN(), math.NaN()
	}
	return c.Without.Estimate(c.Treatment) - *c.TrueEffect, c.With.Estimate(c.Treatment) - *c.TrueEffect
}

// Names returns the union of coefficient names in display order: the
// intercept, the shared regressors, then the candidate.
func (c *Comparison) Names() []string {
	names := []string{InterceptName}
	seen := map[string]bool{InterceptName: true}
	for _, res := range []*Result{c.Without, c.With} {
		if res == nil {
			continue
		}
		for _, name := range res.Regressors {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
