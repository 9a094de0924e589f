package ols

import (
	"context"
	"errors"
	"fmt"
	"math"

	"causalnotes/domain/core"
	"causalnotes/domain/regression"
	"causalnotes/internal"
	"causalnotes/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultTolerance is the size below which a diagonal entry of R, computed
// on unit-norm columns, is treated as zero when checking the design's rank.
const DefaultTolerance = 1e-10

// Estimator fits ordinary least squares by Householder QR.
type Estimator struct {
	Tolerance float64
	logger    *internal.Logger
}

// NewEstimator creates an estimator with the default rank tolerance
func NewEstimator() *Estimator {
	return &Estimator{Tolerance: DefaultTolerance, logger: internal.DefaultLogger}
}

// Fit regresses outcome on an intercept plus regressors, in that order.
// Standard errors assume homoskedastic Gaussian errors. A rank-deficient
// design is not an error: the result comes back with RankDeficient set and
// every statistic NaN.
func (e *Estimator) Fit(ctx context.Context, data ports.ColumnSource, outcome string, regressors []string) (*regression.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkNames(outcome, regressors); err != nil {
		return nil, err
	}

	n := data.Len()
	p := len(regressors) + 1
	if n <= p {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", core.ErrInsufficientData, n, p)
	}

	y, err := column(data, outcome, n)
	if err != nil {
		return nil, err
	}
	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, name := range regressors {
		col, err := column(data, name, n)
		if err != nil {
			return nil, err
		}
		x.SetCol(j+1, col)
	}

	names := append([]string{regression.InterceptName}, regressors...)
	result := &regression.Result{
		Outcome:    outcome,
		Regressors: append([]string(nil), regressors...),
		N:          n,
		DF:         n - p,
	}

	// Columns are factorized at unit norm so the rank check does not depend
	// on the units of each regressor; estimates are rescaled afterwards.
	scale, ok := normalizeColumns(x)
	if !ok {
		e.logger.Warn("design for %s has an all-zero column; coefficients undefined", result.Formula())
		return undefined(result, names), nil
	}

	var qr mat.QR
	qr.Factorize(x)
	var r mat.Dense
	qr.RTo(&r)
	if e.rankDeficient(&r, p) {
		e.logger.Warn("design for %s is rank deficient; coefficients undefined", result.Formula())
		return undefined(result, names), nil
	}

	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, mat.NewDense(n, 1, y)); err != nil {
		if isIllConditioned(err) {
			e.logger.Warn("design for %s is ill-conditioned: %v", result.Formula(), err)
			return undefined(result, names), nil
		}
		return nil, fmt.Errorf("solve %s: %w", result.Formula(), err)
	}

	// (XᵀX)⁻¹ = R⁻¹R⁻ᵀ over the leading p×p block of R.
	var rInv mat.Dense
	if err := rInv.Inverse(mat.DenseCopyOf(r.Slice(0, p, 0, p))); err != nil {
		if isIllConditioned(err) {
			return undefined(result, names), nil
		}
		return nil, fmt.Errorf("invert R for %s: %w", result.Formula(), err)
	}
	var xtxInv mat.Dense
	xtxInv.Mul(&rInv, rInv.T())

	var fitted mat.Dense
	fitted.Mul(x, &beta)

	meanY := 0.0
	for _, v := range y {
		meanY += v
	}
	meanY /= float64(n)

	var rss, tss float64
	for i := 0; i < n; i++ {
		resid := y[i] - fitted.At(i, 0)
		rss += resid * resid
		dev := y[i] - meanY
		tss += dev * dev
	}

	df := float64(n - p)
	sigma2 := rss / df
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	result.Coefficients = make([]regression.Coefficient, p)
	for j := 0; j < p; j++ {
		est := beta.At(j, 0) / scale[j]
		se := math.Sqrt(sigma2*xtxInv.At(j, j)) / scale[j]
		t := est / se
		result.Coefficients[j] = regression.Coefficient{
			Name:     names[j],
			Estimate: est,
			StdErr:   se,
			TStat:    t,
			PValue:   twoSidedP(tDist, t),
		}
	}

	result.ResidualStdError = math.Sqrt(sigma2)
	if tss > 0 {
		result.RSquared = 1 - rss/tss
		result.AdjRSquared = 1 - (1-result.RSquared)*float64(n-1)/df
	} else {
		result.RSquared = math.NaN()
		result.AdjRSquared = math.NaN()
	}
	result.FStat, result.FPValue = fTest(tss, rss, p-1, n-p)

	e.logger.Trace("fit %s: n=%d rss=%.6g", result.Formula(), n, rss)
	return result, nil
}

// normalizeColumns divides every column of x by its Euclidean norm in place
// and returns the norms. It reports false when a column is all zeros.
func normalizeColumns(x *mat.Dense) ([]float64, bool) {
	_, p := x.Dims()
	scale := make([]float64, p)
	for j := 0; j < p; j++ {
		col := x.ColView(j)
		norm := mat.Norm(col, 2)
		if norm == 0 || math.IsInf(norm, 0) {
			return nil, false
		}
		scale[j] = norm
		for i := 0; i < col.Len(); i++ {
			x.Set(i, j, x.At(i, j)/norm)
		}
	}
	return scale, true
}

// rankDeficient expects R from unit-norm columns, so every |R_jj| is at
// most 1 and measures how much of column j lies outside the earlier ones.
func (e *Estimator) rankDeficient(r *mat.Dense, p int) bool {
	tol := e.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	for j := 0; j < p; j++ {
		if math.Abs(r.At(j, j)) <= tol {
			return true
		}
	}
	return false
}

func twoSidedP(dist distuv.StudentsT, t float64) float64 {
	if math.IsNaN(t) {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	return math.Min(1, 2*dist.Survival(math.Abs(t)))
}

func fTest(tss, rss float64, df1, df2 int) (float64, float64) {
	if df1 <= 0 || df2 <= 0 || tss <= 0 {
		return math.NaN(), math.NaN()
	}
	f := ((tss - rss) / float64(df1)) / (rss / float64(df2))
	if math.IsInf(f, 1) {
		return f, 0
	}
	if math.IsNaN(f) || f < 0 {
		return math.NaN(), math.NaN()
	}
	return f, distuv.F{D1: float64(df1), D2: float64(df2)}.Survival(f)
}

func undefined(result *regression.Result, names []string) *regression.Result {
	nan := math.NaN()
	result.RankDeficient = true
	result.Coefficients = make([]regression.Coefficient, len(names))
	for j, name := range names {
		result.Coefficients[j] = regression.Coefficient{Name: name, Estimate: nan, StdErr: nan, TStat: nan, PValue: nan}
	}
	result.RSquared, result.AdjRSquared = nan, nan
	result.ResidualStdError = nan
	result.FStat, result.FPValue = nan, nan
	return result
}

func isIllConditioned(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

func checkNames(outcome string, regressors []string) error {
	if outcome == "" {
		return core.NewValidationError("outcome", "outcome name cannot be empty")
	}
	seen := make(map[string]bool, len(regressors))
	for _, name := range regressors {
		switch {
		case name == "":
			return core.NewValidationError("regressors", "regressor name cannot be empty")
		case name == outcome:
			return core.NewValidationError(name, "outcome cannot also be a regressor")
		case name == regression.InterceptName:
			return core.NewValidationError(name, "name is reserved for the intercept")
		case seen[name]:
			return core.NewValidationError(name, "regressor listed twice")
		}
		seen[name] = true
	}
	return nil
}

func column(data ports.ColumnSource, name string, n int) ([]float64, error) {
	col, ok := data.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrVariableNotFound, name)
	}
	if len(col) != n {
		return nil, core.NewValidationError(name, fmt.Sprintf("length %d, expected %d", len(col), n))
	}
	for i, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s[%d]", core.ErrNonFinite, name, i)
		}
	}
	return col, nil
}
