// Package describe computes the descriptive statistics printed alongside
// each simulated dataset and the closed-form omitted-variable bias.
package describe

import (
	"fmt"
	"math"

	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/ports"

	"github.com/montanaflynn/stats"
)

// VariableSummary is one row of the summary table.
type VariableSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summary describes a dataset: per-variable moments and pairwise Pearson
// correlations, indexed in Names order.
type Summary struct {
	N            int               `json:"n"`
	Names        []string          `json:"names"`
	Variables    []VariableSummary `json:"variables"`
	Correlations [][]float64       `json:"-"`
}

// Correlation returns the correlation between two summarized variables.
func (s *Summary) Correlation(a, b string) (float64, bool) {
	i, j := s.index(a), s.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return s.Correlations[i][j], true
}

func (s *Summary) index(name string) int {
	for i, n := range s.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Summarize computes the summary of every column in ds.
func Summarize(ds *causal.Dataset) (*Summary, error) {
	if ds.Len() < 2 {
		return nil, fmt.Errorf("%w: summary needs at least 2 rows, got %d", core.ErrInsufficientData, ds.Len())
	}

	cols := make([][]float64, len(ds.Names))
	sum := &Summary{N: ds.Len(), Names: append([]string(nil), ds.Names...)}
	for i, name := range ds.Names {
		col, _ := ds.Column(name)
		cols[i] = col

		mean, _ := stats.Mean(col)
		sd, _ := stats.StandardDeviationSample(col)
		min, _ := stats.Min(col)
		median, _ := stats.Median(col)
		max, _ := stats.Max(col)
		sum.Variables = append(sum.Variables, VariableSummary{
			Name:   name,
			Mean:   mean,
			StdDev: sd,
			Min:    min,
			Median: median,
			Max:    max,
		})
	}

	sum.Correlations = make([][]float64, len(cols))
	for i := range cols {
		sum.Correlations[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(cols[i], cols[j], sum.Variables[i].StdDev, sum.Variables[j].StdDev)
			sum.Correlations[i][j] = r
			sum.Correlations[j][i] = r
		}
	}
	return sum, nil
}

// stats.Correlation reports 0 for a constant column; undefined is more honest.
func pearson(a, b []float64, sdA, sdB float64) float64 {
	if sdA == 0 || sdB == 0 {
		return math.NaN()
	}
	r, err := stats.Correlation(a, b)
	if err != nil {
		return math.NaN()
	}
	return r
}

// OmittedVariableBias is the bias in the treatment coefficient when omitted
// is left out of a regression in which it carries omittedCoef:
// omittedCoef·cov(T, Z)/var(T). Computed with sample moments it equals the
// short-minus-long coefficient difference exactly.
func OmittedVariableBias(data ports.ColumnSource, treatment, omitted string, omittedCoef float64) (float64, error) {
	t, ok := data.Column(treatment)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s", core.ErrVariableNotFound, treatment)
	}
	z, ok := data.Column(omitted)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s", core.ErrVariableNotFound, omitted)
	}
	if len(t) < 2 {
		return math.NaN(), fmt.Errorf("%w: need at least 2 rows", core.ErrInsufficientData)
	}

	varT, err := stats.SampleVariance(t)
	if err != nil {
		return math.NaN(), err
	}
	if varT == 0 {
		return math.NaN(), fmt.Errorf("%w: %s is constant", core.ErrRankDeficient, treatment)
	}
	cov, err := stats.Covariance(t, z)
	if err != nil {
		return math.NaN(), err
	}
	return omittedCoef * cov / varT, nil
}
