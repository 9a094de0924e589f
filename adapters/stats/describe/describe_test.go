package describe

import (
	"context"
	"math"
	"testing"

	"causalnotes/adapters/stats/ols"
	"causalnotes/adapters/stats/synth"
	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	ds, err := causal.NewDataset(0, []string{"a", "b", "k"}, map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {10, 8, 6, 4, 2},
		"k": {7, 7, 7, 7, 7},
	})
	require.NoError(t, err)

	sum, err := Summarize(ds)
	require.NoError(t, err)

	require.Len(t, sum.Variables, 3)
	a := sum.Variables[0]
	assert.Equal(t, "a", a.Name)
	assert.InDelta(t, 3, a.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), a.StdDev, 1e-12)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 3.0, a.Median)
	assert.Equal(t, 5.0, a.Max)

	r, ok := sum.Correlation("a", "b")
	require.True(t, ok)
	assert.InDelta(t, -1, r, 1e-12)

	r, ok = sum.Correlation("a", "a")
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-12)

	r, _ = sum.Correlation("a", "k")
	assert.True(t, math.IsNaN(r))

	_, ok = sum.Correlation("a", "missing")
	assert.False(t, ok)
}

func TestSummarize_TooFewRows(t *testing.T) {
	ds, err := causal.NewDataset(0, []string{"a"}, map[string][]float64{"a": {1}})
	require.NoError(t, err)

	_, err = Summarize(ds)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestOmittedVariableBias_MatchesShortMinusLong(t *testing.T) {
	s := causal.Structure{
		Exogenous: []causal.ExogenousSpec{{Name: "Z", StdDev: 1}},
		Endogenous: []causal.EndogenousSpec{
			{Name: "T", Parents: []causal.Term{{Parent: "Z", Weight: 2}}, NoiseStdDev: 1},
			{Name: "Y", Parents: []causal.Term{{Parent: "T", Weight: 3}, {Parent: "Z", Weight: 4}}, NoiseStdDev: 1},
		},
	}
	ctx := context.Background()
	ds, err := synth.NewGenerator(testkit.NewTestKit().RNGAdapter()).Generate(ctx, s, 500, 42)
	require.NoError(t, err)

	est := ols.NewEstimator()
	short, err := est.Fit(ctx, ds, "Y", []string{"T"})
	require.NoError(t, err)
	long, err := est.Fit(ctx, ds, "Y", []string{"T", "Z"})
	require.NoError(t, err)

	bias, err := OmittedVariableBias(ds, "T", "Z", long.Estimate("Z"))
	require.NoError(t, err)
	assert.InDelta(t, short.Estimate("T")-long.Estimate("T"), bias, 1e-9)
	// population value 4·2/5
	assert.InDelta(t, 1.6, bias, 0.3)
}

func TestOmittedVariableBias_Errors(t *testing.T) {
	ds, err := causal.NewDataset(0, []string{"t", "z"}, map[string][]float64{
		"t": {2, 2, 2},
		"z": {1, 2, 3},
	})
	require.NoError(t, err)

	_, err = OmittedVariableBias(ds, "missing", "z", 1)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)

	_, err = OmittedVariableBias(ds, "t", "missing", 1)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)

	_, err = OmittedVariableBias(ds, "t", "z", 1)
	assert.ErrorIs(t, err, core.ErrRankDeficient)
}
