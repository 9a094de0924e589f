package regression

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultJSON_UndefinedValuesAreNull(t *testing.T) {
	nan := math.NaN()
	res := &Result{
		Outcome:       "Y",
		Regressors:    []string{"K"},
		N:             6,
		DF:            4,
		RankDeficient: true,
		Coefficients: []Coefficient{
			{Name: InterceptName, Estimate: nan, StdErr: nan, TStat: nan, PValue: nan},
			{Name: "K", Estimate: nan, StdErr: nan, TStat: nan, PValue: nan},
		},
		RSquared: nan, AdjRSquared: nan, ResidualStdError: nan, FStat: nan, FPValue: nan,
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"estimate":null`)
	assert.Contains(t, string(data), `"rank_deficient":true`)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.RankDeficient)
	assert.True(t, math.IsNaN(back.Estimate("K")))
	assert.True(t, math.IsNaN(back.RSquared))
}

func TestComparisonJSON_KeepsFiniteValues(t *testing.T) {
	c := sampleComparison()
	c.Without.FStat = math.Inf(1)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var back Comparison
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 4.6, back.Without.Estimate("T"))
	assert.Equal(t, 3.9, back.With.Estimate("Z"))
	assert.True(t, math.IsNaN(back.Without.FStat))
	require.NotNil(t, back.TrueEffect)
	assert.Equal(t, 3.0, *back.TrueEffect)
}
