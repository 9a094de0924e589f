package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleComparison() *Comparison {
	truth := 3.0
	return &Comparison{
		Outcome:   "Y",
		Treatment: "T",
		Candidate: "Z",
		Without: &Result{
			Outcome:    "Y",
			Regressors: []string{"T"},
			Coefficients: []Coefficient{
				{Name: InterceptName, Estimate: 0.1},
				{Name: "T", Estimate: 4.6},
			},
		},
		With: &Result{
			Outcome:    "Y",
			Regressors: []string{"T", "Z"},
			Coefficients: []Coefficient{
				{Name: InterceptName, Estimate: 0.0},
				{Name: "T", Estimate: 3.1},
				{Name: "Z", Estimate: 3.9},
			},
		},
		TrueEffect: &truth,
	}
}

func TestComparison_ShiftAndBias(t *testing.T) {
	c := sampleComparison()

	assert.InDelta(t, -1.5, c.Shift(), 1e-12)

	without, with := c.Bias()
	assert.InDelta(t, 1.6, without, 1e-12)
	assert.InDelta(t, 0.1, with, 1e-12)

	assert.Equal(t, []string{InterceptName, "T", "Z"}, c.Names())
}

func TestComparison_BiasUnknownTruth(t *testing.T) {
	c := sampleComparison()
	c.TrueEffect = nil
	without, with := c.Bias()
	assert.True(t, math.IsNaN(without))
	assert.True(t, math.IsNaN(with))
}

func TestResult_Lookup(t *testing.T) {
	r := sampleComparison().With

	assert.Equal(t, "Y ~ T + Z", r.Formula())
	assert.Equal(t, 3.9, r.Estimate("Z"))
	assert.True(t, math.IsNaN(r.Estimate("missing")))

	empty := &Result{Outcome: "Y"}
	assert.Equal(t, "Y ~ 1", empty.Formula())
}

func TestCoefficient_Flags(t *testing.T) {
	c := Coefficient{Estimate: 1, PValue: 0.01}
	assert.True(t, c.Significant(0.05))
	assert.False(t, c.Significant(0.001))
	assert.True(t, c.Defined())

	undefined := Coefficient{Estimate: math.NaN(), PValue: math.NaN()}
	assert.False(t, undefined.Significant(0.05))
	assert.False(t, undefined.Defined())
}
