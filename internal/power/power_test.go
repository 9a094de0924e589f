package power

import (
	"context"
	"testing"

	"causalnotes/adapters/stats/ols"
	"causalnotes/domain/core"
	"causalnotes/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMDE_BalancedDesign(t *testing.T) {
	mde, err := MDE(DefaultDesign())
	require.NoError(t, err)
	// (1.959964 + 0.841621) · sqrt(1 / (0.25 · 1000))
	assert.InDelta(t, 0.177188, mde, 1e-5)
}

func TestMDE_UnbalancedIsLarger(t *testing.T) {
	balanced, err := MDE(DefaultDesign())
	require.NoError(t, err)

	d := DefaultDesign()
	d.TreatShare = 0.1
	skewed, err := MDE(d)
	require.NoError(t, err)
	assert.Greater(t, skewed, balanced)
}

func TestSampleSize(t *testing.T) {
	n, err := SampleSize(DefaultDesign(), 0.2)
	require.NoError(t, err)
	assert.Equal(t, 785, n)

	d := DefaultDesign()
	d.NTotal = n
	mde, err := MDE(d)
	require.NoError(t, err)
	assert.LessOrEqual(t, mde, 0.2)
}

func TestAnalyticPower_AtMDE(t *testing.T) {
	d := DefaultDesign()
	mde, err := MDE(d)
	require.NoError(t, err)

	p, err := AnalyticPower(d, mde)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, p, 1e-9)
}

func TestDesign_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Design)
	}{
		{"alpha zero", func(d *Design) { d.Alpha = 0 }},
		{"power one", func(d *Design) { d.Power = 1 }},
		{"negative sd", func(d *Design) { d.StdDev = -1 }},
		{"share out of range", func(d *Design) { d.TreatShare = 1.5 }},
		{"tiny sample", func(d *Design) { d.NTotal = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDesign()
			tt.mutate(&d)
			_, err := MDE(d)
			assert.ErrorIs(t, err, core.ErrInvalidStructure)
		})
	}

	_, err := SampleSize(DefaultDesign(), 0)
	assert.ErrorIs(t, err, core.ErrInvalidStructure)
}

func TestSimulatePower(t *testing.T) {
	sim := NewSimulator(testkit.NewTestKit().RNGAdapter(), ols.NewEstimator())
	ctx := context.Background()
	d := DefaultDesign()
	mde, err := MDE(d)
	require.NoError(t, err)

	atMDE, err := sim.SimulatePower(ctx, d, mde, 400, 42)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, atMDE, 0.07)

	null, err := sim.SimulatePower(ctx, d, 0, 400, 42)
	require.NoError(t, err)
	assert.InDelta(t, d.Alpha, null, 0.04)

	again, err := sim.SimulatePower(ctx, d, mde, 400, 42)
	require.NoError(t, err)
	assert.Equal(t, atMDE, again)
}

func TestSimulatePower_Invalid(t *testing.T) {
	sim := NewSimulator(testkit.NewTestKit().RNGAdapter(), ols.NewEstimator())

	_, err := sim.SimulatePower(context.Background(), DefaultDesign(), 0.1, 0, 1)
	assert.ErrorIs(t, err, core.ErrInvalidStructure)
}
