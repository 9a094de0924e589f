package synth

import (
	"context"
	"math"
	"testing"

	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/internal/testkit"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator() *Generator {
	return NewGenerator(testkit.NewTestKit().RNGAdapter())
}

func confounder() causal.Structure {
	return causal.Structure{
		Exogenous: []causal.ExogenousSpec{{Name: "Z", Mean: 0, StdDev: 1}},
		Endogenous: []causal.EndogenousSpec{
			{Name: "T", Parents: []causal.Term{{Parent: "Z", Weight: 2}}, NoiseStdDev: 1},
			{Name: "Y", Parents: []causal.Term{{Parent: "T", Weight: 3}, {Parent: "Z", Weight: 4}}, NoiseStdDev: 1},
		},
	}
}

func TestGenerate_SameSeedBitIdentical(t *testing.T) {
	ctx := context.Background()
	g := newGenerator()

	a, err := g.Generate(ctx, confounder(), 500, 42)
	require.NoError(t, err)
	b, err := g.Generate(ctx, confounder(), 500, 42)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	for _, name := range a.Names {
		colA, _ := a.Column(name)
		colB, _ := b.Column(name)
		for i := range colA {
			require.Equal(t, math.Float64bits(colA[i]), math.Float64bits(colB[i]), "%s[%d]", name, i)
		}
	}

	c, err := g.Generate(ctx, confounder(), 500, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestGenerate_SharedLengthAndOrder(t *testing.T) {
	ds, err := newGenerator().Generate(context.Background(), confounder(), 250, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Z", "T", "Y"}, ds.Names)
	assert.Equal(t, int64(1), ds.Seed)
	for _, name := range ds.Names {
		col, ok := ds.Column(name)
		require.True(t, ok)
		assert.Len(t, col, 250)
	}
}

func TestGenerate_NoiseFreeIsExactLinearCombination(t *testing.T) {
	s := causal.Structure{
		Exogenous: []causal.ExogenousSpec{{Name: "X1", StdDev: 1}, {Name: "X2", Mean: 5, StdDev: 2}},
		Endogenous: []causal.EndogenousSpec{
			{Name: "Y", Intercept: 1.5, Parents: []causal.Term{{Parent: "X1", Weight: 2}, {Parent: "X2", Weight: -0.5}}},
		},
	}
	ds, err := newGenerator().Generate(context.Background(), s, 100, 9)
	require.NoError(t, err)

	for i := 0; i < ds.Len(); i++ {
		x1, _ := ds.At("X1", i)
		x2, _ := ds.At("X2", i)
		y, _ := ds.At("Y", i)
		assert.InDelta(t, 1.5+2*x1-0.5*x2, y, 1e-12)
	}
}

func TestGenerate_MomentsMatchSpec(t *testing.T) {
	ds, err := newGenerator().Generate(context.Background(), confounder(), 20000, 3)
	require.NoError(t, err)

	z, _ := ds.Column("Z")
	tr, _ := ds.Column("T")

	meanZ, _ := stats.Mean(z)
	varT, _ := stats.SampleVariance(tr)
	covTZ, _ := stats.Covariance(tr, z)

	assert.InDelta(t, 0, meanZ, 0.05)
	assert.InDelta(t, 5, varT, 0.25) // 2²·1 + 1
	assert.InDelta(t, 2, covTZ, 0.1) // 2·var(Z)
}

func TestGenerate_FailsBeforeDrawing(t *testing.T) {
	g := newGenerator()
	ctx := context.Background()

	cyclic := causal.Structure{
		Endogenous: []causal.EndogenousSpec{
			{Name: "A", Parents: []causal.Term{{Parent: "B", Weight: 1}}, NoiseStdDev: 1},
			{Name: "B", Parents: []causal.Term{{Parent: "A", Weight: 1}}, NoiseStdDev: 1},
		},
	}
	_, err := g.Generate(ctx, cyclic, 10, 1)
	assert.ErrorIs(t, err, core.ErrCyclicStructure)

	undefined := causal.Structure{
		Endogenous: []causal.EndogenousSpec{{Name: "Y", Parents: []causal.Term{{Parent: "ghost", Weight: 1}}}},
	}
	_, err = g.Generate(ctx, undefined, 10, 1)
	assert.ErrorIs(t, err, core.ErrUndefinedVariable)

	_, err = g.Generate(ctx, confounder(), 0, 1)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestGenerate_ZeroNoiseStillConsumesDraws(t *testing.T) {
	ctx := context.Background()
	g := newGenerator()

	noisy := confounder()
	quiet := confounder()
	quiet.Endogenous[0].NoiseStdDev = 0

	a, err := g.Generate(ctx, noisy, 50, 11)
	require.NoError(t, err)
	b, err := g.Generate(ctx, quiet, 50, 11)
	require.NoError(t, err)

	// Y's own noise draws line up in both runs, so Y - 3T - 4Z is identical.
	for i := 0; i < 50; i++ {
		ya, _ := a.At("Y", i)
		ta, _ := a.At("T", i)
		za, _ := a.At("Z", i)
		yb, _ := b.At("Y", i)
		tb, _ := b.At("T", i)
		zb, _ := b.At("Z", i)
		assert.InDelta(t, ya-3*ta-4*za, yb-3*tb-4*zb, 1e-9)
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGenerator().Generate(ctx, confounder(), 10, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
