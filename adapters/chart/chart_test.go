package chart

import (
	"bytes"
	"testing"

	"causalnotes/domain/energy"
	"causalnotes/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSeries() []energy.Series {
	series, _ := energy.Group([]energy.Record{
		{Country: "Norway", Year: 2000, KWhPerCapita: 98000},
		{Country: "Norway", Year: 2010, KWhPerCapita: 101000},
		{Country: "India", Year: 2000, KWhPerCapita: 4200},
		{Country: "India", Year: 2010, KWhPerCapita: 5600},
	}, energy.Filter{})
	return series
}

func TestEnergyLines(t *testing.T) {
	r := NewRenderer()

	var png bytes.Buffer
	require.NoError(t, r.EnergyLines(&png, "PNG", sampleSeries(), "Energy use per person"))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, r.EnergyLines(&svg, ".svg", sampleSeries(), "Energy use per person"))
	assert.Contains(t, svg.String(), "<svg")
	assert.Contains(t, svg.String(), "Norway")
}

func TestScatterWithFit(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().ScatterWithFit(&buf, "svg", []float64{1, 2, 3}, []float64{2, 4, 6.5}, "T", "Y", -0.17, 2.25)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderer_Invalid(t *testing.T) {
	r := NewRenderer()
	var buf bytes.Buffer

	err := r.EnergyLines(&buf, "bmp", sampleSeries(), "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = r.EnergyLines(&buf, "png", nil, "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = r.ScatterWithFit(&buf, "png", []float64{1}, []float64{1, 2}, "x", "y", 0, 1)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = r.ScatterWithFit(&buf, "png", nil, nil, "x", "y", 0, 1)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
