package ports

import (
	"context"
	"io"

	"causalnotes/domain/energy"
)

// EnergyReader loads country/year/energy-per-capita observations.
type EnergyReader interface {
	ReadRecords(ctx context.Context, path string) ([]energy.Record, error)
}

// ChartRenderer draws charts to a writer in the given format ("png", "svg", "pdf").
type ChartRenderer interface {
	EnergyLines(w io.Writer, format string, series []energy.Series, title string) error
	ScatterWithFit(w io.Writer, format string, x, y []float64, xLabel, yLabel string, intercept, slope float64) error
}
