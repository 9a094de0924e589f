package app

import (
	"context"
	"fmt"
	"io"
	"math"

	"causalnotes/domain/causal"
	"causalnotes/domain/core"
	"causalnotes/domain/energy"
	"causalnotes/internal"
	"causalnotes/ports"
)

// minTrendPoints is the smallest series a slope with a standard error can be
// fitted to.
const minTrendPoints = 3

// EnergyService loads per-capita energy data and summarizes each country's
// growth.
type EnergyService struct {
	reader    ports.EnergyReader
	estimator ports.Estimator
	charts    ports.ChartRenderer
	logger    *internal.Logger
}

// NewEnergyService creates a new energy service
func NewEnergyService(reader ports.EnergyReader, estimator ports.Estimator, charts ports.ChartRenderer) *EnergyService {
	return &EnergyService{
		reader:    reader,
		estimator: estimator,
		charts:    charts,
		logger:    internal.DefaultLogger,
	}
}

// Load reads path and groups the matching records by country. Every country
// named in the filter must be present.
func (s *EnergyService) Load(ctx context.Context, path string, filter energy.Filter) ([]energy.Series, error) {
	records, err := s.reader.ReadRecords(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read energy data: %w", err)
	}
	series, err := energy.Group(records, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	found := make(map[string]bool, len(series))
	for _, sr := range series {
		found[sr.Country] = true
	}
	for _, c := range filter.Countries {
		if !found[c] {
			return nil, fmt.Errorf("%w: %q in %s", core.ErrCountryNotFound, c, path)
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no records in %s match the filter", core.ErrInsufficientData, path)
	}

	s.logger.Info("loaded %d records, %d countries from %s", len(records), len(series), path)
	return series, nil
}

// Trends fits kWh ~ year for each series. Series too short or too flat to
// fit are left out and logged.
func (s *EnergyService) Trends(ctx context.Context, series []energy.Series) ([]energy.Trend, error) {
	trends := make([]energy.Trend, 0, len(series))
	for _, sr := range series {
		if len(sr.Records) < minTrendPoints {
			s.logger.Warn("skipping trend for %s: %d points", sr.Country, len(sr.Records))
			continue
		}
		ds, err := causal.NewDataset(0, []string{"year", "kwh"}, map[string][]float64{
			"year": sr.Years(),
			"kwh":  sr.Values(),
		})
		if err != nil {
			return nil, err
		}
		res, err := s.estimator.Fit(ctx, ds, "kwh", []string{"year"})
		if err != nil {
			return nil, fmt.Errorf("trend for %s: %w", sr.Country, err)
		}
		slope, _ := res.Coefficient("year")
		if res.RankDeficient || !slope.Defined() || math.IsNaN(slope.StdErr) {
			s.logger.Warn("skipping trend for %s: slope undefined", sr.Country)
			continue
		}

		latest, _ := sr.Latest()
		trends = append(trends, energy.Trend{
			Country:     sr.Country,
			FirstYear:   sr.Records[0].Year,
			LastYear:    latest.Year,
			Latest:      latest.KWhPerCapita,
			SlopePerYr:  slope.Estimate,
			SlopeStdErr: slope.StdErr,
			PValue:      slope.PValue,
			RSquared:    res.RSquared,
		})
	}
	return trends, nil
}

// Chart draws one line per series.
func (s *EnergyService) Chart(w io.Writer, format string, series []energy.Series, title string) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: nothing to plot", core.ErrInsufficientData)
	}
	return s.charts.EnergyLines(w, format, series, title)
}
