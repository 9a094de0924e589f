package excel

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"causalnotes/domain/core"
	"causalnotes/domain/energy"
	"causalnotes/internal"
)

// Columns are the resolved header names of one table.
type Columns struct {
	Country string
	Year    string
	Value   string
}

// RecordResolver turns a raw table into typed energy records.
type RecordResolver struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewRecordResolver creates a resolver honoring explicit column names in config.
func NewRecordResolver(config ReaderConfig) *RecordResolver {
	return &RecordResolver{config: config, logger: internal.DefaultLogger}
}

// Resolve detects the columns and parses every row. A row with an empty value
// cell is skipped; any other unparsable cell is an error naming its line.
func (r *RecordResolver) Resolve(ctx context.Context, table *Table) ([]energy.Record, error) {
	cols, err := r.DetectColumns(table)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[RecordResolver] %s: country=%q year=%q value=%q", table.Source, cols.Country, cols.Year, cols.Value)

	records := make([]energy.Record, 0, len(table.Rows))
	skipped := 0
	for i, row := range table.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := table.Lines[i]

		country := row[cols.Country]
		if country == "" {
			return nil, core.NewMalformedInputError(table.Source, line, "empty country")
		}
		year, err := parseYear(row[cols.Year])
		if err != nil {
			return nil, core.NewMalformedInputError(table.Source, line, err.Error())
		}
		raw := row[cols.Value]
		if raw == "" {
			skipped++
			continue
		}
		value, err := parseNumber(raw)
		if err != nil {
			return nil, core.NewMalformedInputError(table.Source, line, fmt.Sprintf("%s: %v", cols.Value, err))
		}
		records = append(records, energy.Record{Country: country, Year: year, KWhPerCapita: value})
	}
	if skipped > 0 {
		r.logger.Info("[RecordResolver] %s: skipped %d rows without a value", table.Source, skipped)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable rows", core.ErrInsufficientData, table.Source)
	}
	return records, nil
}

// DetectColumns picks the country, year and value columns. Configured names
// win; otherwise headers are matched case-insensitively against known names.
// The value column falls back to the first remaining column that parses as
// a number on the first data row.
func (r *RecordResolver) DetectColumns(table *Table) (Columns, error) {
	var cols Columns
	var err error

	if cols.Country, err = pick(table, r.config.CountryColumn, countryColumnNames, "country"); err != nil {
		return cols, err
	}
	if cols.Year, err = pick(table, r.config.YearColumn, yearColumnNames, "year"); err != nil {
		return cols, err
	}

	if r.config.ValueColumn != "" {
		cols.Value, err = pick(table, r.config.ValueColumn, nil, "value")
		return cols, err
	}
	taken := []string{cols.Country, cols.Year}
	candidate := func(h string) bool {
		return !slices.Contains(taken, h) && !slices.Contains(identifierColumnNames, strings.ToLower(h))
	}
	for _, hint := range valueColumnHints {
		for _, h := range table.Headers {
			if candidate(h) && strings.Contains(strings.ToLower(h), hint) {
				cols.Value = h
				return cols, nil
			}
		}
	}
	if len(table.Rows) > 0 {
		for _, h := range table.Headers {
			if _, err := parseNumber(table.Rows[0][h]); candidate(h) && err == nil {
				cols.Value = h
				return cols, nil
			}
		}
	}
	return cols, core.NewMalformedInputError(table.Source, 1, "no energy-per-capita column found")
}

func pick(table *Table, configured string, known []string, role string) (string, error) {
	if configured != "" {
		if slices.Contains(table.Headers, configured) {
			return configured, nil
		}
		return "", core.NewMalformedInputError(table.Source, 1, fmt.Sprintf("%s column %q not in header", role, configured))
	}
	for _, name := range known {
		for _, h := range table.Headers {
			if strings.EqualFold(h, name) {
				return h, nil
			}
		}
	}
	return "", core.NewMalformedInputError(table.Source, 1, fmt.Sprintf("no %s column found", role))
}

// parseYear accepts "2019" and spreadsheet-style "2019.0".
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// parseNumber accepts thousands separators ("12,345.6").
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w %q", core.ErrNonFinite, s)
	}
	return v, nil
}
