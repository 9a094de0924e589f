package energy

import (
	"fmt"
	"sort"

	"causalnotes/domain/core"
)

// Record is one country-year observation of primary energy use per person.
type Record struct {
	Country      string  `json:"country"`
	Year         int     `json:"year"`
	KWhPerCapita float64 `json:"kwh_per_capita"`
}

// Series is one country's records sorted by year.
type Series struct {
	Country string   `json:"country"`
	Records []Record `json:"records"`
}

// Years returns the x values of the series.
func (s Series) Years() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = float64(r.Year)
	}
	return out
}

// Values returns the y values of the series.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.KWhPerCapita
	}
	return out
}

// Latest returns the most recent record, if any.
func (s Series) Latest() (Record, bool) {
	if len(s.Records) == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Filter narrows a record set.
type Filter struct {
	Countries []string
	FromYear  int
	ToYear    int
}

func (f Filter) matches(r Record) bool {
	if f.FromYear != 0 && r.Year < f.FromYear {
		return false
	}
	if f.ToYear != 0 && r.Year > f.ToYear {
		return false
	}
	if len(f.Countries) == 0 {
		return true
	}
	for _, c := range f.Countries {
		if c == r.Country {
			return true
		}
	}
	return false
}

// Group splits records into per-country series, sorted by country name with
// each series sorted by year. When the filter lists countries, the output
// follows the filter's order instead. Two records for the same country and
// year are malformed input.
func Group(records []Record, filter Filter) ([]Series, error) {
	type key struct {
		country string
		year    int
	}
	seen := make(map[key]bool, len(records))
	byCountry := make(map[string][]Record)
	for _, r := range records {
		k := key{r.Country, r.Year}
		if seen[k] {
			return nil, fmt.Errorf("%w: %s has more than one record for %d", core.ErrMalformedInput, r.Country, r.Year)
		}
		seen[k] = true
		if filter.matches(r) {
			byCountry[r.Country] = append(byCountry[r.Country], r)
		}
	}

	var countries []string
	if len(filter.Countries) > 0 {
		for _, c := range filter.Countries {
			if _, ok := byCountry[c]; ok {
				countries = append(countries, c)
			}
		}
	} else {
		for c := range byCountry {
			countries = append(countries, c)
		}
		sort.Strings(countries)
	}

	series := make([]Series, 0, len(countries))
	for _, c := range countries {
		recs := byCountry[c]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Year < recs[j].Year })
		series = append(series, Series{Country: c, Records: recs})
	}
	return series, nil
}

// Trend is the OLS linear growth of one country's series.
type Trend struct {
	Country     string  `json:"country"`
	FirstYear   int     `json:"first_year"`
	LastYear    int     `json:"last_year"`
	Latest      float64 `json:"latest_kwh"`
	SlopePerYr  float64 `json:"slope_kwh_per_year"`
	SlopeStdErr float64 `json:"slope_std_err"`
	PValue      float64 `json:"p_value"`
	RSquared    float64 `json:"r_squared"`
}
