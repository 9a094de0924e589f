package excel

// ReaderConfig names the columns holding country, year and energy per
// capita. Empty names are auto-detected from the header row.
type ReaderConfig struct {
	CountryColumn string `json:"country_column"`
	YearColumn    string `json:"year_column"`
	ValueColumn   string `json:"value_column"`
	// Sheet defaults to the workbook's first sheet.
	Sheet string `json:"sheet"`
}

// DefaultReaderConfig auto-detects every column.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{}
}

var (
	countryColumnNames = []string{"country", "entity", "country name", "location", "region"}
	yearColumnNames    = []string{"year", "yr", "time"}
	// substrings that mark a per-capita energy column, checked in order
	valueColumnHints = []string{"per capita", "per_capita", "percapita", "kwh", "energy"}
	// columns never chosen as the value column
	identifierColumnNames = []string{"code", "iso_code", "iso3", "iso"}
)
