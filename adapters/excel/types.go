package excel

// RawRowData represents a row of raw sheet data as string key-value pairs
type RawRowData map[string]string

// Table is a raw sheet: trimmed headers and data rows. Line is the 1-based
// row number in the source file, header included, for error messages.
type Table struct {
	Source  string
	Headers []string
	Rows    []RawRowData
	Lines   []int
}
