package excel

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"causalnotes/domain/core"
	"causalnotes/domain/energy"
	"causalnotes/internal"
	"causalnotes/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV energy files
type DataReader struct {
	config ReaderConfig
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig) *DataReader {
	return &DataReader{config: config, logger: internal.DefaultLogger}
}

// ReadRecords reads country/year/value observations from a .csv or .xlsx file.
func (r *DataReader) ReadRecords(ctx context.Context, path string) ([]energy.Record, error) {
	table, err := r.ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewRecordResolver(r.config).Resolve(ctx, table)
}

// ReadTable reads the raw header and rows of a .csv or .xlsx file.
func (r *DataReader) ReadTable(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.IOError(path, err)
	}

	start := time.Now()
	var (
		rows  [][]string
		lines []int
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, lines, err = r.readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = r.readExcel(path)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q for %s", ext, path))
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", path, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", path))
	}
	return processRows(path, rows, lines), nil
}

// readExcel reads the configured sheet, or the first one.
func (r *DataReader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q of %s", sheet, path)
	}
	return rows, nil
}

// readCSV also returns each record's line number, since encoding/csv drops
// blank lines.
func (r *DataReader) readCSV(path string) ([][]string, []int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.IOError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var (
		rows  [][]string
		lines []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, nil, core.NewMalformedInputError(path, parseErr.Line, parseErr.Err.Error())
			}
			return nil, nil, errors.IOError(path, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	return rows, lines, nil
}

// processRows converts raw string rows into a Table, skipping blank lines.
// lines holds the source line of each row; nil means row i is on line i+1.
func processRows(source string, rows [][]string, lines []int) *Table {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &Table{Source: source, Headers: headers}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		table.Rows = append(table.Rows, rowData)
		line := i + 1
		if lines != nil {
			line = lines[i]
		}
		table.Lines = append(table.Lines, line)
	}
	return table
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
