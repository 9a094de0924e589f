package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"causalnotes/domain/causal"
	"causalnotes/internal"
	"causalnotes/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet = "data"
	metaSheet = "meta"
)

// DatasetWriter exports generated datasets for use outside Go.
type DatasetWriter struct {
	logger *internal.Logger
}

// NewDatasetWriter creates a dataset writer
func NewDatasetWriter() *DatasetWriter {
	return &DatasetWriter{logger: internal.DefaultLogger}
}

// Write picks CSV or XLSX from the path's extension.
func (w *DatasetWriter) Write(path string, ds *causal.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOError(filepath.Dir(path), err)
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = w.writeCSVFile(path, ds)
	case ".xlsx":
		err = WriteXLSX(path, ds)
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported export type %q", ext))
	}
	if err != nil {
		return err
	}
	w.logger.Info("wrote %d rows x %d columns to %s", ds.Len(), len(ds.Names), path)
	return nil
}

func (w *DatasetWriter) writeCSVFile(path string, ds *causal.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, ds); err != nil {
		return errors.IOError(path, err)
	}
	return f.Close()
}

// WriteCSV writes one column per variable. Values use the shortest
// representation that parses back to the same float64.
func WriteCSV(out io.Writer, ds *causal.Dataset) error {
	w := csv.NewWriter(out)

	if err := w.Write(ds.Names); err != nil {
		return err
	}
	record := make([]string, len(ds.Names))
	for i := 0; i < ds.Len(); i++ {
		for j, name := range ds.Names {
			v, _ := ds.At(name, i)
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the dataset to a "data" sheet and its seed, size and
// fingerprint to a "meta" sheet.
func WriteXLSX(path string, ds *causal.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(ds.Names))
	for i, name := range ds.Names {
		header[i] = name
	}
	if err := f.SetSheetRow(dataSheet, "A1", &header); err != nil {
		return err
	}

	row := make([]interface{}, len(ds.Names))
	for i := 0; i < ds.Len(); i++ {
		for j, name := range ds.Names {
			row[j], _ = ds.At(name, i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(dataSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(metaSheet); err != nil {
		return err
	}
	meta := [][]interface{}{
		{"seed", ds.Seed},
		{"n", ds.Len()},
		{"fingerprint", ds.Fingerprint().String()},
	}
	for i, kv := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(metaSheet, cell, &kv); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}
