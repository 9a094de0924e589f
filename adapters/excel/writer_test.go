package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"testing"

	"causalnotes/domain/causal"
	"causalnotes/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset(t *testing.T) *causal.Dataset {
	t.Helper()
	ds, err := causal.NewDataset(42, []string{"Z", "T"}, map[string][]float64{
		"Z": {0.1, -1.25, 1.0 / 3},
		"T": {2.2, -2.5, 0.6666666666666666},
	})
	require.NoError(t, err)
	return ds
}

func TestWriteCSV_ExactRoundTrip(t *testing.T) {
	ds := sampleDataset(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Z", "T"}, rows[0])

	z, _ := ds.Column("Z")
	for i, v := range z {
		got, err := strconv.ParseFloat(rows[i+1][0], 64)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestDatasetWriter_XLSX(t *testing.T) {
	ds := sampleDataset(t)
	path := filepath.Join(t.TempDir(), "nested", "confounder.xlsx")

	require.NoError(t, NewDatasetWriter().Write(path, ds))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(metaSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "42"}, rows[0])
	assert.Equal(t, []string{"fingerprint", ds.Fingerprint().String()}, rows[2])

	table, err := NewDataReader(ReaderConfig{Sheet: dataSheet}).ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "T"}, table.Headers)
	require.Len(t, table.Rows, 3)
	got, err := strconv.ParseFloat(table.Rows[1]["T"], 64)
	require.NoError(t, err)
	assert.InDelta(t, -2.5, got, 1e-12)
}

func TestDatasetWriter_CSVAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	w := NewDatasetWriter()

	require.NoError(t, w.Write(filepath.Join(dir, "d.csv"), sampleDataset(t)))

	err := w.Write(filepath.Join(dir, "d.parquet"), sampleDataset(t))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
