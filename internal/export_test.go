package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportFormat(t *testing.T) {
	tests := []struct {
		format  string
		path    string
		want    string
		wantErr bool
	}{
		{"", "out.json", "json", false},
		{"", "out.XLSX", "xlsx", false},
		{"JSON", "out.xlsx", "json", false},
		{"xlsx", "out", "xlsx", false},
		{"", "out.csv", "", true},
		{"", "out", "", true},
	}
	for _, tt := range tests {
		got, err := ExportFormat(tt.format, tt.path)
		if tt.wantErr {
			assert.Error(t, err, "ExportFormat(%q, %q)", tt.format, tt.path)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	require.NoError(t, ExportJSON(path, mixedSubscriptions(), GetCurrency("USD")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got ListJSON
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"a1", "b2", "c3"}, ids(got.Subscriptions))
	assert.Equal(t, 19.99, got.Summary.MonthlyTotal)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.xlsx")
	require.NoError(t, ExportXLSX(path, mixedSubscriptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{exportSheet}, f.GetSheetList())
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Cost", rows[0][8])
	assert.Equal(t, "a1", rows[1][0])
	assert.Equal(t, "Service a1", rows[1][1])
	assert.Equal(t, string(StatusCanceled), rows[2][3])
	assert.Equal(t, "9.99", rows[3][8])

	label, err := f.GetCellValue(exportSheet, "H5")
	require.NoError(t, err)
	assert.Equal(t, "Total (live)", label)
	total, err := f.GetCellValue(exportSheet, "I5")
	require.NoError(t, err)
	assert.Equal(t, "19.99", total)
}
