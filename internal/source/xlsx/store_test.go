package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"symexport/internal/source"
)

// writeWorkbook creates <dir>/<library>.xlsx with one sheet per entry of sheets
func writeWorkbook(t *testing.T, dir, library string, sheets []string, rows map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, library+".xlsx")))
}

func TestStore_ReadsWorkbook(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeWorkbook(t, dir, "Bloomberg.EOD", []string{"MSFT US Equity", "AAPL US Equity"}, map[string][][]any{
		"MSFT US Equity": {
			{"date", "PX_LAST", "CRNCY"},
			{"2024-01-15", 390.5, "USD"},
			{"2024-01-16", 391.25},
		},
		"AAPL US Equity": {
			{"date", "PX_LAST"},
		},
	})
	writeWorkbook(t, dir, "Bloomberg.Indexes_Members", []string{"MOSENEW Index"}, nil)

	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	libs, err := store.ListLibraries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bloomberg.EOD", "Bloomberg.Indexes_Members"}, libs)

	symbols, err := store.ListSymbols(ctx, "Bloomberg.EOD")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT US Equity", "AAPL US Equity"}, symbols)

	ds, err := store.ReadSymbol(ctx, "Bloomberg.EOD", "MSFT US Equity")
	require.NoError(t, err)
	assert.Equal(t, "date", ds.IndexName)
	assert.Equal(t, []string{"PX_LAST", "CRNCY"}, ds.ColumnNames())
	assert.Equal(t, []any{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
	}, ds.Index)
	assert.Equal(t, []any{390.5, 391.25}, ds.Columns[0].Values)
	assert.Equal(t, []any{"USD", nil}, ds.Columns[1].Values)
	require.NoError(t, ds.Validate())

	empty, err := store.ReadSymbol(ctx, "Bloomberg.EOD", "AAPL US Equity")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, []string{"PX_LAST"}, empty.ColumnNames())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeWorkbook(t, dir, "lib", []string{"X"}, nil)

	store, err := Open(dir)
	require.NoError(t, err)

	_, err = store.ListSymbols(ctx, "missing")
	assert.ErrorIs(t, err, source.ErrLibraryNotFound)

	_, err = store.ReadSymbol(ctx, "lib", "Y")
	assert.ErrorIs(t, err, source.ErrSymbolNotFound)
}

func TestOpen_RequiresDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, source.ErrConnectivity)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = Open(file)
	assert.ErrorIs(t, err, source.ErrConnectivity)
}

func TestStore_ReadsDateCells(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := "AAPL US Equity"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "PX_LAST", "PX_VOLUME", "EX_DATE"}))
	require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B2", 185.64))
	require.NoError(t, f.SetCellValue(sheet, "C2", 82488700))
	require.NoError(t, f.SetCellValue(sheet, "A3", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B3", 184.25))
	require.NoError(t, f.SetCellValue(sheet, "C3", 58414500))

	// A custom date format on a plain serial
	customFmt := "yyyy/mm/dd"
	styleID, err := f.NewStyle(&excelize.Style{CustomNumFmt: &customFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(sheet, "D2", 45293))
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D2", styleID))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "Bloomberg.EOD.xlsx")))
	require.NoError(t, f.Close())

	store, err := Open(dir)
	require.NoError(t, err)

	ds, err := store.ReadSymbol(ctx, "Bloomberg.EOD", sheet)
	require.NoError(t, err)
	assert.Equal(t, []any{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}, ds.Index)
	assert.Equal(t, []any{185.64, 184.25}, ds.Columns[0].Values)
	assert.Equal(t, []any{int64(82488700), int64(58414500)}, ds.Columns[1].Values)
	assert.Equal(t, []any{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), nil}, ds.Columns[2].Values)
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[$-409]mmm d, yyyy", true},
		{"0.00", false},
		{"#,##0.00_);[Red](#,##0.00)", false},
		{`0.0 "days"`, false},
		{`0\d`, false},
		{"0.00E+00", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestIsBuiltInDateFormat(t *testing.T) {
	assert.True(t, isBuiltInDateFormat(14))
	assert.True(t, isBuiltInDateFormat(22))
	assert.False(t, isBuiltInDateFormat(0))
	assert.False(t, isBuiltInDateFormat(2))
	assert.False(t, isBuiltInDateFormat(49))
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"", nil},
		{"  ", nil},
		{"1.5", 1.5},
		{"1000", int64(1000)},
		{"-7", int64(-7)},
		{"1000.0", 1000.0},
		{"1e3", 1000.0},
		{"TRUE", true},
		{"false", false},
		{"AAPL US Equity", "AAPL US Equity"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCell(tt.raw))
		})
	}
}

func TestParseIndex(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), parseIndex("2024-03-01 10:30:00"))
	assert.Equal(t, "Q1", parseIndex("Q1"))
}

func TestParseRows(t *testing.T) {
	ds := ParseRows([][]string{
		{"date", "PX_LAST", "CRNCY"},
		{"2024-01-02", "185.64", "USD"},
		{"2024-01-03", "184.25"},
		{},
	})

	assert.Equal(t, "date", ds.IndexName)
	assert.Equal(t, []string{"PX_LAST", "CRNCY"}, ds.ColumnNames())
	assert.Equal(t, []any{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}, ds.Index)
	assert.Equal(t, []any{185.64, 184.25}, ds.Columns[0].Values)
	assert.Equal(t, []any{"USD", nil}, ds.Columns[1].Values)
	assert.NoError(t, ds.Validate())

	assert.Zero(t, ParseRows(nil).Len())
}
