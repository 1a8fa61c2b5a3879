// Package xlsx provides a source store over a directory of Excel workbooks.
//
// Each <library>.xlsx workbook is a library and each sheet a symbol. The
// first row of a sheet holds the header (index name, then column names) and
// the first column holds the index.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"symexport/internal/source"
	"symexport/pkg/contracts/domain"
)

const workbookExt = ".xlsx"

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Store reads workbooks from a directory
type Store struct {
	dir string
}

// Open checks that dir is a readable directory
func Open(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrConnectivity, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", source.ErrConnectivity, dir)
	}
	return &Store{dir: dir}, nil
}

// Opener returns a source.Opener over dir
func Opener(dir string) source.Opener {
	return source.OpenerFunc(func(ctx context.Context) (source.Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		store, err := Open(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
}

// Close is a no-op, workbooks are opened per call
func (s *Store) Close() error {
	return nil
}

// ListLibraries returns workbook names without extension, sorted
func (s *Store) ListLibraries(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	var libs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), workbookExt) {
			continue
		}
		// Skip Excel lock files
		if strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		libs = append(libs, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(libs)
	return libs, nil
}

// ListSymbols returns sheet names in workbook order
func (s *Store) ListSymbols(ctx context.Context, library string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.openWorkbook(library)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadSymbol parses one sheet into a dataset
func (s *Store) ReadSymbol(ctx context.Context, library, symbol string) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.openWorkbook(library)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(symbol); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s/%s", source.ErrSymbolNotFound, library, symbol)
	}
	rows, err := f.GetRows(symbol, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read %s workbook props: %w", library, err)
	}
	dates := &dateCells{
		f:        f,
		sheet:    symbol,
		date1904: props.Date1904 != nil && *props.Date1904,
		styles:   make(map[int]bool),
	}
	return parseRows(rows, dates.decode), nil
}

// dateCells recognizes date serials. Excel stores a date as a plain number
// and only the number format of the cell style marks it as a date.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	styles   map[int]bool
}

func (d *dateCells) decode(row, col int, raw string) (any, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, false
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, false
	}
	styleID, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil || !d.isDateStyle(styleID) {
		return nil, false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return nil, false
	}
	return t.UTC(), true
}

func (d *dateCells) isDateStyle(styleID int) bool {
	if isDate, ok := d.styles[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := d.f.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	d.styles[styleID] = isDate
	return isDate
}

// isBuiltInDateFormat covers the built-in date and time formats, including the
// East Asian ones (27-36, 50-58)
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format shows a date or
// time. Quoted literals, escaped characters and bracketed sections such as
// [Red] or [$-409] are ignored.
func isDateFormatCode(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case strings.ContainsRune("ydmhs", r):
			return true
		}
	}
	return false
}

func (s *Store) openWorkbook(library string) (*excelize.File, error) {
	path := filepath.Join(s.dir, library+workbookExt)
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", source.ErrLibraryNotFound, library)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// ParseRows turns a header row and data rows into a dataset. Sheet rows and
// CSV records share this layout. GetRows trims trailing empty
// cells, so short rows are padded with missing values.
func ParseRows(rows [][]string) *domain.Dataset {
	return parseRows(rows, nil)
}

// cellDecoder gives typed access to a cell ahead of text parsing. row and
// col are zero based positions in rows; false falls back to the text.
type cellDecoder func(row, col int, raw string) (any, bool)

func parseRows(rows [][]string, decode cellDecoder) *domain.Dataset {
	ds := &domain.Dataset{}
	if len(rows) == 0 {
		return ds
	}
	header := rows[0]
	if len(header) > 0 {
		ds.IndexName = header[0]
	}
	for i := 1; i < len(header); i++ {
		ds.Columns = append(ds.Columns, domain.Column{Name: header[i]})
	}

	value := func(r, c int, raw string) any {
		if decode != nil {
			if v, ok := decode(r, c, raw); ok {
				return v
			}
		}
		if c == 0 {
			return parseIndex(raw)
		}
		return parseCell(raw)
	}

	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if len(row) == 0 {
			continue
		}
		ds.Index = append(ds.Index, value(r, 0, row[0]))
		for c := range ds.Columns {
			var raw string
			if c+1 < len(row) {
				raw = row[c+1]
			}
			ds.Columns[c].Values = append(ds.Columns[c].Values, value(r, c+1, raw))
		}
	}
	return ds
}

func parseIndex(raw string) any {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return parseCell(raw)
}

func parseCell(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
