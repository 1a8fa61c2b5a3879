package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"symexport/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	bomPrefix bool
}

// NewCSVWriter creates a new CSV writer instance. With bomPrefix set every
// new file starts with a UTF-8 BOM for Excel.
func NewCSVWriter(bomPrefix bool) *CSVWriter {
	return &CSVWriter{bomPrefix: bomPrefix}
}

// WriteDataset writes ds to filePath, truncating any previous file. The
// header is the index name followed by the column names and every row starts
// with its index value.
func (w *CSVWriter) WriteDataset(filePath string, ds *domain.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDataset, err)
	}

	stream, err := w.CreateStreamWriter(filePath, datasetHeaders(ds))
	if err != nil {
		return err
	}

	indexLayout := timeLayout(ds.Index)
	layouts := make([]string, len(ds.Columns))
	for c, col := range ds.Columns {
		layouts[c] = timeLayout(col.Values)
	}

	record := make([]string, len(ds.Columns)+1)
	for i, key := range ds.Index {
		record[0] = formatValue(key, indexLayout)
		for c, col := range ds.Columns {
			record[c+1] = formatValue(col.Values[i], layouts[c])
		}
		if err := stream.WriteRecord(record); err != nil {
			_ = stream.Close()
			return fmt.Errorf("%w: write row %d: %w", ErrIO, i, err)
		}
	}
	if err := stream.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrIO, filePath, err)
	}
	return nil
}

func datasetHeaders(ds *domain.Dataset) []string {
	return append([]string{ds.IndexName}, ds.ColumnNames()...)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates (or truncates) filePath and writes the headers
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	slog.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.Int("header_count", len(headers)))

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrIO, filePath, err)
	}

	if w.bomPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: write BOM: %w", ErrIO, err)
		}
	}

	writer := csv.NewWriter(file)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: write headers: %w", ErrIO, err)
		}
	}

	return &StreamWriter{
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
