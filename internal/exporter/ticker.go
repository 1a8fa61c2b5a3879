package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"symexport/internal/infrastructure"
	"symexport/internal/source"
)

// NormalizeSymbol returns the ticker of a symbol: everything before the
// first space. A symbol without a space is returned unchanged and the empty
// symbol stays empty.
func NormalizeSymbol(symbol string) string {
	ticker, _, _ := strings.Cut(symbol, " ")
	return ticker
}

// TickerFileName is the CSV file name of a symbol
func TickerFileName(symbol string) string {
	return NormalizeSymbol(symbol) + ".csv"
}

// Recorder receives one call per written symbol file
type Recorder interface {
	SymbolExported(library string, rows int)
}

type noopRecorder struct{}

func (noopRecorder) SymbolExported(string, int) {}

// EODExporter writes every symbol of a library to its own ticker file
type EODExporter struct {
	reader    source.Reader
	csvWriter *CSVWriter
	recorder  Recorder
}

// NewEODExporter creates an exporter reading from reader. A nil recorder
// disables counting.
func NewEODExporter(reader source.Reader, csvWriter *CSVWriter, recorder Recorder) *EODExporter {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &EODExporter{
		reader:    reader,
		csvWriter: csvWriter,
		recorder:  recorder,
	}
}

// ExportLibrary writes each symbol of library to outputFolder/<ticker>.csv in
// the order the source lists them. Tickers that collide overwrite each other
// so the last symbol wins. The first failure stops the export.
func (e *EODExporter) ExportLibrary(ctx context.Context, library, outputFolder string) (err error) {
	ctx, span := infrastructure.Tracer("exporter").Start(ctx, "exporter.export_library")
	span.SetAttributes(
		attribute.String("library", library),
		attribute.String("output_folder", outputFolder),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := requireFolder(outputFolder); err != nil {
		return err
	}

	symbols, err := e.reader.ListSymbols(ctx, library)
	if err != nil {
		return fmt.Errorf("list symbols of %s: %w", library, err)
	}

	logger := infrastructure.GetLogger()
	start := time.Now()
	total := len(symbols)
	rows := 0

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := e.exportSymbol(ctx, library, symbol, outputFolder)
		if err != nil {
			logger.ErrorContext(ctx, "Symbol export failed",
				slog.String("library", library),
				slog.String("symbol", symbol),
				slog.String("progress", fmt.Sprintf("%d/%d", i+1, total)),
				slog.String("error", err.Error()))
			return err
		}
		rows += n

		logger.InfoContext(ctx, "Exported symbol",
			slog.String("library", library),
			slog.String("symbol", symbol),
			slog.String("file", TickerFileName(symbol)),
			slog.Int("rows", n),
			slog.String("progress", fmt.Sprintf("%d/%d", i+1, total)))
	}

	span.SetAttributes(attribute.Int("symbols", total), attribute.Int("rows", rows))
	logger.InfoContext(ctx, "Library export completed",
		slog.String("library", library),
		slog.String("output_folder", outputFolder),
		slog.Int("symbols", total),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))

	return nil
}

func (e *EODExporter) exportSymbol(ctx context.Context, library, symbol, outputFolder string) (int, error) {
	ctx, span := infrastructure.Tracer("exporter").Start(ctx, "exporter.export_symbol",
		traceAttrs(library, symbol)...)
	defer span.End()

	ds, err := e.reader.ReadSymbol(ctx, library, symbol)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("read %s/%s: %w", library, symbol, err)
	}

	filePath := filepath.Join(outputFolder, TickerFileName(symbol))
	if err := e.csvWriter.WriteDataset(filePath, ds); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("export %s/%s: %w", library, symbol, err)
	}

	e.recorder.SymbolExported(library, ds.Len())
	return ds.Len(), nil
}

func traceAttrs(library, symbol string) []trace.SpanStartOption {
	return []trace.SpanStartOption{trace.WithAttributes(
		attribute.String("library", library),
		attribute.String("symbol", symbol),
	)}
}

// requireFolder checks that dir exists and is a directory
func requireFolder(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: output folder %s: %w", ErrIO, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: output folder %s is not a directory", ErrIO, dir)
	}
	return nil
}
