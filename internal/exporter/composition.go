package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"symexport/internal/config"
	"symexport/internal/infrastructure"
	"symexport/internal/source"
	"symexport/pkg/contracts/domain"
)

// CompositionOptions names the composition dataset, its columns and the
// output file
type CompositionOptions struct {
	Symbol       string
	MemberColumn string
	SymbolColumn string
	OutputPath   string
}

// DefaultCompositionOptions returns the MOSENEW Index settings
func DefaultCompositionOptions() CompositionOptions {
	return CompositionOptions{
		Symbol:       config.DefaultCompositionSymbol,
		MemberColumn: config.DefaultMemberColumn,
		SymbolColumn: config.DefaultSymbolColumn,
		OutputPath:   config.DefaultCompositionFile,
	}
}

// CompositionExporter writes the member list of an index with each member
// reduced to its ticker
type CompositionExporter struct {
	reader    source.Reader
	csvWriter *CSVWriter
	recorder  Recorder
	opts      CompositionOptions
}

// NewCompositionExporter creates a composition exporter. Empty option fields
// take their default.
func NewCompositionExporter(reader source.Reader, csvWriter *CSVWriter, recorder Recorder, opts CompositionOptions) *CompositionExporter {
	defaults := DefaultCompositionOptions()
	if opts.Symbol == "" {
		opts.Symbol = defaults.Symbol
	}
	if opts.MemberColumn == "" {
		opts.MemberColumn = defaults.MemberColumn
	}
	if opts.SymbolColumn == "" {
		opts.SymbolColumn = defaults.SymbolColumn
	}
	if opts.OutputPath == "" {
		opts.OutputPath = defaults.OutputPath
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &CompositionExporter{
		reader:    reader,
		csvWriter: csvWriter,
		recorder:  recorder,
		opts:      opts,
	}
}

// Options returns the effective options
func (c *CompositionExporter) Options() CompositionOptions {
	return c.opts
}

// ExportComposition reads the composition symbol of library, normalizes the
// member column, drops the symbol column and writes the result to the output
// path, replacing any previous file. Nothing is written when either column is
// missing.
func (c *CompositionExporter) ExportComposition(ctx context.Context, library string) (err error) {
	ctx, span := infrastructure.Tracer("exporter").Start(ctx, "exporter.export_composition",
		traceAttrs(library, c.opts.Symbol)...)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ds, err := c.reader.ReadSymbol(ctx, library, c.opts.Symbol)
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", library, c.opts.Symbol, err)
	}

	if err := NormalizeComposition(ds, c.opts.MemberColumn, c.opts.SymbolColumn); err != nil {
		return fmt.Errorf("composition %s/%s: %w", library, c.opts.Symbol, err)
	}

	if err := c.csvWriter.WriteDataset(c.opts.OutputPath, ds); err != nil {
		return fmt.Errorf("export composition: %w", err)
	}
	c.recorder.SymbolExported(library, ds.Len())

	span.SetAttributes(attribute.Int("rows", ds.Len()))
	infrastructure.GetLogger().InfoContext(ctx, "Exported composition",
		slog.String("library", library),
		slog.String("symbol", c.opts.Symbol),
		slog.String("file", c.opts.OutputPath),
		slog.Int("members", ds.Len()))

	return nil
}

// NormalizeComposition reduces every member value to its ticker and removes
// the symbol column. Both columns must exist; ds is left untouched otherwise.
// Non-string members are rendered as they would appear in the CSV first.
func NormalizeComposition(ds *domain.Dataset, memberColumn, symbolColumn string) error {
	member, ok := ds.Column(memberColumn)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, memberColumn)
	}
	if _, ok := ds.Column(symbolColumn); !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, symbolColumn)
	}

	layout := timeLayout(member.Values)
	for i, v := range member.Values {
		switch x := v.(type) {
		case nil:
		case string:
			member.Values[i] = NormalizeSymbol(x)
		default:
			member.Values[i] = NormalizeSymbol(formatValue(x, layout))
		}
	}
	ds.DropColumn(symbolColumn)
	return nil
}
