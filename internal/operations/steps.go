package operations

import (
	"context"

	"symexport/internal/config"
	"symexport/internal/exporter"
	"symexport/internal/source"
)

// EODStep exports every symbol of the job library into the job output folder
type EODStep struct {
	CSVWriter *exporter.CSVWriter
	Recorder  exporter.Recorder
}

func (s *EODStep) Kind() config.JobKind { return config.KindEOD }

// Run implements Step
func (s *EODStep) Run(ctx context.Context, reader source.Reader, job config.Job) error {
	return exporter.NewEODExporter(reader, s.CSVWriter, s.Recorder).
		ExportLibrary(ctx, job.Library, job.Output)
}

// CompositionStep exports the composition dataset of the job library to the
// job output file
type CompositionStep struct {
	CSVWriter *exporter.CSVWriter
	Recorder  exporter.Recorder
	// Options supplies the symbol and column names; OutputPath is taken from the job
	Options exporter.CompositionOptions
}

func (s *CompositionStep) Kind() config.JobKind { return config.KindComposition }

// Run implements Step
func (s *CompositionStep) Run(ctx context.Context, reader source.Reader, job config.Job) error {
	opts := s.Options
	opts.OutputPath = job.Output
	return exporter.NewCompositionExporter(reader, s.CSVWriter, s.Recorder, opts).
		ExportComposition(ctx, job.Library)
}

// CorporateActionsStep runs the corporate actions export
type CorporateActionsStep struct{}

func (s *CorporateActionsStep) Kind() config.JobKind { return config.KindCorporateActions }

// Run implements Step
func (s *CorporateActionsStep) Run(ctx context.Context, _ source.Reader, job config.Job) error {
	return exporter.NewCorporateActionsExporter().ExportCorporateActions(ctx, job.Library)
}

// NewDefaultRegistry registers a step for every job kind
func NewDefaultRegistry(cfg config.ExportConfig, recorder exporter.Recorder) *Registry {
	csvWriter := exporter.NewCSVWriter(cfg.BOMPrefix)
	registry := NewRegistry()
	// Kinds are distinct so registration cannot fail.
	_ = registry.Register(&EODStep{CSVWriter: csvWriter, Recorder: recorder})
	_ = registry.Register(&CompositionStep{
		CSVWriter: csvWriter,
		Recorder:  recorder,
		Options: exporter.CompositionOptions{
			Symbol:       cfg.CompositionSymbol,
			MemberColumn: cfg.MemberColumn,
			SymbolColumn: cfg.SymbolColumn,
		},
	})
	_ = registry.Register(&CorporateActionsStep{})
	return registry
}
