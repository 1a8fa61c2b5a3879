package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"symexport/internal/config"
	"symexport/internal/infrastructure"
	"symexport/internal/operations"
	"symexport/internal/source"
	"symexport/internal/source/mongo"
	"symexport/internal/source/sqlite"
	"symexport/internal/source/xlsx"
	"symexport/pkg/contracts/domain"
)

// Application wires the configured source, exporters and observability
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Opener  source.Opener
	Runner  *operations.Runner
	Metrics *infrastructure.ExportMetrics
	Tracing *infrastructure.TracingProviders
}

// NewApplication builds the application from cfg. The logger must already be
// initialized with infrastructure.InitializeLogger.
func NewApplication(cfg *config.Config) (*Application, error) {
	logger := infrastructure.GetLogger()

	opener, err := NewOpener(cfg.Source)
	if err != nil {
		return nil, err
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	metrics := infrastructure.NewExportMetrics()
	runner := operations.NewRunner(opener,
		operations.NewDefaultRegistry(cfg.Export, metrics),
		operations.WithPaths(config.NewPaths(cfg.Export.BaseDir)),
		operations.WithJobRecorder(metrics))

	logger.Info("Application initialized",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("driver", cfg.Source.Driver))

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Opener:  opener,
		Runner:  runner,
		Metrics: metrics,
		Tracing: tracing,
	}, nil
}

// NewOpener returns the session opener of the configured driver
func NewOpener(cfg config.SourceConfig) (source.Opener, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return mongo.Opener(mongo.Options{
			URI:            cfg.URI,
			Database:       cfg.Database,
			ConnectTimeout: cfg.ConnectTimeout,
		}), nil
	case config.DriverSQLite:
		return sqlite.Opener(cfg.Path), nil
	case config.DriverXLSX:
		return xlsx.Opener(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source driver: %q", cfg.Driver)
	}
}

// Export runs the named jobs, or the configured default jobs when names is
// empty, then writes the metrics textfile if one is configured.
func (a *Application) Export(ctx context.Context, names []string) error {
	if len(names) == 0 {
		names = a.Config.Export.Jobs
	}
	jobs, err := a.Config.Export.Plan.Select(names)
	if err != nil {
		return err
	}

	runErr := a.Runner.Run(ctx, jobs)

	if err := a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
		a.Logger.WarnContext(ctx, "Failed to write metrics textfile",
			slog.String("path", a.Config.Metrics.TextfilePath),
			slog.String("error", err.Error()))
	}
	return runErr
}

// Libraries returns the libraries of the configured store
func (a *Application) Libraries(ctx context.Context) ([]string, error) {
	return a.Runner.ListLibraries(ctx)
}

// Symbols returns the symbols of library
func (a *Application) Symbols(ctx context.Context, library string) ([]string, error) {
	return a.Runner.ListSymbols(ctx, library)
}

// symbolWriter is a store that accepts datasets
type symbolWriter interface {
	WriteSymbol(ctx context.Context, library, symbol string, ds *domain.Dataset) error
	Close() error
}

// Seed loads the CSV file at csvPath into symbol of library. The first CSV
// column is the index. Only writable drivers (mongo, sqlite) can be seeded.
func (a *Application) Seed(ctx context.Context, library, symbol, csvPath string) error {
	ds, err := ReadCSVDataset(csvPath)
	if err != nil {
		return err
	}

	store, err := a.openWriter(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteSymbol(ctx, library, symbol, ds); err != nil {
		return fmt.Errorf("seed %s/%s: %w", library, symbol, err)
	}

	a.Logger.InfoContext(ctx, "Seeded symbol",
		slog.String("library", library),
		slog.String("symbol", symbol),
		slog.Int("rows", ds.Len()),
		slog.String("file", csvPath))
	return nil
}

func (a *Application) openWriter(ctx context.Context) (symbolWriter, error) {
	cfg := a.Config.Source
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongo.Open(ctx, mongo.Options{URI: cfg.URI, Database: cfg.Database, ConnectTimeout: cfg.ConnectTimeout})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("source driver %q is read-only", cfg.Driver)
	}
}

// ReadCSVDataset reads a CSV file whose header starts with the index name
func ReadCSVDataset(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: no header row", path)
	}
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return xlsx.ParseRows(records), nil
}

// Close flushes the tracer and releases the log file
func (a *Application) Close(ctx context.Context) error {
	if err := a.Tracing.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down tracing", slog.String("error", err.Error()))
	}
	return infrastructure.CloseLogFile()
}
