package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"symexport/internal/config"
	"symexport/internal/infrastructure"
	"symexport/internal/source"
)

// JobRecorder receives the outcome of every job
type JobRecorder interface {
	JobFinished(job, kind string, elapsed time.Duration, err error)
}

// Runner executes export jobs one after another, each inside its own source
// session
type Runner struct {
	opener   source.Opener
	registry *Registry
	paths    *config.Paths
	recorder JobRecorder
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithPaths resolves relative job outputs against paths
func WithPaths(paths *config.Paths) RunnerOption {
	return func(r *Runner) { r.paths = paths }
}

// WithJobRecorder reports job outcomes to recorder
func WithJobRecorder(recorder JobRecorder) RunnerOption {
	return func(r *Runner) { r.recorder = recorder }
}

// NewRunner creates a runner acquiring sessions from opener
func NewRunner(opener source.Opener, registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		opener:   opener,
		registry: registry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListLibraries returns the libraries of the store
func (r *Runner) ListLibraries(ctx context.Context) ([]string, error) {
	var libs []string
	err := source.WithSession(ctx, r.opener, func(reader source.Reader) error {
		var err error
		libs, err = reader.ListLibraries(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return libs, nil
}

// ListSymbols returns the symbols of library
func (r *Runner) ListSymbols(ctx context.Context, library string) ([]string, error) {
	var symbols []string
	err := source.WithSession(ctx, r.opener, func(reader source.Reader) error {
		var err error
		symbols, err = reader.ListSymbols(ctx, library)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list symbols of %s: %w", library, err)
	}
	return symbols, nil
}

// Run logs the available libraries then runs jobs in order. The first
// failing job stops the run and is returned as a *JobError.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) (err error) {
	ctx, span := infrastructure.Tracer("operations").Start(ctx, "operations.run",
		trace.WithAttributes(attribute.Int("jobs", len(jobs))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	for _, job := range jobs {
		if !r.registry.Has(job.Kind) {
			return NewJobError(job, fmt.Errorf("no step registered for kind %s (registered: %v)", job.Kind, r.registry.Kinds()))
		}
	}

	logger := infrastructure.GetLogger()

	libs, err := r.ListLibraries(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Available libraries",
		slog.Int("count", len(libs)),
		slog.String("libraries", strings.Join(libs, ", ")))

	available := make(map[string]bool, len(libs))
	for _, lib := range libs {
		available[lib] = true
	}
	for _, lib := range config.ExportPlan(jobs).Libraries() {
		if !available[lib] {
			logger.WarnContext(ctx, "Planned library not found in store", slog.String("library", lib))
		}
	}

	progress := NewProgressTracker(len(jobs))
	for _, job := range jobs {
		if err := r.RunJob(ctx, job); err != nil {
			logger.ErrorContext(ctx, "Export job failed",
				slog.String("job", job.Name),
				slog.String("error_type", string(GetErrorType(err))),
				slog.String("error", err.Error()))
			return err
		}
		progress.Increment(job.Name)
		logger.InfoContext(ctx, "Export job completed",
			slog.String("job", job.Name),
			slog.String("progress", progress.Position()),
			slog.String("eta", progress.GetETA()))
	}

	logger.InfoContext(ctx, "Export run completed",
		slog.Int("jobs", len(jobs)),
		slog.String("elapsed", progress.GetElapsedTimeString()))
	return nil
}

// RunJob runs one job inside its own session. The session is closed whether
// or not the job succeeds.
func (r *Runner) RunJob(ctx context.Context, job config.Job) (err error) {
	step, err := r.registry.Get(job.Kind)
	if err != nil {
		return NewJobError(job, err)
	}
	job = r.paths.ResolveJob(job)

	ctx, span := infrastructure.Tracer("operations").Start(ctx, "operations.job."+string(job.Kind),
		trace.WithAttributes(
			attribute.String("job.name", job.Name),
			attribute.String("job.library", job.Library),
			attribute.String("job.output", job.Output),
		))
	defer span.End()

	infrastructure.GetLogger().InfoContext(ctx, "Starting export job",
		slog.String("job", job.Name),
		slog.String("kind", string(job.Kind)),
		slog.String("library", job.Library),
		slog.String("output", job.Output))

	start := time.Now()
	err = source.WithSession(ctx, r.opener, func(reader source.Reader) error {
		return step.Run(ctx, reader, job)
	})
	if r.recorder != nil {
		r.recorder.JobFinished(job.Name, string(job.Kind), time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return NewJobError(job, err)
	}
	return nil
}
