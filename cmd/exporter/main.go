package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"symexport/internal/app"
	"symexport/internal/config"
	"symexport/internal/infrastructure"
)

const usage = `usage: exporter [-config file] <command> [flags]

commands:
  run        run the default jobs, or the jobs given with -job
  libraries  list the libraries of the store
  symbols    list the symbols of -library
  seed       load -csv into -symbol of -library
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("exporter", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "configuration file (defaults to config.yaml or configs/config.yaml)")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}
	command, rest := global.Arg(0), global.Args()[1:]

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}

	ctx = infrastructure.EnsureTraceID(ctx)

	application, err := app.NewApplication(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}
	defer application.Close(context.Background())

	switch command {
	case "run":
		return runExport(ctx, application, rest, stderr)
	case "libraries":
		return runLibraries(ctx, application, rest, stdout, stderr)
	case "symbols":
		return runSymbols(ctx, application, rest, stdout, stderr)
	case "seed":
		return runSeed(ctx, application, rest, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}
}

// jobList collects repeated -job flags; a comma separated value adds several
type jobList []string

func (j *jobList) String() string { return strings.Join(*j, ",") }

func (j *jobList) Set(value string) error {
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*j = append(*j, name)
		}
	}
	return nil
}

func runExport(ctx context.Context, application *app.Application, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var jobs jobList
	fs.Var(&jobs, "job", "job to run (repeatable); defaults to export.jobs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := application.Export(ctx, jobs); err != nil {
		application.Logger.ErrorContext(ctx, "Export failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

func runLibraries(ctx context.Context, application *app.Application, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("libraries", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	libs, err := application.Libraries(ctx)
	if err != nil {
		application.Logger.ErrorContext(ctx, "Failed to list libraries", slog.String("error", err.Error()))
		return 1
	}
	for _, lib := range libs {
		fmt.Fprintln(stdout, lib)
	}
	return 0
}

func runSymbols(ctx context.Context, application *app.Application, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("symbols", flag.ContinueOnError)
	fs.SetOutput(stderr)
	library := fs.String("library", "", "library to list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *library == "" {
		fmt.Fprintln(stderr, "symbols: -library is required")
		return 2
	}

	symbols, err := application.Symbols(ctx, *library)
	if err != nil {
		application.Logger.ErrorContext(ctx, "Failed to list symbols",
			slog.String("library", *library),
			slog.String("error", err.Error()))
		return 1
	}
	for _, symbol := range symbols {
		fmt.Fprintln(stdout, symbol)
	}
	return 0
}

func runSeed(ctx context.Context, application *app.Application, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	library := fs.String("library", "", "target library")
	symbol := fs.String("symbol", "", "target symbol")
	csvPath := fs.String("csv", "", "CSV file whose first column is the index")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *library == "" || *symbol == "" || *csvPath == "" {
		fmt.Fprintln(stderr, "seed: -library, -symbol and -csv are required")
		return 2
	}

	if err := application.Seed(ctx, *library, *symbol, *csvPath); err != nil {
		application.Logger.ErrorContext(ctx, "Seed failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
