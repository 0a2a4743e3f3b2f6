package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/lacquerai/abgroup/internal/execcontext"
	"github.com/lacquerai/abgroup/internal/loader"
	"github.com/lacquerai/abgroup/internal/pipeline"
	"github.com/lacquerai/abgroup/internal/style"
	pkgEvents "github.com/lacquerai/abgroup/pkg/events"
)

// RunConfig holds the resolved settings of a run.
type RunConfig struct {
	InputFile   string
	OutputFile  string
	MetricsFile string
	DryRun      bool
	Format      string
	Quiet       bool
	Verbose     bool
}

// loadRunConfig resolves the run settings from flags, environment and config
// file, in viper's precedence order.
func loadRunConfig() RunConfig {
	return RunConfig{
		InputFile:   viper.GetString("input-file"),
		OutputFile:  viper.GetString("output-file"),
		MetricsFile: viper.GetString("metrics-file"),
		DryRun:      viper.GetBool("dry-run"),
		Format:      viper.GetString("output"),
		Quiet:       viper.GetBool("quiet"),
		Verbose:     viper.GetBool("verbose"),
	}
}

// runTally runs the pipeline, reports the result in the configured format and
// returns the run's error, if any. Missing and malformed input are reported
// as warnings; every other failure as an error.
func runTally(ctx context.Context, cfg RunConfig, stdout, stderr io.Writer) (*pipeline.ExecutionResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx := execcontext.RunContext{
		Context: log.Logger.WithContext(ctx),
		StdOut:  stdout,
		StdErr:  stderr,
	}

	opts := pipeline.Options{
		InputFile:  cfg.InputFile,
		OutputFile: cfg.OutputFile,
		DryRun:     cfg.DryRun,
	}

	var listener pkgEvents.Listener = &pkgEvents.NoopListener{}
	if !cfg.Quiet && cfg.Format == "text" {
		listener = pipeline.NewProgressTracker(runCtx.StdOut)
	}

	var runnerOptions []pipeline.RunnerOption
	var metrics *pipeline.Metrics
	if cfg.MetricsFile != "" {
		metrics = pipeline.NewMetrics()
		runnerOptions = append(runnerOptions, pipeline.WithMetrics(metrics))
	}

	log.Debug().
		Str("input", opts.InputFile).
		Str("output", opts.OutputFile).
		Bool("dry_run", opts.DryRun).
		Msg("Starting run")

	result, err := pipeline.NewRunner(listener, runnerOptions...).Run(runCtx, opts)

	if metrics != nil {
		if werr := metrics.WriteToTextfile(cfg.MetricsFile); werr != nil {
			style.Warning(runCtx.StdErr, werr.Error())
		}
	}

	if err != nil {
		reportFailure(runCtx.StdErr, cfg, err)
		if cfg.Format != "text" {
			printResult(runCtx, cfg, result)
		}
		return result, err
	}

	printResult(runCtx, cfg, result)
	return result, nil
}

// reportFailure prints the message for a failed run.
func reportFailure(w io.Writer, cfg RunConfig, err error) {
	var missing *loader.MissingInputFileError
	var malformed *loader.MalformedInputFileError

	switch {
	case errors.As(err, &missing):
		style.Warning(w, missing.Suggestion())
	case errors.As(err, &malformed):
		style.Warning(w, malformed.Suggestion())
		if cfg.Verbose {
			fmt.Fprintf(w, "  %s\n", style.MutedStyle.Render(malformed.Error()))
		}
	case errors.Is(err, context.Canceled):
		style.Warning(w, "Run cancelled")
	default:
		style.Error(w, fmt.Sprintf("Run failed: %v", err))
	}
}

func printResult(w io.Writer, cfg RunConfig, result *pipeline.ExecutionResult) {
	switch cfg.Format {
	case "json":
		style.PrintJSON(w, result)
	case "yaml":
		style.PrintYAML(w, result)
	default:
		printSummary(w, cfg, result)
	}
}

func printSummary(w io.Writer, cfg RunConfig, result *pipeline.ExecutionResult) {
	if cfg.Quiet {
		return
	}

	if result.DryRun || cfg.Verbose {
		fmt.Fprintln(w)
		rows := make([][]string, len(result.Records))
		for i, r := range result.Records {
			rows[i] = []string{r.ColumnA, r.ColumnB, strconv.Itoa(r.Count)}
		}
		style.PrintTable(w, []string{"column_a", "column_b", "count"}, rows)
		fmt.Fprintln(w)
	}

	if result.DryRun {
		style.Info(w, fmt.Sprintf("Dry run: %d groups from %d rows, nothing written %s",
			result.Groups, result.Rows, style.FormatDuration(result.Duration)))
		return
	}

	style.Success(w, fmt.Sprintf("All done! %d groups written to %s %s",
		result.Groups, style.FormatFilePath(result.OutputFile), style.FormatDuration(result.Duration)))
}
