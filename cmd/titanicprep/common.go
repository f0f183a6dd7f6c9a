package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/database"
	tplog "github.com/nao1215/titanicprep/internal/log"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/nao1215/titanicprep/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addReportFlags registers the run report flags shared by the data commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report-file", "r", "",
		"Write report to specified file path (creates directories if needed)")
}

// addStoreFlags registers the sqlite store flags shared by the data commands.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"Directory of the sqlite store (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false, "Do not use the sqlite store")
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags that were set on the command line, in that order.
// Flags left at their default never override the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.ConfigFilePath = lookupString(cmd, "config")
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	var errs []error
	flags := cmd.Flags()
	setString := func(name string, dst *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			v, err := flags.GetDuration(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setString("base-url", &cfg.BaseURL)
	setInt("age-from", &cfg.AgeFrom)
	setInt("age-to", &cfg.AgeTo)
	setInt("concurrency", &cfg.Concurrency)
	setDuration("delay", &cfg.Delay)
	setDuration("timeout", &cfg.Timeout)
	setString("output", &cfg.ScrapeOutput)
	setString("name-column", &cfg.NameColumn)
	setString("age-column", &cfg.AgeColumn)
	setBool("fold-accents", &cfg.FoldAccents)
	setInt("min-score", &cfg.MinScoreWarning)
	setBool("one-hot-ordered", &cfg.OneHotOrdered)
	setString("db-dir", &cfg.DBDir)
	setBool("json", &cfg.JSONReport)
	setBool("markdown", &cfg.MarkdownReport)
	setString("report-file", &cfg.ReportFile)

	if f := flags.Lookup("months-policy"); f != nil && f.Changed {
		cfg.MonthsPolicy = config.MonthsPolicy(f.Value.String())
	}
	if f := flags.Lookup("minor-threshold"); f != nil && f.Changed {
		v, err := flags.GetFloat64("minor-threshold")
		errs = append(errs, err)
		cfg.MinorThreshold = v
	}
	noDB := false
	setBool("no-db", &noDB)
	if noDB {
		cfg.SaveToDB = false
	}
	cfg.Verbose = lookupBool(cmd, "verbose")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// lookupString returns the value of a local or inherited string flag, or
// "" when the command does not carry it.
func lookupString(cmd *cobra.Command, name string) string {
	f := lookupFlag(cmd, name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// lookupBool returns the value of a local or inherited bool flag.
func lookupBool(cmd *cobra.Command, name string) bool {
	f := lookupFlag(cmd, name)
	return f != nil && f.Value.String() == "true"
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}
	return cmd.Root().PersistentFlags().Lookup(name)
}

// setupLogger creates the structured logger of a command run.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := tplog.NewSecureLogger(cmd.ErrOrStderr(), verbose).With("command", cmd.Name())
	slog.SetDefault(logger)
	return logger
}

// signalContext returns the command context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openStore opens the sqlite store, or returns nil when it is disabled.
func openStore(cfg *config.Config, logger *slog.Logger) (*database.Store, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", store.Path())
	return store, nil
}

// saveRunSummary stores the summary if the store is enabled.
// If store is nil, this function is a no-op.
func saveRunSummary(ctx context.Context, store *database.Store, summary *model.RunSummary, logger *slog.Logger) {
	if store == nil {
		return
	}
	id, err := store.SaveRunSummary(ctx, summary)
	if err != nil {
		logger.Error("failed to save run summary", "error", err)
		return
	}
	logger.Info("run summary saved to database", "id", id)
}

// readTable reads a CSV file into a table.
func readTable(path string) (*model.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := model.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// writeTable writes a table as CSV, creating parent directories as needed.
func writeTable(path string, t *model.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := t.Write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// outputReport writes the run summary in the requested format.
// With a report file, the selected format goes to the file and the plain
// text report still goes to stdout.
func outputReport(cmd *cobra.Command, cfg *config.Config, summary *model.RunSummary) error {
	stdout := cmd.OutOrStdout()
	if cfg.ReportFile == "" {
		_, err := newReportWriter(cfg, stdout).Write(summary)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := report.NewMultiWriter(
		newReportWriter(cfg, f),
		report.NewSimpleWriter(stdout, report.WithMinScore(cfg.MinScoreWarning)),
	)
	_, err = w.Write(summary)
	return err
}

// newReportWriter selects the report writer of cfg.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, report.WithMarkdownMinScore(cfg.MinScoreWarning))
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithMinScore(cfg.MinScoreWarning),
		)
	}
}

// finish stamps the run duration.
func finish(summary *model.RunSummary) {
	summary.Duration = time.Since(summary.StartedAt).Round(time.Millisecond)
}
