package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/nao1215/titanicprep/internal/scraper"
	"github.com/spf13/cobra"
)

// commandScrape is the run summary name of the scrape command.
const commandScrape = "scrape"

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the per-age passenger listings into a reference table",
		Long: `Scrape downloads one listing page per age from encyclopedia-titanica.org
and concatenates the first table of every page into a single CSV file.

Pages without a table contribute no rows; a missing page (404) counts as
empty. Any other HTTP error or a network failure aborts the scrape.
When the sqlite store is enabled, the records are also stored so that
'titanicprep impute --from-db' can run without the CSV.

Examples:
  # Scrape ages 0 to 74 into output.csv
  titanicprep scrape

  # Scrape a smaller range, four pages at a time, politely
  titanicprep scrape --age-from 0 --age-to 10 --concurrency 4 --delay 500ms

  # Write the table elsewhere and skip the store
  titanicprep scrape -o data/reference.csv --no-db`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultScrapeOutput,
		"Reference CSV output path")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Listing URL prefix; the age and .html are appended")
	cmd.Flags().Int("age-from", config.DefaultAgeFrom, "First listing age")
	cmd.Flags().Int("age-to", config.DefaultAgeTo, "Last listing age (inclusive)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of listing pages fetched at once")
	cmd.Flags().Duration("delay", 0, "Pause between two listing requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")

	addStoreFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	summary, err := runScrape(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return outputReport(cmd, cfg, summary)
}

// runScrape fetches the listings, writes the reference CSV and stores the
// records.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.RunSummary, error) {
	summary := model.NewRunSummary(commandScrape)

	client := &http.Client{Timeout: cfg.Timeout}
	s := scraper.New(client, cfg.BaseURL,
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithHeaders(cfg.Headers),
		scraper.WithDelay(cfg.Delay),
		scraper.WithConcurrency(cfg.Concurrency),
		scraper.WithMaxBodySize(cfg.MaxBodySize),
		scraper.WithLogger(logger),
	)

	result, err := s.Scrape(ctx, cfg.Ages())
	if err != nil {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	table := result.Table()
	if err := writeTable(cfg.ScrapeOutput, table); err != nil {
		return nil, err
	}
	summary.Outputs = append(summary.Outputs, cfg.ScrapeOutput)
	summary.AddNote(commandScrape, fmt.Sprintf("%d listing pages, %d without table",
		len(result.Pages), result.EmptyPages()), table.Len())

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()

		if table.Len() > 0 {
			records, err := result.Records(cfg.NameColumn, cfg.AgeColumn)
			if err != nil {
				return nil, fmt.Errorf("failed to convert scraped rows: %w", err)
			}
			n, err := store.SaveReferences(ctx, records)
			if err != nil {
				return nil, err
			}
			logger.Info("reference records saved to database", "records", n)
		}
	}

	finish(summary)
	saveRunSummary(ctx, store, summary, logger)
	return summary, nil
}
