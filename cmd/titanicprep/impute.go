package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/database"
	"github.com/nao1215/titanicprep/internal/impute"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/spf13/cobra"
)

// commandImpute is the run summary name of the impute command.
const commandImpute = "impute"

// Default passenger files of the impute command.
const (
	defaultTrainFile = "train.csv"
	defaultTestFile  = "test.csv"
)

// errReferenceSource is returned when the reference cannot be loaded from
// the store because the store is disabled.
var errReferenceSource = errors.New("--from-db needs the sqlite store (remove --no-db)")

// imputeInput pairs a passenger file with the name of its audit entries.
type imputeInput struct {
	dataset string
	path    string
}

// outputName returns the name of the imputed file of a dataset.
func outputName(dataset string) string {
	return dataset + "_pp.csv"
}

// NewImputeCmd creates the impute command.
func NewImputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "impute",
		Short: "Fill missing passenger ages from the scraped reference table",
		Long: `Impute fills every empty Age field of the train and test files with the
age of the reference record whose name is most similar to the passenger's.

Names are compared lower-cased without dots and commas, scored 0 to 100.
Equal scores resolve to the alphabetically smallest reference name.
Ages published in months ("9m") are converted according to --months-policy.
Ages that are already present are never changed.

The results are written as train_pp.csv and test_pp.csv in --out-dir.

Examples:
  # Impute with the CSV written by 'titanicprep scrape'
  titanicprep impute --reference output.csv --train train.csv --test test.csv

  # Use the references stored in the sqlite store
  titanicprep impute --from-db

  # Treat every month age as one year and write a Markdown report
  titanicprep impute --months-policy one --markdown -r report.md`,
		Args: cobra.NoArgs,
		RunE: runImputeCmd,
	}

	cmd.Flags().String("reference", config.DefaultScrapeOutput, "Reference CSV path")
	cmd.Flags().Bool("from-db", false, "Load the reference records from the sqlite store")
	cmd.Flags().String("train", defaultTrainFile, "Train passenger CSV path")
	cmd.Flags().String("test", defaultTestFile, "Test passenger CSV path")
	cmd.Flags().StringP("out-dir", "d", ".", "Output directory of the imputed files")
	cmd.Flags().String("name-column", config.DefaultNameColumn, "Reference column holding the name")
	cmd.Flags().String("age-column", config.DefaultAgeColumn, "Reference column holding the age")
	cmd.Flags().String("months-policy", string(config.MonthsStrip),
		`Conversion of month ages: "strip" ("9m" is 9) or "one" ("9m" is 1)`)
	cmd.Flags().Bool("fold-accents", false, "Remove accents before names are compared")
	cmd.Flags().Int("min-score", config.DefaultMinScoreWarning,
		"Report matches scoring below this value as doubtful")

	addStoreFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runImputeCmd executes the impute command.
func runImputeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	fromDB, err := cmd.Flags().GetBool("from-db")
	if err != nil {
		return err
	}
	if fromDB && !cfg.SaveToDB {
		return errReferenceSource
	}

	var inputs []imputeInput
	for _, dataset := range []string{"train", "test"} {
		path, err := cmd.Flags().GetString(dataset)
		if err != nil {
			return err
		}
		inputs = append(inputs, imputeInput{dataset: dataset, path: path})
	}

	referencePath, err := cmd.Flags().GetString("reference")
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out-dir")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var records []model.ReferenceRecord
	if fromDB {
		records, err = store.LoadReferences(ctx)
	} else {
		records, err = loadReferenceCSV(referencePath, cfg)
	}
	if err != nil {
		return err
	}

	summary, err := runImpute(ctx, cfg, records, inputs, outDir, store, logger)
	if err != nil {
		return err
	}
	return outputReport(cmd, cfg, summary)
}

// loadReferenceCSV reads reference records from a scraped CSV file.
func loadReferenceCSV(path string, cfg *config.Config) ([]model.ReferenceRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	records, err := model.ReferenceRecords(t, cfg.NameColumn, cfg.AgeColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// runImpute fills the missing ages of every input and writes the results.
// If store is nil, the audit is not persisted.
func runImpute(
	ctx context.Context,
	cfg *config.Config,
	records []model.ReferenceRecord,
	inputs []imputeInput,
	outDir string,
	store *database.Store,
	logger *slog.Logger,
) (*model.RunSummary, error) {
	summary := model.NewRunSummary(commandImpute)

	m, err := impute.NewMatcher(records,
		impute.WithFoldAccents(cfg.FoldAccents),
		impute.WithMonthsPolicy(cfg.MonthsPolicy),
		impute.WithMinScoreWarning(cfg.MinScoreWarning),
		impute.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if m.Dropped() > 0 {
		summary.AddNote("reference", "dropped: age not numeric", m.Dropped())
	}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := readTable(in.path)
		if err != nil {
			return nil, err
		}
		out, imp, err := m.Impute(t, in.dataset)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(outDir, outputName(in.dataset))
		if err := writeTable(path, out); err != nil {
			return nil, err
		}
		summary.Outputs = append(summary.Outputs, path)
		summary.Imputations = append(summary.Imputations, imp)

		switch in.dataset {
		case "train":
			summary.TrainRows = t.Len()
		case "test":
			summary.TestRows = t.Len()
		}

		if store != nil {
			if err := store.SaveImputations(ctx, imp.Matches); err != nil {
				return nil, err
			}
		}
	}

	finish(summary)
	saveRunSummary(ctx, store, summary, logger)
	return summary, nil
}
