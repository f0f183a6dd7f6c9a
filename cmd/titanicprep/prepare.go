package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/nao1215/titanicprep/internal/database"
	"github.com/nao1215/titanicprep/internal/encode"
	"github.com/nao1215/titanicprep/internal/model"
	"github.com/nao1215/titanicprep/internal/pipeline"
	"github.com/spf13/cobra"
)

// commandPrepare is the run summary name of the prepare command.
const commandPrepare = "prepare"

// Output files of the prepare command.
const (
	fileTreeTrain   = "tree_train.csv"
	fileTreeTest    = "tree_test.csv"
	fileScaleTrain  = "sv_train.csv"
	fileScaleTest   = "sv_test.csv"
	fileLabelsTrain = "labels_train.csv"
)

// NewPrepareCmd creates the prepare command.
func NewPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Derive, fill and encode the model features",
		Long: `Prepare combines the train and test passengers and runs the preparation
pipeline over them:

  coerce_types        Pclass, Sex and Embarked become categories
  engineer_features   CabinKnown, Title, FamilySize and IsMinor are derived
  fill_missing        missing fares get their class mean, missing ports the mode
  transform_features  fares are log-transformed

The result is split back and written to --out-dir in two encodings:

  tree_train.csv, tree_test.csv  every category as its level code
  sv_train.csv, sv_test.csv      unordered categories as indicator columns
  labels_train.csv               PassengerId and Survived of the train rows

Examples:
  # Prepare the files written by 'titanicprep impute'
  titanicprep prepare

  # Use other inputs and also expand Pclass and FamilySize
  titanicprep prepare --train a.csv --test b.csv --one-hot-ordered

  # Write a JSON report of the run
  titanicprep prepare --json -r report.json`,
		Args: cobra.NoArgs,
		RunE: runPrepareCmd,
	}

	cmd.Flags().String("train", outputName("train"), "Train passenger CSV path")
	cmd.Flags().String("test", outputName("test"), "Test passenger CSV path")
	cmd.Flags().StringP("out-dir", "d", ".", "Output directory of the encoded files")
	cmd.Flags().Float64("minor-threshold", config.DefaultMinorThreshold,
		"Passengers younger than this are flagged as minors")
	cmd.Flags().Bool("one-hot-ordered", false,
		"Also expand Pclass and FamilySize into indicator columns")
	cmd.Flags().Int("min-score", config.DefaultMinScoreWarning,
		"Report matches scoring below this value as doubtful")

	addStoreFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runPrepareCmd executes the prepare command.
func runPrepareCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	trainPath, err := cmd.Flags().GetString("train")
	if err != nil {
		return err
	}
	testPath, err := cmd.Flags().GetString("test")
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

	summary, err := runPrepare(ctx, cfg, trainPath, testPath, outDir, store, logger)
	if err != nil {
		return err
	}
	return outputReport(cmd, cfg, summary)
}

// readPassengers reads and parses a passenger CSV file.
func readPassengers(path string) ([]model.Passenger, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	passengers, err := model.ParsePassengers(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return passengers, nil
}

// runPrepare runs the preparation pipeline and writes the encodings.
// If store is nil, the run summary is not persisted.
func runPrepare(
	ctx context.Context,
	cfg *config.Config,
	trainPath, testPath, outDir string,
	store *database.Store,
	logger *slog.Logger,
) (*model.RunSummary, error) {
	train, err := readPassengers(trainPath)
	if err != nil {
		return nil, err
	}
	test, err := readPassengers(testPath)
	if err != nil {
		return nil, err
	}

	summary := model.NewRunSummary(commandPrepare)
	ds := pipeline.Combine(train, test, summary)
	summary.MissingBefore = pipeline.NASummary(ds)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(pipeline.DefaultSteps(cfg, logger)...)
	if err := p.Execute(ctx, ds); err != nil {
		return nil, err
	}
	summary.MissingAfter = pipeline.NASummary(ds)

	trainDS, testDS := ds.Split(len(train))
	opts := encode.Options{OneHotOrdered: cfg.OneHotOrdered}

	outputs := []struct {
		name   string
		encode func() (dataframe.DataFrame, error)
	}{
		{fileTreeTrain, func() (dataframe.DataFrame, error) { return encode.Tree(trainDS) }},
		{fileTreeTest, func() (dataframe.DataFrame, error) { return encode.Tree(testDS) }},
		{fileScaleTrain, func() (dataframe.DataFrame, error) { return encode.ScaleVariant(trainDS, opts) }},
		{fileScaleTest, func() (dataframe.DataFrame, error) { return encode.ScaleVariant(testDS, opts) }},
	}
	for _, out := range outputs {
		df, err := out.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", out.name, err)
		}
		path := filepath.Join(outDir, out.name)
		if err := encode.WriteCSV(path, df); err != nil {
			return nil, err
		}
		summary.Outputs = append(summary.Outputs, path)
		logger.Debug("encoding written", "path", path, "rows", df.Nrow(), "columns", df.Ncol())
	}

	labelsPath := filepath.Join(outDir, fileLabelsTrain)
	if err := writeTable(labelsPath, pipeline.Labels(train)); err != nil {
		return nil, err
	}
	summary.Outputs = append(summary.Outputs, labelsPath)

	finish(summary)
	saveRunSummary(ctx, store, summary, logger)
	return summary, nil
}
