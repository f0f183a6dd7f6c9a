package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nao1215/titanicprep/internal/database"
	"github.com/spf13/cobra"
)

// historyCommands are the commands whose runs are stored.
var historyCommands = []string{commandScrape, commandImpute, commandPrepare}

// NewHistoryCmd creates the history command.
// This command reads the runs stored in the sqlite store.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [command]",
		Short: "Show stored runs and imputation audits",
		Long: `History reads the sqlite store written by scrape, impute and prepare.

Without flags it prints the report of the latest run of the given command
(default: prepare), in any of the report formats.

Examples:
  # Show the report of the latest prepare run
  titanicprep history

  # Show the latest impute run as Markdown
  titanicprep history impute --markdown

  # List every stored run
  titanicprep history --list

  # List the ages filled in the test file
  titanicprep history --imputations test`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: historyCommands,
		RunE:      runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List every stored run")
	cmd.Flags().String("imputations", "",
		"List the imputation audit of a dataset (train or test)")
	cmd.Flags().String("db-dir", "",
		"Directory of the sqlite store (default: XDG data directory)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	command := commandPrepare
	if len(args) > 0 {
		command = args[0]
	}
	// Validate arguments before opening database
	if !slices.Contains(historyCommands, command) {
		return fmt.Errorf("unknown command %q (want one of %s)", command, strings.Join(historyCommands, ", "))
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Debug("database opened", "path", store.Path())

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listRuns(ctx, out, store)
	}

	dataset, err := cmd.Flags().GetString("imputations")
	if err != nil {
		return err
	}
	if dataset != "" {
		return listImputations(ctx, out, store, dataset)
	}

	summary, err := store.GetLatestRunSummary(ctx, command)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Fprintf(out, "No stored %s run found.\n", command)
		fmt.Fprintf(out, "\nUse 'titanicprep %s' to create one.\n", command)
		return nil
	}
	return outputReport(cmd, cfg, summary)
}

// listRuns lists every stored run, newest first.
func listRuns(ctx context.Context, out io.Writer, store *database.Store) error {
	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %s\n", "ID", "Date", "Command")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 40))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Command,
		)
	}

	fmt.Fprintln(out, "\nUse 'titanicprep history <command>' to show the latest report of a command.")
	return nil
}

// listImputations lists the ages filled in a dataset, oldest first.
func listImputations(ctx context.Context, out io.Writer, store *database.Store, dataset string) error {
	matches, err := store.ListImputations(ctx, dataset)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(out, "No imputations found for %s.\n", dataset)
		return nil
	}

	fmt.Fprintf(out, "Imputations for %s (%d):\n\n", dataset, len(matches))
	fmt.Fprintf(out, "  %-6s  %-5s  %-5s  %s\n", "ID", "Score", "Age", "Name -> Matched")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, m := range matches {
		tie := ""
		if m.Tie {
			tie = " (tie)"
		}
		fmt.Fprintf(out, "  %-6s  %-5d  %-5s  %s -> %s%s\n",
			m.PassengerID, m.Score, m.Age, m.Name, m.MatchedName, tie)
	}
	return nil
}
