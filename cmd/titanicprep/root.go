package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd assembles the titanicprep command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "titanicprep",
		Short: "Data preparation for the passenger survival dataset",
		Long: `titanicprep prepares the passenger survival dataset in three stages:

  scrape   harvest the per-age passenger listings of encyclopedia-titanica.org
  impute   fill missing ages with the age of the closest name in the listings
  prepare  derive, fill and encode the model features

Settings are read from a .titanicprep file in the current or home directory
(see 'titanicprep init'); command line flags take precedence.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Log debug messages to stderr")
	pf.StringP("config", "c", "", "Configuration file (default: .titanicprep in current or home directory)")

	root.AddCommand(
		NewScrapeCmd(),
		NewImputeCmd(),
		NewPrepareCmd(),
		NewHistoryCmd(),
		NewInitCmd(),
		NewVersionCmd(),
	)
	return root
}

// Execute runs titanicprep and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "titanicprep: %v\n", err)
		os.Exit(1)
	}
}
