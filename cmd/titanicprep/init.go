package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nao1215/titanicprep/internal/config"
	"github.com/spf13/cobra"
)

// configTemplate is the commented configuration written by init. Its active
// values match config.NewConfig.
//
//go:embed templates/titanicprep.yaml
var configTemplate []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented titanicprep configuration file",
		Long: `Init writes a .titanicprep file holding every setting at its default
value, with a comment for each one. Edit it to change the scraped age range,
the month age policy, the title aliases or the minor threshold.

Examples:
  titanicprep init
  titanicprep init -o configs/prep.yaml
  titanicprep init -f          # replace an existing file
  titanicprep init --stdout    # print the template only`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Where to write the configuration")
	cmd.Flags().BoolP("force", "f", false, "Replace the file if it already exists")
	cmd.Flags().Bool("stdout", false, "Print the template instead of writing a file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	toStdout, _ := cmd.Flags().GetBool("stdout")
	if toStdout {
		_, err := cmd.OutOrStdout().Write(configTemplate)
		return err
	}

	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(filepath.Clean(path), flags, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if _, err := f.Write(configTemplate); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// O_CREATE keeps the mode of a file that is being overwritten.
	if err := os.Chmod(path, 0600); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
