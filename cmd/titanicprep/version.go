package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

const unknownBuild = "unknown"

// getVersion prefers the ldflags value, then the module version, then
// "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// vcsSetting reads a vcs.* build setting. It returns unknownBuild when the
// binary was built without VCS stamping.
func vcsSetting(key string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == key && s.Value != "" {
				return s.Value
			}
		}
	}
	return unknownBuild
}

func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := vcsSetting("vcs.revision")
	if rev != unknownBuild && len(rev) > 7 {
		rev = rev[:7]
	}
	return rev
}

func getDate() string {
	if date != "" {
		return date
	}
	return vcsSetting("vcs.time")
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(),
				"titanicprep version %s\n  commit: %s\n  built:  %s\n",
				getVersion(), getCommit(), getDate())
			return err
		},
	}
}
