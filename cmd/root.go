package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags shared across commands.
var (
	flagPath           string
	flagCommit         string
	flagConfig         string
	flagBaseBranch     string
	flagYearFactor     int
	flagOutput         string
	flagShowVariable   string
	flagShowConfig     bool
	flagExplain        bool
	flagVerbosity      string
	flagPropertiesFile string
)

// rootCmd is the top-level command for gitversioner.
var rootCmd = &cobra.Command{
	Use:   "gitversioner",
	Short: "Version code and version name from git history",
	Long: `gitversioner derives a version code and a version name from git history.

The version code counts the commits on the base branch reachable from HEAD
plus a time component. The version name adds the branch, the number of
feature branch commits and local changes, e.g. "1085-login+3-SNAPSHOT".`,
	// Default action is calculate.
	RunE:          calculateRunE,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	registerCommonFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().StringVar(&flagBackend, "backend", backendGoGit, "git backend: gogit or shell (runs the git binary)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
