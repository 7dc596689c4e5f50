package cmd

import (
	"github.com/spf13/pflag"
)

// registerCommonFlags registers the flags shared by the local and remote
// commands.
func registerCommonFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagPath, "path", "p", ".", "path to the git repository")
	fs.StringVarP(&flagCommit, "commit", "c", "", "revision to version: branch, tag or SHA (default: HEAD)")
	fs.StringVar(&flagConfig, "config", "", "path to config file (default: auto-detect)")
	fs.StringVar(&flagBaseBranch, "base-branch", "", "base branch, overrides the config file")
	fs.IntVar(&flagYearFactor, "year-factor", 0, "version code increase per year of history, overrides the config file")
	fs.StringVarP(&flagOutput, "output", "o", "", "output format: json, properties, or empty for key=value")
	fs.StringVar(&flagShowVariable, "show-variable", "", "output a single variable (e.g. VersionCode, VersionName)")
	fs.BoolVar(&flagShowConfig, "show-config", false, "display the effective configuration and exit")
	fs.BoolVar(&flagExplain, "explain", false, "show how the version was calculated on stderr")
	fs.StringVarP(&flagVerbosity, "verbosity", "v", "info", "log verbosity: quiet, info, debug")
	fs.StringVar(&flagPropertiesFile, "properties-file", "", "also write the version as a properties file to this path")
}
