package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"

	"github.com/spf13/cobra"
)

const (
	backendGoGit = "gogit"
	backendShell = "shell"
)

var flagBackend string

func calculateRunE(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), flagVerbosity)
	if err != nil {
		return err
	}

	// 1. Open repository. A directory that is not a repository still
	// produces the fallback version.
	repo, workDir, err := openRepository(logger)
	if err != nil {
		return err
	}

	// 2. Load configuration.
	cfg, err := loadConfig(workDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	ec := config.NewEffectiveConfiguration(cfg)

	// 3. Show config mode: print and exit.
	if flagShowConfig {
		return showConfig(cmd.OutOrStdout(), ec)
	}

	// 4. Calculate and report.
	v := versioner.New(repo, ec, versioner.WithLogger(logger))
	return report(cmd, v)
}

// openRepository opens the repository at flagPath with the selected
// backend and returns the directory to search for configuration.
func openRepository(logger *slog.Logger) (git.Repository, string, error) {
	switch flagBackend {
	case backendGoGit, "":
		var opts []git.Option
		if flagCommit != "" {
			opts = append(opts, git.WithRevision(flagCommit))
		}
		repo, err := git.Open(flagPath, opts...)
		if err != nil {
			logger.Error("cannot compute a git version, this is not a git repository", "path", flagPath, "error", err)
			return git.Unavailable{}, flagPath, nil
		}
		return repo, repo.WorkingDirectory(), nil
	case backendShell:
		opts := []git.ShellOption{git.WithShellLogger(logger)}
		if flagCommit != "" {
			opts = append(opts, git.WithShellRevision(flagCommit))
		}
		return git.NewShellRepository(flagPath, opts...), flagPath, nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q, expected %s or %s", flagBackend, backendGoGit, backendShell)
	}
}

// loadConfig loads configuration from a file or defaults and applies the
// command line overrides.
func loadConfig(workDir string) (*config.Config, error) {
	userCfg, err := config.LoadForDir(workDir, flagConfig)
	if err != nil {
		return nil, err
	}
	return buildConfig(userCfg)
}

func buildConfig(userCfg *config.Config) (*config.Config, error) {
	return config.NewBuilder().
		Add(userCfg).
		WithBaseBranch(flagBaseBranch).
		WithYearFactor(flagYearFactor).
		Build()
}

// showConfig prints the effective configuration as JSON.
func showConfig(w io.Writer, ec config.EffectiveConfiguration) error {
	data, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// report writes the explanation, the properties file and the version
// variables as requested by the flags.
func report(cmd *cobra.Command, v *versioner.Versioner) error {
	if flagExplain {
		if err := output.WriteExplanation(cmd.ErrOrStderr(), v); err != nil {
			return err
		}
	}

	if flagPropertiesFile != "" {
		if err := output.WritePropertiesFile(flagPropertiesFile, v); err != nil {
			return fmt.Errorf("writing properties file: %w", err)
		}
	}

	return writeOutput(cmd.OutOrStdout(), output.GetVariables(v))
}

// writeOutput writes the version variables in the requested format.
func writeOutput(w io.Writer, vars map[string]string) error {
	if flagShowVariable != "" {
		return output.WriteVariable(w, vars, flagShowVariable)
	}

	switch flagOutput {
	case "json":
		return output.WriteJSON(w, vars)
	case "properties":
		return output.WriteProperties(w, vars)
	case "":
		return output.WriteAll(w, vars)
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}
