package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	ghprovider "github.com/MyCarrier-DevOps/go-gitversioner/internal/github"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"

	"github.com/spf13/cobra"
)

var (
	flagToken            string
	flagAppID            int64
	flagAppKey           string
	flagAppKeyPath       string
	flagGitHubURL        string
	flagRef              string
	flagMaxCommits       int
	flagRemoteConfigPath string
)

var remoteCmd = &cobra.Command{
	Use:   "remote owner/repo",
	Short: "Calculate the version of a GitHub repository via API",
	Long: `Calculate the version code and version name by reading git history from
the GitHub API. No local clone is required. Histories longer than
--max-commits are treated as shallow.

Authentication (checked in order):
  1. --token flag or GITHUB_TOKEN env var
  2. --github-app-id + --github-app-key (PEM content) or GH_APP_ID + GH_APP_PRIVATE_KEY env vars
  3. --github-app-id + --github-app-key-path (PEM file) or GH_APP_ID + GH_APP_PRIVATE_KEY_PATH env vars

Examples:
  GITHUB_TOKEN=ghp_xxx gitversioner remote myorg/myrepo
  gitversioner remote myorg/myrepo --token ghp_xxx --ref feature/login --base-branch main
  gitversioner remote myorg/myrepo --github-app-id 12345 --github-app-key-path /path/to/key.pem`,
	Args: cobra.ExactArgs(1),
	RunE: remoteRunE,
}

func init() {
	remoteCmd.Flags().StringVar(&flagToken, "token", "", "GitHub token (or set GITHUB_TOKEN env var)")
	remoteCmd.Flags().Int64Var(&flagAppID, "github-app-id", 0, "GitHub App ID (or set GH_APP_ID env var)")
	remoteCmd.Flags().StringVar(&flagAppKey, "github-app-key", "", "GitHub App private key PEM content (or set GH_APP_PRIVATE_KEY env var)")
	remoteCmd.Flags().StringVar(&flagAppKeyPath, "github-app-key-path", "", "path to GitHub App private key PEM file (or set GH_APP_PRIVATE_KEY_PATH env var)")
	remoteCmd.Flags().StringVar(&flagGitHubURL, "github-url", "", "GitHub API base URL for GitHub Enterprise (or set GITHUB_API_URL env var)")
	remoteCmd.Flags().StringVar(&flagRef, "ref", "", "git ref to version: branch, tag, or SHA (default: repo default branch)")
	remoteCmd.Flags().IntVar(&flagMaxCommits, "max-commits", ghprovider.DefaultMaxCommits, "maximum commit depth to walk via API")
	remoteCmd.Flags().StringVar(&flagRemoteConfigPath, "remote-config-path", "", "path to config file in the remote repo (e.g. .github/gitversioner.yml)")

	rootCmd.AddCommand(remoteCmd)
}

func remoteRunE(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), flagVerbosity)
	if err != nil {
		return err
	}

	// 1. Parse owner/repo.
	owner, repo, err := parseOwnerRepo(args[0])
	if err != nil {
		return err
	}

	// 2. Resolve base URL from flag or env var so both client and repository use it.
	baseURL := ghprovider.ResolveBaseURL(flagGitHubURL)

	// 3. Create GitHub client.
	ctx := commandContext(cmd)
	client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
		Token:      flagToken,
		AppID:      flagAppID,
		AppKey:     flagAppKey,
		AppKeyPath: flagAppKeyPath,
		BaseURL:    baseURL,
		Owner:      owner,
	})
	if err != nil {
		return fmt.Errorf("creating GitHub client: %w", err)
	}

	// 4. Create the remote repository.
	ghRepo := ghprovider.NewRemoteRepository(client, owner, repo, remoteOptions(ctx, baseURL)...)

	// 5. Load configuration.
	cfg, err := loadRemoteConfig(ghRepo)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	ec := config.NewEffectiveConfiguration(cfg)

	// 6. Show config mode.
	if flagShowConfig {
		return showConfig(cmd.OutOrStdout(), ec)
	}

	// 7. Calculate and report.
	if !ghRepo.IsReady() {
		logger.Error("cannot resolve the remote ref", "repository", ghRepo.Path(), "ref", flagRef)
	}
	v := versioner.New(ghRepo, ec, versioner.WithLogger(logger))
	return report(cmd, v)
}

func remoteOptions(ctx context.Context, baseURL string) []ghprovider.Option {
	opts := []ghprovider.Option{
		ghprovider.WithContext(ctx),
		ghprovider.WithMaxCommits(flagMaxCommits),
	}
	if flagRef != "" {
		opts = append(opts, ghprovider.WithRef(flagRef))
	}
	if baseURL != "" {
		opts = append(opts, ghprovider.WithBaseURL(baseURL))
	}
	return opts
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseOwnerRepo(s string) (string, string, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("invalid repository format %q, expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}

// loadRemoteConfig uses the local --config file when given, otherwise the
// configuration stored in the remote repository.
func loadRemoteConfig(ghRepo *ghprovider.RemoteRepository) (*config.Config, error) {
	if flagConfig != "" {
		userCfg, err := config.LoadFromFile(flagConfig)
		if err != nil {
			return nil, err
		}
		return buildConfig(userCfg)
	}

	userCfg, err := ghprovider.LoadRemoteConfig(ghRepo, flagRemoteConfigPath)
	if err != nil {
		return nil, err
	}
	return buildConfig(userCfg)
}
