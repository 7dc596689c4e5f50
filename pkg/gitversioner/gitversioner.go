// Package gitversioner provides a public Go API for calculating version codes
// and version names from git history. It supports both local repositories
// (via go-git or the git binary) and remote GitHub repositories (via the
// GitHub API).
//
// Basic usage:
//
//	result, err := gitversioner.Calculate(gitversioner.LocalOptions{
//	    Path: "/path/to/repo",
//	})
//	fmt.Println(result.VersionCode) // 1234
//	fmt.Println(result.VersionName) // "1234-login+2"
//
//	result, err := gitversioner.CalculateRemote(gitversioner.RemoteOptions{
//	    Owner: "myorg",
//	    Repo:  "myrepo",
//	    Token: os.Getenv("GITHUB_TOKEN"),
//	})
//	fmt.Println(result.Variables["VersionName"])
package gitversioner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"

	ghprovider "github.com/MyCarrier-DevOps/go-gitversioner/internal/github"
)

// Backends accepted by LocalOptions.Backend.
const (
	BackendGoGit = "gogit"
	BackendShell = "shell"
)

// State is the computed version state handed to formatters.
type State = versioner.State

// Formatter renders a version name from State.
type Formatter = versioner.FormatterFunc

// ShortNameFormatter renders the branch identifier of a version name.
type ShortNameFormatter = versioner.ShortNameFormatterFunc

// LocalOptions configures version calculation from a local git repository.
type LocalOptions struct {
	// Path to the git repository. Defaults to "." if empty.
	Path string

	// Commit versions a revision other than HEAD. Empty means HEAD.
	Commit string

	// ConfigPath is the path to a gitversioner YAML or JSONC config file.
	// If empty, the repository root is searched for one.
	ConfigPath string

	// Backend selects how git is read: BackendGoGit (default) or BackendShell.
	Backend string

	// BaseBranch and YearFactor override the configuration when set.
	BaseBranch string
	YearFactor int

	// Formatter and ShortNameFormatter replace the default name rendering.
	// A formatter that fails or panics falls back to the default.
	Formatter          Formatter
	ShortNameFormatter ShortNameFormatter

	// Explain populates Result.Explanation.
	Explain bool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// RemoteOptions configures version calculation via the GitHub API.
type RemoteOptions struct {
	// Owner is the GitHub repository owner (required).
	Owner string

	// Repo is the GitHub repository name (required).
	Repo string

	// Token is a GitHub personal access token or GITHUB_TOKEN.
	Token string

	// AppID is the GitHub App ID for app authentication.
	AppID int64

	// AppKey is the GitHub App private key PEM content. It wins over AppKeyPath.
	AppKey string

	// AppKeyPath is the path to a GitHub App private key PEM file.
	AppKeyPath string

	// BaseURL is a custom GitHub API base URL for GitHub Enterprise.
	BaseURL string

	// Ref is the git ref to version: branch, tag, or SHA. Defaults to the
	// repository's default branch.
	Ref string

	// MaxCommits caps the commits walked per history. Longer histories are
	// reported as shallow. Defaults to 1000.
	MaxCommits int

	// ConfigPath is a local config file. It wins over the remote one.
	ConfigPath string

	// RemoteConfigPath is the config file path inside the remote
	// repository. If empty, the repository root is searched for one.
	RemoteConfigPath string

	BaseBranch         string
	YearFactor         int
	Formatter          Formatter
	ShortNameFormatter ShortNameFormatter
	Explain            bool
	Logger             *slog.Logger

	// Context bounds the GitHub API calls. Defaults to context.Background().
	Context context.Context
}

// Result holds the calculated version.
type Result struct {
	VersionCode int
	VersionName string

	// Variables holds every output variable keyed by name, as printed by
	// the CLI. Unset variables are absent.
	Variables map[string]string

	// Explanation is the human readable report (same as CLI --explain).
	// Only set when explain mode is requested.
	Explanation string
}

// Calculate computes the version of a local git repository.
func Calculate(opts LocalOptions) (*Result, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}

	// 1. Open repository.
	repo, workDir, err := openLocal(path, opts)
	if err != nil {
		return nil, err
	}

	// 2. Load configuration.
	userCfg, err := config.LoadForDir(workDir, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// 3. Run the shared calculation pipeline.
	return calculate(repo, userCfg, settings{
		baseBranch: opts.BaseBranch,
		yearFactor: opts.YearFactor,
		formatter:  opts.Formatter,
		shortName:  opts.ShortNameFormatter,
		explain:    opts.Explain,
		logger:     opts.Logger,
	})
}

func openLocal(path string, opts LocalOptions) (git.Repository, string, error) {
	switch opts.Backend {
	case BackendGoGit, "":
		var gitOpts []git.Option
		if opts.Commit != "" {
			gitOpts = append(gitOpts, git.WithRevision(opts.Commit))
		}
		repo, err := git.Open(path, gitOpts...)
		if err != nil {
			return nil, "", fmt.Errorf("opening repository: %w", err)
		}
		return repo, repo.WorkingDirectory(), nil
	case BackendShell:
		shellOpts := []git.ShellOption{}
		if opts.Logger != nil {
			shellOpts = append(shellOpts, git.WithShellLogger(opts.Logger))
		}
		if opts.Commit != "" {
			shellOpts = append(shellOpts, git.WithShellRevision(opts.Commit))
		}
		return git.NewShellRepository(path, shellOpts...), path, nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q, expected %s or %s", opts.Backend, BackendGoGit, BackendShell)
	}
}

// CalculateRemote computes the version of a GitHub repository via the API.
func CalculateRemote(opts RemoteOptions) (*Result, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("owner and repo are required")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	baseURL := ghprovider.ResolveBaseURL(opts.BaseURL)

	// 1. Create GitHub client.
	client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
		Token:      opts.Token,
		AppID:      opts.AppID,
		AppKey:     opts.AppKey,
		AppKeyPath: opts.AppKeyPath,
		BaseURL:    baseURL,
		Owner:      opts.Owner,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client: %w", err)
	}

	// 2. Create the remote repository.
	ghOpts := []ghprovider.Option{
		ghprovider.WithContext(ctx),
		ghprovider.WithMaxCommits(opts.MaxCommits),
	}
	if opts.Ref != "" {
		ghOpts = append(ghOpts, ghprovider.WithRef(opts.Ref))
	}
	if baseURL != "" {
		ghOpts = append(ghOpts, ghprovider.WithBaseURL(baseURL))
	}
	ghRepo := ghprovider.NewRemoteRepository(client, opts.Owner, opts.Repo, ghOpts...)

	// 3. Load configuration.
	var userCfg *config.Config
	if opts.ConfigPath != "" {
		userCfg, err = config.LoadFromFile(opts.ConfigPath)
	} else {
		userCfg, err = ghprovider.LoadRemoteConfig(ghRepo, opts.RemoteConfigPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// 4. Run the shared calculation pipeline.
	return calculate(ghRepo, userCfg, settings{
		baseBranch: opts.BaseBranch,
		yearFactor: opts.YearFactor,
		formatter:  opts.Formatter,
		shortName:  opts.ShortNameFormatter,
		explain:    opts.Explain,
		logger:     opts.Logger,
	})
}

type settings struct {
	baseBranch string
	yearFactor int
	formatter  Formatter
	shortName  ShortNameFormatter
	explain    bool
	logger     *slog.Logger
}

// calculate runs the shared version calculation pipeline.
func calculate(repo git.Repository, userCfg *config.Config, s settings) (*Result, error) {
	cfg, err := config.NewBuilder().
		Add(userCfg).
		WithBaseBranch(s.baseBranch).
		WithYearFactor(s.yearFactor).
		Build()
	if err != nil {
		return nil, fmt.Errorf("building configuration: %w", err)
	}

	var opts []versioner.Option
	if s.formatter != nil {
		opts = append(opts, versioner.WithFormatter(s.formatter))
	}
	if s.shortName != nil {
		opts = append(opts, versioner.WithShortNameFormatter(s.shortName))
	}
	if s.logger != nil {
		opts = append(opts, versioner.WithLogger(s.logger))
	}
	v := versioner.New(repo, config.NewEffectiveConfiguration(cfg), opts...)

	r := &Result{
		VersionCode: v.VersionCode(),
		VersionName: v.VersionName(),
		Variables:   output.GetVariables(v),
	}

	if s.explain {
		var buf bytes.Buffer
		if err := output.WriteExplanation(&buf, v); err != nil {
			return nil, err
		}
		r.Explanation = buf.String()
	}

	return r, nil
}
