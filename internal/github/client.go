package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Environment variables consulted when a ClientConfig field is empty.
const (
	EnvToken      = "GITHUB_TOKEN"
	EnvAppID      = "GH_APP_ID"
	EnvAppKey     = "GH_APP_PRIVATE_KEY"
	EnvAppKeyPath = "GH_APP_PRIVATE_KEY_PATH"
	EnvAPIURL     = "GITHUB_API_URL"
)

// ClientConfig holds the configuration for creating a GitHub API client.
// Empty fields fall back to the matching environment variable.
type ClientConfig struct {
	Token      string // personal access token or GITHUB_TOKEN
	AppID      int64  // GitHub App ID
	AppKey     string // GitHub App private key PEM content
	AppKeyPath string // path to the GitHub App private key PEM file
	BaseURL    string // API base URL for GitHub Enterprise

	// Owner is the repository owner, used to find the app installation.
	Owner string
}

// NewClient creates an authenticated GitHub API client. A token wins over
// app credentials, and PEM content wins over a key file.
func NewClient(ctx context.Context, cfg ClientConfig) (*gh.Client, error) {
	baseURL := resolveString(cfg.BaseURL, EnvAPIURL)

	if token := resolveString(cfg.Token, EnvToken); token != "" {
		return newTokenClient(ctx, token, baseURL)
	}

	appID := cfg.AppID
	if appID == 0 {
		if s := os.Getenv(EnvAppID); s != "" {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				appID = v
			}
		}
	}
	if appID != 0 {
		key, err := resolveAppKey(cfg)
		if err != nil {
			return nil, err
		}
		if len(key) > 0 {
			return newAppClient(ctx, appID, key, cfg.Owner, baseURL)
		}
	}

	return nil, errors.New("no GitHub authentication provided: set GITHUB_TOKEN, use --token, or provide --github-app-id with --github-app-key or --github-app-key-path")
}

func newTokenClient(ctx context.Context, token, baseURL string) (*gh.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))
	return withBaseURL(client, baseURL)
}

// resolveAppKey returns the app private key from the config or the
// environment. Empty means no key was provided.
func resolveAppKey(cfg ClientConfig) ([]byte, error) {
	if key := resolveString(cfg.AppKey, EnvAppKey); key != "" {
		return []byte(key), nil
	}
	path := resolveString(cfg.AppKeyPath, EnvAppKeyPath)
	if path == "" {
		return nil, nil
	}
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GitHub App private key: %w", err)
	}
	return key, nil
}

func newAppClient(ctx context.Context, appID int64, key []byte, owner, baseURL string) (*gh.Client, error) {
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, key)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if baseURL != "" {
		appTransport.BaseURL = baseURL
	}

	appClient, err := withBaseURL(gh.NewClient(&http.Client{Transport: appTransport}), baseURL)
	if err != nil {
		return nil, err
	}

	installationID, err := findInstallation(ctx, appClient, owner)
	if err != nil {
		return nil, err
	}

	installTransport, err := ghinstallation.New(http.DefaultTransport, appID, installationID, key)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if baseURL != "" {
		installTransport.BaseURL = baseURL
	}

	return withBaseURL(gh.NewClient(&http.Client{Transport: installTransport}), baseURL)
}

func withBaseURL(client *gh.Client, baseURL string) (*gh.Client, error) {
	if baseURL == "" {
		return client, nil
	}
	c, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("setting enterprise URL: %w", err)
	}
	return c, nil
}

// findInstallation finds the GitHub App installation for the given owner.
func findInstallation(ctx context.Context, client *gh.Client, owner string) (int64, error) {
	opts := &gh.ListOptions{PerPage: 100}

	for {
		installations, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("listing GitHub App installations: %w", err)
		}

		for _, inst := range installations {
			if inst.GetAccount().GetLogin() == owner {
				return inst.GetID(), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, fmt.Errorf("no GitHub App installation found for owner %q", owner)
}

// IsNotFoundError reports whether err is an HTTP 404 from the GitHub API.
func IsNotFoundError(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// resolveString returns the flag value if non-empty, otherwise the env var value.
func resolveString(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}

// ResolveBaseURL resolves the GitHub API base URL from the flag value or
// GITHUB_API_URL. Empty means github.com.
func ResolveBaseURL(flagValue string) string {
	return resolveString(flagValue, EnvAPIURL)
}
