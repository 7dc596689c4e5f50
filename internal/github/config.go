package github

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
)

// LoadRemoteConfig reads the configuration file at path in the remote
// repository or, when path is empty, the first of config.FileNames that
// exists. It returns nil when no file exists. Errors other than 404 are
// returned so auth failures and rate limits are not mistaken for a missing
// file.
func LoadRemoteConfig(repo *RemoteRepository, path string) (*config.Config, error) {
	if path != "" {
		content, err := repo.FetchFileContent(path)
		if err != nil {
			return nil, fmt.Errorf("fetching remote config %s: %w", path, err)
		}
		cfg, err := config.LoadNamed(path, []byte(content))
		if err != nil {
			return nil, fmt.Errorf("parsing remote config %s: %w", path, err)
		}
		return cfg, nil
	}

	for _, name := range config.FileNames {
		content, err := repo.FetchFileContent(name)
		if IsNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching remote config %s: %w", name, err)
		}
		cfg, err := config.LoadNamed(name, []byte(content))
		if err != nil {
			return nil, fmt.Errorf("parsing remote config %s: %w", name, err)
		}
		return cfg, nil
	}
	return nil, nil
}
