package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileNames lists the files searched for configuration in order.
// Checks .github/ first, then the repository root.
var FileNames = []string{
	".github/gitversioner.yml",
	"gitversioner.yml",
	"gitversioner.yaml",
	"gitversioner.jsonc",
}

// Find returns the first configuration file found in dir, or "".
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadFromFile reads and parses a gitversioner configuration file. Files
// ending in .json or .jsonc may contain comments and trailing commas.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadNamed(path, data)
}

// LoadNamed parses configuration read from the file name, choosing the
// syntax by its extension.
func LoadNamed(name string, data []byte) (*Config, error) {
	if isJSONC(name) {
		return LoadJSONC(data)
	}
	return LoadFromBytes(data)
}

// LoadForDir loads the configuration file at path, or when path is empty
// the first of FileNames found in dir. It returns nil when there is none.
func LoadForDir(dir, path string) (*Config, error) {
	if path == "" {
		path = Find(dir)
	}
	if path == "" {
		return nil, nil
	}
	return LoadFromFile(path)
}

// LoadFromBytes parses gitversioner configuration from raw YAML bytes.
// JSON is accepted as a subset of YAML.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadJSONC parses configuration written as JSON with comments.
func LoadJSONC(data []byte) (*Config, error) {
	return LoadFromBytes(jsonc.ToJSON(data))
}

func isJSONC(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}
