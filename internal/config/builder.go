package config

import (
	"fmt"
	"strings"
)

// Builder constructs a Config by layering overrides on top of defaults.
type Builder struct {
	overrides []*Config
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a configuration override. Overrides are applied in order:
// later overrides take precedence over earlier ones.
func (b *Builder) Add(override *Config) *Builder {
	if override != nil {
		b.overrides = append(b.overrides, override)
	}
	return b
}

// WithBaseBranch overrides the base branch when name is not empty.
func (b *Builder) WithBaseBranch(name string) *Builder {
	if name == "" {
		return b
	}
	return b.Add(&Config{BaseBranch: stringPtr(name)})
}

// WithYearFactor overrides the year factor when factor is not zero.
func (b *Builder) WithYearFactor(factor int) *Builder {
	if factor == 0 {
		return b
	}
	return b.Add(&Config{YearFactor: intPtr(factor)})
}

// Build constructs the final configuration by starting with defaults,
// applying all overrides, and validating.
func (b *Builder) Build() (*Config, error) {
	cfg := CreateDefaultConfiguration()

	for _, override := range b.overrides {
		mergeConfig(cfg, override)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig applies non-nil fields from src to dst.
func mergeConfig(dst, src *Config) {
	if src.BaseBranch != nil {
		dst.BaseBranch = src.BaseBranch
	}
	if src.YearFactor != nil {
		dst.YearFactor = src.YearFactor
	}
	if src.Profile != nil {
		dst.Profile = src.Profile
	}
	if src.AddSnapshot != nil {
		dst.AddSnapshot = src.AddSnapshot
	}
	if src.AddLocalChangesDetails != nil {
		dst.AddLocalChangesDetails = src.AddLocalChangesDetails
	}
	if src.AddTimestamp != nil {
		dst.AddTimestamp = src.AddTimestamp
	}
	if src.SnapshotOnFeatureCommits != nil {
		dst.SnapshotOnFeatureCommits = src.SnapshotOnFeatureCommits
	}
	if src.FeatureCountSeparator != nil {
		dst.FeatureCountSeparator = src.FeatureCountSeparator
	}
	if src.SemVerSafe != nil {
		dst.SemVerSafe = src.SemVerSafe
	}
	if src.BumpOnFeatureCommits != nil {
		dst.BumpOnFeatureCommits = src.BumpOnFeatureCommits
	}
	if src.CIBranchEnv != nil {
		dst.CIBranchEnv = src.CIBranchEnv
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.BaseBranch != nil && strings.TrimSpace(*cfg.BaseBranch) == "" {
		return fmt.Errorf("base-branch must not be empty")
	}
	if cfg.BaseBranch != nil && strings.HasPrefix(*cfg.BaseBranch, "-") {
		return fmt.Errorf("base-branch must not start with '-', got %q", *cfg.BaseBranch)
	}
	if cfg.YearFactor != nil && *cfg.YearFactor <= 0 {
		return fmt.Errorf("year-factor must be positive, got %d", *cfg.YearFactor)
	}
	for _, name := range cfg.CIBranchEnv {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("ci-branch-env contains an empty variable name")
		}
	}
	return nil
}
