// Package config provides YAML/JSONC configuration loading, defaults,
// config merging, and effective configuration resolution for gitversioner.
package config

// Config is the root configuration for gitversioner. All optional fields are
// pointers to support merge semantics during configuration building.
type Config struct {
	BaseBranch               *string        `yaml:"base-branch" json:"base-branch,omitempty"`
	YearFactor               *int           `yaml:"year-factor" json:"year-factor,omitempty"`
	Profile                  *FormatProfile `yaml:"profile" json:"profile,omitempty"`
	AddSnapshot              *bool          `yaml:"add-snapshot" json:"add-snapshot,omitempty"`
	AddLocalChangesDetails   *bool          `yaml:"add-local-changes-details" json:"add-local-changes-details,omitempty"`
	AddTimestamp             *bool          `yaml:"add-timestamp" json:"add-timestamp,omitempty"`
	SnapshotOnFeatureCommits *bool          `yaml:"snapshot-on-feature-commits" json:"snapshot-on-feature-commits,omitempty"`
	FeatureCountSeparator    *string        `yaml:"feature-count-separator" json:"feature-count-separator,omitempty"`
	SemVerSafe               *bool          `yaml:"semver-safe" json:"semver-safe,omitempty"`
	BumpOnFeatureCommits     *bool          `yaml:"bump-on-feature-commits" json:"bump-on-feature-commits,omitempty"`
	CIBranchEnv              []string       `yaml:"ci-branch-env" json:"ci-branch-env,omitempty"`
}
