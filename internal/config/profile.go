package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatProfile selects a preset of version name formatting options.
type FormatProfile int

const (
	// ProfileClassic renders names like "42-feature+3-SNAPSHOT(1 +2 -0)".
	ProfileClassic FormatProfile = iota
	// ProfileSemVer renders semver-safe names like "42-feature-3-SNAPSHOT-1735732800".
	ProfileSemVer
)

func (p FormatProfile) String() string {
	switch p {
	case ProfileClassic:
		return "classic"
	case ProfileSemVer:
		return "semver"
	default:
		return "unknown"
	}
}

// ParseFormatProfile parses a profile name (case-insensitive).
func ParseFormatProfile(s string) (FormatProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "":
		return ProfileClassic, nil
	case "semver":
		return ProfileSemVer, nil
	default:
		return 0, fmt.Errorf("unknown format profile %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p FormatProfile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for FormatProfile.
func (p *FormatProfile) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseFormatProfile(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// profileOptions are the formatting defaults a profile contributes.
type profileOptions struct {
	addSnapshot              bool
	addLocalChangesDetails   bool
	addTimestamp             bool
	snapshotOnFeatureCommits bool
	featureCountSeparator    string
	semVerSafe               bool
	bumpOnFeatureCommits     bool
}

func (p FormatProfile) options() profileOptions {
	if p == ProfileSemVer {
		return profileOptions{
			addSnapshot:              true,
			addTimestamp:             true,
			snapshotOnFeatureCommits: true,
			featureCountSeparator:    "-",
			semVerSafe:               true,
			bumpOnFeatureCommits:     true,
		}
	}
	return profileOptions{
		addSnapshot:            true,
		addLocalChangesDetails: true,
		featureCountSeparator:  "+",
	}
}
