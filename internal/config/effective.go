package config

// EffectiveConfiguration is a fully resolved configuration with all fields
// guaranteed to have values. Profile defaults fill every formatting option
// the Config leaves unset.
type EffectiveConfiguration struct {
	BaseBranch string        `json:"baseBranch"`
	YearFactor int           `json:"yearFactor"`
	Profile    FormatProfile `json:"profile"`

	AddSnapshot              bool   `json:"addSnapshot"`
	AddLocalChangesDetails   bool   `json:"addLocalChangesDetails"`
	AddTimestamp             bool   `json:"addTimestamp"`
	SnapshotOnFeatureCommits bool   `json:"snapshotOnFeatureCommits"`
	FeatureCountSeparator    string `json:"featureCountSeparator"`
	SemVerSafe               bool   `json:"semVerSafe"`
	BumpOnFeatureCommits     bool   `json:"bumpOnFeatureCommits"`

	CIBranchEnv []string `json:"ciBranchEnv"`
}

// NewEffectiveConfiguration creates an EffectiveConfiguration by resolving
// all pointer fields from the given Config to concrete values.
func NewEffectiveConfiguration(cfg *Config) EffectiveConfiguration {
	if cfg == nil {
		cfg = &Config{}
	}

	profile := derefProfile(cfg.Profile, ProfileClassic)
	p := profile.options()

	ec := EffectiveConfiguration{
		BaseBranch: derefString(cfg.BaseBranch, DefaultBaseBranch),
		YearFactor: derefInt(cfg.YearFactor, DefaultYearFactor),
		Profile:    profile,

		AddSnapshot:              derefBool(cfg.AddSnapshot, p.addSnapshot),
		AddLocalChangesDetails:   derefBool(cfg.AddLocalChangesDetails, p.addLocalChangesDetails),
		AddTimestamp:             derefBool(cfg.AddTimestamp, p.addTimestamp),
		SnapshotOnFeatureCommits: derefBool(cfg.SnapshotOnFeatureCommits, p.snapshotOnFeatureCommits),
		FeatureCountSeparator:    derefString(cfg.FeatureCountSeparator, p.featureCountSeparator),
		SemVerSafe:               derefBool(cfg.SemVerSafe, p.semVerSafe),
		BumpOnFeatureCommits:     derefBool(cfg.BumpOnFeatureCommits, p.bumpOnFeatureCommits),

		CIBranchEnv: cfg.CIBranchEnv,
	}
	if ec.CIBranchEnv == nil {
		ec.CIBranchEnv = DefaultCIBranchEnv
	}

	return ec
}

// DefaultEffectiveConfiguration resolves the built-in defaults.
func DefaultEffectiveConfiguration() EffectiveConfiguration {
	return NewEffectiveConfiguration(CreateDefaultConfiguration())
}

func derefString(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func derefBool(p *bool, fallback bool) bool {
	if p != nil {
		return *p
	}
	return fallback
}

func derefInt(p *int, fallback int) int {
	if p != nil {
		return *p
	}
	return fallback
}

func derefProfile(p *FormatProfile, fallback FormatProfile) FormatProfile {
	if p != nil {
		return *p
	}
	return fallback
}
