package config

const (
	// DefaultBaseBranch is the branch whose history counts towards the
	// version code.
	DefaultBaseBranch = "master"

	// DefaultYearFactor is the number added to the version code per year of
	// base branch history.
	DefaultYearFactor = 1000
)

// DefaultCIBranchEnv lists the environment variables consulted, in order,
// for the branch name when HEAD is detached on a CI server.
var DefaultCIBranchEnv = []string{"BRANCH", "BRANCH_NAME", "GITREF"}

// CreateDefaultConfiguration returns a Config with the global defaults
// populated. Formatting options are left unset so that the profile decides
// them when the configuration is resolved.
func CreateDefaultConfiguration() *Config {
	return &Config{
		BaseBranch:  stringPtr(DefaultBaseBranch),
		YearFactor:  intPtr(DefaultYearFactor),
		Profile:     profilePtr(ProfileClassic),
		CIBranchEnv: append([]string(nil), DefaultCIBranchEnv...),
	}
}
