package versioner

// FallbackVersionCode is reported when the history cannot be classified:
// the repository is not ready or the history is shallow. It is positive so
// that it stays a valid build number on every platform.
const FallbackVersionCode = 1

// VersionCode combines the base branch commit count and the time component.
// With bump set, one is added when the feature branch has commits so that
// a feature build never collides with the base build it started from.
func VersionCode(baseCommitCount, timeComponent, featureCommitCount int, bump bool) int {
	code := baseCommitCount + timeComponent
	if bump && featureCommitCount > 0 {
		code++
	}
	return code
}
