package versioner

// Classification partitions the commits reachable from HEAD.
type Classification struct {
	// Base holds the base branch commits that are also in HEAD's history,
	// newest first.
	Base []string

	// Feature holds HEAD's commits that are not base branch commits,
	// newest first.
	Feature []string
}

// Classify splits headCommits into base branch and feature branch commits.
// Base is baseCommits filtered to the ids reachable from HEAD, keeping
// base order. A base branch sharing no commit with HEAD yields an empty
// Base and every head commit is a feature commit.
func Classify(headCommits, baseCommits []string) Classification {
	inHead := make(map[string]struct{}, len(headCommits))
	for _, sha := range headCommits {
		inHead[sha] = struct{}{}
	}

	var c Classification
	inBase := make(map[string]struct{}, len(baseCommits))
	for _, sha := range baseCommits {
		if _, ok := inHead[sha]; ok {
			c.Base = append(c.Base, sha)
			inBase[sha] = struct{}{}
		}
	}

	for _, sha := range headCommits {
		if _, ok := inBase[sha]; !ok {
			c.Feature = append(c.Feature, sha)
		}
	}

	return c
}

// Origin returns the newest base branch commit in HEAD's history: the
// commit the feature branch was created from or last synced with.
func (c Classification) Origin() (string, bool) {
	if len(c.Base) == 0 {
		return "", false
	}
	return c.Base[0], true
}
