package git

// Repository answers the questions the versioner asks about a working copy.
// This is the key abstraction point for testing and backend swapping.
//
// Commit lists are ordered newest first and end at the root commit. An
// empty string returned by CurrentSha1 or CurrentBranch means the value is
// not available (unborn HEAD, detached HEAD).
type Repository interface {
	// IsReady returns true if the directory is a queryable repository.
	IsReady() bool

	// IsHistoryShallow returns true if the history is truncated, e.g. a
	// shallow clone.
	IsHistoryShallow() bool

	// CurrentSha1 returns the full SHA of HEAD.
	CurrentSha1() (string, error)

	// CurrentBranch returns the short name of the branch HEAD points to.
	CurrentBranch() (string, error)

	// LocalChanges returns uncommitted changes relative to HEAD.
	LocalChanges() (LocalChanges, error)

	// InitialCommitDate returns the timestamp (seconds since epoch) of the
	// oldest commit reachable from HEAD.
	InitialCommitDate() (int64, error)

	// CommitsToHead returns all commit SHAs reachable from HEAD.
	CommitsToHead() ([]string, error)

	// CommitsUpTo returns all commit SHAs reachable from ref. Extra
	// rev-list style arguments narrow the walk (see ParseRevListArgs).
	// An unknown ref yields an empty list.
	CommitsUpTo(ref string, args ...string) ([]string, error)

	// CommitDate returns the timestamp (seconds since epoch) of a commit.
	CommitDate(sha string) (int64, error)
}
