package git

// Compile-time check that Unavailable implements Repository.
var _ Repository = Unavailable{}

// Unavailable is a Repository that is never ready. It stands in for a
// directory that could not be opened so that versioning degrades to its
// fallback values instead of failing.
type Unavailable struct{}

func (Unavailable) IsReady() bool { return false }

func (Unavailable) IsHistoryShallow() bool { return false }

func (Unavailable) CurrentSha1() (string, error) { return "", nil }

func (Unavailable) CurrentBranch() (string, error) { return "", nil }

func (Unavailable) LocalChanges() (LocalChanges, error) { return NoChanges, nil }

func (Unavailable) InitialCommitDate() (int64, error) { return 0, nil }

func (Unavailable) CommitsToHead() ([]string, error) { return nil, nil }

func (Unavailable) CommitsUpTo(string, ...string) ([]string, error) { return nil, nil }

func (Unavailable) CommitDate(string) (int64, error) { return 0, nil }
