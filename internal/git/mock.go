package git

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable mock implementation of Repository for testing.
// Each method is backed by a function field. If the function field is nil,
// the method returns sensible zero values. IsReady defaults to true.
type MockRepository struct {
	IsReadyFunc           func() bool
	IsHistoryShallowFunc  func() bool
	CurrentSha1Func       func() (string, error)
	CurrentBranchFunc     func() (string, error)
	LocalChangesFunc      func() (LocalChanges, error)
	InitialCommitDateFunc func() (int64, error)
	CommitsToHeadFunc     func() ([]string, error)
	CommitsUpToFunc       func(string, ...string) ([]string, error)
	CommitDateFunc        func(string) (int64, error)
}

func (m *MockRepository) IsReady() bool {
	if m.IsReadyFunc != nil {
		return m.IsReadyFunc()
	}
	return true
}

func (m *MockRepository) IsHistoryShallow() bool {
	if m.IsHistoryShallowFunc != nil {
		return m.IsHistoryShallowFunc()
	}
	return false
}

func (m *MockRepository) CurrentSha1() (string, error) {
	if m.CurrentSha1Func != nil {
		return m.CurrentSha1Func()
	}
	return "", nil
}

func (m *MockRepository) CurrentBranch() (string, error) {
	if m.CurrentBranchFunc != nil {
		return m.CurrentBranchFunc()
	}
	return "", nil
}

func (m *MockRepository) LocalChanges() (LocalChanges, error) {
	if m.LocalChangesFunc != nil {
		return m.LocalChangesFunc()
	}
	return NoChanges, nil
}

func (m *MockRepository) InitialCommitDate() (int64, error) {
	if m.InitialCommitDateFunc != nil {
		return m.InitialCommitDateFunc()
	}
	return 0, nil
}

func (m *MockRepository) CommitsToHead() ([]string, error) {
	if m.CommitsToHeadFunc != nil {
		return m.CommitsToHeadFunc()
	}
	return nil, nil
}

func (m *MockRepository) CommitsUpTo(ref string, args ...string) ([]string, error) {
	if m.CommitsUpToFunc != nil {
		return m.CommitsUpToFunc(ref, args...)
	}
	return nil, nil
}

func (m *MockRepository) CommitDate(sha string) (int64, error) {
	if m.CommitDateFunc != nil {
		return m.CommitDateFunc(sha)
	}
	return 0, nil
}
