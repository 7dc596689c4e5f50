// Package versioner derives a version code and a version name from the
// commit history of a repository.
//
// The version code is the number of base branch commits in HEAD's history
// plus a time component that grows by the year factor per year of base
// branch history. The version name adds the branch, the number of feature
// branch commits and local changes.
//
// Every value degrades to a fallback instead of failing: a repository that
// is not ready yields code 1 and name "undefined", a shallow clone yields
// code 1 and a name starting with "shallowed".
package versioner

import (
	"log/slog"
	"sync"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
)

// Versioner computes version values for one repository. Values are
// computed on first access and cached.
type Versioner struct {
	repo           git.Repository
	ec             config.EffectiveConfiguration
	formatter      Formatter
	shortName      ShortNameFormatter
	branchProvider BranchNameProvider
	logger         *slog.Logger
	clock          func() time.Time

	ready          func() bool
	shallow        func() bool
	headCommits    func() []string
	classification func() Classification
	currentSha1    func() string
	localChanges   func() git.LocalChanges
	timeComponent  func() int
	versionCode    func() int
	versionName    func() string
}

// Option configures a Versioner.
type Option func(*Versioner)

// WithFormatter replaces the version name formatter.
func WithFormatter(f Formatter) Option {
	return func(v *Versioner) { v.formatter = f }
}

// WithShortNameFormatter replaces the short name formatter.
func WithShortNameFormatter(f ShortNameFormatter) Option {
	return func(v *Versioner) { v.shortName = f }
}

// WithBranchNameProvider replaces the CI branch name lookup.
func WithBranchNameProvider(p BranchNameProvider) Option {
	return func(v *Versioner) { v.branchProvider = p }
}

// WithLogger sets the logger. Nil discards log output.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Versioner) { v.logger = logger }
}

// WithClock sets the clock used for timestamps in version names.
func WithClock(now func() time.Time) Option {
	return func(v *Versioner) { v.clock = now }
}

// New creates a Versioner for repo. The configuration is fixed for the
// lifetime of the Versioner.
func New(repo git.Repository, ec config.EffectiveConfiguration, opts ...Option) *Versioner {
	v := &Versioner{
		repo:      repo,
		ec:        ec,
		formatter: DefaultFormatter,
		shortName: DefaultShortNameFormatter,
		logger:    discardLogger,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.branchProvider == nil {
		v.branchProvider = EnvBranchNameProvider(ec.CIBranchEnv...)
	}
	if v.formatter == nil {
		v.formatter = DefaultFormatter
	}
	if v.shortName == nil {
		v.shortName = DefaultShortNameFormatter
	}
	if v.logger == nil {
		v.logger = discardLogger
	}

	v.ready = sync.OnceValue(repo.IsReady)
	v.shallow = sync.OnceValue(func() bool {
		if !v.ready() {
			return false
		}
		// Backends with capped walks learn about base branch truncation
		// while classifying.
		v.classification()
		return repo.IsHistoryShallow()
	})
	v.headCommits = sync.OnceValue(v.computeHeadCommits)
	v.classification = sync.OnceValue(v.computeClassification)
	v.currentSha1 = sync.OnceValue(v.computeCurrentSha1)
	v.localChanges = sync.OnceValue(v.computeLocalChanges)
	v.timeComponent = sync.OnceValue(v.computeTimeComponent)
	v.versionCode = sync.OnceValue(v.computeVersionCode)
	v.versionName = sync.OnceValue(v.computeVersionName)
	return v
}

// BaseBranch returns the configured base branch.
func (v *Versioner) BaseBranch() string { return v.ec.BaseBranch }

// YearFactor returns the configured year factor.
func (v *Versioner) YearFactor() int { return v.ec.YearFactor }

// Configuration returns the effective configuration.
func (v *Versioner) Configuration() config.EffectiveConfiguration { return v.ec }

// IsRepositoryReady reports whether the repository can be queried.
func (v *Versioner) IsRepositoryReady() bool { return v.ready() }

// IsHistoryShallow reports whether the history is truncated.
func (v *Versioner) IsHistoryShallow() bool { return v.shallow() }

// VersionCode returns the base branch commit count plus the time
// component, or FallbackVersionCode.
func (v *Versioner) VersionCode() int { return v.versionCode() }

// VersionName returns the formatted version name.
func (v *Versioner) VersionName() string { return v.versionName() }

// TimeComponent returns the year factor based time component.
func (v *Versioner) TimeComponent() int { return v.timeComponent() }

// LocalChanges returns the uncommitted changes of the working tree.
func (v *Versioner) LocalChanges() git.LocalChanges { return v.localChanges() }

// BaseBranchCommitCount returns the number of base branch commits in
// HEAD's history. Zero for shallow clones.
func (v *Versioner) BaseBranchCommitCount() int {
	return len(v.BaseBranchCommits())
}

// FeatureBranchCommitCount returns the number of HEAD's commits not on the
// base branch. Zero for shallow clones.
func (v *Versioner) FeatureBranchCommitCount() int {
	return len(v.FeatureBranchCommits())
}

// CommitCount returns the number of classified commits.
func (v *Versioner) CommitCount() int {
	return v.BaseBranchCommitCount() + v.FeatureBranchCommitCount()
}

// BaseBranchCommits returns the base branch commits in HEAD's history,
// newest first. The slice must not be modified.
func (v *Versioner) BaseBranchCommits() []string {
	if v.shallow() {
		return nil
	}
	return v.classification().Base
}

// FeatureBranchCommits returns HEAD's commits not on the base branch,
// newest first. The slice must not be modified.
func (v *Versioner) FeatureBranchCommits() []string {
	if v.shallow() {
		return nil
	}
	return v.classification().Feature
}

// CurrentSha1 returns the full sha of HEAD.
func (v *Versioner) CurrentSha1() (string, bool) {
	sha := v.currentSha1()
	return sha, sha != ""
}

// CurrentSha1Short returns the abbreviated sha of HEAD.
func (v *Versioner) CurrentSha1Short() (string, bool) {
	sha := git.ShortSha(v.currentSha1())
	return sha, sha != ""
}

// BranchName returns the branch HEAD is on, falling back to the CI
// provided branch name. It is looked up on every call.
func (v *Versioner) BranchName() (string, bool) {
	name := v.branchName()
	return name, name != ""
}

// InitialCommit returns the root commit of HEAD's history. Absent for
// shallow clones.
func (v *Versioner) InitialCommit() (string, bool) {
	if v.shallow() {
		return "", false
	}
	commits := v.headCommits()
	if len(commits) == 0 {
		return "", false
	}
	return commits[len(commits)-1], true
}

// FeatureBranchOriginCommit returns the newest base branch commit in HEAD's
// history: where the feature branch was created or last synced with the
// base branch.
func (v *Versioner) FeatureBranchOriginCommit() (string, bool) {
	return v.classification().Origin()
}

// State returns the snapshot of computed values handed to formatters.
func (v *Versioner) State() State {
	return State{
		BaseBranch:               v.ec.BaseBranch,
		BranchName:               v.branchName(),
		CurrentSha1:              v.currentSha1(),
		VersionCode:              v.VersionCode(),
		BaseBranchCommitCount:    v.BaseBranchCommitCount(),
		FeatureBranchCommitCount: v.FeatureBranchCommitCount(),
		TimeComponent:            v.TimeComponent(),
		YearFactor:               v.ec.YearFactor,
		LocalChanges:             v.LocalChanges(),
		Shallow:                  v.IsHistoryShallow(),
		Options:                  v.ec,
		Now:                      v.clock(),
		shortName:                v.shortName,
		logger:                   v.logger,
	}
}

func (v *Versioner) branchName() string {
	if v.ready() {
		branch, err := v.repo.CurrentBranch()
		if err != nil {
			v.logger.Debug("reading current branch", "error", err)
		}
		if branch != "" {
			return branch
		}
	}
	return v.ciBranchName()
}

func (v *Versioner) ciBranchName() (name string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Info("branch name provider failed", "panic", r)
			name = ""
		}
	}()
	return v.branchProvider()
}

func (v *Versioner) computeHeadCommits() []string {
	if !v.ready() {
		return nil
	}
	commits, err := v.repo.CommitsToHead()
	if err != nil {
		v.logger.Debug("listing commits to HEAD", "error", err)
		return nil
	}
	return commits
}

func (v *Versioner) computeClassification() Classification {
	if !v.ready() {
		return Classification{}
	}
	base, err := v.repo.CommitsUpTo(v.ec.BaseBranch)
	if err != nil {
		v.logger.Debug("listing base branch commits", "branch", v.ec.BaseBranch, "error", err)
		base = nil
	}
	return Classify(v.headCommits(), base)
}

func (v *Versioner) computeCurrentSha1() string {
	if !v.ready() {
		return ""
	}
	sha, err := v.repo.CurrentSha1()
	if err != nil {
		v.logger.Debug("reading HEAD sha", "error", err)
		return ""
	}
	return sha
}

func (v *Versioner) computeLocalChanges() git.LocalChanges {
	if !v.ready() {
		return git.NoChanges
	}
	changes, err := v.repo.LocalChanges()
	if err != nil {
		v.logger.Debug("reading local changes", "error", err)
		return git.NoChanges
	}
	return changes
}

func (v *Versioner) computeTimeComponent() int {
	if !v.ready() || v.shallow() {
		return 0
	}
	origin, ok := v.FeatureBranchOriginCommit()
	if !ok {
		return 0
	}

	originDate, err := v.repo.CommitDate(origin)
	if err != nil {
		v.logger.Debug("reading origin commit date", "commit", origin, "error", err)
		return 0
	}
	initialDate, err := v.repo.InitialCommitDate()
	if err != nil {
		v.logger.Debug("reading initial commit date", "error", err)
		return 0
	}
	return TimeComponent(originDate, initialDate, v.ec.YearFactor)
}

func (v *Versioner) computeVersionCode() int {
	code := FallbackVersionCode
	if v.ready() && !v.shallow() {
		code = VersionCode(v.BaseBranchCommitCount(), v.TimeComponent(),
			v.FeatureBranchCommitCount(), v.ec.BumpOnFeatureCommits)
	}
	v.logger.Debug("computed version code", "versionCode", code)
	return code
}

func (v *Versioner) computeVersionName() string {
	if !v.ready() {
		return UndefinedName
	}

	state := v.State()
	name, err := callFormatter(v.formatter, state)
	if err != nil {
		v.logger.Info("formatter failed to generate a correct name, using default formatter", "error", err)
		name, _ = DefaultFormatter.Format(state)
	}
	v.logger.Debug("computed version name", "versionName", name)
	return name
}
