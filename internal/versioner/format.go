package versioner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
)

const (
	// UndefinedName is the version name of a repository that is not ready,
	// and the short name of last resort.
	UndefinedName = "undefined"

	// ShallowToken replaces the version code in names of shallow clones.
	ShallowToken = "shallowed"

	// SnapshotSuffix marks builds that do not correspond to a base commit.
	SnapshotSuffix = "-SNAPSHOT"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// State is the computed version state handed to formatters.
type State struct {
	BaseBranch string
	// BranchName is the current branch, the CI provided branch, or "".
	BranchName  string
	CurrentSha1 string

	VersionCode              int
	BaseBranchCommitCount    int
	FeatureBranchCommitCount int
	TimeComponent            int
	YearFactor               int
	LocalChanges             git.LocalChanges
	Shallow                  bool

	Options config.EffectiveConfiguration
	Now     time.Time

	shortName ShortNameFormatter
	logger    *slog.Logger
}

// CurrentSha1Short returns the abbreviated sha of HEAD, or "".
func (s State) CurrentSha1Short() string {
	return git.ShortSha(s.CurrentSha1)
}

// ShortName returns the short branch identifier used in version names. A
// failing short name formatter is replaced by DefaultShortNameFormatter.
func (s State) ShortName() string {
	name, err := callShortName(s.shortName, s)
	if err != nil {
		s.log().Info("short name formatter failed, using default formatter", "error", err)
		name, _ = DefaultShortNameFormatter.FormatShortName(s)
	}
	if s.Options.SemVerSafe {
		name = unsafeChars.ReplaceAllString(name, "-")
	}
	return name
}

func (s State) log() *slog.Logger {
	if s.logger == nil {
		return discardLogger
	}
	return s.logger
}

// Formatter renders a version name.
type Formatter interface {
	Format(State) (string, error)
}

// FormatterFunc adapts a function to a Formatter.
type FormatterFunc func(State) (string, error)

func (f FormatterFunc) Format(s State) (string, error) {
	return f(s)
}

// ShortNameFormatter renders the branch identifier of a version name.
type ShortNameFormatter interface {
	FormatShortName(State) (string, error)
}

// ShortNameFormatterFunc adapts a function to a ShortNameFormatter.
type ShortNameFormatterFunc func(State) (string, error)

func (f ShortNameFormatterFunc) FormatShortName(s State) (string, error) {
	return f(s)
}

// DefaultFormatter renders names like "7-bug_123+4-SNAPSHOT(3 +5 -7)":
//
//	<code | shallowed>[-<short name>][<sep><feature commits>][-SNAPSHOT][-<unix time>][(<local changes>)]
//
// The short name is added off the base branch when there are commits or
// the history is shallow. Snapshot, timestamp and local change details
// follow the formatting options.
var DefaultFormatter Formatter = FormatterFunc(defaultFormat)

func defaultFormat(s State) (string, error) {
	var sb strings.Builder

	if s.Shallow {
		sb.WriteString(ShallowToken)
	} else {
		sb.WriteString(strconv.Itoa(s.VersionCode))
	}

	hasCommits := s.BaseBranchCommitCount > 0 || s.FeatureBranchCommitCount > 0
	if s.BranchName != s.BaseBranch && (hasCommits || s.Shallow) {
		sb.WriteString("-")
		sb.WriteString(s.ShortName())
	}

	hasFeatureCommits := !s.Shallow && s.FeatureBranchCommitCount > 0
	if hasFeatureCommits {
		sb.WriteString(s.Options.FeatureCountSeparator)
		sb.WriteString(strconv.Itoa(s.FeatureBranchCommitCount))
	}

	hasLocalChanges := !s.LocalChanges.IsZero()
	if s.Options.AddSnapshot && (hasLocalChanges || (s.Options.SnapshotOnFeatureCommits && hasFeatureCommits)) {
		sb.WriteString(SnapshotSuffix)
	}

	if hasLocalChanges {
		if s.Options.AddTimestamp {
			sb.WriteString("-")
			sb.WriteString(strconv.FormatInt(s.Now.Unix(), 10))
		}
		if s.Options.AddLocalChangesDetails {
			sb.WriteString("(")
			sb.WriteString(s.LocalChanges.String())
			sb.WriteString(")")
		}
	}

	return sb.String(), nil
}

// DefaultShortNameFormatter uses the branch name without its first path
// segment ("bugfix/something/x" becomes "something/x"), else the short sha,
// else "undefined".
var DefaultShortNameFormatter ShortNameFormatter = ShortNameFormatterFunc(defaultShortName)

func defaultShortName(s State) (string, error) {
	if s.BranchName != "" {
		return StripBranchPrefix(s.BranchName), nil
	}
	if short := s.CurrentSha1Short(); short != "" {
		return short, nil
	}
	return UndefinedName, nil
}

// StripBranchPrefix removes the first path segment of a branch name.
func StripBranchPrefix(branch string) string {
	if _, rest, ok := strings.Cut(branch, "/"); ok && rest != "" {
		return rest
	}
	return branch
}

// BranchNameProvider supplies the branch name when HEAD is detached, as it
// usually is on CI servers. It returns "" when no name is known.
type BranchNameProvider func() string

// EnvBranchNameProvider returns a provider reading the first non-empty of
// the given environment variables.
func EnvBranchNameProvider(vars ...string) BranchNameProvider {
	return func() string {
		for _, name := range vars {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				return v
			}
		}
		return ""
	}
}

var errEmptyName = errors.New("formatter returned an empty name")

// callFormatter runs f and converts panics and empty names into errors.
func callFormatter(f Formatter, s State) (name string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("formatter panicked: %v", r)
		}
	}()

	name, err = f.Format(s)
	if err == nil && name == "" {
		err = errEmptyName
	}
	return name, err
}

func callShortName(f ShortNameFormatter, s State) (name string, err error) {
	if f == nil {
		f = DefaultShortNameFormatter
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("short name formatter panicked: %v", r)
		}
	}()

	name, err = f.FormatShortName(s)
	if err == nil && name == "" {
		err = errEmptyName
	}
	return name, err
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
