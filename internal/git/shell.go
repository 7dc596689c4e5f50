package git

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Compile-time check that ShellRepository implements Repository.
var _ Repository = (*ShellRepository)(nil)

// xcodeLicenseExitCode is returned by the git shim on macOS until the Xcode
// license has been accepted.
const xcodeLicenseExitCode = 69

// ShellRepository implements Repository by running the git binary.
type ShellRepository struct {
	dir      string
	revision string
	logger   *slog.Logger

	ready         func() bool
	commitsToHead func() ([]string, error)
}

// ShellOption configures a ShellRepository.
type ShellOption func(*ShellRepository)

// WithShellRevision versions the given revision instead of HEAD.
func WithShellRevision(rev string) ShellOption {
	return func(r *ShellRepository) { r.revision = rev }
}

// WithShellLogger sets the logger used for diagnostics.
func WithShellLogger(logger *slog.Logger) ShellOption {
	return func(r *ShellRepository) { r.logger = logger }
}

// NewShellRepository creates a ShellRepository running git in dir.
func NewShellRepository(dir string, opts ...ShellOption) *ShellRepository {
	r := &ShellRepository{
		dir:    dir,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ready = sync.OnceValue(r.checkReady)
	r.commitsToHead = sync.OnceValues(func() ([]string, error) {
		if !r.IsReady() {
			return nil, nil
		}
		return r.CommitsUpTo(r.head())
	})
	return r
}

func (r *ShellRepository) IsReady() bool {
	return r.ready()
}

func (r *ShellRepository) IsHistoryShallow() bool {
	if !r.IsReady() {
		return false
	}
	out, err := r.git("rev-parse", "--is-shallow-repository")
	return err == nil && strings.TrimSpace(out) == "true"
}

func (r *ShellRepository) CurrentSha1() (string, error) {
	if !r.IsReady() {
		return "", nil
	}
	out, err := r.git("rev-parse", r.head())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *ShellRepository) CurrentBranch() (string, error) {
	if !r.IsReady() {
		return "", nil
	}
	if r.revision != "" {
		if _, err := r.git("show-ref", "--verify", "--quiet", "refs/heads/"+r.revision); err != nil {
			return "", nil
		}
		return r.revision, nil
	}
	out, err := r.git("symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		// Detached HEAD.
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

func (r *ShellRepository) LocalChanges() (LocalChanges, error) {
	if !r.IsReady() {
		return NoChanges, nil
	}
	out, err := r.git("diff", "HEAD", "--shortstat")
	if err != nil {
		return NoChanges, err
	}
	return ParseShortStat(strings.TrimSpace(out)), nil
}

func (r *ShellRepository) InitialCommitDate() (int64, error) {
	commits, err := r.CommitsToHead()
	if err != nil {
		return 0, err
	}
	if len(commits) == 0 {
		return 0, nil
	}
	return r.CommitDate(commits[len(commits)-1])
}

func (r *ShellRepository) CommitsToHead() ([]string, error) {
	return r.commitsToHead()
}

func (r *ShellRepository) CommitsUpTo(ref string, args ...string) ([]string, error) {
	if _, err := ParseRevListArgs(args...); err != nil {
		return nil, err
	}

	out, err := r.git(revList(ref, args)...)
	if err != nil {
		out, err = r.git(revList("origin/"+ref, args)...)
		if err != nil {
			return nil, nil
		}
	}

	var commits []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	return commits, nil
}

// revList builds a rev-list command line. ref comes after
// --end-of-options so a value like "--all" is never read as an option.
func revList(ref string, args []string) []string {
	cmd := append([]string{"rev-list"}, args...)
	return append(cmd, "--end-of-options", ref)
}

func (r *ShellRepository) CommitDate(sha string) (int64, error) {
	out, err := r.git("log", "-n", "1", "--pretty=format:%at", sha)
	if err != nil {
		return 0, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing commit date of %s: %w", sha, err)
	}
	return ts, nil
}

func (r *ShellRepository) head() string {
	if r.revision != "" {
		return r.revision
	}
	return "HEAD"
}

func (r *ShellRepository) checkReady() bool {
	_, err := r.git("status")
	if err == nil {
		return true
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == xcodeLicenseExitCode {
		r.logger.Error("git returned exit code 69, the Xcode license has not been accepted",
			"hint", "run xcode-select --install")
		return false
	}
	r.logger.Error("cannot compute a git version, this is not a git repository",
		"dir", r.dir, "error", err)
	return false
}

// git runs a git command in the repository directory and returns stdout.
func (r *ShellRepository) git(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logger.Debug("git command failed",
			"args", strings.Join(args, " "),
			"stderr", truncate(stderr.String(), 100))
		return "", fmt.Errorf("running git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
