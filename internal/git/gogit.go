package git

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo     *gogit.Repository
	workDir  string
	revision string // versioned revision, empty means HEAD
}

// Option configures a GoGitRepository.
type Option func(*GoGitRepository)

// WithRevision versions the given revision (branch, tag or SHA) instead of HEAD.
func WithRevision(rev string) Option {
	return func(r *GoGitRepository) { r.revision = rev }
}

// Open opens a git repository at the given path or any of its parents.
func Open(path string, opts ...Option) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}
	return NewGoGitRepository(r, opts...), nil
}

// NewGoGitRepository wraps an already opened go-git repository.
func NewGoGitRepository(r *gogit.Repository, opts ...Option) *GoGitRepository {
	repo := &GoGitRepository{repo: r}
	if wt, err := r.Worktree(); err == nil {
		repo.workDir = wt.Filesystem.Root()
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// WorkingDirectory returns the root of the working tree. Empty for bare
// repositories.
func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) IsReady() bool {
	if r.repo == nil {
		return false
	}
	if r.revision == "" {
		return true
	}
	_, err := r.repo.ResolveRevision(plumbing.Revision(r.revision))
	return err == nil
}

func (r *GoGitRepository) IsHistoryShallow() bool {
	if r.repo == nil {
		return false
	}
	shallows, err := r.repo.Storer.Shallow()
	return err == nil && len(shallows) > 0
}

func (r *GoGitRepository) CurrentSha1() (string, error) {
	hash, ok, err := r.headHash()
	if err != nil || !ok {
		return "", err
	}
	return hash.String(), nil
}

func (r *GoGitRepository) CurrentBranch() (string, error) {
	if r.revision != "" {
		_, err := r.repo.Reference(plumbing.NewBranchReferenceName(r.revision), true)
		if err != nil {
			return "", nil
		}
		return r.revision, nil
	}

	// Read HEAD without resolving it so unborn branches still report a name.
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if ref.Type() != plumbing.SymbolicReference || !ref.Target().IsBranch() {
		return "", nil
	}
	return ref.Target().Short(), nil
}

func (r *GoGitRepository) LocalChanges() (LocalChanges, error) {
	wt, err := r.repo.Worktree()
	if errors.Is(err, gogit.ErrIsBareRepository) {
		return NoChanges, nil
	}
	if err != nil {
		return NoChanges, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return NoChanges, fmt.Errorf("getting worktree status: %w", err)
	}

	var tree *object.Tree
	if ref, err := r.repo.Head(); err == nil {
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			return NoChanges, fmt.Errorf("loading HEAD commit: %w", err)
		}
		if tree, err = commit.Tree(); err != nil {
			return NoChanges, fmt.Errorf("loading HEAD tree: %w", err)
		}
	}

	var changes LocalChanges
	for path, s := range status {
		// `git diff HEAD` ignores untracked files.
		if s.Staging == gogit.Untracked || s.Worktree == gogit.Untracked {
			continue
		}
		if s.Staging == gogit.Unmodified && s.Worktree == gogit.Unmodified {
			continue
		}

		before, err := blobContents(tree, path)
		if err != nil {
			return NoChanges, err
		}
		after, err := worktreeContents(wt.Filesystem, path)
		if err != nil {
			return NoChanges, err
		}

		changes.FilesChanged++
		additions, deletions := countLineChanges(before, after)
		changes.Additions += additions
		changes.Deletions += deletions
	}

	return changes, nil
}

func (r *GoGitRepository) InitialCommitDate() (int64, error) {
	commits, err := r.CommitsToHead()
	if err != nil {
		return 0, err
	}
	if len(commits) == 0 {
		return 0, nil
	}
	return r.CommitDate(commits[len(commits)-1])
}

func (r *GoGitRepository) CommitsToHead() ([]string, error) {
	hash, ok, err := r.headHash()
	if err != nil || !ok {
		return nil, err
	}
	return r.walk(hash, RevListOptions{})
}

func (r *GoGitRepository) CommitsUpTo(ref string, args ...string) ([]string, error) {
	opts, err := ParseRevListArgs(args...)
	if err != nil {
		return nil, err
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		hash, err = r.repo.ResolveRevision(plumbing.Revision("origin/" + ref))
		if err != nil {
			return nil, nil
		}
	}

	return r.walk(*hash, opts)
}

func (r *GoGitRepository) CommitDate(sha string) (int64, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return 0, fmt.Errorf("loading commit %s: %w", sha, err)
	}
	return c.Author.When.Unix(), nil
}

// headHash resolves the versioned commit. ok is false for an unborn HEAD.
func (r *GoGitRepository) headHash() (plumbing.Hash, bool, error) {
	if r.revision != "" {
		hash, err := r.repo.ResolveRevision(plumbing.Revision(r.revision))
		if err != nil {
			return plumbing.ZeroHash, false, fmt.Errorf("resolving %s: %w", r.revision, err)
		}
		return *hash, true, nil
	}

	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, fmt.Errorf("getting HEAD: %w", err)
	}
	return ref.Hash(), true, nil
}

// walk lists the commits reachable from hash, newest first. Missing objects
// mark the boundary of a shallow clone and end the walk.
func (r *GoGitRepository) walk(from plumbing.Hash, opts RevListOptions) ([]string, error) {
	var commits []string

	if opts.FirstParent {
		c, err := r.repo.CommitObject(from)
		if err != nil {
			return nil, fmt.Errorf("loading commit %s: %w", from, err)
		}
		for {
			commits = append(commits, c.Hash.String())
			if len(commits) == opts.MaxCount || c.NumParents() == 0 {
				break
			}
			parent, err := c.Parent(0)
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("loading parent of %s: %w", c.Hash, err)
			}
			c = parent
		}
		return commits, nil
	}

	iter, err := r.repo.Log(&gogit.LogOptions{
		From:  from,
		Order: gogit.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("getting commit log: %w", err)
	}

	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c.Hash.String())
		if len(commits) == opts.MaxCount {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}

	return commits, nil
}

func blobContents(tree *object.Tree, path string) (string, error) {
	if tree == nil {
		return "", nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s from HEAD: %w", path, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("reading %s from HEAD: %w", path, err)
	}
	return contents, nil
}

func worktreeContents(fs billy.Filesystem, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		// Deleted in the working tree.
		return "", nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// countLineChanges counts inserted and deleted lines the way
// `git diff --shortstat` does. Binary content counts as no lines.
func countLineChanges(before, after string) (int, int) {
	if strings.IndexByte(before, 0) >= 0 || strings.IndexByte(after, 0) >= 0 {
		return 0, 0
	}

	additions, deletions := 0, 0
	for _, d := range diff.Do(before, after) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			additions += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			deletions += countLines(d.Text)
		}
	}
	return additions, deletions
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
