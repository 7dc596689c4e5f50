// Package testutil provides fixtures for versioner tests: temporary on-disk
// git repositories built with go-git and an in-memory commit graph.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TestRepo is a builder for creating temporary git repositories with
// controlled commit history and branches.
type TestRepo struct {
	t    testing.TB
	path string
	repo *gogit.Repository
	time time.Time
	seq  int
}

// NewTestRepo creates and initializes a new git repository in a temporary
// directory. HEAD points to the unborn branch "master".
func NewTestRepo(t testing.TB) *TestRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("master"),
		},
	})
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	return &TestRepo{
		t:    t,
		path: dir,
		repo: repo,
		time: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Path returns the repository root directory.
func (r *TestRepo) Path() string {
	return r.path
}

// Repository returns the underlying go-git repository.
func (r *TestRepo) Repository() *gogit.Repository {
	return r.repo
}

// Advance moves the clock used for the next commit forward by d.
func (r *TestRepo) Advance(d time.Duration) {
	r.time = r.time.Add(d)
}

// Now returns the time of the most recent commit.
func (r *TestRepo) Now() time.Time {
	return r.time
}

// AddCommit creates a new commit with the given message. A new file is
// written for every commit to ensure each commit has changes.
// Returns the commit SHA.
func (r *TestRepo) AddCommit(message string) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)
	r.seq++

	filename := fmt.Sprintf("file-%d.txt", r.seq)
	r.WriteFile(filename, message+"\n")

	wt := r.worktree()
	if _, err := wt.Add(filename); err != nil {
		r.t.Fatalf("staging file: %v", err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		r.t.Fatalf("committing: %v", err)
	}

	return hash.String()
}

// CommitFile commits the given content at name. Returns the commit SHA.
func (r *TestRepo) CommitFile(name, content, message string) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)

	r.WriteFile(name, content)
	wt := r.worktree()
	if _, err := wt.Add(name); err != nil {
		r.t.Fatalf("staging %s: %v", name, err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		r.t.Fatalf("committing: %v", err)
	}
	return hash.String()
}

// WriteFile writes content to name in the working tree without staging it.
func (r *TestRepo) WriteFile(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("writing %s: %v", name, err)
	}
}

// RemoveFile deletes name from the working tree without staging it.
func (r *TestRepo) RemoveFile(name string) {
	r.t.Helper()
	if err := os.Remove(filepath.Join(r.path, name)); err != nil {
		r.t.Fatalf("removing %s: %v", name, err)
	}
}

// CreateBranch creates a new branch pointing at the given SHA.
func (r *TestRepo) CreateBranch(name, sha string) {
	r.t.Helper()

	ref := plumbing.NewReferenceFromStrings("refs/heads/"+name, sha)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating branch %s: %v", name, err)
	}

	// Store branch config so go-git tracks it.
	cfg, err := r.repo.Config()
	if err != nil {
		r.t.Fatalf("reading config: %v", err)
	}
	cfg.Branches[name] = &gogitconfig.Branch{
		Name:  name,
		Merge: plumbing.NewBranchReferenceName(name),
	}
	if err := r.repo.SetConfig(cfg); err != nil {
		r.t.Fatalf("saving config: %v", err)
	}
}

// CreateRemoteBranch creates refs/remotes/origin/<name> pointing at sha.
func (r *TestRepo) CreateRemoteBranch(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewReferenceFromStrings("refs/remotes/origin/"+name, sha)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating remote branch %s: %v", name, err)
	}
}

// DeleteBranch removes a local branch.
func (r *TestRepo) DeleteBranch(name string) {
	r.t.Helper()
	if err := r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName(name)); err != nil {
		r.t.Fatalf("deleting branch %s: %v", name, err)
	}
}

// Checkout switches HEAD to the given branch.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	err := r.worktree().Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		r.t.Fatalf("checking out %s: %v", branch, err)
	}
}

// CheckoutNewBranch creates a branch at HEAD and switches to it.
func (r *TestRepo) CheckoutNewBranch(branch string) {
	r.t.Helper()
	r.CreateBranch(branch, r.HeadSha())
	r.Checkout(branch)
}

// DetachHead points HEAD directly at sha.
func (r *TestRepo) DetachHead(sha string) {
	r.t.Helper()
	err := r.worktree().Checkout(&gogit.CheckoutOptions{
		Hash: plumbing.NewHash(sha),
	})
	if err != nil {
		r.t.Fatalf("detaching HEAD at %s: %v", sha, err)
	}
}

// MergeCommit creates a merge commit with two parents: the current HEAD and
// the given SHA. Returns the merge commit SHA.
func (r *TestRepo) MergeCommit(message, otherSha string) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)
	r.seq++

	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}

	filename := fmt.Sprintf("merge-%d.txt", r.seq)
	r.WriteFile(filename, message+"\n")

	wt := r.worktree()
	if _, err := wt.Add(filename); err != nil {
		r.t.Fatalf("staging merge file: %v", err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:  r.signature(),
		Parents: []plumbing.Hash{head.Hash(), plumbing.NewHash(otherSha)},
	})
	if err != nil {
		r.t.Fatalf("merge commit: %v", err)
	}

	return hash.String()
}

// MarkShallow records the given commits as shallow boundaries, as a
// `git clone --depth` would.
func (r *TestRepo) MarkShallow(shas ...string) {
	r.t.Helper()
	hashes := make([]plumbing.Hash, 0, len(shas))
	for _, sha := range shas {
		hashes = append(hashes, plumbing.NewHash(sha))
	}
	if err := r.repo.Storer.SetShallow(hashes); err != nil {
		r.t.Fatalf("marking shallow: %v", err)
	}
}

// WriteConfig writes a gitversioner.yml file in the repo root.
func (r *TestRepo) WriteConfig(content string) {
	r.t.Helper()
	r.WriteFile("gitversioner.yml", content)
}

// HeadSha returns the current HEAD commit SHA.
func (r *TestRepo) HeadSha() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	return head.Hash().String()
}

func (r *TestRepo) worktree() *gogit.Worktree {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}
	return wt
}

func (r *TestRepo) signature() *object.Signature {
	return &object.Signature{
		Name:  "Test",
		Email: "test@example.com",
		When:  r.time,
	}
}
