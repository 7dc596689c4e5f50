package testutil

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
)

// Compile-time check that Graph implements git.Repository.
var _ git.Repository = (*Graph)(nil)

// Commit is a node of a Graph. An empty Parent marks a root commit. A
// Parent that is not part of the graph marks the boundary of a shallow
// history.
type Commit struct {
	Sha    string
	Parent string
	Date   int64
}

// BranchHead points a branch name at a commit of a Graph.
type BranchHead struct {
	Sha  string
	Name string
}

// Graph is an in-memory git.Repository over a linear-parent commit graph.
// HEAD is on the first branch in Branches that points at Head.
type Graph struct {
	Commits  []Commit
	Head     string
	Branches []BranchHead
	Changes  git.LocalChanges
	Shallow  bool
	NotReady bool
	Detached bool
}

func (g *Graph) IsReady() bool {
	return !g.NotReady
}

func (g *Graph) IsHistoryShallow() bool {
	return g.Shallow
}

func (g *Graph) CurrentSha1() (string, error) {
	return g.Head, nil
}

func (g *Graph) CurrentBranch() (string, error) {
	if g.Detached {
		return "", nil
	}
	for _, b := range g.Branches {
		if b.Sha == g.Head {
			return b.Name, nil
		}
	}
	return "", nil
}

func (g *Graph) LocalChanges() (git.LocalChanges, error) {
	return g.Changes, nil
}

func (g *Graph) InitialCommitDate() (int64, error) {
	commits, err := g.CommitsToHead()
	if err != nil || len(commits) == 0 {
		return 0, err
	}
	return g.CommitDate(commits[len(commits)-1])
}

func (g *Graph) CommitsToHead() ([]string, error) {
	if g.Head == "" {
		return nil, nil
	}
	return g.CommitsUpTo(g.Head)
}

// CommitsUpTo walks first parents from ref, which may be a branch name or a
// commit sha. An unknown ref yields an empty list.
func (g *Graph) CommitsUpTo(ref string, args ...string) ([]string, error) {
	opts, err := git.ParseRevListArgs(args...)
	if err != nil {
		return nil, err
	}

	sha := ref
	for _, b := range g.Branches {
		if b.Name == ref {
			sha = b.Sha
			break
		}
	}

	var commits []string
	for {
		c, ok := g.commit(sha)
		if !ok {
			break
		}
		commits = append(commits, c.Sha)
		if c.Parent == "" {
			break
		}
		sha = c.Parent
	}
	return opts.Limit(commits), nil
}

func (g *Graph) CommitDate(sha string) (int64, error) {
	c, ok := g.commit(sha)
	if !ok {
		return 0, fmt.Errorf("commit %s not found", sha)
	}
	return c.Date, nil
}

func (g *Graph) commit(sha string) (Commit, bool) {
	for _, c := range g.Commits {
		if c.Sha == sha {
			return c, true
		}
	}
	return Commit{}, false
}
