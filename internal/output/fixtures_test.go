package output

import (
	"fmt"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/config"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/testutil"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"
)

// commitSha returns a 40 character sha whose short form is "0n00000".
func commitSha(n int) string {
	return fmt.Sprintf("%02d%038d", n, 0)
}

// featureGraph is master with 3 commits and feature/login 2 commits ahead,
// with local changes.
func featureGraph() *testutil.Graph {
	return &testutil.Graph{
		Commits: []testutil.Commit{
			{Sha: commitSha(1), Date: 1_700_000_000},
			{Sha: commitSha(2), Parent: commitSha(1), Date: 1_700_000_060},
			{Sha: commitSha(3), Parent: commitSha(2), Date: 1_700_000_120},
			{Sha: commitSha(4), Parent: commitSha(3), Date: 1_700_000_180},
			{Sha: commitSha(5), Parent: commitSha(4), Date: 1_700_000_240},
		},
		Head: commitSha(5),
		Branches: []testutil.BranchHead{
			{Sha: commitSha(3), Name: "master"},
			{Sha: commitSha(5), Name: "feature/login"},
		},
		Changes: git.LocalChanges{FilesChanged: 1, Additions: 2, Deletions: 3},
	}
}

func newVersioner(repo git.Repository) *versioner.Versioner {
	return versioner.New(repo, config.DefaultEffectiveConfiguration(),
		versioner.WithBranchNameProvider(func() string { return "" }))
}
