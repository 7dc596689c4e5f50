package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"
)

const explainTitle = "GitVersioner\n------------"

// WriteExplanation writes a human readable report of how the version was
// derived: the version, the branches, the commit ranges counted, the time
// component and local changes.
func WriteExplanation(w io.Writer, v *versioner.Versioner) error {
	var b strings.Builder

	fmt.Fprintln(&b, explainTitle)
	fmt.Fprintf(&b, "VersionCode: %d\n", v.VersionCode())
	fmt.Fprintf(&b, "VersionName: %s\n", v.VersionName())
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "baseBranch: %s\n", v.BaseBranch())

	if !v.IsRepositoryReady() {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "git not initialized")
		return flush(w, b.String())
	}

	branch, _ := v.BranchName()
	current, _ := v.CurrentSha1Short()
	initial, _ := v.InitialCommit()
	origin, _ := v.FeatureBranchOriginCommit()

	fmt.Fprintf(&b, "current branch: %s\n", branch)
	fmt.Fprintf(&b, "current commit: %s\n", current)
	if v.IsHistoryShallow() {
		fmt.Fprintln(&b, "history: shallow, commits are not counted")
	}
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "baseBranch commits: %d (%s..%s)\n",
		v.BaseBranchCommitCount(), git.ShortSha(initial), git.ShortSha(origin))
	fmt.Fprintf(&b, "featureBranch commits: %d (%s..%s)\n",
		v.FeatureBranchCommitCount(), git.ShortSha(origin), current)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "timeComponent: %d (yearFactor:%d)\n", v.TimeComponent(), v.YearFactor())
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "LocalChanges: %s\n", v.LocalChanges().ShortStats())

	return flush(w, b.String())
}

func flush(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("writing explanation: %w", err)
	}
	return nil
}
