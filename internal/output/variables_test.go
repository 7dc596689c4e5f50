package output

import (
	"testing"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestGetVariables(t *testing.T) {
	vars := GetVariables(newVersioner(featureGraph()))

	require.Equal(t, map[string]string{
		VarVersionCode:               "3",
		VarVersionName:               "3-login+2-SNAPSHOT(1 +2 -3)",
		VarBaseBranch:                "master",
		VarBranchName:                "feature/login",
		VarCurrentSha1:               commitSha(5),
		VarCurrentSha1Short:          "0500000",
		VarBaseBranchCommitCount:     "3",
		VarFeatureBranchCommitCount:  "2",
		VarCommitCount:               "5",
		VarTimeComponent:             "0",
		VarYearFactor:                "1000",
		VarLocalChanges:              "1 +2 -3",
		VarInitialCommit:             commitSha(1),
		VarFeatureBranchOriginCommit: commitSha(3),
		VarIsRepositoryReady:         "true",
		VarIsHistoryShallow:          "false",
	}, vars)
}

func TestGetVariables_NotReadyOmitsUnsetValues(t *testing.T) {
	vars := GetVariables(newVersioner(&testutil.Graph{NotReady: true}))

	require.Equal(t, "1", vars[VarVersionCode])
	require.Equal(t, "undefined", vars[VarVersionName])
	require.Equal(t, "false", vars[VarIsRepositoryReady])
	require.Equal(t, "0 +0 -0", vars[VarLocalChanges])
	for _, key := range []string{VarBranchName, VarCurrentSha1, VarCurrentSha1Short, VarInitialCommit, VarFeatureBranchOriginCommit} {
		require.NotContains(t, vars, key)
	}
}

func TestGetVariables_Shallow(t *testing.T) {
	g := featureGraph()
	g.Shallow = true
	vars := GetVariables(newVersioner(g))

	require.Equal(t, "true", vars[VarIsHistoryShallow])
	require.Equal(t, "0", vars[VarCommitCount])
	require.NotContains(t, vars, VarInitialCommit)
	require.Equal(t, commitSha(3), vars[VarFeatureBranchOriginCommit])
}
