package output

import (
	"strconv"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/versioner"
)

// Variable names produced by GetVariables.
const (
	VarVersionCode               = "VersionCode"
	VarVersionName               = "VersionName"
	VarBaseBranch                = "BaseBranch"
	VarBranchName                = "BranchName"
	VarCurrentSha1               = "CurrentSha1"
	VarCurrentSha1Short          = "CurrentSha1Short"
	VarBaseBranchCommitCount     = "BaseBranchCommitCount"
	VarFeatureBranchCommitCount  = "FeatureBranchCommitCount"
	VarCommitCount               = "CommitCount"
	VarTimeComponent             = "TimeComponent"
	VarYearFactor                = "YearFactor"
	VarLocalChanges              = "LocalChanges"
	VarInitialCommit             = "InitialCommit"
	VarFeatureBranchOriginCommit = "FeatureBranchOriginCommit"
	VarIsRepositoryReady         = "IsRepositoryReady"
	VarIsHistoryShallow          = "IsHistoryShallow"
)

// GetVariables computes all output variables of v. Values that are not
// available (no branch, unborn HEAD) are omitted.
func GetVariables(v *versioner.Versioner) map[string]string {
	vars := map[string]string{
		VarVersionCode:              strconv.Itoa(v.VersionCode()),
		VarVersionName:              v.VersionName(),
		VarBaseBranch:               v.BaseBranch(),
		VarBaseBranchCommitCount:    strconv.Itoa(v.BaseBranchCommitCount()),
		VarFeatureBranchCommitCount: strconv.Itoa(v.FeatureBranchCommitCount()),
		VarCommitCount:              strconv.Itoa(v.CommitCount()),
		VarTimeComponent:            strconv.Itoa(v.TimeComponent()),
		VarYearFactor:               strconv.Itoa(v.YearFactor()),
		VarLocalChanges:             v.LocalChanges().String(),
		VarIsRepositoryReady:        strconv.FormatBool(v.IsRepositoryReady()),
		VarIsHistoryShallow:         strconv.FormatBool(v.IsHistoryShallow()),
	}

	putWhenSet(vars, VarBranchName, v.BranchName)
	putWhenSet(vars, VarCurrentSha1, v.CurrentSha1)
	putWhenSet(vars, VarCurrentSha1Short, v.CurrentSha1Short)
	putWhenSet(vars, VarInitialCommit, v.InitialCommit)
	putWhenSet(vars, VarFeatureBranchOriginCommit, v.FeatureBranchOriginCommit)

	return vars
}

func putWhenSet(vars map[string]string, key string, get func() (string, bool)) {
	if value, ok := get(); ok {
		vars[key] = value
	}
}
