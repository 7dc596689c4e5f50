package gitversioner

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/testutil"
	"github.com/stretchr/testify/require"
)

func clearBranchEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"BRANCH", "BRANCH_NAME", "GITREF"} {
		t.Setenv(env, "")
	}
}

// loginRepo is master with 3 commits and feature/login 2 commits ahead.
func loginRepo(t *testing.T) *testutil.TestRepo {
	t.Helper()
	clearBranchEnv(t)
	r := testutil.NewTestRepo(t)
	r.AddCommit("first")
	r.AddCommit("second")
	r.AddCommit("third")
	r.CheckoutNewBranch("feature/login")
	r.AddCommit("login form")
	r.AddCommit("login validation")
	return r
}

func TestCalculate_FeatureBranch(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{Path: r.Path()})
	require.NoError(t, err)
	require.Equal(t, 3, result.VersionCode)
	require.Equal(t, "3-login+2", result.VersionName)
	require.Equal(t, "feature/login", result.Variables["BranchName"])
	require.Equal(t, r.HeadSha(), result.Variables["CurrentSha1"])
	require.Empty(t, result.Explanation)
}

func TestCalculate_Commit(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{Path: r.Path(), Commit: "master"})
	require.NoError(t, err)
	require.Equal(t, "3", result.VersionName)
}

func TestCalculate_Overrides(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{Path: r.Path(), BaseBranch: "develop"})
	require.NoError(t, err)
	require.Equal(t, 0, result.VersionCode)
	require.Equal(t, "0-login+5", result.VersionName)
	require.Equal(t, "develop", result.Variables["BaseBranch"])
}

func TestCalculate_ConfigFile(t *testing.T) {
	r := loginRepo(t)
	path := filepath.Join(t.TempDir(), "version.yml")
	require.NoError(t, os.WriteFile(path, []byte("feature-count-separator: _\n"), 0o644))

	result, err := Calculate(LocalOptions{Path: r.Path(), ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, "3-login_2", result.VersionName)
}

func TestCalculate_InvalidConfigFile(t *testing.T) {
	r := loginRepo(t)

	_, err := Calculate(LocalOptions{Path: r.Path(), ConfigPath: filepath.Join(t.TempDir(), "missing.yml")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "loading configuration")
}

func TestCalculate_Formatters(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{
		Path: r.Path(),
		Formatter: func(s State) (string, error) {
			return fmt.Sprintf("v%d.%d-%s", s.VersionCode, s.FeatureBranchCommitCount, s.ShortName()), nil
		},
		ShortNameFormatter: func(s State) (string, error) {
			return "LOGIN", nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, "v3.2-LOGIN", result.VersionName)
}

func TestCalculate_PanickingFormatterFallsBack(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{
		Path:      r.Path(),
		Formatter: func(State) (string, error) { panic("boom") },
	})
	require.NoError(t, err)
	require.Equal(t, "3-login+2", result.VersionName)
}

func TestCalculate_Explain(t *testing.T) {
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{Path: r.Path(), Explain: true})
	require.NoError(t, err)
	require.Contains(t, result.Explanation, "VersionName: 3-login+2")
	require.Contains(t, result.Explanation, "featureBranch commits: 2")
}

func TestCalculate_ShellBackend(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	r := loginRepo(t)

	result, err := Calculate(LocalOptions{Path: r.Path(), Backend: BackendShell})
	require.NoError(t, err)
	require.Equal(t, "3-login+2", result.VersionName)
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(LocalOptions{Path: t.TempDir()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening repository")

	_, err = Calculate(LocalOptions{Path: t.TempDir(), Backend: "svn"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown backend")
}

// remoteSha returns a 40 character sha for commit n.
func remoteSha(n int) string {
	return fmt.Sprintf("%040x", n)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeGitHub serves acme/app with main at commit 3 and feature-x two
// commits ahead of it.
func fakeGitHub(t *testing.T) string {
	t.Helper()
	history := map[string][]int{
		"main":      {3, 2, 1},
		"feature-x": {5, 4, 3, 2, 1},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/app", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"default_branch": "main"})
	})
	mux.HandleFunc("GET /api/v3/repos/acme/app/branches/{name}", func(w http.ResponseWriter, r *http.Request) {
		commits, ok := history[r.PathValue("name")]
		if !ok {
			http.Error(w, `{"message":"Branch not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{
			"name":   r.PathValue("name"),
			"commit": map[string]interface{}{"sha": remoteSha(commits[0])},
		})
	})
	mux.HandleFunc("GET /api/v3/repos/acme/app/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		expression, _ := req.Variables["expression"].(string)
		commits, ok := history[expression]
		if !ok {
			writeJSON(w, map[string]interface{}{
				"data": map[string]interface{}{"repository": map[string]interface{}{"object": nil}},
			})
			return
		}
		nodes := make([]map[string]interface{}, 0, len(commits))
		for _, n := range commits {
			nodes = append(nodes, map[string]interface{}{
				"oid":          remoteSha(n),
				"authoredDate": time.Unix(int64(1_700_000_000+60*n), 0).UTC().Format(time.RFC3339),
				"parents":      map[string]interface{}{"nodes": []interface{}{}},
			})
		}
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"repository": map[string]interface{}{
					"object": map[string]interface{}{
						"oid": remoteSha(commits[0]),
						"history": map[string]interface{}{
							"nodes":    nodes,
							"pageInfo": map[string]interface{}{"hasNextPage": false, "endCursor": ""},
						},
					},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func TestCalculateRemote_FeatureBranch(t *testing.T) {
	clearBranchEnv(t)
	url := fakeGitHub(t)

	result, err := CalculateRemote(RemoteOptions{
		Owner:      "acme",
		Repo:       "app",
		Token:      "test",
		BaseURL:    url,
		Ref:        "feature-x",
		BaseBranch: "main",
		Explain:    true,
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.VersionCode)
	require.Equal(t, "3-feature-x+2", result.VersionName)
	require.Equal(t, remoteSha(5), result.Variables["CurrentSha1"])
	require.Contains(t, result.Explanation, "current branch: feature-x")
}

func TestCalculateRemote_MaxCommits(t *testing.T) {
	clearBranchEnv(t)
	url := fakeGitHub(t)

	result, err := CalculateRemote(RemoteOptions{
		Owner:      "acme",
		Repo:       "app",
		Token:      "test",
		BaseURL:    url,
		Ref:        "feature-x",
		BaseBranch: "main",
		MaxCommits: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "shallowed-feature-x", result.VersionName)
	require.Equal(t, "true", result.Variables["IsHistoryShallow"])
}

func TestCalculateRemote_LocalConfig(t *testing.T) {
	clearBranchEnv(t)
	url := fakeGitHub(t)
	path := filepath.Join(t.TempDir(), "version.yml")
	require.NoError(t, os.WriteFile(path, []byte("base-branch: main\nfeature-count-separator: '.'\n"), 0o644))

	result, err := CalculateRemote(RemoteOptions{
		Owner:      "acme",
		Repo:       "app",
		Token:      "test",
		BaseURL:    url,
		Ref:        "feature-x",
		ConfigPath: path,
	})
	require.NoError(t, err)
	require.Equal(t, "3-feature-x.2", result.VersionName)
}

func TestCalculateRemote_Errors(t *testing.T) {
	_, err := CalculateRemote(RemoteOptions{Repo: "app"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner and repo are required")

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_APP_ID", "")
	t.Setenv("GH_APP_PRIVATE_KEY", "")
	t.Setenv("GH_APP_PRIVATE_KEY_PATH", "")
	_, err = CalculateRemote(RemoteOptions{Owner: "acme", Repo: "app"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating GitHub client")
}
