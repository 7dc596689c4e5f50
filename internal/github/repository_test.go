package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	gh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/require"
)

// writeJSON is a test helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeCommit is a commit in the fake GitHub repository.
type fakeCommit struct {
	sha     string
	parents []string
	date    time.Time
}

// fakeGitHub serves the REST and GraphQL endpoints RemoteRepository uses
// from an in-memory commit graph.
type fakeGitHub struct {
	defaultBranch string
	commits       map[string]fakeCommit
	branches      map[string]string
	tags          map[string]string
	pageSize      int

	graphQLCalls atomic.Int32
	commitCalls  atomic.Int32
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		defaultBranch: "main",
		commits:       make(map[string]fakeCommit),
		branches:      make(map[string]string),
		tags:          make(map[string]string),
		pageSize:      100,
	}
}

var fakeEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// add records a commit n minutes after the epoch.
func (f *fakeGitHub) add(sha string, minutes int, parents ...string) string {
	f.commits[sha] = fakeCommit{sha: sha, parents: parents, date: fakeEpoch.Add(time.Duration(minutes) * time.Minute)}
	return sha
}

// sha returns a 40 character hex sha built from n.
func sha(n int) string {
	s := strconv.FormatInt(int64(n), 16)
	return strings.Repeat("0", 40-len(s)) + s
}

// linear adds n commits with shas sha(from)..sha(from+n-1), each the
// parent of the next, and returns the newest.
func (f *fakeGitHub) linear(from, n int, parent string) string {
	tip := parent
	for i := from; i < from+n; i++ {
		if tip == "" {
			tip = f.add(sha(i), i)
		} else {
			tip = f.add(sha(i), i, tip)
		}
	}
	return tip
}

func (f *fakeGitHub) resolve(expression string) (string, bool) {
	if s, ok := f.branches[expression]; ok {
		return s, true
	}
	if s, ok := f.tags[expression]; ok {
		return s, true
	}
	if _, ok := f.commits[expression]; ok {
		return expression, true
	}
	return "", false
}

// history returns all ancestors of tip, newest first.
func (f *fakeGitHub) history(tip string) []fakeCommit {
	seen := map[string]bool{}
	var out []fakeCommit
	stack := []string{tip}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		c := f.commits[s]
		out = append(out, c)
		stack = append(stack, c.parents...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].date.After(out[j].date) })
	return out
}

func (f *fakeGitHub) handler() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"default_branch": f.defaultBranch})
	})

	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/branches/{name}", func(w http.ResponseWriter, r *http.Request) {
		tip, ok := f.branches[r.PathValue("name")]
		if !ok {
			http.Error(w, `{"message": "Branch not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]interface{}{
			"name":   r.PathValue("name"),
			"commit": map[string]interface{}{"sha": tip},
		})
	})

	mux.HandleFunc("GET /api/v3/repos/testowner/testrepo/commits/{ref}", func(w http.ResponseWriter, r *http.Request) {
		s, ok := f.resolve(r.PathValue("ref"))
		if !ok {
			http.Error(w, `{"message": "No commit found"}`, http.StatusNotFound)
			return
		}
		if strings.Contains(r.Header.Get("Accept"), "sha") {
			_, _ = w.Write([]byte(s))
			return
		}
		f.commitCalls.Add(1)
		date := f.commits[s].date.Format(time.RFC3339)
		writeJSON(w, map[string]interface{}{
			"sha": s,
			"commit": map[string]interface{}{
				"author":    map[string]interface{}{"date": date},
				"committer": map[string]interface{}{"date": date},
			},
		})
	})

	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		f.graphQLCalls.Add(1)
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		expression, _ := req.Variables["expression"].(string)
		tip, ok := f.resolve(expression)
		if !ok {
			writeJSON(w, map[string]interface{}{
				"data": map[string]interface{}{"repository": map[string]interface{}{"object": nil}},
			})
			return
		}

		start := 0
		if c, ok := req.Variables["cursor"].(string); ok {
			start, _ = strconv.Atoi(c)
		}
		all := f.history(tip)
		end := min(start+f.pageSize, len(all))

		nodes := make([]map[string]interface{}, 0, end-start)
		for _, c := range all[start:end] {
			parents := make([]map[string]interface{}, 0, 1)
			if len(c.parents) > 0 {
				parents = append(parents, map[string]interface{}{"oid": c.parents[0]})
			}
			nodes = append(nodes, map[string]interface{}{
				"oid":          c.sha,
				"authoredDate": c.date.Format(time.RFC3339),
				"parents":      map[string]interface{}{"nodes": parents},
			})
		}
		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"repository": map[string]interface{}{
					"object": map[string]interface{}{
						"oid": tip,
						"history": map[string]interface{}{
							"nodes": nodes,
							"pageInfo": map[string]interface{}{
								"hasNextPage": end < len(all),
								"endCursor":   strconv.Itoa(end),
							},
						},
					},
				},
			},
		})
	})

	return mux
}

// newTestRepo creates a RemoteRepository with baseURL set so GraphQL calls
// are routed to the test server.
func newTestRepo(t *testing.T, mux *http.ServeMux, opts ...Option) *RemoteRepository {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)
	opts = append([]Option{WithBaseURL(server.URL)}, opts...)
	return NewRemoteRepository(client, "testowner", "testrepo", opts...)
}

// featureFake builds main with 5 commits and feature with 2 more on top of
// the third main commit.
func featureFake() *fakeGitHub {
	f := newFakeGitHub()
	base := f.linear(1, 3, "")
	f.branches["main"] = f.linear(4, 2, base)
	f.branches["feature"] = f.linear(10, 2, base)
	f.tags["v1.0"] = base
	return f
}

func TestRemoteRepository_DefaultBranch(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler())

	require.True(t, repo.IsReady())
	require.False(t, repo.IsHistoryShallow())

	head, err := repo.CurrentSha1()
	require.NoError(t, err)
	require.Equal(t, sha(5), head)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	commits, err := repo.CommitsToHead()
	require.NoError(t, err)
	require.Equal(t, []string{sha(5), sha(4), sha(3), sha(2), sha(1)}, commits)
}

func TestRemoteRepository_ExplicitBranch(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler(), WithRef("feature"))

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "feature", branch)

	commits, err := repo.CommitsToHead()
	require.NoError(t, err)
	require.Equal(t, []string{sha(11), sha(10), sha(3), sha(2), sha(1)}, commits)

	base, err := repo.CommitsUpTo("main")
	require.NoError(t, err)
	require.Equal(t, []string{sha(5), sha(4), sha(3), sha(2), sha(1)}, base)
}

func TestRemoteRepository_ShaIsDetached(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler(), WithRef(sha(4)))

	head, err := repo.CurrentSha1()
	require.NoError(t, err)
	require.Equal(t, sha(4), head)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Empty(t, branch)
}

func TestRemoteRepository_TagIsDetached(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler(), WithRef("v1.0"))

	head, err := repo.CurrentSha1()
	require.NoError(t, err)
	require.Equal(t, sha(3), head)

	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	require.Empty(t, branch)
}

func TestRemoteRepository_UnknownRefIsNotReady(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler(), WithRef("nope"))

	require.False(t, repo.IsReady())
	require.False(t, repo.IsHistoryShallow())

	_, err := repo.CurrentSha1()
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolving ref nope")
}

func TestRemoteRepository_CommitsUpToUnknownRef(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler())

	commits, err := repo.CommitsUpTo("develop")
	require.NoError(t, err)
	require.Empty(t, commits)
}

func TestRemoteRepository_CommitsUpToArgs(t *testing.T) {
	f := newFakeGitHub()
	root := f.add(sha(1), 1)
	left := f.add(sha(2), 2, root)
	right := f.add(sha(3), 3, root)
	f.branches["main"] = f.add(sha(4), 4, left, right)
	repo := newTestRepo(t, f.handler())

	all, err := repo.CommitsUpTo("main")
	require.NoError(t, err)
	require.Equal(t, []string{sha(4), sha(3), sha(2), sha(1)}, all)

	firstParent, err := repo.CommitsUpTo("main", "--first-parent")
	require.NoError(t, err)
	require.Equal(t, []string{sha(4), sha(2), sha(1)}, firstParent)

	limited, err := repo.CommitsUpTo("main", "--max-count=2")
	require.NoError(t, err)
	require.Equal(t, []string{sha(4), sha(3)}, limited)

	_, err = repo.CommitsUpTo("main", "--all")
	require.Error(t, err)
}

func TestRemoteRepository_Pagination(t *testing.T) {
	f := newFakeGitHub()
	f.branches["main"] = f.linear(1, 7, "")
	f.pageSize = 3
	repo := newTestRepo(t, f.handler())

	commits, err := repo.CommitsToHead()
	require.NoError(t, err)
	require.Len(t, commits, 7)
	require.Equal(t, sha(7), commits[0])
	require.Equal(t, sha(1), commits[6])
	require.False(t, repo.IsHistoryShallow())
	require.Equal(t, int32(3), f.graphQLCalls.Load())
}

func TestRemoteRepository_MaxCommitsMeansShallow(t *testing.T) {
	f := newFakeGitHub()
	f.branches["main"] = f.linear(1, 10, "")
	f.pageSize = 4
	repo := newTestRepo(t, f.handler(), WithMaxCommits(5))

	commits, err := repo.CommitsToHead()
	require.NoError(t, err)
	require.Len(t, commits, 5)
	require.True(t, repo.IsHistoryShallow())
}

func TestRemoteRepository_ExactlyMaxCommitsIsComplete(t *testing.T) {
	f := newFakeGitHub()
	f.branches["main"] = f.linear(1, 5, "")
	repo := newTestRepo(t, f.handler(), WithMaxCommits(5))

	require.False(t, repo.IsHistoryShallow())
}

func TestRemoteRepository_TruncatedBaseWalkMeansShallow(t *testing.T) {
	f := newFakeGitHub()
	old := f.linear(1, 3, "")
	f.tags["v0.1"] = old
	f.branches["main"] = f.linear(4, 10, old)
	repo := newTestRepo(t, f.handler(), WithRef("v0.1"), WithMaxCommits(5))

	head, err := repo.CommitsToHead()
	require.NoError(t, err)
	require.Equal(t, []string{sha(3), sha(2), sha(1)}, head)
	require.False(t, repo.IsHistoryShallow())

	base, err := repo.CommitsUpTo("main")
	require.NoError(t, err)
	require.Equal(t, []string{sha(13), sha(12), sha(11), sha(10), sha(9)}, base)
	require.True(t, repo.IsHistoryShallow())
}

func TestRemoteRepository_LimitedBaseWalkIsNotShallow(t *testing.T) {
	f := newFakeGitHub()
	f.branches["main"] = f.linear(1, 4, "")
	repo := newTestRepo(t, f.handler(), WithMaxCommits(5))

	limited, err := repo.CommitsUpTo("main", "--max-count=2")
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.False(t, repo.IsHistoryShallow())
}

func TestRemoteRepository_Dates(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler())

	initial, err := repo.InitialCommitDate()
	require.NoError(t, err)
	require.Equal(t, fakeEpoch.Add(time.Minute).Unix(), initial)

	// Dates of walked commits come from the GraphQL history.
	date, err := repo.CommitDate(sha(4))
	require.NoError(t, err)
	require.Equal(t, fakeEpoch.Add(4*time.Minute).Unix(), date)
	require.Equal(t, int32(0), f.commitCalls.Load())

	// Other commits fall back to the REST API.
	date, err = repo.CommitDate(sha(11))
	require.NoError(t, err)
	require.Equal(t, fakeEpoch.Add(11*time.Minute).Unix(), date)
	require.Equal(t, int32(1), f.commitCalls.Load())

	_, err = repo.CommitDate(sha(99))
	require.Error(t, err)
}

func TestRemoteRepository_CachesHistory(t *testing.T) {
	f := featureFake()
	repo := newTestRepo(t, f.handler())

	_, err := repo.CommitsToHead()
	require.NoError(t, err)
	_, err = repo.CommitsToHead()
	require.NoError(t, err)
	_, err = repo.CommitsUpTo(sha(5))
	require.NoError(t, err)
	require.Equal(t, int32(1), f.graphQLCalls.Load())
}

func TestRemoteRepository_LocalChanges(t *testing.T) {
	repo := newTestRepo(t, featureFake().handler())
	changes, err := repo.LocalChanges()
	require.NoError(t, err)
	require.Equal(t, git.NoChanges, changes)
}

func TestRemoteRepository_WithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := newTestRepo(t, featureFake().handler(), WithContext(ctx))
	require.False(t, repo.IsReady())
}

func TestRemoteRepository_Path(t *testing.T) {
	repo := NewRemoteRepository(gh.NewClient(nil), "acme", "widgets")
	require.Equal(t, "github.com/acme/widgets", repo.Path())
}

func TestFetchFileContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/contents/gitversioner.yml", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "develop", r.URL.Query().Get("ref"))
		// GitHub Contents API returns base64-encoded content.
		writeJSON(w, map[string]interface{}{
			"type":     "file",
			"encoding": "base64",
			"content":  "YmFzZS1icmFuY2g6IGRldmVsb3A=", // "base-branch: develop"
		})
	})
	repo := newTestRepo(t, mux, WithRef("develop"))

	content, err := repo.FetchFileContent("gitversioner.yml")
	require.NoError(t, err)
	require.Equal(t, "base-branch: develop", content)
}

func TestFetchFileContent_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/testowner/testrepo/contents/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})
	repo := newTestRepo(t, mux)

	_, err := repo.FetchFileContent("nonexistent.yml")
	require.Error(t, err)
	require.True(t, IsNotFoundError(err))
}

func TestGraphQL_ErrorResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "something went wrong"}},
		})
	})
	repo := newTestRepo(t, mux)

	_, err := repo.CommitsUpTo("main")
	require.Error(t, err)
	require.Contains(t, err.Error(), "something went wrong")
}

func TestGraphQL_HTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	repo := newTestRepo(t, mux)

	_, err := repo.CommitsUpTo("main")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestDeriveGraphQLURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"https://ghe.example.com/api/v3", "https://ghe.example.com/api/graphql"},
		{"https://ghe.example.com/api/v3/", "https://ghe.example.com/api/graphql"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080/graphql"},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080/graphql"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			require.Equal(t, tt.want, deriveGraphQLURL(tt.baseURL))
		})
	}
}

func TestWalkFirstParents(t *testing.T) {
	parents := map[string]string{"c": "b", "b": "a", "a": ""}
	require.Equal(t, historyResult{commits: []string{"c", "b", "a"}}, walkFirstParents("c", parents, 10))
	require.Equal(t, historyResult{commits: []string{"c", "b"}, truncated: true}, walkFirstParents("c", parents, 2))

	partial := map[string]string{"c": "b"}
	require.Equal(t, historyResult{commits: []string{"c"}, truncated: true}, walkFirstParents("c", partial, 10))
}

func TestHistoryKey(t *testing.T) {
	require.Equal(t, "main", historyKey("main"))
	require.Equal(t, "main:n=5:first-parent", historyKey("main", "n=5", " ", "first-parent"))
}
