package github

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/MyCarrier-DevOps/go-gitversioner/internal/git"
	gh "github.com/google/go-github/v68/github"
)

// Compile-time check that RemoteRepository implements git.Repository.
var _ git.Repository = (*RemoteRepository)(nil)

// DefaultMaxCommits caps commit walks. A history longer than the cap is
// reported as shallow, whether it is HEAD's or a ref walked by CommitsUpTo.
const DefaultMaxCommits = 1000

// RemoteRepository implements git.Repository using the GitHub API. It has
// no working tree, so it never reports local changes.
type RemoteRepository struct {
	client     *gh.Client
	owner      string
	repo       string
	ref        string // target ref (branch name, tag, or SHA)
	baseURL    string // custom API base URL for GHE
	maxCommits int    // hard cap on commit walk depth
	cache      *apiCache
	ctx        context.Context // request context

	// upToTruncated is set once a CommitsUpTo walk hit maxCommits.
	upToTruncated atomic.Bool
}

// Option configures a RemoteRepository.
type Option func(*RemoteRepository)

// WithRef sets the versioned ref. The default branch is used when empty.
func WithRef(ref string) Option {
	return func(r *RemoteRepository) { r.ref = ref }
}

// WithMaxCommits sets the hard cap on commit walk depth.
func WithMaxCommits(n int) Option {
	return func(r *RemoteRepository) {
		if n > 0 {
			r.maxCommits = n
		}
	}
}

// WithBaseURL sets the GitHub API base URL for GitHub Enterprise.
func WithBaseURL(url string) Option {
	return func(r *RemoteRepository) { r.baseURL = url }
}

// WithContext sets the context used for API requests.
func WithContext(ctx context.Context) Option {
	return func(r *RemoteRepository) { r.ctx = ctx }
}

// NewRemoteRepository creates a RemoteRepository for owner/repo.
func NewRemoteRepository(client *gh.Client, owner, repo string, opts ...Option) *RemoteRepository {
	r := &RemoteRepository{
		client:     client,
		owner:      owner,
		repo:       repo,
		maxCommits: DefaultMaxCommits,
		cache:      newCache(),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns a display name for the repository.
func (r *RemoteRepository) Path() string {
	return fmt.Sprintf("github.com/%s/%s", r.owner, r.repo)
}

var hexPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func (r *RemoteRepository) IsReady() bool {
	_, err := r.resolveHead()
	return err == nil
}

// IsHistoryShallow reports whether HEAD's history or any ref walked by
// CommitsUpTo so far was cut at maxCommits. A truncated base walk may miss
// every commit HEAD shares with it, so it counts as shallow too.
func (r *RemoteRepository) IsHistoryShallow() bool {
	h, err := r.headHistory()
	if err != nil {
		return false
	}
	return h.truncated || r.upToTruncated.Load()
}

func (r *RemoteRepository) CurrentSha1() (string, error) {
	head, err := r.resolveHead()
	if err != nil {
		return "", err
	}
	return head.sha, nil
}

func (r *RemoteRepository) CurrentBranch() (string, error) {
	head, err := r.resolveHead()
	if err != nil {
		return "", err
	}
	return head.branch, nil
}

func (r *RemoteRepository) LocalChanges() (git.LocalChanges, error) {
	return git.NoChanges, nil
}

func (r *RemoteRepository) InitialCommitDate() (int64, error) {
	commits, err := r.CommitsToHead()
	if err != nil {
		return 0, err
	}
	if len(commits) == 0 {
		return 0, nil
	}
	return r.CommitDate(commits[len(commits)-1])
}

func (r *RemoteRepository) CommitsToHead() ([]string, error) {
	h, err := r.headHistory()
	if err != nil {
		return nil, err
	}
	return h.commits, nil
}

func (r *RemoteRepository) CommitsUpTo(ref string, args ...string) ([]string, error) {
	opts, err := git.ParseRevListArgs(args...)
	if err != nil {
		return nil, err
	}
	h, err := r.history(ref, opts)
	if err != nil {
		return nil, err
	}
	if h.truncated {
		r.upToTruncated.Store(true)
	}
	return h.commits, nil
}

func (r *RemoteRepository) CommitDate(sha string) (int64, error) {
	if date, ok := r.cache.getDate(sha); ok {
		return date, nil
	}

	ghCommit, _, err := r.client.Repositories.GetCommit(r.ctx, r.owner, r.repo, sha, nil)
	if err != nil {
		return 0, fmt.Errorf("getting commit %s: %w", sha, err)
	}
	date := authorDate(ghCommit)
	r.cache.putDate(sha, date)
	return date, nil
}

// FetchFileContent fetches a file's content at the versioned ref.
// Used to load configuration files from the remote repository.
func (r *RemoteRepository) FetchFileContent(path string) (string, error) {
	opts := &gh.RepositoryContentGetOptions{}
	if r.ref != "" {
		opts.Ref = r.ref
	}

	content, _, _, err := r.client.Repositories.GetContents(r.ctx, r.owner, r.repo, path, opts)
	if err != nil {
		return "", fmt.Errorf("fetching file %s: %w", path, err)
	}
	if content == nil {
		return "", fmt.Errorf("file %s not found", path)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding file content: %w", err)
	}
	return decoded, nil
}

// resolveHead resolves the versioned ref to a commit. Branch refs keep
// their name, SHAs and tags resolve to a detached head.
func (r *RemoteRepository) resolveHead() (resolvedHead, error) {
	if head, ok := r.cache.getHead(); ok {
		return head, nil
	}

	ref := r.ref
	if ref == "" {
		// Fetch the repository's default branch.
		repoInfo, _, err := r.client.Repositories.Get(r.ctx, r.owner, r.repo)
		if err != nil {
			return resolvedHead{}, fmt.Errorf("getting repository info: %w", err)
		}
		ref = repoInfo.GetDefaultBranch()
	}

	var head resolvedHead
	if hexPattern.MatchString(ref) {
		ghCommit, _, err := r.client.Repositories.GetCommit(r.ctx, r.owner, r.repo, ref, nil)
		if err != nil {
			return resolvedHead{}, fmt.Errorf("getting HEAD commit: %w", err)
		}
		head = resolvedHead{sha: ghCommit.GetSHA()}
		r.cache.putDate(head.sha, authorDate(ghCommit))
	} else {
		ghBranch, _, err := r.client.Repositories.GetBranch(r.ctx, r.owner, r.repo, ref, 0)
		switch {
		case err == nil:
			head = resolvedHead{sha: ghBranch.GetCommit().GetSHA(), branch: ref}
		case IsNotFoundError(err):
			// Not a branch, try a tag or other revision.
			sha, _, err := r.client.Repositories.GetCommitSHA1(r.ctx, r.owner, r.repo, ref, "")
			if err != nil {
				return resolvedHead{}, fmt.Errorf("resolving ref %s: %w", ref, err)
			}
			head = resolvedHead{sha: sha}
		default:
			return resolvedHead{}, fmt.Errorf("getting branch %s: %w", ref, err)
		}
	}

	if head.sha == "" {
		return resolvedHead{}, fmt.Errorf("ref %s resolved to an empty commit", ref)
	}
	r.cache.putHead(head)
	return head, nil
}

func (r *RemoteRepository) headHistory() (historyResult, error) {
	head, err := r.resolveHead()
	if err != nil {
		return historyResult{}, err
	}
	return r.history(head.sha, git.RevListOptions{})
}

// history walks the history of expression, consulting the cache first. An
// expression that does not resolve yields an empty walk.
func (r *RemoteRepository) history(expression string, opts git.RevListOptions) (historyResult, error) {
	limit := r.maxCommits
	if opts.MaxCount > 0 && opts.MaxCount < limit {
		limit = opts.MaxCount
	}

	key := historyKey(expression, revListKey(opts, limit)...)
	if h, ok := r.cache.getHistory(key); ok {
		return h, nil
	}

	h, found, err := r.fetchHistoryGraphQL(expression, limit, opts.FirstParent)
	if err != nil {
		return historyResult{}, err
	}
	if !found {
		h = historyResult{}
	}
	// A walk cut short by --max-count is complete as far as the caller is concerned.
	if limit < r.maxCommits {
		h.truncated = false
	}
	r.cache.putHistory(key, h)
	return h, nil
}

func revListKey(opts git.RevListOptions, limit int) []string {
	key := []string{fmt.Sprintf("n=%d", limit)}
	if opts.FirstParent {
		key = append(key, "first-parent")
	}
	return key
}

func authorDate(ghCommit *gh.RepositoryCommit) int64 {
	if ghCommit == nil || ghCommit.Commit == nil {
		return 0
	}
	if a := ghCommit.Commit.Author; a != nil && a.Date != nil {
		return a.Date.Unix()
	}
	if c := ghCommit.Commit.Committer; c != nil && c.Date != nil {
		return c.Date.Unix()
	}
	return 0
}
