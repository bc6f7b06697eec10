// Package forge implements the Forge HTTP Client (C1): an authenticated,
// rate-limit-aware wrapper over the GitHub REST API, grounded on
// sevigo-code-warden/internal/github/client.go's PAT-authenticated
// go-github client and original_source/collectors/github_request.py's
// exact backoff timing. Pagination stays the caller's responsibility
// (spec.md §4.1): every List* method except ListPullRequestCommitSHAs
// takes a page and returns one page; ListPullRequestCommitSHAs returns
// only the first page (up to 100 SHAs).
package forge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

const perPage = 100

// Client is the forge operation set collectors depend on. Every method
// follows spec.md §4.1's "null on failure, not an error" contract:
// non-2xx responses and network failures are logged and yield a false
// ok; only rate-limit responses (403 with a reset time, or a secondary
// limit carrying Retry-After) are retried internally.
type Client interface {
	GetRepo(ctx context.Context, owner, repo string) (*Repository, bool)
	ListCommits(ctx context.Context, owner, repo string, page int) ([]*Commit, bool)
	GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, bool)
	ListPullRequests(ctx context.Context, owner, repo string, page int) ([]*PullRequest, bool)
	ListPullRequestCommitSHAs(ctx context.Context, owner, repo string, number int) ([]string, bool)
	ListPullRequestComments(ctx context.Context, owner, repo string, number, page int) ([]*Comment, bool)
	ListIssues(ctx context.Context, owner, repo string, page int) ([]*Issue, bool)
	ListIssueComments(ctx context.Context, owner, repo string, number, page int) ([]*Comment, bool)
	GetDefaultBranch(ctx context.Context, owner, repo string) (string, bool)
	GetTree(ctx context.Context, owner, repo, ref string) (*Tree, bool)
	GetLatestRelease(ctx context.Context, owner, repo string) (*Release, bool)
	FetchRaw(ctx context.Context, url string) (string, bool)
}

type client struct {
	gh     *github.Client
	raw    *http.Client
	logger *slog.Logger
}

// NewPATClient authenticates against GitHub with a Personal Access Token,
// matching sevigo-code-warden/internal/github/client.go's NewPATClient.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &client{
		gh:     github.NewClient(tc),
		raw:    &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// withRateLimitRetry executes op; on a rate-limit error it sleeps until
// reset+1s and retries the same call, per spec.md §4.1, and on a secondary
// rate-limit error carrying Retry-After it sleeps that long and retries.
// Any other error is logged and reported as a non-ok result, never retried.
func withRateLimitRetry[T any](ctx context.Context, c *client, op func() (T, *github.Response, error)) (T, bool) {
	for {
		result, resp, err := op()
		if err == nil {
			return result, true
		}

		var rle *github.RateLimitError
		if errors.As(err, &rle) {
			wait := time.Until(rle.Rate.Reset.Time) + time.Second
			if wait < 0 {
				wait = time.Second
			}
			c.logger.WarnContext(ctx, "github rate limit reached, waiting", "wait", wait)
			select {
			case <-ctx.Done():
				var zero T
				return zero, false
			case <-time.After(wait):
			}
			continue
		}

		var aerr *github.AbuseRateLimitError
		if errors.As(err, &aerr) && aerr.RetryAfter != nil {
			c.logger.WarnContext(ctx, "github secondary rate limit, waiting", "wait", *aerr.RetryAfter)
			select {
			case <-ctx.Done():
				var zero T
				return zero, false
			case <-time.After(*aerr.RetryAfter):
			}
			continue
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.logger.ErrorContext(ctx, "github api error", "status", status, "error", err)
		var zero T
		return zero, false
	}
}

func (c *client) GetRepo(ctx context.Context, owner, repo string) (*Repository, bool) {
	r, ok := withRateLimitRetry(ctx, c, func() (*github.Repository, *github.Response, error) {
		return c.gh.Repositories.Get(ctx, owner, repo)
	})
	if !ok || r == nil {
		return nil, false
	}
	return &Repository{
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		HTMLURL:     r.GetHTMLURL(),
		UpdatedAt:   r.GetUpdatedAt().Time,
	}, true
}

func (c *client) GetDefaultBranch(ctx context.Context, owner, repo string) (string, bool) {
	r, ok := c.GetRepo(ctx, owner, repo)
	if !ok {
		return "main", false
	}
	full, ok2 := withRateLimitRetry(ctx, c, func() (*github.Repository, *github.Response, error) {
		return c.gh.Repositories.Get(ctx, owner, repo)
	})
	if !ok2 || full == nil || full.GetDefaultBranch() == "" {
		_ = r
		return "main", false
	}
	return full.GetDefaultBranch(), true
}

func (c *client) ListCommits(ctx context.Context, owner, repo string, page int) ([]*Commit, bool) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: perPage, Page: page}}
	commits, ok := withRateLimitRetry(ctx, c, func() ([]*github.RepositoryCommit, *github.Response, error) {
		return c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	})
	if !ok {
		return nil, false
	}
	out := make([]*Commit, 0, len(commits))
	for _, rc := range commits {
		out = append(out, translateCommit(rc))
	}
	return out, true
}

func (c *client) GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, bool) {
	rc, ok := withRateLimitRetry(ctx, c, func() (*github.RepositoryCommit, *github.Response, error) {
		return c.gh.Repositories.GetCommit(ctx, owner, repo, sha, &github.ListOptions{PerPage: perPage})
	})
	if !ok || rc == nil {
		return nil, false
	}
	out := translateCommit(rc)
	for _, f := range rc.Files {
		out.Files = append(out.Files, CommitFile{
			Filename: f.GetFilename(),
			Status:   f.GetStatus(),
			Patch:    f.GetPatch(),
			RawURL:   f.GetRawURL(),
		})
	}
	return out, true
}

func translateCommit(rc *github.RepositoryCommit) *Commit {
	commit := rc.GetCommit()
	out := &Commit{SHA: rc.GetSHA(), Message: commit.GetMessage()}
	if a := commit.GetAuthor(); a != nil {
		out.Author = Person{Name: a.GetName(), Email: a.GetEmail()}
		out.Date = a.GetDate().Time
	}
	if cm := commit.GetCommitter(); cm != nil {
		out.Committer = Person{Name: cm.GetName(), Email: cm.GetEmail()}
		if out.Date.IsZero() {
			out.Date = cm.GetDate().Time
		}
	}
	return out
}

func (c *client) ListPullRequests(ctx context.Context, owner, repo string, page int) ([]*PullRequest, bool) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: perPage, Page: page},
	}
	prs, ok := withRateLimitRetry(ctx, c, func() ([]*github.PullRequest, *github.Response, error) {
		return c.gh.PullRequests.List(ctx, owner, repo, opts)
	})
	if !ok {
		return nil, false
	}
	out := make([]*PullRequest, 0, len(prs))
	for _, pr := range prs {
		labels := make([]string, 0, len(pr.Labels))
		for _, l := range pr.Labels {
			labels = append(labels, l.GetName())
		}
		var merged *time.Time
		if pr.MergedAt != nil {
			t := pr.GetMergedAt().Time
			merged = &t
		}
		out = append(out, &PullRequest{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			State:     pr.GetState(),
			Author:    pr.GetUser().GetLogin(),
			Labels:    labels,
			HTMLURL:   pr.GetHTMLURL(),
			Body:      pr.GetBody(),
			CreatedAt: pr.GetCreatedAt().Time,
			UpdatedAt: pr.GetUpdatedAt().Time,
			MergedAt:  merged,
			Comments:  pr.GetComments(),
		})
	}
	return out, true
}

func (c *client) ListPullRequestCommitSHAs(ctx context.Context, owner, repo string, number int) ([]string, bool) {
	opts := &github.ListOptions{PerPage: perPage}
	commits, ok := withRateLimitRetry(ctx, c, func() ([]*github.RepositoryCommit, *github.Response, error) {
		return c.gh.PullRequests.ListCommits(ctx, owner, repo, number, opts)
	})
	if !ok {
		return nil, false
	}
	shas := make([]string, 0, len(commits))
	for _, rc := range commits {
		shas = append(shas, rc.GetSHA())
	}
	return shas, true
}

func (c *client) ListPullRequestComments(ctx context.Context, owner, repo string, number, page int) ([]*Comment, bool) {
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: perPage, Page: page}}
	comments, ok := withRateLimitRetry(ctx, c, func() ([]*github.PullRequestComment, *github.Response, error) {
		return c.gh.PullRequests.ListComments(ctx, owner, repo, number, opts)
	})
	if !ok {
		return nil, false
	}
	out := make([]*Comment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, &Comment{
			ID:        cm.GetID(),
			Body:      cm.GetBody(),
			Author:    cm.GetUser().GetLogin(),
			CreatedAt: cm.GetCreatedAt().Time,
			UpdatedAt: cm.GetUpdatedAt().Time,
		})
	}
	return out, true
}

func (c *client) ListIssues(ctx context.Context, owner, repo string, page int) ([]*Issue, bool) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: perPage, Page: page},
	}
	issues, ok := withRateLimitRetry(ctx, c, func() ([]*github.Issue, *github.Response, error) {
		return c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
	})
	if !ok {
		return nil, false
	}
	out := make([]*Issue, 0, len(issues))
	for _, is := range issues {
		labels := make([]string, 0, len(is.Labels))
		for _, l := range is.Labels {
			labels = append(labels, l.GetName())
		}
		out = append(out, &Issue{
			Number:        is.GetNumber(),
			Title:         is.GetTitle(),
			State:         is.GetState(),
			Author:        is.GetUser().GetLogin(),
			Labels:        labels,
			HTMLURL:       is.GetHTMLURL(),
			Body:          is.GetBody(),
			CreatedAt:     is.GetCreatedAt().Time,
			UpdatedAt:     is.GetUpdatedAt().Time,
			Comments:      is.GetComments(),
			IsPullRequest: is.IsPullRequest(),
		})
	}
	return out, true
}

func (c *client) ListIssueComments(ctx context.Context, owner, repo string, number, page int) ([]*Comment, bool) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: perPage, Page: page}}
	comments, ok := withRateLimitRetry(ctx, c, func() ([]*github.IssueComment, *github.Response, error) {
		return c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
	})
	if !ok {
		return nil, false
	}
	out := make([]*Comment, 0, len(comments))
	for _, cm := range comments {
		out = append(out, &Comment{
			ID:        cm.GetID(),
			Body:      cm.GetBody(),
			Author:    cm.GetUser().GetLogin(),
			CreatedAt: cm.GetCreatedAt().Time,
			UpdatedAt: cm.GetUpdatedAt().Time,
		})
	}
	return out, true
}

func (c *client) GetTree(ctx context.Context, owner, repo, ref string) (*Tree, bool) {
	tree, ok := withRateLimitRetry(ctx, c, func() (*github.Tree, *github.Response, error) {
		return c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	})
	if !ok || tree == nil {
		return nil, false
	}
	out := &Tree{}
	for _, e := range tree.Entries {
		out.Entries = append(out.Entries, TreeEntry{
			Path: e.GetPath(),
			SHA:  e.GetSHA(),
			Type: e.GetType(),
			URL:  e.GetURL(),
		})
	}
	return out, true
}

func (c *client) GetLatestRelease(ctx context.Context, owner, repo string) (*Release, bool) {
	r, ok := withRateLimitRetry(ctx, c, func() (*github.RepositoryRelease, *github.Response, error) {
		return c.gh.Repositories.GetLatestRelease(ctx, owner, repo)
	})
	if !ok || r == nil {
		return nil, false
	}
	return &Release{TagName: r.GetTagName()}, true
}

// FetchRaw fetches a non-API raw content URL (e.g. raw.githubusercontent.com),
// used for branch/release tree blob content and commit "added" file content.
// go-github has no binding for arbitrary raw URLs, matching
// original_source/collectors/github_files.py's get_content.
func (c *client) FetchRaw(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to build raw request", "url", url, "error", err)
		return "", false
	}
	resp, err := c.raw.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "network error fetching raw content", "url", url, "error", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
			// Raw content host does not honor GitHub API rate limits in
			// practice, but spec.md §4.1 applies the same contract
			// uniformly: treat a 403+reset the same way the API client
			// does rather than special-casing raw fetches.
			if secs, err := strconv.ParseInt(reset, 10, 64); err == nil {
				wait := time.Until(time.Unix(secs, 0)) + time.Second
				if wait < 0 {
					wait = time.Second
				}
				c.logger.WarnContext(ctx, "raw content host rate limited, waiting", "url", url, "wait", wait)
				resp.Body.Close()
				select {
				case <-ctx.Done():
					return "", false
				case <-time.After(wait):
				}
				return c.FetchRaw(ctx, url)
			}
			c.logger.WarnContext(ctx, "raw content host rate limited", "url", url, "reset", reset)
		}
		return "", false
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "raw content fetch failed", "url", url, "status", resp.StatusCode)
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(body), true
}
