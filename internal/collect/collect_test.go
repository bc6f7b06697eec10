package collect_test

import (
	"context"
	"log/slog"
	"io"

	"github.com/sevigo/code-warden/internal/forge"
)

// fakeForge is a deterministic, in-memory forge.Client used across the
// collector tests. Only the methods a given test exercises return
// meaningful data; everything else defaults to a zero-value/false.
type fakeForge struct {
	repo              *forge.Repository
	defaultBranch     string
	commitPages       [][]*forge.Commit
	commitsBySHA      map[string]*forge.Commit
	prPages           [][]*forge.PullRequest
	prCommitSHAs      map[int][]string
	prComments        map[int][]*forge.Comment
	issuePages        [][]*forge.Issue
	issueComments     map[int][]*forge.Comment
	tree              *forge.Tree
	release           *forge.Release
	rawContent        map[string]string
}

func newFakeForge() *fakeForge {
	return &fakeForge{
		commitsBySHA:  make(map[string]*forge.Commit),
		prCommitSHAs:  make(map[int][]string),
		prComments:    make(map[int][]*forge.Comment),
		issueComments: make(map[int][]*forge.Comment),
		rawContent:    make(map[string]string),
	}
}

func (f *fakeForge) GetRepo(ctx context.Context, owner, repo string) (*forge.Repository, bool) {
	if f.repo == nil {
		return nil, false
	}
	return f.repo, true
}

func (f *fakeForge) ListCommits(ctx context.Context, owner, repo string, page int) ([]*forge.Commit, bool) {
	if page < 1 || page > len(f.commitPages) {
		return nil, false
	}
	return f.commitPages[page-1], true
}

func (f *fakeForge) GetCommit(ctx context.Context, owner, repo, sha string) (*forge.Commit, bool) {
	c, ok := f.commitsBySHA[sha]
	return c, ok
}

func (f *fakeForge) ListPullRequests(ctx context.Context, owner, repo string, page int) ([]*forge.PullRequest, bool) {
	if page < 1 || page > len(f.prPages) {
		return nil, false
	}
	return f.prPages[page-1], true
}

func (f *fakeForge) ListPullRequestCommitSHAs(ctx context.Context, owner, repo string, number int) ([]string, bool) {
	shas, ok := f.prCommitSHAs[number]
	return shas, ok
}

func (f *fakeForge) ListPullRequestComments(ctx context.Context, owner, repo string, number, page int) ([]*forge.Comment, bool) {
	if page != 1 {
		return nil, false
	}
	c, ok := f.prComments[number]
	return c, ok
}

func (f *fakeForge) ListIssues(ctx context.Context, owner, repo string, page int) ([]*forge.Issue, bool) {
	if page < 1 || page > len(f.issuePages) {
		return nil, false
	}
	return f.issuePages[page-1], true
}

func (f *fakeForge) ListIssueComments(ctx context.Context, owner, repo string, number, page int) ([]*forge.Comment, bool) {
	if page != 1 {
		return nil, false
	}
	c, ok := f.issueComments[number]
	return c, ok
}

func (f *fakeForge) GetDefaultBranch(ctx context.Context, owner, repo string) (string, bool) {
	if f.defaultBranch == "" {
		return "", false
	}
	return f.defaultBranch, true
}

func (f *fakeForge) GetTree(ctx context.Context, owner, repo, ref string) (*forge.Tree, bool) {
	if f.tree == nil {
		return nil, false
	}
	return f.tree, true
}

func (f *fakeForge) GetLatestRelease(ctx context.Context, owner, repo string) (*forge.Release, bool) {
	if f.release == nil {
		return nil, false
	}
	return f.release, true
}

func (f *fakeForge) FetchRaw(ctx context.Context, url string) (string, bool) {
	content, ok := f.rawContent[url]
	return content, ok
}

var _ forge.Client = (*fakeForge)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
