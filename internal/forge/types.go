package forge

import "time"

// The types below are thin, forge-neutral DTOs translated out of the
// go-github response envelopes. Collectors build core.* domain entities
// from these; the forge package itself never imports internal/core, so it
// stays reusable behind a "forge" name rather than a GitHub-specific one.

type Repository struct {
	FullName    string
	Description string
	Language    string
	HTMLURL     string
	UpdatedAt   time.Time
}

type Person struct {
	Name  string
	Email string
}

type CommitFile struct {
	Filename string
	Status   string
	Patch    string
	RawURL   string
}

type Commit struct {
	SHA       string
	Message   string
	Author    Person
	Committer Person
	Date      time.Time
	Files     []CommitFile
}

type PullRequest struct {
	Number    int
	Title     string
	State     string
	Author    string
	Labels    []string
	HTMLURL   string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	MergedAt  *time.Time
	Comments  int
}

type Issue struct {
	Number        int
	Title         string
	State         string
	Author        string
	Labels        []string
	HTMLURL       string
	Body          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Comments      int
	IsPullRequest bool
}

type Comment struct {
	ID        int64
	Body      string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TreeEntry struct {
	Path string
	SHA  string
	Type string // "blob" or "tree"
	URL  string // API content URL for blob retrieval
}

type Tree struct {
	Entries []TreeEntry
}

type Release struct {
	TagName string
}
