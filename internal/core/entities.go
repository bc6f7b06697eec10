// Package core defines the data model shared across the ingestion and
// retrieval pipeline. Types here are plain structs with no behavior; every
// cross-collection reference is a string id, never a pointer, so that
// collections can be persisted and reloaded independently of each other.
package core

import "time"

// FileStatus is the state of a changed file within a commit.
type FileStatus string

const (
	FileStatusAdded    FileStatus = "added"
	FileStatusModified FileStatus = "modified"
	FileStatusRemoved  FileStatus = "removed"
	FileStatusRenamed  FileStatus = "renamed"
)

// Repository is the root record for a collected forge repository.
type Repository struct {
	ID               string    `db:"id" json:"id"` // "<owner>/<name>"
	Description      string    `db:"description" json:"description"`
	PrimaryLanguage  string    `db:"primary_language" json:"primary_language"`
	URL              string    `db:"url" json:"url"`
	LastCommitAt     time.Time `db:"last_commit_at" json:"last_commit_at"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Person is an author/committer identity as reported by the forge.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit is immutable once inserted; a collector never updates a stored
// commit, only inserts commits not already present (I1).
type Commit struct {
	ID            string    `db:"id" json:"id"` // commit hash
	Repo          string    `db:"repo" json:"repo"`
	Message       string    `db:"message" json:"message"`
	Author        Person    `db:"-" json:"author"`
	Committer     Person    `db:"-" json:"committer"`
	Timestamp     time.Time `db:"timestamp" json:"timestamp"`
	FilesChanged  []string  `db:"-" json:"files_changed"`
	MetadataID    string    `db:"metadata_id" json:"metadata_id,omitempty"`
}

// ChangedFile is the per-path record of a single commit.
type ChangedFile struct {
	ID           string     `db:"id" json:"id"` // "<commit-hash>_<path>"
	Repo         string     `db:"repo" json:"repo"`
	CommitID     string     `db:"commit_id" json:"commit_id"`
	Path         string     `db:"path" json:"path"`
	Status       FileStatus `db:"status" json:"status"`
	Patch        string     `db:"patch" json:"patch,omitempty"`
	LFSPointerID string     `db:"lfs_pointer_id" json:"lfs_pointer_id,omitempty"`
	ExternalURL  string     `db:"external_url" json:"external_url,omitempty"`
	MetadataID   string     `db:"metadata_id" json:"metadata_id,omitempty"`
}

// LFSPointer is the parsed content of a Git LFS pointer file, recognized by
// LFSPointerPrefix appearing at the start of a raw blob.
const LFSPointerPrefix = "version https://git-lfs.github.com/spec/v1"

type LFSPointer struct {
	ID          string `db:"id" json:"id"` // "<commit>_<path>_lfs"
	FileID      string `db:"file_id" json:"file_id"`
	OIDKind     string `db:"oid_kind" json:"oid_kind"`
	OID         string `db:"oid" json:"oid"`
	Size        string `db:"size" json:"size"`
	ExternalURL string `db:"external_url" json:"external_url,omitempty"`
}

// PullRequest mirrors the forge PR resource plus a locally-resolved commit
// list (I2: every entry is a commit present in the Commit collection).
type PullRequest struct {
	ID         string    `db:"id" json:"id"` // "<repo>_<number>"
	Repo       string    `db:"repo" json:"repo"`
	Number     int       `db:"number" json:"number"`
	Title      string    `db:"title" json:"title"`
	State      string    `db:"state" json:"state"`
	Author     string    `db:"author" json:"author"`
	Labels     []string  `db:"-" json:"labels"`
	HTMLURL    string    `db:"html_url" json:"html_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	MergedAt   *time.Time `db:"merged_at" json:"merged_at,omitempty"`
	Commits    []string  `db:"-" json:"commits"`
	BodyURL    string    `db:"body_url" json:"body_url,omitempty"`
	MetadataID string    `db:"metadata_id" json:"metadata_id,omitempty"`
}

// Issue mirrors the forge issue resource; entries carrying a pull-request
// linkage are filtered out by the collector before ever reaching this type.
type Issue struct {
	ID         string    `db:"id" json:"id"` // "<repo>_<number>"
	Repo       string    `db:"repo" json:"repo"`
	Number     int       `db:"number" json:"number"`
	Title      string    `db:"title" json:"title"`
	State      string    `db:"state" json:"state"`
	Author     string    `db:"author" json:"author"`
	Labels     []string  `db:"-" json:"labels"`
	HTMLURL    string    `db:"html_url" json:"html_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Body       string    `db:"-" json:"body,omitempty"`
	MetadataID string    `db:"metadata_id" json:"metadata_id,omitempty"`
}

// IssueComment and PullRequestComment share a shape: a single comment body
// keyed to its parent issue/PR number, upserted by body-change detection.
type IssueComment struct {
	ID            string    `db:"id" json:"id"` // "<repo>_<parent-number>_<comment-id>"
	Repo          string    `db:"repo" json:"repo"`
	ParentNumber  int       `db:"parent_number" json:"parent_number"`
	Body          string    `db:"body" json:"body"`
	Author        string    `db:"author" json:"author"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type PullRequestComment struct {
	ID           string    `db:"id" json:"id"`
	Repo         string    `db:"repo" json:"repo"`
	ParentNumber int       `db:"parent_number" json:"parent_number"`
	Body         string    `db:"body" json:"body"`
	Author       string    `db:"author" json:"author"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TreeScope distinguishes a default-branch snapshot from a release snapshot.
type TreeScope string

const (
	TreeScopeBranch  TreeScope = "branch"
	TreeScopeRelease TreeScope = "release"
)

// BranchFile and ReleaseFile are reconciled snapshots of a git tree: a
// listing pass inserts new paths, updates changed-SHA paths, and deletes
// paths absent from the new listing (true reconciliation, §4.4).
type BranchFile struct {
	ID          string `db:"id" json:"id"` // "<repo>_main_<path>"
	Repo        string `db:"repo" json:"repo"`
	Path        string `db:"path" json:"path"`
	BlobSHA     string `db:"blob_sha" json:"blob_sha"`
	ExternalURL string `db:"external_url" json:"external_url,omitempty"`
	MetadataID  string `db:"metadata_id" json:"metadata_id,omitempty"`
}

type ReleaseFile struct {
	ID          string `db:"id" json:"id"` // "<repo>_last_release_<path>"
	Repo        string `db:"repo" json:"repo"`
	Path        string `db:"path" json:"path"`
	BlobSHA     string `db:"blob_sha" json:"blob_sha"`
	ExternalURL string `db:"external_url" json:"external_url,omitempty"`
	MetadataID  string `db:"metadata_id" json:"metadata_id,omitempty"`
}

// Contributor is a derived roll-up rebuilt from the Commit collection by
// the aggregator (C5); it is never written to by the collectors directly.
type Contributor struct {
	Email         string   `db:"id" json:"id"` // id = email
	Name          string   `db:"name" json:"name"`
	Repos         []string `db:"-" json:"repos"`
	TotalCommits  int      `db:"total_commits" json:"total_commits"`
	LastCommitIDs []string `db:"-" json:"last_commit_ids"` // most recent 10, append order
}

// Metadata is the generator's per-source-document record tying extracted
// text to its chunks, hash, and schema version (I3).
type Metadata struct {
	ID              string    `db:"id" json:"id"` // "meta_<repo>_<collection>_<sourceId>"
	Repo            string    `db:"repo" json:"repo"`
	CollectionSrc   string    `db:"collection_src" json:"collection_src"`
	SourceID        string    `db:"source_id" json:"source_id"`
	Language        string    `db:"language" json:"language"`
	Description     string    `db:"description" json:"description,omitempty"`
	Tags            []string  `db:"-" json:"tags"`
	ChunkIDs        []string  `db:"-" json:"chunk_ids"`
	SourceURL       string    `db:"source_url" json:"source_url"`
	MetadataVersion int       `db:"metadata_version" json:"metadata_version"`
	FileHash        string    `db:"file_hash" json:"file_hash"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Chunk is the retrieval unit: a contiguous slice of a source document's
// extracted text, plus its dense embedding vector (I4).
type Chunk struct {
	ID         string    `db:"id" json:"id"` // "<metadata_id>_chunk_<index>"
	MetadataID string    `db:"metadata_id" json:"metadata_id"`
	Index      int       `db:"chunk_index" json:"chunk_index"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"-" json:"embedding,omitempty"`
}

// CurrentMetadataVersion is the generator's schema version (I3); bumping
// it triggers global chunk regeneration on the next pass over each source.
const CurrentMetadataVersion = 1

// File categories used to select a chunking strategy and to decide whether
// a document is eligible for metadata generation at all (binary is not).
type FileCategory string

const (
	CategoryCode    FileCategory = "code"
	CategoryDoc     FileCategory = "doc"
	CategoryConfig  FileCategory = "config"
	CategoryLog     FileCategory = "log"
	CategoryBinary  FileCategory = "binary"
	CategoryUnknown FileCategory = "unknown"
)
