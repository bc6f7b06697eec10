package docstore

// columnKind describes how a promoted column's JSON value is coerced into
// a SQL parameter.
type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindBool
	kindTimestamp
	kindTextArray
)

// column is one promoted column of a collection's table: every collection
// also carries an opaque "data" JSONB column holding the full document.
type column struct {
	name string
	kind columnKind
}

// collectionSchemas is keyed by collection name (spec.md §3/§4.2). Columns
// here must match the `internal/db/migrations` SQL and the `json:"..."`
// tag of the corresponding core type, since promotion extracts values by
// JSON key out of the marshaled document.
var collectionSchemas = map[string][]column{
	"repositories": {
		{"id", kindText},
		{"last_commit_at", kindTimestamp},
	},
	"commits": {
		{"id", kindText},
		{"repo", kindText},
		{"timestamp", kindTimestamp},
		{"metadata_id", kindText},
	},
	"contributors": {
		{"id", kindText}, // email
		{"total_commits", kindInt},
	},
	"files": {
		{"id", kindText},
		{"commit_id", kindText},
		{"repo", kindText},
		{"metadata_id", kindText},
	},
	"lfs_pointers": {
		{"id", kindText},
		{"file_id", kindText},
	},
	"metadata": {
		{"id", kindText},
		{"repo", kindText},
		{"collection_src", kindText},
		{"metadata_version", kindInt},
		{"file_hash", kindText},
	},
	"chunks": {
		{"id", kindText},
		{"metadata_id", kindText},
		{"chunk_index", kindInt},
		{"has_embedding", kindBool},
	},
	"issues": {
		{"id", kindText},
		{"repo", kindText},
		{"state", kindText},
		{"updated_at", kindTimestamp},
		{"labels", kindTextArray},
	},
	"pull_requests": {
		{"id", kindText},
		{"repo", kindText},
		{"state", kindText},
		{"updated_at", kindTimestamp},
		{"labels", kindTextArray},
	},
	"issue_comments": {
		{"id", kindText},
		{"repo", kindText},
		{"parent_number", kindInt},
	},
	"pull_request_comments": {
		{"id", kindText},
		{"repo", kindText},
		{"parent_number", kindInt},
	},
	"main_files": {
		{"id", kindText},
		{"repo", kindText},
		{"path", kindText},
		{"metadata_id", kindText},
	},
	"last_release_files": {
		{"id", kindText},
		{"repo", kindText},
		{"path", kindText},
		{"metadata_id", kindText},
	},
}

// chunkHasEmbeddingDerivedKey names a derived column: it is not a field of core.Chunk's
// JSON shape but is computed from whether "embedding" is a non-empty
// array, to back the sparse index on chunks(embedding exists) (spec.md
// §4.2).
const chunkHasEmbeddingDerivedKey = "has_embedding"
