// Package docstore implements the Document Store Gateway (C2): a thin
// typed surface over named collections with upsert, bulk-write, and
// find-by-id operations, plus index bootstrapping. The backing driver is
// PostgreSQL (see DESIGN.md) — the interface below is the logical contract
// spec.md §4.2 requires, independent of that choice.
package docstore

import "context"

// Filter selects documents by equality on one or more fields. A field
// whose value is an In slice matches any of the listed values ("$in"
// semantics); any other value matches by equality.
type Filter map[string]any

// In wraps a set of values for a Filter field, matching spec.md §4.2's
// "filter" shape where a field may need to match one of several values
// (e.g. collection_src ∈ collections).
type In []any

// FindOptions controls sort order and result size for Find.
type FindOptions struct {
	// Sort is a raw "<column> ASC|DESC" fragment understood by the
	// concrete collection's promoted columns (see schema.go). Empty
	// means unspecified order.
	Sort  string
	Limit int
}

// UpsertOp is a single operation in a BulkWrite batch: apply filter, set
// doc. This realizes spec.md §9's bulk-write contract ("apply these
// {filter, {$set: doc}} upserts in a batch") as one Go type.
type UpsertOp struct {
	Filter Filter
	Doc    any
}

// Gateway is the typed surface over the document store that every
// component above C2 depends on. All operations are idempotent-safe to
// retry: FindOne/Find are pure reads; InsertMany/UpdateOne/BulkWrite use
// upsert-by-id semantics; DeleteMany is a set-based delete.
type Gateway interface {
	// FindOne decodes the first document matching filter into dest (a
	// pointer). Returns (false, nil) if nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter, dest any) (bool, error)

	// Find decodes all documents matching filter into dest (a pointer to
	// a slice of the document type).
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions, dest any) error

	// InsertMany writes each document by its id, replacing any existing
	// document with the same id; each doc must carry a non-empty "id"
	// field in its JSON representation.
	InsertMany(ctx context.Context, collection string, docs []any) error

	// UpdateOne applies doc to the single document matching filter. If
	// upsert is true and no document matches, doc is inserted.
	UpdateOne(ctx context.Context, collection string, filter Filter, doc any, upsert bool) error

	// BulkWrite applies a batch of upserts atomically.
	BulkWrite(ctx context.Context, collection string, ops []UpsertOp) error

	// DeleteMany deletes every document matching filter and returns the
	// count removed.
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)

	// Close releases the gateway's underlying resources.
	Close() error
}
