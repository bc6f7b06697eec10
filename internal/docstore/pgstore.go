package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sevigo/code-warden/internal/db"
)

// pgstore is the PostgreSQL-backed Gateway implementation, grounded on
// sevigo-code-warden/internal/storage/database.go's sqlx+lib/pq upsert
// idiom, generalized from one hand-written table to the schema registry
// in schema.go.
type pgstore struct {
	db *db.DB
}

// NewPostgresGateway wraps an already-migrated *db.DB as a Gateway.
func NewPostgresGateway(database *db.DB) Gateway {
	return &pgstore{db: database}
}

func (s *pgstore) Close() error {
	return s.db.Close()
}

func (s *pgstore) FindOne(ctx context.Context, collection string, filter Filter, dest any) (bool, error) {
	where, args := buildWhere(collection, filter)
	q := fmt.Sprintf(`SELECT data FROM %s WHERE %s LIMIT 1`, collection, where)
	var raw []byte
	err := s.db.QueryRowxContext(ctx, q, args...).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("docstore: find_one %s: %w", collection, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("docstore: decode %s: %w", collection, err)
	}
	return true, nil
}

func (s *pgstore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions, dest any) error {
	where, args := buildWhere(collection, filter)
	q := fmt.Sprintf(`SELECT data FROM %s WHERE %s`, collection, where)
	if opts.Sort != "" {
		q += " ORDER BY " + opts.Sort
	}
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("docstore: find %s: %w", collection, err)
	}
	defer rows.Close()

	destVal := reflect.ValueOf(dest).Elem()
	elemType := destVal.Type().Elem()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("docstore: scan %s: %w", collection, err)
		}
		elemPtr := reflect.New(elemType)
		if err := json.Unmarshal(raw, elemPtr.Interface()); err != nil {
			return fmt.Errorf("docstore: decode %s: %w", collection, err)
		}
		destVal.Set(reflect.Append(destVal, elemPtr.Elem()))
	}
	return rows.Err()
}

func (s *pgstore) InsertMany(ctx context.Context, collection string, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, doc := range docs {
		if err := upsertOne(ctx, tx, collection, doc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgstore) UpdateOne(ctx context.Context, collection string, filter Filter, doc any, upsert bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if !upsert {
		where, args := buildWhere(collection, filter)
		var exists bool
		q := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s)`, collection, where)
		if err := tx.QueryRowxContext(ctx, q, args...).Scan(&exists); err != nil {
			return fmt.Errorf("docstore: update_one exists check %s: %w", collection, err)
		}
		if !exists {
			return nil
		}
	}

	if err := upsertOne(ctx, tx, collection, doc); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *pgstore) BulkWrite(ctx context.Context, collection string, ops []UpsertOp) error {
	if len(ops) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("docstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, op := range ops {
		if err := upsertOne(ctx, tx, collection, op.Doc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgstore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	where, args := buildWhere(collection, filter)
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s`, collection, where)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("docstore: delete_many %s: %w", collection, err)
	}
	return res.RowsAffected()
}

// upsertOne marshals doc, promotes configured columns out of it, and
// issues a single `INSERT ... ON CONFLICT (id) DO UPDATE` — the same
// upsert idiom as database.go's SaveReview, generalized across
// collections via the schema registry.
func upsertOne(ctx context.Context, tx *sqlx.Tx, collection string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("docstore: marshal doc for %s: %w", collection, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("docstore: unmarshal doc for %s: %w", collection, err)
	}

	cols, ok := collectionSchemas[collection]
	if !ok {
		return fmt.Errorf("docstore: unknown collection %q", collection)
	}
	if collection == "chunks" {
		_, hasEmbedding := fields["embedding"]
		if arr, ok := fields["embedding"].([]any); ok {
			hasEmbedding = len(arr) > 0
		}
		fields[chunkHasEmbeddingDerivedKey] = hasEmbedding
	}

	names := make([]string, 0, len(cols)+1)
	placeholders := make([]string, 0, len(cols)+1)
	updates := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)

	for i, c := range cols {
		val, err := coerce(c.kind, fields[c.name])
		if err != nil {
			return fmt.Errorf("docstore: column %s.%s: %w", collection, c.name, err)
		}
		names = append(names, c.name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, val)
		if c.name != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c.name, c.name))
		}
	}
	names = append(names, "data")
	placeholders = append(placeholders, fmt.Sprintf("$%d", len(cols)+1))
	args = append(args, raw)
	updates = append(updates, "data = EXCLUDED.data")

	q := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s`,
		collection,
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("docstore: upsert %s: %w", collection, err)
	}
	return nil
}

func coerce(kind columnKind, v any) (any, error) {
	if v == nil {
		switch kind {
		case kindTextArray:
			return pq.Array([]string{}), nil
		case kindBool:
			return false, nil
		case kindInt:
			return 0, nil
		default:
			return nil, nil
		}
	}
	switch kind {
	case kindText:
		return fmt.Sprintf("%v", v), nil
	case kindInt:
		switch n := v.(type) {
		case float64:
			return int(n), nil
		default:
			return v, nil
		}
	case kindBool:
		b, _ := v.(bool)
		return b, nil
	case kindTimestamp:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected RFC3339 timestamp string, got %T", v)
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		return t, nil
	case kindTextArray:
		items, _ := v.([]any)
		strs := make([]string, 0, len(items))
		for _, it := range items {
			strs = append(strs, fmt.Sprintf("%v", it))
		}
		return pq.Array(strs), nil
	default:
		return v, nil
	}
}

// buildWhere translates a Filter into a SQL WHERE fragment. Keys matching
// a promoted column filter on that typed column; any other key falls back
// to a text comparison against the JSONB "data" payload, so the gateway
// never rejects a filter field just because it wasn't promoted.
func buildWhere(collection string, filter Filter) (string, []any) {
	if len(filter) == 0 {
		return "TRUE", nil
	}
	cols := collectionSchemas[collection]
	promoted := make(map[string]columnKind, len(cols))
	for _, c := range cols {
		promoted[c.name] = c.kind
	}

	clauses := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	i := 1
	for key, val := range filter {
		colExpr := fmt.Sprintf("data->>'%s'", key)
		if _, ok := promoted[key]; ok {
			colExpr = key
		}
		if in, ok := val.(In); ok {
			strs := make([]string, 0, len(in))
			for _, v := range in {
				strs = append(strs, fmt.Sprintf("%v", v))
			}
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", colExpr, i))
			args = append(args, pq.Array(strs))
			i++
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", colExpr, i))
		args = append(args, fmt.Sprintf("%v", val))
		i++
	}
	return strings.Join(clauses, " AND "), args
}
