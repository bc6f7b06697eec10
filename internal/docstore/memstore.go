package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// memstore is an in-memory Gateway used by package tests across the
// module so that collectors, the metadata generator, and the vector
// index manager can be exercised without a live Postgres instance — the
// same "interface + fake" shape the teacher uses for core.JobDispatcher
// mocks (go.uber.org/mock), but hand-written here since the gateway's
// contract is simple enough not to need generated mocks.
type memstore struct {
	mu   sync.Mutex
	data map[string]map[string]json.RawMessage // collection -> id -> doc
}

// NewMemoryGateway returns a Gateway backed by an in-process map, for
// tests only.
func NewMemoryGateway() Gateway {
	return &memstore{data: make(map[string]map[string]json.RawMessage)}
}

func (m *memstore) Close() error { return nil }

func (m *memstore) collectionMap(name string) map[string]json.RawMessage {
	c, ok := m.data[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		m.data[name] = c
	}
	return c
}

func matches(doc map[string]any, filter Filter) bool {
	for k, v := range filter {
		if in, ok := v.(In); ok {
			found := false
			for _, candidate := range in {
				if equalLoose(doc[k], candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if !equalLoose(doc[k], v) {
			return false
		}
	}
	return true
}

func equalLoose(a, b any) bool {
	return toComparable(a) == toComparable(b)
}

// parseSort splits a "<field> ASC|DESC" fragment (docstore.FindOptions.Sort)
// into its column name and direction. An empty or malformed sort yields no
// field, falling back to id-ascending order.
func parseSort(sortSpec string) (field string, desc bool) {
	parts := strings.Fields(sortSpec)
	if len(parts) == 0 {
		return "", false
	}
	field = parts[0]
	if len(parts) > 1 && strings.EqualFold(parts[1], "DESC") {
		desc = true
	}
	return field, desc
}

// compareLoose orders two JSON-decoded scalar values, used to emulate
// ORDER BY on the in-memory fake. Strings compare lexically (this
// matters for RFC3339 timestamps, which sort correctly as strings).
func compareLoose(a, b any) int {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	af, _ := a.(float64)
	bf, _ := b.(float64)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func toComparable(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case float64, string, bool:
		return t
	case int:
		return float64(t)
	default:
		raw, _ := json.Marshal(t)
		return string(raw)
	}
}

func (m *memstore) FindOne(_ context.Context, collection string, filter Filter, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, raw := range m.collectionMap(collection) {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return false, err
		}
		if matches(doc, filter) {
			return true, json.Unmarshal(raw, dest)
		}
	}
	return false, nil
}

func (m *memstore) Find(_ context.Context, collection string, filter Filter, opts FindOptions, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	type matched struct {
		id  string
		doc map[string]any
	}
	var rows []matched
	for id, raw := range m.collectionMap(collection) {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if matches(doc, filter) {
			rows = append(rows, matched{id: id, doc: doc})
		}
	}

	field, desc := parseSort(opts.Sort)
	sort.Slice(rows, func(i, j int) bool {
		if field == "" {
			return rows[i].id < rows[j].id
		}
		less := compareLoose(rows[i].doc[field], rows[j].doc[field])
		if desc {
			return less > 0
		}
		return less < 0
	})

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}

	destVal := reflect.ValueOf(dest).Elem()
	elemType := destVal.Type().Elem()
	coll := m.collectionMap(collection)
	count := 0
	for _, id := range ids {
		if opts.Limit > 0 && count >= opts.Limit {
			break
		}
		elemPtr := reflect.New(elemType)
		if err := json.Unmarshal(coll[id], elemPtr.Interface()); err != nil {
			return err
		}
		destVal.Set(reflect.Append(destVal, elemPtr.Elem()))
		count++
	}
	return nil
}

func (m *memstore) InsertMany(ctx context.Context, collection string, docs []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		if err := m.upsertLocked(collection, doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *memstore) UpdateOne(_ context.Context, collection string, filter Filter, doc any, upsert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collectionMap(collection)
	id, ok := extractID(doc)
	if !ok {
		return nil
	}
	if _, exists := coll[id]; !exists && !upsert {
		return nil
	}
	return m.upsertLocked(collection, doc)
}

func (m *memstore) BulkWrite(_ context.Context, collection string, ops []UpsertOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if err := m.upsertLocked(collection, op.Doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *memstore) DeleteMany(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := m.collectionMap(collection)
	var removed int64
	for id, raw := range coll {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return removed, err
		}
		if matches(doc, filter) {
			delete(coll, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memstore) upsertLocked(collection string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	id, ok := extractID(doc)
	if !ok {
		return nil
	}
	m.collectionMap(collection)[id] = raw
	return nil
}

func extractID(doc any) (string, bool) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", false
	}
	var withID struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &withID); err != nil || withID.ID == "" {
		return "", false
	}
	return withID.ID, true
}
