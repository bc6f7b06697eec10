package vectorindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
	"github.com/sevigo/code-warden/internal/util"
)

// GlobalIndexName is the reserved index_name for a multi-collection index,
// mirroring faiss_index_manager.py's "global" literal.
const GlobalIndexName = "global"

// Manager builds, persists, loads, and queries per-(repo,index_name) flat
// L2 indexes, grounded on original_source/core/faiss_index_manager.py.
type Manager struct {
	gw        docstore.Gateway
	embed     backend.EmbeddingBackend
	indexRoot string
	logger    *slog.Logger
}

func NewManager(gw docstore.Gateway, embed backend.EmbeddingBackend, indexRoot string, logger *slog.Logger) *Manager {
	return &Manager{gw: gw, embed: embed, indexRoot: indexRoot, logger: logger}
}

// paths mirrors _paths(repo, index_name): index_root/<safe-repo>/<safe-repo>/<index_name>.(faiss|_mapping.json).
// The ".faiss" extension is spec.md §6's literal artifact path; the bytes
// under it are this package's own flat-L2 matrix format, not a real FAISS
// index file (see format.go), but the external path contract is preserved.
func (m *Manager) paths(repo, indexName string) (indexPath, sidecarPath string) {
	safeRepo := util.SanitizePathComponent(repo)
	dir := filepath.Join(m.indexRoot, safeRepo, safeRepo)
	return filepath.Join(dir, indexName+".faiss"), filepath.Join(dir, indexName+"_mapping.json")
}

func artifactsExist(indexPath, sidecarPath string) bool {
	if _, err := os.Stat(indexPath); err != nil {
		return false
	}
	if _, err := os.Stat(sidecarPath); err != nil {
		return false
	}
	return true
}

// BuildIndex implements build_index: validate mode, skip if artifacts
// already exist unless force, collect metadata+chunk vectors, build and
// atomically persist a flat L2 index. A zero-vector result is a no-op,
// not an error (spec.md §4.8's build-with-zero-vectors failure mode).
func (m *Manager) BuildIndex(ctx context.Context, repo, indexName string, collections []string, force, global bool) error {
	if global {
		if len(collections) < 1 {
			return fmt.Errorf("vectorindex: global index requires at least one collection")
		}
	} else if len(collections) != 1 {
		return fmt.Errorf("vectorindex: single-collection index requires exactly one collection")
	}

	indexPath, sidecarPath := m.paths(repo, indexName)
	if !force && artifactsExist(indexPath, sidecarPath) {
		m.logger.DebugContext(ctx, "vectorindex: artifacts already present, skipping build", "repo", repo, "index_name", indexName)
		return nil
	}

	var metas []core.Metadata
	if err := m.gw.Find(ctx, "metadata", docstore.Filter{"repo": repo, "collection_src": docstore.In(toAny(collections))}, docstore.FindOptions{}, &metas); err != nil {
		return fmt.Errorf("vectorindex: query metadata: %w", err)
	}
	if len(metas) == 0 {
		return nil
	}
	metaByID := make(map[string]core.Metadata, len(metas))
	ids := make([]any, 0, len(metas))
	for _, meta := range metas {
		metaByID[meta.ID] = meta
		ids = append(ids, meta.ID)
	}

	var chunks []core.Chunk
	if err := m.gw.Find(ctx, "chunks", docstore.Filter{"metadata_id": docstore.In(ids)}, docstore.FindOptions{Sort: "chunk_index ASC"}, &chunks); err != nil {
		return fmt.Errorf("vectorindex: query chunks: %w", err)
	}

	vectors := make([][]float32, 0, len(chunks))
	idMap := make(map[string]string, len(chunks))
	metaMap := make(map[string]ChunkMeta, len(chunks))
	dim := 0
	pos := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(c.Embedding)
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("vectorindex: chunk %q has embedding dimension %d, expected %d", c.ID, len(c.Embedding), dim)
		}
		vectors = append(vectors, c.Embedding)
		key := strconv.Itoa(pos)
		idMap[key] = c.ID
		if meta, ok := metaByID[c.MetadataID]; ok {
			metaMap[key] = ChunkMeta{CollectionSrc: meta.CollectionSrc, MetadataVersion: meta.MetadataVersion}
		}
		pos++
	}
	if len(vectors) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return fmt.Errorf("vectorindex: create index directory: %w", err)
	}
	if err := writeFileAtomic(indexPath, func(w io.Writer) error {
		return writeMatrix(w, vectors, dim)
	}); err != nil {
		return err
	}
	return writeSidecar(sidecarPath, idMap, metaMap)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// LoadIndex implements load_index: read both artifacts and restore
// id_map/meta_map in memory. Returns a not-found error if either artifact
// is missing, matching spec.md §4.8's load failure mode.
func (m *Manager) LoadIndex(repo, indexName string) (*LoadedIndex, error) {
	indexPath, sidecarPath := m.paths(repo, indexName)
	if !artifactsExist(indexPath, sidecarPath) {
		return nil, fmt.Errorf("vectorindex: index not found for repo %q index_name %q: %w", repo, indexName, os.ErrNotExist)
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: open index file: %w", err)
	}
	defer f.Close()
	vectors, dim, err := readMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: read index file: %w", err)
	}

	sc, err := readSidecar(sidecarPath)
	if err != nil {
		return nil, err
	}

	idx := newFlatL2(dim)
	for _, v := range vectors {
		if err := idx.add(v); err != nil {
			return nil, err
		}
	}

	return &LoadedIndex{
		gw:      m.gw,
		embed:   m.embed,
		repo:    repo,
		index:   idx,
		idMap:   sc.IDMap,
		metaMap: sc.MetaMap,
	}, nil
}

// LoadedIndex is an in-memory flat L2 index plus its sidecar maps, ready
// to answer queries (faiss_index_manager.py's self.index/self.id_map/
// self.meta_map instance state, made an explicit value here instead of
// mutable fields on Manager so that a RAG engine can hold one safely
// across concurrent callers without a shared-instance index state bug).
type LoadedIndex struct {
	gw      docstore.Gateway
	embed   backend.EmbeddingBackend
	repo    string
	index   *flatL2
	idMap   map[string]string
	metaMap map[string]ChunkMeta
}

// Query implements query(text, top_k): embed the query text, search for
// the nearest topK vectors, resolve their chunk ids via id_map, fetch the
// full chunk documents (order-preserving), and return distances,
// positions, chunk docs, and per-chunk metadata.
func (l *LoadedIndex) Query(ctx context.Context, text string, topK int) (distances []float32, positions []int, chunkDocs []core.Chunk, metaInfos []ChunkMeta, err error) {
	if l.index == nil {
		return nil, nil, nil, nil, fmt.Errorf("vectorindex: query before load")
	}
	queryVec, err := l.embed.Encode(ctx, text)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("vectorindex: encode query: %w", err)
	}

	distances, positions, err = l.index.search(queryVec, topK)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(positions) == 0 {
		return distances, positions, nil, nil, nil
	}

	chunkIDs := make([]string, len(positions))
	metaInfos = make([]ChunkMeta, len(positions))
	for i, p := range positions {
		key := strconv.Itoa(p)
		chunkIDs[i] = l.idMap[key]
		metaInfos[i] = l.metaMap[key]
	}

	var found []core.Chunk
	ids := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = id
	}
	if err := l.gw.Find(ctx, "chunks", docstore.Filter{"id": docstore.In(ids)}, docstore.FindOptions{}, &found); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("vectorindex: fetch chunk documents: %w", err)
	}
	byID := make(map[string]core.Chunk, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	chunkDocs = make([]core.Chunk, len(chunkIDs))
	for i, id := range chunkIDs {
		chunkDocs[i] = byID[id]
	}

	return distances, positions, chunkDocs, metaInfos, nil
}
