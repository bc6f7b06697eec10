package vectorindex

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ChunkMeta is the per-vector metadata carried in the JSON sidecar
// alongside the chunk id, mirroring faiss_index_manager.py's meta_map
// entries ({"collection_src": ..., "metadata_version": ...}).
type ChunkMeta struct {
	CollectionSrc   string `json:"collection_src"`
	MetadataVersion int    `json:"metadata_version"`
}

// sidecar is the on-disk JSON mapping file: positional index (as decimal
// string, matching faiss_index_manager.py's _load_mapping, which loads a
// JSON object whose keys are the string-encoded row positions) to chunk id
// and to chunk metadata.
type sidecar struct {
	IDMap   map[string]string    `json:"id_map"`
	MetaMap map[string]ChunkMeta `json:"meta_map"`
}

func writeSidecar(path string, idMap map[string]string, metaMap map[string]ChunkMeta) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sidecar{IDMap: idMap, MetaMap: metaMap})
	})
}

func readSidecar(path string) (*sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: sidecar not found: %w", err)
	}
	defer f.Close()
	var sc sidecar
	if err := json.NewDecoder(f).Decode(&sc); err != nil {
		return nil, fmt.Errorf("vectorindex: decode sidecar: %w", err)
	}
	return &sc, nil
}
