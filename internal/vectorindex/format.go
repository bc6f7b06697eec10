// Package vectorindex implements the Vector Index Manager (C8): build,
// persist, load, and query a brute-force exact flat L2 index over chunk
// embeddings, ground-truthed against
// original_source/core/faiss_index_manager.py. A hand-rolled index is
// used in place of faiss itself because spec.md §4.8 step 6 mandates
// exact (not approximate) nearest-neighbor search, and no pack-reachable
// library honors that — see DESIGN.md for the rejected alternatives
// (coder/hnsw is graph/approximate; go-faiss has no grounded usage
// anywhere in the retrieved corpus).
package vectorindex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// writeMatrix persists vectors (all of length dim) as a little-endian
// binary matrix: an 8-byte row count, an 8-byte dimension, then
// count*dim float32 values in row-major order. This is this module's own
// format (not faiss's), documented here since spec.md §6 only fixes the
// JSON sidecar's schema, not the binary index's.
func writeMatrix(w io.Writer, vectors [][]float32, dim int) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int64(len(vectors))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int64(dim)); err != nil {
		return err
	}
	for _, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vectorindex: vector has dimension %d, want %d", len(v), dim)
		}
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readMatrix is writeMatrix's inverse.
func readMatrix(r io.Reader) (vectors [][]float32, dim int, err error) {
	br := bufio.NewReader(r)
	var count, d int64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, 0, err
	}
	if err := binary.Read(br, binary.LittleEndian, &d); err != nil {
		return nil, 0, err
	}
	vectors = make([][]float32, count)
	for i := range vectors {
		row := make([]float32, d)
		if err := binary.Read(br, binary.LittleEndian, row); err != nil {
			return nil, 0, err
		}
		vectors[i] = row
	}
	return vectors, int(d), nil
}

// writeFileAtomic writes content to path via a sibling temp file plus
// os.Rename, mirroring Aman-CERP-amanmcp/internal/store/hnsw.go's
// Save/saveMetadata temp-then-rename idiom.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("vectorindex: create temp file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vectorindex: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vectorindex: rename temp file: %w", err)
	}
	return nil
}
