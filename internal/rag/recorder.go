// Package rag implements the RAG Engine and Query Recorder (C9): a
// retrieve-assemble-generate pipeline bound to one (repo, collection_src),
// ground-truthed against original_source/rag/rag_engine.py and
// original_source/rag/query_recorder.py.
package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RecordedChunk is one chunk's contribution to a recorded query, matching
// query_recorder.py's per-chunk dict shape ({chunk_id, text,
// metadata_version}).
type RecordedChunk struct {
	ChunkID         string `json:"chunk_id"`
	Text            string `json:"text"`
	MetadataVersion int    `json:"metadata_version"`
}

// QueryLog is one JSONL record written by the Query Recorder, mirroring
// query_recorder.py's log dict verbatim (field-for-field).
type QueryLog struct {
	Timestamp   string          `json:"timestamp"`
	Question    string          `json:"question"`
	Repo        string          `json:"repo"`
	Collections []string        `json:"collections"`
	TopK        int             `json:"top_k"`
	ChunksUsed  []RecordedChunk `json:"chunks_used"`
	Answer      string          `json:"answer"`
	DurationS   float64         `json:"duration_s"`
}

// Recorder appends newline-delimited JSON query records to a file,
// matching query_recorder.py's open(path, "a") append semantics. Only
// the jsonl format is supported, mirroring the Python class's explicit
// NotImplementedError for anything else — this module exposes no format
// parameter at all rather than carry dead branches for formats nothing
// in this pipeline ever requests.
type Recorder struct {
	mu       sync.Mutex
	filepath string
}

// NewRecorder creates the parent directories of path if needed
// (os.MkdirAll(filepath.Dir(path)), mirroring query_recorder.py's
// constructor). The file itself is opened for append by each Record call.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("rag: create query log directory: %w", err)
	}
	return &Recorder{filepath: path}, nil
}

// Record appends one query log entry as a single JSON line, stamping
// Timestamp with the current UTC time (query_recorder.py's
// datetime.utcnow().isoformat()).
func (r *Recorder) Record(log QueryLog) error {
	log.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	line, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("rag: marshal query log: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := os.OpenFile(r.filepath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("rag: open query log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("rag: write query log: %w", err)
	}
	return nil
}
