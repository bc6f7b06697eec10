// Package metadata implements the Metadata Generator (C7): per-source-
// document text extraction, chunking, embedding, tag extraction, and
// conditional summarization, ground-truthed against
// original_source/metadata/metadata_generator.py and metadata_utils.py.
package metadata

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/code-warden/internal/backend"
	"github.com/sevigo/code-warden/internal/blobstore"
	"github.com/sevigo/code-warden/internal/chunking"
	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

// Generator produces and refreshes internal/core.Metadata and
// internal/core.Chunk documents for every source document in a
// collection, mirroring MetadataGenerator.
type Generator struct {
	gw           docstore.Gateway
	blobs        *blobstore.Store
	embed        backend.EmbeddingBackend
	summarizer   backend.SummarizerBackend
	keywords     backend.KeywordBackend
	defaultTagsN int
	logger       *slog.Logger
}

// New builds a Generator. defaultTagsN is the tag count used when the
// caller doesn't otherwise specify one (config.ChunkingConfig.DefaultTagsN).
func New(gw docstore.Gateway, blobs *blobstore.Store, embed backend.EmbeddingBackend, summarizer backend.SummarizerBackend, keywords backend.KeywordBackend, defaultTagsN int, logger *slog.Logger) *Generator {
	if defaultTagsN <= 0 {
		defaultTagsN = 10
	}
	return &Generator{gw: gw, blobs: blobs, embed: embed, summarizer: summarizer, keywords: keywords, defaultTagsN: defaultTagsN, logger: logger}
}

// collectionSrc names understood by UpdateCollection, mirroring
// update_metadata_for_collection's callers.
const (
	SourceFiles            = "files"
	SourceMainFiles        = "main_files"
	SourceLastReleaseFiles = "last_release_files"
	SourceCommits          = "commits"
	SourcePullRequests     = "pull_requests"
	SourceIssues           = "issues"
)

// UpdateCollection regenerates metadata for every document in
// collectionSrc belonging to repo, ported from
// update_metadata_for_collection.
func (g *Generator) UpdateCollection(ctx context.Context, repo, collectionSrc string) error {
	switch collectionSrc {
	case SourceFiles:
		return g.updateChangedFiles(ctx, repo)
	case SourceMainFiles:
		return g.updateBranchFiles(ctx, repo)
	case SourceLastReleaseFiles:
		return g.updateReleaseFiles(ctx, repo)
	case SourceCommits:
		return g.updateCommits(ctx, repo)
	case SourcePullRequests:
		return g.updatePullRequests(ctx, repo)
	case SourceIssues:
		return g.updateIssues(ctx, repo)
	default:
		return fmt.Errorf("metadata: unknown collection %q", collectionSrc)
	}
}

func (g *Generator) updateChangedFiles(ctx context.Context, repo string) error {
	var files []core.ChangedFile
	if err := g.gw.Find(ctx, "files", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &files); err != nil {
		return err
	}
	for i := range files {
		f := &files[i]
		text := g.extractFileText(ctx, f.ExternalURL, f.Patch)
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourceFiles, f.ID, text, f.Path, func(ctx context.Context, metadataID string) error {
			f.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "files", docstore.Filter{"id": f.ID}, f, false)
		}); err != nil {
			return fmt.Errorf("metadata: file %s: %w", f.ID, err)
		}
	}
	return nil
}

func (g *Generator) updateBranchFiles(ctx context.Context, repo string) error {
	var files []core.BranchFile
	if err := g.gw.Find(ctx, "main_files", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &files); err != nil {
		return err
	}
	for i := range files {
		f := &files[i]
		text := g.extractFileText(ctx, f.ExternalURL, "")
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourceMainFiles, f.ID, text, f.Path, func(ctx context.Context, metadataID string) error {
			f.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "main_files", docstore.Filter{"id": f.ID}, f, false)
		}); err != nil {
			return fmt.Errorf("metadata: main_files %s: %w", f.ID, err)
		}
	}
	return nil
}

func (g *Generator) updateReleaseFiles(ctx context.Context, repo string) error {
	var files []core.ReleaseFile
	if err := g.gw.Find(ctx, "last_release_files", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &files); err != nil {
		return err
	}
	for i := range files {
		f := &files[i]
		text := g.extractFileText(ctx, f.ExternalURL, "")
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourceLastReleaseFiles, f.ID, text, f.Path, func(ctx context.Context, metadataID string) error {
			f.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "last_release_files", docstore.Filter{"id": f.ID}, f, false)
		}); err != nil {
			return fmt.Errorf("metadata: last_release_files %s: %w", f.ID, err)
		}
	}
	return nil
}

func (g *Generator) updateCommits(ctx context.Context, repo string) error {
	var commits []core.Commit
	if err := g.gw.Find(ctx, "commits", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &commits); err != nil {
		return err
	}
	for i := range commits {
		c := &commits[i]
		text := extractCommitText(c)
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourceCommits, c.ID, text, "", func(ctx context.Context, metadataID string) error {
			c.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "commits", docstore.Filter{"id": c.ID}, c, false)
		}); err != nil {
			return fmt.Errorf("metadata: commit %s: %w", c.ID, err)
		}
	}
	return nil
}

func (g *Generator) updateIssues(ctx context.Context, repo string) error {
	var issues []core.Issue
	if err := g.gw.Find(ctx, "issues", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &issues); err != nil {
		return err
	}
	for i := range issues {
		is := &issues[i]
		text, err := g.extractIssueText(ctx, repo, is)
		if err != nil {
			return fmt.Errorf("metadata: issue %s: %w", is.ID, err)
		}
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourceIssues, is.ID, text, "", func(ctx context.Context, metadataID string) error {
			is.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "issues", docstore.Filter{"id": is.ID}, is, false)
		}); err != nil {
			return fmt.Errorf("metadata: issue %s: %w", is.ID, err)
		}
	}
	return nil
}

func (g *Generator) updatePullRequests(ctx context.Context, repo string) error {
	var prs []core.PullRequest
	if err := g.gw.Find(ctx, "pull_requests", docstore.Filter{"repo": repo}, docstore.FindOptions{}, &prs); err != nil {
		return err
	}
	for i := range prs {
		pr := &prs[i]
		text, err := g.extractPullRequestText(ctx, repo, pr)
		if err != nil {
			return fmt.Errorf("metadata: pull_request %s: %w", pr.ID, err)
		}
		if text == "" {
			continue
		}
		if err := g.generate(ctx, repo, SourcePullRequests, pr.ID, text, "", func(ctx context.Context, metadataID string) error {
			pr.MetadataID = metadataID
			return g.gw.UpdateOne(ctx, "pull_requests", docstore.Filter{"id": pr.ID}, pr, false)
		}); err != nil {
			return fmt.Errorf("metadata: pull_request %s: %w", pr.ID, err)
		}
	}
	return nil
}

// generate is _generate_metadata_for_document: compute the metadata id
// and hash, decide create/update/skip, and on create/update, link the
// metadata_id back onto the source document.
func (g *Generator) generate(ctx context.Context, repo, collectionSrc, sourceID, content, filename string, linkBack func(ctx context.Context, metadataID string) error) error {
	if content == "" {
		return nil
	}

	metadataID := computeMetadataID(repo, collectionSrc, sourceID)
	fileHash := md5Hex(content)

	var existing core.Metadata
	found, err := g.gw.FindOne(ctx, "metadata", docstore.Filter{"id": metadataID}, &existing)
	if err != nil {
		return err
	}

	var meta *core.Metadata
	if !found {
		meta, err = g.create(ctx, repo, collectionSrc, sourceID, metadataID, fileHash, filename, content)
		if err != nil {
			return err
		}
	} else if existing.FileHash != fileHash || existing.MetadataVersion != core.CurrentMetadataVersion {
		if _, err := g.gw.DeleteMany(ctx, "chunks", docstore.Filter{"metadata_id": metadataID}); err != nil {
			return err
		}
		meta, err = g.create(ctx, repo, collectionSrc, sourceID, metadataID, fileHash, filename, content)
		if err != nil {
			return err
		}
	} else {
		g.logger.DebugContext(ctx, "metadata unchanged, skipping", "id", metadataID)
		return nil
	}

	if meta == nil {
		// Binary content: refused, no metadata written (create returned nil).
		return nil
	}

	if err := g.gw.UpdateOne(ctx, "metadata", docstore.Filter{"id": metadataID}, meta, true); err != nil {
		return err
	}
	return linkBack(ctx, metadataID)
}

// create is _create_metadata: determine category/language, refuse
// binary, chunk+embed, extract tags, conditionally summarize, persist
// the canonical text to the blob store, and build the metadata document.
// Returns nil (not an error) when the content is binary, mirroring the
// Python "return None" refusal.
func (g *Generator) create(ctx context.Context, repo, collectionSrc, sourceID, metadataID, fileHash, filename, content string) (*core.Metadata, error) {
	hasFilename := collectionSrc == SourceFiles || collectionSrc == SourceMainFiles || collectionSrc == SourceLastReleaseFiles

	category := core.CategoryDoc
	ext := "txt"
	if hasFilename {
		category = detectFileType(filename)
		ext = fileExtension(filename)
	}
	if category == core.CategoryBinary {
		return nil, nil
	}

	language := g.detectLanguage(category, ext, content)

	strategy := chunking.NewStrategy(string(category), chunking.Settings{Extension: ext, Language: language})
	chunkIDs, err := g.createChunks(ctx, metadataID, strategy, content)
	if err != nil {
		return nil, err
	}

	tags, err := g.keywords.Extract(ctx, content, g.defaultTagsN)
	if err != nil {
		return nil, fmt.Errorf("metadata: extract tags: %w", err)
	}

	description := ""
	if core.CurrentMetadataVersion != 0 {
		description, err = g.summarizer.Summarize(ctx, content, 150, 50)
		if err != nil {
			return nil, fmt.Errorf("metadata: summarize: %w", err)
		}
	}

	sourceURL, err := g.blobs.Store(ctx, content, repo, "meta", metadataID)
	if err != nil {
		return nil, fmt.Errorf("metadata: store canonical text: %w", err)
	}

	now := time.Now().UTC()
	return &core.Metadata{
		ID:              metadataID,
		Repo:            repo,
		CollectionSrc:   collectionSrc,
		SourceID:        sourceID,
		Language:        language,
		Description:     description,
		Tags:            tags,
		ChunkIDs:        chunkIDs,
		SourceURL:       sourceURL,
		MetadataVersion: core.CurrentMetadataVersion,
		FileHash:        fileHash,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// detectLanguage is _detect_language. Filename-less collections (commits,
// issues, pull_requests) have no extension to key off of, so category is
// always core.CategoryDoc for them and this falls through to natural-
// language detection rather than the "undefined" sentinel — see
// DESIGN.md Open Question #4.
func (g *Generator) detectLanguage(category core.FileCategory, ext, content string) string {
	switch category {
	case core.CategoryCode:
		return detectProgrammingLanguage(ext)
	case core.CategoryBinary:
		return "binary"
	default:
		return detectNaturalLanguage(content)
	}
}

// createChunks is _create_chunks: chunk content, embed each chunk, and
// upsert a Chunk document per chunk.
func (g *Generator) createChunks(ctx context.Context, metadataID string, strategy chunking.Strategy, content string) ([]string, error) {
	chunks := strategy.Chunk(content)
	ids := make([]string, 0, len(chunks))
	for i, text := range chunks {
		vec, err := g.embed.Encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("encode chunk %d: %w", i, err)
		}
		chunkID := fmt.Sprintf("%s_chunk_%d", metadataID, i)
		doc := &core.Chunk{ID: chunkID, MetadataID: metadataID, Index: i, Text: text, Embedding: vec}
		if err := g.gw.UpdateOne(ctx, "chunks", docstore.Filter{"id": chunkID}, doc, true); err != nil {
			return nil, fmt.Errorf("upsert chunk %d: %w", i, err)
		}
		ids = append(ids, chunkID)
	}
	return ids, nil
}

func computeMetadataID(repo, collectionSrc, sourceID string) string {
	return fmt.Sprintf("meta_%s_%s_%s", repo, collectionSrc, sourceID)
}

func md5Hex(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
