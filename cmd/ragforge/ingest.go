package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-warden/internal/app"
	"github.com/sevigo/code-warden/internal/config"
	"github.com/sevigo/code-warden/internal/logger"
	"github.com/sevigo/code-warden/internal/metadata"
)

var ingestRepos string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one collection + metadata generation pass for the given repositories, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		repos := strings.Split(ingestRepos, ",")
		return runIngest(repos)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRepos, "repos", "", "comma-separated owner/name repositories to ingest (required)")
	_ = ingestCmd.MarkFlagRequired("repos")
}

// sourceCollections lists every collection the metadata generator
// maintains, in the order a one-shot ingestion pass should refresh them.
var sourceCollections = []string{
	metadata.SourceCommits,
	metadata.SourceFiles,
	metadata.SourceMainFiles,
	metadata.SourceLastReleaseFiles,
	metadata.SourceIssues,
	metadata.SourcePullRequests,
}

// runIngest mirrors sevigo-code-warden/cmd/cli/preload.go's
// build-app-then-run-one-operation shape, but drives the collector +
// metadata generator directly instead of a repo-manager/RAG-service pair.
func runIngest(repos []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateForIngest(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Logging, os.Stdout)
	log.Info("starting ingestion pass", "repos", repos)

	application, cleanup, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	if err := application.Orchestrator.Run(ctx, repos); err != nil {
		return fmt.Errorf("collection pass failed: %w", err)
	}
	for _, repo := range repos {
		for _, src := range sourceCollections {
			if err := application.MetadataGen.UpdateCollection(ctx, repo, src); err != nil {
				log.Error("metadata generation failed", "repo", repo, "collection", src, "error", err)
			}
		}
	}

	log.Info("ingestion pass complete", "repos", repos)
	return nil
}
