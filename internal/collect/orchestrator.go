package collect

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Orchestrator runs a full collection pass (commits, pull requests,
// issues, branch files, release files, then the contributor aggregator)
// over a set of repositories, using a bounded worker pool. Adapted from
// sevigo-code-warden/internal/jobs/dispatcher.go's worker-pool shape
// (buffered job channel + sync.WaitGroup + maxWorkers goroutines),
// generalized from "one worker per code-review job" to "one worker per
// repository collection pass".
type Orchestrator struct {
	collector  *Collector
	maxWorkers int
	logger     *slog.Logger
}

// NewOrchestrator builds an Orchestrator. If maxWorkers is 0 or negative
// it defaults to 1, matching NewDispatcher's guard.
func NewOrchestrator(collector *Collector, maxWorkers int, logger *slog.Logger) *Orchestrator {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Orchestrator{collector: collector, maxWorkers: maxWorkers, logger: logger}
}

// Run collects every repo in repos (each "<owner>/<name>"), at most
// maxWorkers in parallel, then runs the contributor aggregator once all
// repository passes finish. A failure on one repo is logged and does not
// stop the others from completing.
func (o *Orchestrator) Run(ctx context.Context, repos []string) error {
	jobs := make(chan string, len(repos))
	for _, r := range repos {
		jobs <- r
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < o.maxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for repo := range jobs {
				o.logger.InfoContext(ctx, "worker collecting repo", "worker_id", workerID, "repo", repo)
				if err := o.collectRepo(ctx, repo); err != nil {
					o.logger.ErrorContext(ctx, "repo collection failed", "repo", repo, "error", err)
				}
			}
		}(i)
	}
	wg.Wait()

	return o.collector.UpdateContributors(ctx)
}

func (o *Orchestrator) collectRepo(ctx context.Context, repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		o.logger.ErrorContext(ctx, "malformed repo full name, expected owner/name", "repo", repo)
		return nil
	}

	if err := o.collector.CollectCommits(ctx, owner, name); err != nil {
		return err
	}
	if err := o.collector.CollectPullRequests(ctx, owner, name); err != nil {
		return err
	}
	if err := o.collector.CollectIssues(ctx, owner, name); err != nil {
		return err
	}
	if err := o.collector.CollectBranchFiles(ctx, owner, name); err != nil {
		return err
	}
	if err := o.collector.CollectLatestReleaseFiles(ctx, owner, name); err != nil {
		return err
	}
	return nil
}
