package collect

import (
	"context"
	"fmt"

	"github.com/sevigo/code-warden/internal/core"
	"github.com/sevigo/code-warden/internal/docstore"
)

// UpdateContributors rebuilds the contributors collection from a full scan
// of the commits collection: a pure derived read-then-bulk-write over C2.
// Ported from update_contributors. Commits with no author email are
// ignored (design choice, mirroring the original's "continue").
func (c *Collector) UpdateContributors(ctx context.Context) error {
	var commits []core.Commit
	if err := c.gw.Find(ctx, "commits", docstore.Filter{}, docstore.FindOptions{}, &commits); err != nil {
		return fmt.Errorf("update contributors: scan commits: %w", err)
	}

	type accum struct {
		name      string
		repos     map[string]struct{}
		commitIDs []string
	}
	byEmail := make(map[string]*accum)

	for _, cm := range commits {
		email := cm.Author.Email
		if email == "" {
			continue
		}
		a, ok := byEmail[email]
		if !ok {
			a = &accum{name: cm.Author.Name, repos: make(map[string]struct{})}
			byEmail[email] = a
		}
		a.repos[cm.Repo] = struct{}{}
		a.commitIDs = append(a.commitIDs, cm.ID)
	}

	if len(byEmail) == 0 {
		c.logger.InfoContext(ctx, "no new contributors to update")
		return nil
	}

	var ops []docstore.UpsertOp
	for email, a := range byEmail {
		repos := make([]string, 0, len(a.repos))
		for r := range a.repos {
			repos = append(repos, r)
		}

		last := a.commitIDs
		if len(last) > 10 {
			last = last[len(last)-10:]
		}

		ops = append(ops, docstore.UpsertOp{
			Filter: docstore.Filter{"id": email},
			Doc: &core.Contributor{
				Email:         email,
				Name:          a.name,
				Repos:         repos,
				TotalCommits:  len(a.commitIDs),
				LastCommitIDs: last,
			},
		})
	}

	if err := c.gw.BulkWrite(ctx, "contributors", ops); err != nil {
		return fmt.Errorf("update contributors: bulk write: %w", err)
	}
	c.logger.InfoContext(ctx, "contributors updated", "count", len(ops))
	return nil
}
