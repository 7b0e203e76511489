package cascade

import (
	"context"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/gitops"
)

// parentOf returns the upstream for chain member at index i: the chain's root for i==0, else
// the previous member.
func parentOf(c *chain.Chain, i int) string {
	if i == 0 {
		return c.RootBranch
	}
	return c.Branches[i-1].Name
}

// computeCommonAncestors picks, for every (parent(i), child(i)) pair, a
// single upstream commit for the rebase/squash-check to use. In fork-point mode (always true for
// RebaseEngine, optional for MergeEngine), a plain merge-base is preferred only when parent(i)
// is a genuine ancestor of child(i); otherwise the reflog-aware fork-point lookup is used, which
// itself falls back to plain merge-base on failure (ShellRepo.MergeBaseForkPoint).
func computeCommonAncestors(ctx context.Context, repo gitops.Repo, c *chain.Chain, forkPointMode bool) ([]string, error) {
	ancestors := make([]string, len(c.Branches))
	for i := range c.Branches {
		parent := parentOf(c, i)
		child := c.Branches[i].Name
		if !forkPointMode {
			a, err := repo.MergeBase(ctx, parent, child)
			if err != nil {
				return nil, err
			}
			ancestors[i] = a
			continue
		}
		isAncestor, err := repo.IsAncestor(ctx, parent, child)
		if err != nil {
			return nil, err
		}
		var a string
		if isAncestor {
			a, err = repo.MergeBase(ctx, parent, child)
		} else {
			a, err = repo.MergeBaseForkPoint(ctx, parent, child)
		}
		if err != nil {
			return nil, err
		}
		ancestors[i] = a
	}
	return ancestors, nil
}
