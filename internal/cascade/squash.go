package cascade

import (
	"context"
	"strings"

	"github.com/chainctl/chain/internal/gitops"
)

// detectSquashMerged implements the "git-delete-squashed" trick: synthesize a dangling
// commit with child's tree and ancestor as its parent, then ask whether that dangling commit's
// patch is already present on parent. child is considered squash-merged into parent iff the
// cherry output is empty or every line is marked '-' (already present).
func detectSquashMerged(ctx context.Context, repo gitops.Repo, child, ancestor, parent string) (bool, error) {
	tree, err := repo.TreeIDOf(ctx, child)
	if err != nil {
		return false, err
	}
	dangling, err := repo.SynthCommit(ctx, tree, ancestor, "chain: squash-merge detection")
	if err != nil {
		return false, err
	}
	lines, err := repo.Cherry(ctx, parent, dangling)
	if err != nil {
		return false, err
	}
	if len(lines) == 0 {
		return true, nil
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line[0] != '-' {
			return false, nil
		}
	}
	return true, nil
}
