package cascade

import (
	"context"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/internal/gitops"
)

// checkPreconditions validates that the chain (and every branch in it, including its
// root) must exist, the working directory must be clean, and no other VCS operation may be in
// progress. Returns the loaded chain on success; mutates nothing.
func checkPreconditions(ctx context.Context, repo gitops.Repo, mgr *chain.Manager, chainName string) (*chain.Chain, error) {
	c, err := mgr.Get(ctx, chainName)
	if err != nil {
		return nil, err
	}
	rootExists, err := repo.LocalBranchExists(ctx, c.RootBranch)
	if err != nil {
		return nil, err
	}
	if !rootExists {
		return nil, chainerrors.RootBranchNotFound(c.RootBranch)
	}
	for _, b := range c.Branches {
		exists, err := repo.LocalBranchExists(ctx, b.Name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, chainerrors.BranchNotFound(b.Name)
		}
	}
	dirty, err := repo.WorkingDirDirty(ctx)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, chainerrors.DirtyWorkingDirectory()
	}
	clean, err := repo.RepoStateClean(ctx)
	if err != nil {
		return nil, err
	}
	if !clean {
		return nil, chainerrors.RepositoryNotClean()
	}
	return c, nil
}
