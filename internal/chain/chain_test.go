package chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/testhelpers"
	"github.com/chainctl/chain/testhelpers/scenario"
)

func TestChainGetOrdersByKey(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b", "feature-c")

	c, err := s.Mgr.Get(context.Background(), "auth")
	require.NoError(t, err)
	require.Equal(t, "main", c.RootBranch)
	require.Len(t, c.Branches, 3)

	names := make([]string, len(c.Branches))
	for i, b := range c.Branches {
		names[i] = b.Name
	}
	require.Equal(t, []string{"feature-a", "feature-b", "feature-c"}, names)
}

func TestChainGetUnknownChain(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)

	_, err := s.Mgr.Get(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, chainerrors.ErrChainNotFound)
}

func TestChainBeforeAfter(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b", "feature-c")

	c, err := s.Mgr.Get(context.Background(), "auth")
	require.NoError(t, err)

	require.Nil(t, c.Before(c.Branches[0]))
	require.Equal(t, "feature-a", c.Before(c.Branches[1]).Name)
	require.Equal(t, "feature-c", c.After(c.Branches[1]).Name)
	require.Nil(t, c.After(c.Branches[2]))
}

func TestChainAll(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a").
		WithChain("billing", "main", "feature-b")

	chains, err := s.Mgr.All(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 2)
	require.Equal(t, "auth", chains[0].Name)
	require.Equal(t, "billing", chains[1].Name)
}

func TestChainChangeRootBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()
	s.Checkout("main")
	s.CreateBranch("develop")
	s.Checkout("main")

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.NoError(t, c.ChangeRootBranch(ctx, "develop"))
	require.Equal(t, "develop", c.RootBranch)

	reloaded, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.Equal(t, "develop", reloaded.RootBranch)
}

func TestChainChangeRootBranchRejectsMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.ErrorIs(t, c.ChangeRootBranch(ctx, "feature-b"), chainerrors.ErrBranchIsRoot)
}

func TestChainDelete(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx))

	exists, err := s.Mgr.Exists(ctx, "auth")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestChainRename(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.NoError(t, c.Rename(ctx, "auth-v2"))

	_, err = s.Mgr.Get(ctx, "auth")
	require.ErrorIs(t, err, chainerrors.ErrChainNotFound)

	renamed, err := s.Mgr.Get(ctx, "auth-v2")
	require.NoError(t, err)
	require.Len(t, renamed.Branches, 2)
}

func TestChainRenameRejectsCollision(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a").
		WithChain("billing", "main", "feature-b")
	ctx := context.Background()

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.ErrorIs(t, c.Rename(ctx, "billing"), chainerrors.ErrChainAlreadyExists)
}

func TestChainPrune(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	s.Checkout("main")
	require.NoError(t, s.Scene.Repo.MergeBranch("main", "feature-a"))

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	removed, err := c.Prune(ctx, false)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	require.Equal(t, "feature-a", removed[0].BranchName)

	reloaded, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.Len(t, reloaded.Branches, 1)
	require.Equal(t, "feature-b", reloaded.Branches[0].Name)
}

func TestChainPruneDryRunLeavesMembershipIntact(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	s.Checkout("main")
	require.NoError(t, s.Scene.Repo.MergeBranch("main", "feature-a"))

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	removed, err := c.Prune(ctx, true)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	reloaded, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.Len(t, reloaded.Branches, 1, "dry run must not remove the membership record")
}

func TestChainBackup(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	c, err := s.Mgr.Get(ctx, "auth")
	require.NoError(t, err)
	require.NoError(t, c.Backup(ctx))

	backupName := chain.BackupBranchName("auth", "feature-a")
	exists, err := s.Repo.LocalBranchExists(ctx, backupName)
	require.NoError(t, err)
	require.True(t, exists)

	head, err := s.Repo.ResolveCommit(ctx, "feature-a")
	require.NoError(t, err)
	backupHead, err := s.Repo.ResolveCommit(ctx, backupName)
	require.NoError(t, err)
	require.Equal(t, head, backupHead)
}
