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

func TestManagerSetupAndLoad(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a")

	b, err := s.Mgr.Load(context.Background(), "feature-a")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, "auth", b.ChainName)
	require.Equal(t, "main", b.RootBranch)
}

func TestManagerLoadNotAMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)
	s.CreateBranch("lonely")

	b, err := s.Mgr.Load(context.Background(), "lonely")
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestManagerLoadSelfHealsOnDeletedBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	s.Checkout("main")
	require.NoError(t, s.Scene.Repo.DeleteBranch("feature-a"))

	b, err := s.Mgr.Load(ctx, "feature-a")
	require.NoError(t, err)
	require.Nil(t, b)

	exists, err := s.Mgr.Exists(ctx, "auth")
	require.NoError(t, err)
	require.False(t, exists, "purged member should leave the chain empty")
}

func TestManagerSetupRejectsSelfRoot(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)
	s.CreateBranch("feature-a")

	_, err := s.Mgr.Setup(context.Background(), "auth", "feature-a", "feature-a", chain.Last())
	require.ErrorIs(t, err, chainerrors.ErrBranchIsRoot)
}

func TestManagerSetupRejectsMissingBranches(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)

	_, err := s.Mgr.Setup(context.Background(), "auth", "main", "does-not-exist", chain.Last())
	require.ErrorIs(t, err, chainerrors.ErrBranchNotFound)

	s.CreateBranch("feature-a")
	_, err = s.Mgr.Setup(context.Background(), "auth", "no-such-root", "feature-a", chain.Last())
	require.ErrorIs(t, err, chainerrors.ErrRootBranchNotFound)
}

func TestBranchMoveIntoPreservesRoot(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a").
		WithChain("billing", "main", "feature-b")
	ctx := context.Background()

	moved, err := s.Mgr.MoveInto(ctx, "feature-b", "auth", chain.Last())
	require.NoError(t, err)
	require.Equal(t, "main", moved.RootBranch)
	require.Equal(t, "auth", moved.ChainName)

	s.ExpectChainOrder("auth", "feature-a", "feature-b")
}

func TestManagerMoveIntoRejectsNonMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup)
	s.CreateBranch("lonely")

	_, err := s.Mgr.MoveInto(context.Background(), "lonely", "auth", chain.Last())
	require.ErrorIs(t, err, chainerrors.ErrBranchNotInChain)
}

func TestBranchRemoveFromChain(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	b, err := s.Mgr.Load(ctx, "feature-a")
	require.NoError(t, err)
	require.NoError(t, b.RemoveFromChain(ctx))

	reloaded, err := s.Mgr.Load(ctx, "feature-a")
	require.NoError(t, err)
	require.Nil(t, reloaded)

	s.ExpectChainOrder("auth", "feature-b")
}

func TestBranchChangeRootBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).WithChain("auth", "main", "feature-a")
	ctx := context.Background()
	s.Checkout("main")
	s.CreateBranch("develop")
	s.Checkout("main")

	b, err := s.Mgr.Load(ctx, "feature-a")
	require.NoError(t, err)
	require.NoError(t, b.ChangeRootBranch(ctx, "develop"))

	reloaded, err := s.Mgr.Load(ctx, "feature-a")
	require.NoError(t, err)
	require.Equal(t, "develop", reloaded.RootBranch)
}
