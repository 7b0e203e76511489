package cascade_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/internal/cascade"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/testhelpers"
	"github.com/chainctl/chain/testhelpers/scenario"
)

func TestRebaseCascadeReanchorsEveryMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("main-update", "a later commit on main")

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth"})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Len(t, report.Succeeded, 2)

	onMain, err := s.Repo.IsAncestor(ctx, "main", "feature-a")
	require.NoError(t, err)
	require.True(t, onMain)

	onFeatureA, err := s.Repo.IsAncestor(ctx, "feature-a", "feature-b")
	require.NoError(t, err)
	require.True(t, onFeatureA)
}

func TestRebaseCascadeNoopWhenAlreadyCurrent(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth"})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Empty(t, report.Succeeded, "an already-anchored branch must not be counted as rebased")
	require.Len(t, report.Skipped, 1)
}

func TestRebaseCascadeIgnoreRootSkipsFirstMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	// New commits land directly on feature-a (not via a root rebase), so feature-b still has
	// real work to replay even though feature-a itself is left untouched by IgnoreRoot.
	s.Checkout("feature-a")
	s.CommitChange("feature-a-update", "a later commit on feature-a")
	s.Checkout("main")

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth", IgnoreRoot: true})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, "feature-a", report.Skipped[0].Child)
	require.Len(t, report.Succeeded, 1)
	require.Equal(t, "feature-b", report.Succeeded[0].Child)
}

func TestRebaseCascadeReturnsToOriginalBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("main-update", "a later commit on main")
	s.Checkout("feature-a")

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	_, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth"})
	require.NoError(t, err)

	s.ExpectBranch("feature-a")
}

func TestRebaseCascadeConflictIsResumable(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	// main independently touches the same file feature-a's commit added, forcing a conflict.
	s.Checkout("main")
	s.CommitChange("feature-a", "conflicting change on main")

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth"})
	require.ErrorIs(t, err, chainerrors.ErrRebaseConflict)
	require.Len(t, report.Conflicted, 1)
	require.True(t, s.Scene.Repo.RebaseInProgress())

	require.NoError(t, s.Scene.Repo.ResolveMergeConflicts())
	require.NoError(t, s.Scene.Repo.MarkMergeConflictsAsResolved())

	resumed, err := engine.Continue(ctx)
	require.NoError(t, err)
	require.True(t, resumed.OK())

	_, inProgress, err := engine.Status(ctx)
	require.NoError(t, err)
	require.False(t, inProgress)
}

func TestRebaseCascadeAbortClearsStateAndRestoresBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("feature-a", "conflicting change on main")
	s.Checkout("main")

	engine := cascade.NewRebaseEngine(s.Repo, s.Mgr)
	_, err := engine.Run(ctx, cascade.RebaseOptions{ChainName: "auth"})
	require.Error(t, err)
	require.True(t, s.Scene.Repo.RebaseInProgress())

	require.NoError(t, engine.Abort(ctx))

	_, inProgress, err := engine.Status(ctx)
	require.NoError(t, err)
	require.False(t, inProgress)
	require.False(t, s.Scene.Repo.RebaseInProgress())
	s.ExpectBranch("main")
}
