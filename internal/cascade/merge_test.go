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

func TestMergeCascadePropagatesParentCommits(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("main-update", "a later commit on main")

	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.MergeOptions{ChainName: "auth", ForkPointMode: true})
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

func TestMergeCascadeSkipsUpToDateMembers(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.MergeOptions{ChainName: "auth", ForkPointMode: true})
	require.NoError(t, err)
	require.True(t, report.OK())
	require.Len(t, report.Skipped, 1)
	require.Empty(t, report.Succeeded)
}

func TestMergeCascadeIgnoreRootSkipsFirstMember(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a", "feature-b")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("main-update", "a later commit on main")
	// A new commit on feature-a gives feature-b something to merge; without it feature-b would
	// already contain feature-a and its merge would be skipped as up to date.
	s.Checkout("feature-a")
	s.CommitChange("feature-a-update", "a later commit on feature-a")
	s.Checkout("main")

	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.MergeOptions{ChainName: "auth", ForkPointMode: true, IgnoreRoot: true})
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	require.Equal(t, "feature-a", report.Skipped[0].Child)
	require.Len(t, report.Succeeded, 1)
	require.Equal(t, "feature-b", report.Succeeded[0].Child)
}

func TestMergeCascadeConflictIsFatalAndLeavesNoResumableState(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("feature-a", "conflicting change on main")

	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	report, err := engine.Run(ctx, cascade.MergeOptions{ChainName: "auth", ForkPointMode: true})
	require.ErrorIs(t, err, chainerrors.ErrMergeConflict)
	require.Len(t, report.Conflicted, 1)

	_, inProgress, err := cascade.LoadState(ctx, s.Repo)
	require.NoError(t, err)
	require.False(t, inProgress, "merge cascade state is not resumable")

	require.NoError(t, s.Scene.Repo.RunGitCommand("merge", "--abort"))
}

func TestMergeCascadeReturnsToOriginalBranch(t *testing.T) {
	s := scenario.NewScenario(t, testhelpers.BasicSceneSetup).
		WithChain("auth", "main", "feature-a")
	ctx := context.Background()

	s.Checkout("main")
	s.CommitChange("main-update", "a later commit on main")
	s.Checkout("feature-a")

	engine := cascade.NewMergeEngine(s.Repo, s.Mgr)
	_, err := engine.Run(ctx, cascade.MergeOptions{ChainName: "auth", ForkPointMode: true})
	require.NoError(t, err)

	s.ExpectBranch("feature-a")
}
