package chainconfig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainctl/chain/internal/chainconfig"
	"github.com/chainctl/chain/internal/gitops"
	"github.com/chainctl/chain/testhelpers"
)

func TestStoreWriteLoadPurgeRecord(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	store := chainconfig.New(gitops.NewShellRepo(scene.Dir))

	_, complete, err := store.LoadRecord(ctx, "feature-a")
	require.NoError(t, err)
	require.False(t, complete)

	rec := chainconfig.Record{ChainName: "auth", OrderKey: "m", RootBranch: "main"}
	require.NoError(t, store.WriteRecord(ctx, "feature-a", rec))

	loaded, complete, err := store.LoadRecord(ctx, "feature-a")
	require.NoError(t, err)
	require.True(t, complete)
	require.Equal(t, rec, loaded)

	require.NoError(t, store.PurgeRecord(ctx, "feature-a"))
	_, complete, err = store.LoadRecord(ctx, "feature-a")
	require.NoError(t, err)
	require.False(t, complete)
}

func TestStorePurgeRecordIsPartialTolerant(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	store := chainconfig.New(gitops.NewShellRepo(scene.Dir))

	// Only chain-name is set, simulating a torn write.
	require.NoError(t, store.Set(ctx, chainconfig.ChainNameKey("feature-a"), "auth"))

	_, complete, err := store.LoadRecord(ctx, "feature-a")
	require.NoError(t, err)
	require.False(t, complete)

	require.NoError(t, store.PurgeRecord(ctx, "feature-a"))
	_, ok, err := store.Get(ctx, chainconfig.ChainNameKey("feature-a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreAllChainNameEntries(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	ctx := context.Background()
	store := chainconfig.New(gitops.NewShellRepo(scene.Dir))

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature-a"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature-b"))

	require.NoError(t, store.WriteRecord(ctx, "feature-a", chainconfig.Record{ChainName: "auth", OrderKey: "m", RootBranch: "main"}))
	require.NoError(t, store.WriteRecord(ctx, "feature-b", chainconfig.Record{ChainName: "billing", OrderKey: "m", RootBranch: "main"}))

	entries, err := store.AllChainNameEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"feature-a": "auth", "feature-b": "billing"}, entries)
}
