package cascade

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/chainctl/chain/internal/gitops"
)

// stateFileName is part of the on-disk contract; it must not change.
const stateFileName = "chain-rebase-state.json"

// SquashedHandling selects what a cascade does when it detects a branch already squash-merged
// into its parent.
type SquashedHandling int

const (
	SquashedReset SquashedHandling = iota
	SquashedSkip
	SquashedRebase // MergeEngine's equivalent third option is "Merge"; same ordinal reused.
)

// ParseSquashedHandling maps a CLI flag value to a SquashedHandling.
func ParseSquashedHandling(s string) (SquashedHandling, bool) {
	switch s {
	case "reset", "":
		return SquashedReset, true
	case "skip":
		return SquashedSkip, true
	case "rebase", "merge":
		return SquashedRebase, true
	default:
		return SquashedReset, false
	}
}

// State is the persisted record of an interrupted cascade rebase.
type State struct {
	ChainName             string           `json:"chain_name"`
	OriginalBranch        string           `json:"original_branch"`
	BranchIndex           int              `json:"branch_index"`
	IgnoreRoot            bool             `json:"ignore_root"`
	SquashedMergeHandling SquashedHandling `json:"squashed_merge_handling"`
	CommonAncestors       []string         `json:"common_ancestors"`
}

func statePath(ctx context.Context, repo gitops.Repo) (string, error) {
	dir, err := repo.PrivateDirPath(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// LoadState reads the persisted cascade state, if any. ok=false with a nil error means no
// cascade is in progress — this is not an error condition.
func LoadState(ctx context.Context, repo gitops.Repo) (state *State, ok bool, err error) {
	path, err := statePath(ctx, repo)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

// SaveState pretty-prints and atomically writes state to the fixed path.
func SaveState(ctx context.Context, repo gitops.Repo, state *State) error {
	path, err := statePath(ctx, repo)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ClearState deletes the persisted cascade state, if any.
func ClearState(ctx context.Context, repo gitops.Repo) error {
	path, err := statePath(ctx, repo)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
