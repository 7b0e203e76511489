// Package chainconfig provides a typed, regex-scannable view over the three per-branch git
// config entries that record chain membership: branch.<name>.chain-name, branch.<name>.chain-
// order and branch.<name>.root-branch. It treats the host repository's own config store as the
// system of record, relying on git's documented contract that branch.<name>.* entries are
// purged when branch <name> is deleted.
package chainconfig

import (
	"context"
	"fmt"
	"regexp"

	"github.com/chainctl/chain/internal/gitops"
)

const (
	keyChainName  = "chain-name"
	keyChainOrder = "chain-order"
	keyRootBranch = "root-branch"
)

// branchKeyPattern recovers the branch name from a branch.<name>.chain-name config key. Branch
// names may themselves contain '.' and '/', so the capture is greedy up to the literal suffix.
var branchKeyPattern = regexp.MustCompile(`^branch\.(.+)\.chain-name$`)

// Store is a thin typed reader/writer over a Repo's config entries, scoped to one repository.
type Store struct {
	repo gitops.Repo
}

// New builds a Store over repo.
func New(repo gitops.Repo) *Store {
	return &Store{repo: repo}
}

func branchKey(branch, suffix string) string {
	return fmt.Sprintf("branch.%s.%s", branch, suffix)
}

// Get returns the value at key, or ok=false if unset. Missing is not an error.
func (s *Store) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	return s.repo.ConfigGet(ctx, key)
}

// Set upserts key to value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.repo.ConfigSet(ctx, key, value)
}

// Delete removes key. Idempotent: deleting an absent key is success.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.repo.ConfigDelete(ctx, key)
}

// EntriesMatching scans all local config entries whose key matches keyRegex.
func (s *Store) EntriesMatching(ctx context.Context, keyRegex string) ([]gitops.ConfigEntry, error) {
	return s.repo.ConfigScan(ctx, keyRegex)
}

// ChainNameKey, ChainOrderKey, RootBranchKey build the three qualified config keys for branch.
func ChainNameKey(branch string) string  { return branchKey(branch, keyChainName) }
func ChainOrderKey(branch string) string { return branchKey(branch, keyChainOrder) }
func RootBranchKey(branch string) string { return branchKey(branch, keyRootBranch) }

// Record is the three raw config values for one branch's chain membership.
type Record struct {
	ChainName  string
	OrderKey   string
	RootBranch string
}

// LoadRecord reads all three config entries for branch. complete reports whether all three were
// present; if not, the caller (Manager.Load) is responsible for purging whichever subset exists.
func (s *Store) LoadRecord(ctx context.Context, branch string) (rec Record, complete bool, err error) {
	chainName, ok1, err := s.Get(ctx, ChainNameKey(branch))
	if err != nil {
		return Record{}, false, err
	}
	orderKey, ok2, err := s.Get(ctx, ChainOrderKey(branch))
	if err != nil {
		return Record{}, false, err
	}
	rootBranch, ok3, err := s.Get(ctx, RootBranchKey(branch))
	if err != nil {
		return Record{}, false, err
	}
	if !ok1 || !ok2 || !ok3 {
		return Record{}, false, nil
	}
	return Record{ChainName: chainName, OrderKey: orderKey, RootBranch: rootBranch}, true, nil
}

// PurgeRecord deletes all three config entries for branch, regardless of which are present.
func (s *Store) PurgeRecord(ctx context.Context, branch string) error {
	if err := s.Delete(ctx, ChainNameKey(branch)); err != nil {
		return err
	}
	if err := s.Delete(ctx, ChainOrderKey(branch)); err != nil {
		return err
	}
	return s.Delete(ctx, RootBranchKey(branch))
}

// WriteRecord upserts all three config entries for branch.
func (s *Store) WriteRecord(ctx context.Context, branch string, rec Record) error {
	if err := s.Set(ctx, ChainNameKey(branch), rec.ChainName); err != nil {
		return err
	}
	if err := s.Set(ctx, ChainOrderKey(branch), rec.OrderKey); err != nil {
		return err
	}
	return s.Set(ctx, RootBranchKey(branch), rec.RootBranch)
}

// AllChainNameEntries scans every branch.<name>.chain-name entry and returns the branch name
// alongside each one, per the chain-name/chain-order/root-branch key convention.
func (s *Store) AllChainNameEntries(ctx context.Context) (map[string]string, error) {
	entries, err := s.EntriesMatching(ctx, `^branch\..*\.chain-name$`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		m := branchKeyPattern.FindStringSubmatch(e.Key)
		if m == nil {
			continue
		}
		out[m[1]] = e.Value
	}
	return out, nil
}
