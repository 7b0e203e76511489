package chain

import (
	"context"
	"fmt"
	"sort"

	"github.com/chainctl/chain/internal/chainerrors"
)

// Chain is the in-memory aggregate over every Branch sharing a chain name.
type Chain struct {
	Name       string
	RootBranch string
	Branches   []*Branch

	mgr *Manager
}

// All scans every branch.*.chain-name entry, groups by chain name, and returns one Chain per
// group, sorted by name. Each chain's members are validated the same way Get validates them.
func (m *Manager) All(ctx context.Context) ([]*Chain, error) {
	all, err := m.Store.AllChainNameEntries(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(all))
	for _, chainName := range all {
		names[chainName] = true
	}
	sortedNames := make([]string, 0, len(names))
	for n := range names {
		sortedNames = append(sortedNames, n)
	}
	sort.Strings(sortedNames)

	chains := make([]*Chain, 0, len(sortedNames))
	for _, n := range sortedNames {
		c, err := m.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	return chains, nil
}

// Get loads every member of chainName, sorted ascending by order key. It fails loudly
// (chainerrors.Internal) if members disagree on root_branch — a torn multi-branch write is
// evidence of the same class of problem Branch.Load already self-heals at the single-branch
// level, so here it is surfaced rather than silently guessed at (an open question, resolved
// toward validate-and-reject).
func (m *Manager) Get(ctx context.Context, chainName string) (*Chain, error) {
	members, err := m.loadChainMembers(ctx, chainName)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, chainerrors.ChainNotFound(chainName)
	}
	root := members[0].RootBranch
	for _, b := range members[1:] {
		if b.RootBranch != root {
			return nil, chainerrors.Internal(
				"chain %q members disagree on root branch: %q has %q, %q has %q",
				chainName, members[0].Name, root, b.Name, b.RootBranch)
		}
	}
	return &Chain{Name: chainName, RootBranch: root, Branches: members, mgr: m}, nil
}

// Exists reports whether chainName has at least one member.
func (m *Manager) Exists(ctx context.Context, chainName string) (bool, error) {
	members, err := m.loadChainMembers(ctx, chainName)
	if err != nil {
		return false, err
	}
	return len(members) > 0, nil
}

// Before returns the member immediately preceding b in chain order, or nil at the boundary.
func (c *Chain) Before(b *Branch) *Branch {
	for i, m := range c.Branches {
		if m.Name == b.Name {
			if i == 0 {
				return nil
			}
			return c.Branches[i-1]
		}
	}
	return nil
}

// After returns the member immediately following b in chain order, or nil at the boundary.
func (c *Chain) After(b *Branch) *Branch {
	for i, m := range c.Branches {
		if m.Name == b.Name {
			if i == len(c.Branches)-1 {
				return nil
			}
			return c.Branches[i+1]
		}
	}
	return nil
}

// ChangeRootBranch applies newRoot to every member. newRoot must not itself be a chain member.
func (c *Chain) ChangeRootBranch(ctx context.Context, newRoot string) error {
	for _, b := range c.Branches {
		if b.Name == newRoot {
			return chainerrors.BranchIsRoot(newRoot)
		}
	}
	for _, b := range c.Branches {
		if err := b.ChangeRootBranch(ctx, newRoot); err != nil {
			return err
		}
	}
	c.RootBranch = newRoot
	return nil
}

// Delete removes every member's membership record; the chain ceases to exist.
func (c *Chain) Delete(ctx context.Context) error {
	for _, b := range c.Branches {
		if err := b.RemoveFromChain(ctx); err != nil {
			return err
		}
	}
	c.Branches = nil
	return nil
}

// Rename reassigns every member to newName. Per the source this is implemented as a
// "resetup Last" of each member in current sorted order, which regenerates every order key
// rather than only rewriting the chain-name column (kept as-is for source
// fidelity, at the cost of larger config diffs than the minimal alternative would produce).
func (c *Chain) Rename(ctx context.Context, newName string) error {
	exists, err := c.mgr.Exists(ctx, newName)
	if err != nil {
		return err
	}
	if exists {
		return chainerrors.ChainAlreadyExists(newName)
	}
	root := c.RootBranch
	renamed := make([]*Branch, 0, len(c.Branches))
	for _, b := range c.Branches {
		nb, err := c.mgr.Setup(ctx, newName, root, b.Name, Last())
		if err != nil {
			return err
		}
		renamed = append(renamed, nb)
	}
	c.Name = newName
	c.Branches = renamed
	return nil
}

// PruneResult is one branch removed by Prune.
type PruneResult struct {
	BranchName string
}

// Prune removes membership for every branch that is an ancestor of (or equal to) the chain's
// root branch — i.e. branches whose changes have already landed. With dryRun it only computes
// the list.
func (c *Chain) Prune(ctx context.Context, dryRun bool) ([]PruneResult, error) {
	var removed []PruneResult
	remaining := c.Branches[:0:0]
	for _, b := range c.Branches {
		integrated, err := c.isIntegrated(ctx, b)
		if err != nil {
			return nil, err
		}
		if integrated {
			removed = append(removed, PruneResult{BranchName: b.Name})
			if !dryRun {
				if err := b.RemoveFromChain(ctx); err != nil {
					return nil, err
				}
				continue
			}
		}
		remaining = append(remaining, b)
	}
	if !dryRun {
		c.Branches = remaining
	}
	return removed, nil
}

func (c *Chain) isIntegrated(ctx context.Context, b *Branch) (bool, error) {
	sameCommit, err := sameTip(ctx, c.mgr, b.Name, c.RootBranch)
	if err != nil {
		return false, err
	}
	if sameCommit {
		return true, nil
	}
	return c.mgr.Repo.IsAncestor(ctx, b.Name, c.RootBranch)
}

func sameTip(ctx context.Context, mgr *Manager, a, b string) (bool, error) {
	aheadOfA, err := mgr.Repo.IsAncestor(ctx, a, b)
	if err != nil {
		return false, err
	}
	aheadOfB, err := mgr.Repo.IsAncestor(ctx, b, a)
	if err != nil {
		return false, err
	}
	return aheadOfA && aheadOfB, nil
}

// Push delegates push-upstream to every member.
func (c *Chain) Push(ctx context.Context, force bool) error {
	for _, b := range c.Branches {
		if err := c.mgr.Repo.Push(ctx, b.Name, force); err != nil {
			return err
		}
	}
	return nil
}

// BackupBranchName returns the backup branch name for branch in chain.
func BackupBranchName(chainName, branchName string) string {
	return fmt.Sprintf("backup-%s/%s", chainName, branchName)
}

// Backup force-updates each member's backup branch to point at its current commit.
func (c *Chain) Backup(ctx context.Context) error {
	for _, b := range c.Branches {
		if err := backupBranch(ctx, c.mgr, c.Name, b.Name); err != nil {
			return err
		}
	}
	return nil
}

// backupBranch force-updates backup-<chain>/<branch> to branch's current commit, without
// switching the working tree's checkout.
func backupBranch(ctx context.Context, mgr *Manager, chainName, branchName string) error {
	commit, err := mgr.Repo.ResolveCommit(ctx, branchName)
	if err != nil {
		return err
	}
	return mgr.Repo.ForceBranch(ctx, BackupBranchName(chainName, branchName), commit)
}
