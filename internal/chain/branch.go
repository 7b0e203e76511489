package chain

import (
	"context"

	"github.com/chainctl/chain/internal/chainconfig"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/internal/gitops"
	"github.com/chainctl/chain/internal/orderkey"
)

// Branch is the in-memory representation of a chain-member branch: its config-backed record
// plus the capabilities needed to mutate it.
type Branch struct {
	Name       string
	ChainName  string
	OrderKey   orderkey.Key
	RootBranch string

	store *chainconfig.Store
	repo  gitops.Repo
}

// Manager constructs Branch and Chain values against one repository.
type Manager struct {
	Store *chainconfig.Store
	Repo  gitops.Repo
}

// NewManager builds a Manager over repo, backed by a chainconfig.Store scoped to it.
func NewManager(repo gitops.Repo) *Manager {
	return &Manager{Store: chainconfig.New(repo), Repo: repo}
}

// Load reads branchName's three config entries. If any is missing, or the underlying local
// branch no longer exists, all three are purged (self-healing) and (nil, nil) is returned — the
// caller should treat this as "not part of any chain", never as an
// error, and must not log or print anything on this path.
func (m *Manager) Load(ctx context.Context, branchName string) (*Branch, error) {
	rec, complete, err := m.Store.LoadRecord(ctx, branchName)
	if err != nil {
		return nil, err
	}
	exists, err := m.Repo.LocalBranchExists(ctx, branchName)
	if err != nil {
		return nil, err
	}
	if !complete || !exists {
		if err := m.Store.PurgeRecord(ctx, branchName); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &Branch{
		Name:       branchName,
		ChainName:  rec.ChainName,
		OrderKey:   orderkey.Key(rec.OrderKey),
		RootBranch: rec.RootBranch,
		store:      m.Store,
		repo:       m.Repo,
	}, nil
}

// resolveOrderKey implements the SortOption resolution table: First/Last look at the
// chain's current extremes, Before/After look at the named neighbour (and its predecessor or
// successor, for a true between-insert), and any generator failure or a not-yet-existing chain
// falls back to Fresh, retried until unique within the chain.
func (m *Manager) resolveOrderKey(ctx context.Context, chainName string, opt SortOption) (orderkey.Key, error) {
	members, err := m.loadChainMembers(ctx, chainName)
	if err != nil {
		return "", err
	}
	used := make(map[orderkey.Key]bool, len(members))
	for _, b := range members {
		used[b.OrderKey] = true
	}
	if len(members) == 0 {
		return orderkey.FreshNotIn(used), nil
	}

	fresh := func() orderkey.Key { return orderkey.FreshNotIn(used) }

	switch opt.Kind {
	case SortFirst:
		if k, ok := orderkey.Before(members[0].OrderKey); ok && !used[k] {
			return k, nil
		}
		return fresh(), nil
	case SortLast:
		if k, ok := orderkey.After(members[len(members)-1].OrderKey); ok && !used[k] {
			return k, nil
		}
		return fresh(), nil
	case SortBefore, SortAfter:
		idx := -1
		for i, b := range members {
			if b.Name == opt.Other {
				idx = i
				break
			}
		}
		if idx == -1 {
			// Named neighbour is not (yet) in this chain: nothing to anchor to.
			return fresh(), nil
		}
		var k orderkey.Key
		var ok bool
		if opt.Kind == SortBefore {
			if idx > 0 {
				k, ok = orderkey.Between(members[idx-1].OrderKey, members[idx].OrderKey)
			} else {
				k, ok = orderkey.Before(members[idx].OrderKey)
			}
		} else {
			if idx < len(members)-1 {
				k, ok = orderkey.Between(members[idx].OrderKey, members[idx+1].OrderKey)
			} else {
				k, ok = orderkey.After(members[idx].OrderKey)
			}
		}
		if ok && !used[k] {
			return k, nil
		}
		return fresh(), nil
	default:
		return fresh(), nil
	}
}

// loadChainMembers returns chainName's current members sorted by order key, without validating
// root_branch agreement (used internally while resolving a new member's own order key, before
// that member itself has been written).
func (m *Manager) loadChainMembers(ctx context.Context, chainName string) ([]*Branch, error) {
	all, err := m.Store.AllChainNameEntries(ctx)
	if err != nil {
		return nil, err
	}
	var members []*Branch
	for branchName, cn := range all {
		if cn != chainName {
			continue
		}
		b, err := m.Load(ctx, branchName)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		members = append(members, b)
	}
	sortBranchesByOrderKey(members)
	return members, nil
}

// Setup writes a fresh membership record for branchName in chainName rooted at rootBranch,
// placed per sortOption. Any prior record for branchName is purged first so the write starts
// from a clean slate.
func (m *Manager) Setup(ctx context.Context, chainName, rootBranch, branchName string, opt SortOption) (*Branch, error) {
	if branchName == rootBranch {
		return nil, chainerrors.BranchIsRoot(branchName)
	}
	exists, err := m.Repo.LocalBranchExists(ctx, branchName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, chainerrors.BranchNotFound(branchName)
	}
	rootExists, err := m.Repo.LocalBranchExists(ctx, rootBranch)
	if err != nil {
		return nil, err
	}
	if !rootExists {
		return nil, chainerrors.RootBranchNotFound(rootBranch)
	}

	if err := m.Store.PurgeRecord(ctx, branchName); err != nil {
		return nil, err
	}

	key, err := m.resolveOrderKey(ctx, chainName, opt)
	if err != nil {
		return nil, err
	}

	rec := chainconfig.Record{ChainName: chainName, OrderKey: string(key), RootBranch: rootBranch}
	if err := m.Store.WriteRecord(ctx, branchName, rec); err != nil {
		return nil, err
	}
	return &Branch{Name: branchName, ChainName: chainName, OrderKey: key, RootBranch: rootBranch, store: m.Store, repo: m.Repo}, nil
}

// MoveInto re-places an existing member into chainName, preserving its current root_branch.
func (m *Manager) MoveInto(ctx context.Context, branchName, chainName string, opt SortOption) (*Branch, error) {
	existing, err := m.Load(ctx, branchName)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, chainerrors.BranchNotInChain(branchName)
	}
	return m.Setup(ctx, chainName, existing.RootBranch, branchName, opt)
}

// RemoveFromChain deletes all three config entries for b, removing it from its chain.
func (b *Branch) RemoveFromChain(ctx context.Context) error {
	return b.store.PurgeRecord(ctx, b.Name)
}

// ChangeRootBranch updates only the root_branch key, leaving chain-name/chain-order untouched.
func (b *Branch) ChangeRootBranch(ctx context.Context, newRoot string) error {
	if err := b.store.Set(ctx, chainconfig.RootBranchKey(b.Name), newRoot); err != nil {
		return err
	}
	b.RootBranch = newRoot
	return nil
}

func sortBranchesByOrderKey(branches []*Branch) {
	for i := 1; i < len(branches); i++ {
		j := i
		for j > 0 && branches[j-1].OrderKey > branches[j].OrderKey {
			branches[j-1], branches[j] = branches[j], branches[j-1]
			j--
		}
	}
}
