package cascade

import (
	"context"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/internal/gitops"
)

// MergeOptions configures one MergeEngine.Run invocation.
type MergeOptions struct {
	ChainName             string
	IgnoreRoot            bool
	ForkPointMode         bool // false selects "simple" plain-merge-base ancestor resolution
	SquashedMergeHandling SquashedHandling
	MergeFlags            []string // passed through to `git merge` verbatim
}

// MergeEngine implements the cascading merge: propagate each parent's new commits into its
// child via an ordinary merge commit, preserving history. Unlike RebaseEngine, a conflict is
// fatal to the whole cascade — there is no resumable state file.
type MergeEngine struct {
	Repo gitops.Repo
	Mgr  *chain.Manager
}

// NewMergeEngine builds a MergeEngine over repo, using mgr to load/reload chains.
func NewMergeEngine(repo gitops.Repo, mgr *chain.Manager) *MergeEngine {
	return &MergeEngine{Repo: repo, Mgr: mgr}
}

// Run drives the merge cascade to completion or to the first conflict.
func (e *MergeEngine) Run(ctx context.Context, opts MergeOptions) (*Report, error) {
	c, err := checkPreconditions(ctx, e.Repo, e.Mgr, opts.ChainName)
	if err != nil {
		return nil, err
	}
	originalBranch, _, err := e.Repo.HeadBranchName(ctx)
	if err != nil {
		return nil, err
	}
	ancestors, err := computeCommonAncestors(ctx, e.Repo, c, opts.ForkPointMode)
	if err != nil {
		return nil, err
	}

	report := NewReport("merge")
	startIndex := 0
	if opts.IgnoreRoot && len(c.Branches) > 0 {
		report.recordSkipped(Pair{Parent: c.RootBranch, Child: c.Branches[0].Name})
		startIndex = 1
	}

	for i := startIndex; i < len(c.Branches); i++ {
		parent := parentOf(c, i)
		child := c.Branches[i].Name
		ancestor := ancestors[i]
		pair := Pair{Parent: parent, Child: child}

		squashed, err := detectSquashMerged(ctx, e.Repo, child, ancestor, parent)
		if err != nil {
			return report, err
		}
		if squashed {
			switch opts.SquashedMergeHandling {
			case SquashedReset:
				if err := e.resetSquashed(ctx, c.Name, child, parent); err != nil {
					return report, err
				}
				report.recordSquashed(pair)
				continue
			case SquashedSkip:
				report.recordSkipped(pair)
				continue
			case SquashedRebase:
				// "Merge" handling for MergeEngine: fall through to the ordinary merge below.
			}
		}

		if err := e.Repo.Checkout(ctx, child); err != nil {
			return report, err
		}
		outcome, vcsMessage, err := e.Repo.RunMerge(ctx, parent, opts.MergeFlags)
		if err != nil && outcome != gitops.MergeConflictOutcome {
			return report, err
		}
		if outcome == gitops.MergeConflictOutcome {
			report.recordConflict(pair)
			_ = e.returnToOriginal(ctx, originalBranch)
			return report, chainerrors.MergeConflict(child, parent, vcsMessage)
		}
		if outcome == gitops.MergeUpToDate {
			report.recordSkipped(pair)
			continue
		}
		report.recordSuccess(pair)
	}

	if err := e.returnToOriginal(ctx, originalBranch); err != nil {
		return report, err
	}
	return report, nil
}

func (e *MergeEngine) resetSquashed(ctx context.Context, chainName, child, parent string) error {
	backupCommit, err := e.Repo.ResolveCommit(ctx, child)
	if err != nil {
		return err
	}
	if err := e.Repo.ForceBranch(ctx, chain.BackupBranchName(chainName, child), backupCommit); err != nil {
		return err
	}
	parentCommit, err := e.Repo.ResolveCommit(ctx, parent)
	if err != nil {
		return err
	}
	return e.Repo.ForceBranch(ctx, child, parentCommit)
}

func (e *MergeEngine) returnToOriginal(ctx context.Context, originalBranch string) error {
	if originalBranch == "" {
		return nil
	}
	current, ok, err := e.Repo.HeadBranchName(ctx)
	if err != nil {
		return err
	}
	if ok && current == originalBranch {
		return nil
	}
	return e.Repo.Checkout(ctx, originalBranch)
}
