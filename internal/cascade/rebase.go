package cascade

import (
	"context"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/chainerrors"
	"github.com/chainctl/chain/internal/gitops"
)

// RebaseOptions configures one RebaseEngine.Run invocation.
type RebaseOptions struct {
	ChainName             string
	IgnoreRoot            bool
	StepRebase            bool
	SquashedMergeHandling SquashedHandling
}

// RebaseEngine implements the cascading rebase: replay each chain member onto its
// predecessor (or the chain's root, for the first member) so the whole chain re-anchors as if
// built fresh on top of current root.
type RebaseEngine struct {
	Repo gitops.Repo
	Mgr  *chain.Manager
}

// NewRebaseEngine builds a RebaseEngine over repo, using mgr to load/reload chains.
func NewRebaseEngine(repo gitops.Repo, mgr *chain.Manager) *RebaseEngine {
	return &RebaseEngine{Repo: repo, Mgr: mgr}
}

// Run drives a fresh cascade from the chain's first (or second, with IgnoreRoot) member.
func (e *RebaseEngine) Run(ctx context.Context, opts RebaseOptions) (*Report, error) {
	c, err := checkPreconditions(ctx, e.Repo, e.Mgr, opts.ChainName)
	if err != nil {
		return nil, err
	}
	originalBranch, _, err := e.Repo.HeadBranchName(ctx)
	if err != nil {
		return nil, err
	}
	ancestors, err := computeCommonAncestors(ctx, e.Repo, c, true)
	if err != nil {
		return nil, err
	}

	report := NewReport("rebase")
	startIndex := 0
	if opts.IgnoreRoot && len(c.Branches) > 0 {
		report.recordSkipped(Pair{Parent: c.RootBranch, Child: c.Branches[0].Name})
		startIndex = 1
	}

	return e.runCascade(ctx, c, ancestors, startIndex, opts, originalBranch, report)
}

// runCascade executes branches[startIndex:] in order, persisting state and returning a
// RebaseConflict error on the first conflict, or stopping early (without error) in step mode
// after the first branch whose rebase produced a commit change.
func (e *RebaseEngine) runCascade(
	ctx context.Context,
	c *chain.Chain,
	ancestors []string,
	startIndex int,
	opts RebaseOptions,
	originalBranch string,
	report *Report,
) (*Report, error) {
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
				// fall through to the ordinary rebase below
			}
		}

		beforeCommit, err := e.Repo.ResolveCommit(ctx, child)
		if err != nil {
			return report, err
		}
		outcome, err := e.Repo.RunRebase(ctx, parent, ancestor, child, true)
		if err != nil && outcome != gitops.RebaseConflictOutcome {
			return report, err
		}
		if outcome == gitops.RebaseConflictOutcome {
			state := &State{
				ChainName:             c.Name,
				OriginalBranch:        originalBranch,
				BranchIndex:           i,
				IgnoreRoot:            opts.IgnoreRoot,
				SquashedMergeHandling: opts.SquashedMergeHandling,
				CommonAncestors:       ancestors,
			}
			if saveErr := SaveState(ctx, e.Repo, state); saveErr != nil {
				return report, saveErr
			}
			report.recordConflict(pair)
			return report, chainerrors.RebaseConflict(child)
		}

		afterCommit, err := e.Repo.ResolveCommit(ctx, child)
		if err != nil {
			return report, err
		}
		if beforeCommit == afterCommit {
			report.recordSkipped(pair)
			continue
		}
		report.recordSuccess(pair)

		if opts.StepRebase {
			break
		}
	}

	if err := e.returnToOriginal(ctx, originalBranch); err != nil {
		return report, err
	}
	return report, nil
}

func (e *RebaseEngine) resetSquashed(ctx context.Context, chainName, child, parent string) error {
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

func (e *RebaseEngine) returnToOriginal(ctx context.Context, originalBranch string) error {
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

// Continue resumes a cascade interrupted by a conflict: it first asks the VCS to complete the
// in-progress rebase (the user having already resolved the conflict), then, on success, resumes
// the cascade from branch_index+1. If no cascade is in progress, returns (nil, nil) per the
// self-heal exception 3.
func (e *RebaseEngine) Continue(ctx context.Context) (*Report, error) {
	state, ok, err := LoadState(ctx, e.Repo)
	if err != nil || !ok {
		return nil, err
	}

	outcome, err := e.Repo.RebaseContinue(ctx)
	if err != nil && outcome != gitops.RebaseConflictOutcome {
		return nil, err
	}
	c, err := e.Mgr.Get(ctx, state.ChainName)
	if err != nil {
		return nil, err
	}
	report := NewReport("rebase")
	if outcome == gitops.RebaseConflictOutcome {
		report.recordConflict(Pair{Parent: parentOf(c, state.BranchIndex), Child: c.Branches[state.BranchIndex].Name})
		return report, chainerrors.RebaseConflict(c.Branches[state.BranchIndex].Name)
	}
	report.recordSuccess(Pair{Parent: parentOf(c, state.BranchIndex), Child: c.Branches[state.BranchIndex].Name})

	opts := RebaseOptions{ChainName: state.ChainName, IgnoreRoot: state.IgnoreRoot, SquashedMergeHandling: state.SquashedMergeHandling}
	result, err := e.runCascade(ctx, c, state.CommonAncestors, state.BranchIndex+1, opts, state.OriginalBranch, report)
	if err != nil {
		return result, err
	}
	return result, ClearState(ctx, e.Repo)
}

// Skip marks the branch a cascade stopped on as skipped (abandoning its in-progress rebase) and
// resumes from the next branch.
func (e *RebaseEngine) Skip(ctx context.Context) (*Report, error) {
	state, ok, err := LoadState(ctx, e.Repo)
	if err != nil || !ok {
		return nil, err
	}
	_ = e.Repo.RebaseAbort(ctx) // best effort: clear the conflicted in-progress rebase

	c, err := e.Mgr.Get(ctx, state.ChainName)
	if err != nil {
		return nil, err
	}
	report := NewReport("rebase")
	report.recordSkipped(Pair{Parent: parentOf(c, state.BranchIndex), Child: c.Branches[state.BranchIndex].Name})

	opts := RebaseOptions{ChainName: state.ChainName, IgnoreRoot: state.IgnoreRoot, SquashedMergeHandling: state.SquashedMergeHandling}
	result, err := e.runCascade(ctx, c, state.CommonAncestors, state.BranchIndex+1, opts, state.OriginalBranch, report)
	if err != nil {
		return result, err
	}
	return result, ClearState(ctx, e.Repo)
}

// Abort restores every chain member to its backup branch where one exists (best-effort: the
// engine does not unconditionally create backups before every rebase step, only on squash-merge
// Reset) and deletes the cascade state.
func (e *RebaseEngine) Abort(ctx context.Context) error {
	state, ok, err := LoadState(ctx, e.Repo)
	if err != nil || !ok {
		return err
	}
	_ = e.Repo.RebaseAbort(ctx)

	c, err := e.Mgr.Get(ctx, state.ChainName)
	if err != nil {
		return err
	}
	for _, b := range c.Branches {
		backupName := chain.BackupBranchName(state.ChainName, b.Name)
		if exists, _ := e.Repo.LocalBranchExists(ctx, backupName); exists {
			if commit, resolveErr := e.Repo.ResolveCommit(ctx, backupName); resolveErr == nil {
				_ = e.Repo.ForceBranch(ctx, b.Name, commit)
			}
		}
	}
	if state.OriginalBranch != "" {
		_ = e.Repo.Checkout(ctx, state.OriginalBranch)
	}
	return ClearState(ctx, e.Repo)
}

// Status reports the persisted cascade position without mutating anything. ok=false means no
// cascade is in progress.
func (e *RebaseEngine) Status(ctx context.Context) (*State, bool, error) {
	return LoadState(ctx, e.Repo)
}
