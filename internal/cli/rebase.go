package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cascade"
	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newRebaseCmd() *cobra.Command {
	var (
		chainName   string
		ignoreRoot  bool
		step        bool
		squashedRaw string
		doContinue  bool
		doAbort     bool
		doSkip      bool
		doStatus    bool
		detailed    bool
	)

	cmd := &cobra.Command{
		Use:           "rebase",
		Short:         "Cascade-rebase a chain onto its current root",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				engine := cascade.NewRebaseEngine(ctx.Repo, ctx.Mgr)

				switch {
				case doStatus:
					state, ok, err := engine.Status(ctx.Context)
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "no rebase cascade in progress")
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "rebase cascade in progress: chain %s, stopped at branch index %d\n",
						colorBranch(state.ChainName), state.BranchIndex)
					return nil
				case doContinue:
					report, err := engine.Continue(ctx.Context)
					return renderCascade(cmd, ctx, report, err, detailed)
				case doAbort:
					if err := engine.Abort(ctx.Context); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "rebase cascade aborted")
					return nil
				case doSkip:
					report, err := engine.Skip(ctx.Context)
					return renderCascade(cmd, ctx, report, err, detailed)
				}

				handling, ok := cascade.ParseSquashedHandling(squashedRaw)
				if !ok {
					return fmt.Errorf("invalid --squashed-merge value %q (want reset, skip, or rebase)", squashedRaw)
				}

				name := chainName
				if name == "" {
					n, err := currentChainName(ctx)
					if err != nil {
						return err
					}
					name = n
				}

				report, err := engine.Run(ctx.Context, cascade.RebaseOptions{
					ChainName:             name,
					IgnoreRoot:            ignoreRoot,
					StepRebase:            step,
					SquashedMergeHandling: handling,
				})
				return renderCascade(cmd, ctx, report, err, detailed)
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to rebase (default: current branch's chain)")
	cmd.Flags().BoolVar(&ignoreRoot, "ignore-root", false, "skip rebasing the chain's first member onto the root")
	cmd.Flags().BoolVar(&step, "step", false, "stop after the first branch whose rebase actually moved it")
	cmd.Flags().StringVar(&squashedRaw, "squashed-merge", "reset", "how to handle a branch already squash-merged into its parent: reset, skip, or rebase")
	cmd.Flags().BoolVar(&doContinue, "continue", false, "resume a cascade interrupted by a conflict")
	cmd.Flags().BoolVar(&doAbort, "abort", false, "abandon an in-progress cascade and restore whatever backup branches exist")
	cmd.Flags().BoolVar(&doSkip, "skip", false, "skip the branch a cascade stopped on and resume")
	cmd.Flags().BoolVar(&doStatus, "status", false, "show the in-progress cascade's position, if any")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include per-commit stats in the report")
	return cmd
}

// currentChainName resolves the chain of the current branch, erroring if HEAD isn't on one.
func currentChainName(ctx *runtime.Context) (string, error) {
	current, ok, err := ctx.Repo.HeadBranchName(ctx.Context)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("--chain is required when HEAD is not on a branch")
	}
	b, err := ctx.Mgr.Load(ctx.Context, current)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", fmt.Errorf("current branch %q is not part of any chain; pass --chain", current)
	}
	return b.ChainName, nil
}

// renderCascade prints report (if any) regardless of err, since a conflict both produces a
// partial report and returns a non-nil error (chainerrors.RebaseConflict/MergeConflict).
func renderCascade(cmd *cobra.Command, ctx *runtime.Context, report *cascade.Report, err error, detailed bool) error {
	if report != nil {
		level := cascade.RenderStandard
		if detailed {
			level = cascade.RenderDetailed
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Render(ctx.Context, level, ctx.Repo, nil))
	}
	return err
}
