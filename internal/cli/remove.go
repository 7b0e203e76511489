package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove [branch]",
		Short:         "Remove a branch from its chain",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				branchName, err := resolveBranchArg(ctx, args)
				if err != nil {
					return err
				}
				b, err := ctx.Mgr.Load(ctx.Context, branchName)
				if err != nil {
					return err
				}
				if b == nil {
					return fmt.Errorf("branch %q is not part of any chain", branchName)
				}
				if err := b.RemoveFromChain(ctx.Context); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s from chain %s\n", colorBranch(branchName), colorBranch(b.ChainName))
				return nil
			})
		},
	}
	return cmd
}

// resolveBranchArg returns args[0] if given, otherwise the current branch.
func resolveBranchArg(ctx *runtime.Context, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	current, ok, err := ctx.Repo.HeadBranchName(ctx.Context)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("HEAD is not on a branch; pass a branch name")
	}
	return current, nil
}
