package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newInitCmd() *cobra.Command {
	var rootBranch string

	cmd := &cobra.Command{
		Use:   "init <chain-name> [branch]",
		Short: "Start a new chain rooted at a trunk branch",
		Long: `Creates a new chain named <chain-name> rooted at --root (or the current branch if
--root is omitted). If [branch] is given it becomes the chain's first member. A chain exists
only while it has at least one member, so without [branch] nothing is recorded and the chain
is not visible to "chain add --chain" or any other command.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				chainName := args[0]

				root := rootBranch
				if root == "" {
					current, ok, err := ctx.Repo.HeadBranchName(ctx.Context)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("--root is required when HEAD is not on a branch")
					}
					root = current
				}

				exists, err := ctx.Mgr.Exists(ctx.Context, chainName)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("chain %q already exists", chainName)
				}

				if len(args) == 2 {
					branchName := args[1]
					if _, err := ctx.Mgr.Setup(ctx.Context, chainName, root, branchName, chain.Last()); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "initialized chain %s (root %s, member %s)\n",
						colorBranch(chainName), colorBranch(root), colorBranch(branchName))
					return nil
				}

				fmt.Fprintf(cmd.OutOrStdout(), "initialized chain %s (root %s, no members yet)\n",
					colorBranch(chainName), colorBranch(root))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rootBranch, "root", "", "trunk branch the chain is rooted at (default: current branch)")
	return cmd
}
