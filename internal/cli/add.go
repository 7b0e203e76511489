package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/chain"
	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newAddCmd() *cobra.Command {
	var (
		chainName string
		first     bool
		before    string
		after     string
	)

	cmd := &cobra.Command{
		Use:   "add <branch>",
		Short: "Add a branch to a chain",
		Long: `Adds <branch> to --chain (or the chain of the current branch if --chain is
omitted), placed last by default. --first, --before, and --after control placement instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				branchName := args[0]

				targetChain := chainName
				var rootBranch string
				if targetChain == "" {
					current, ok, err := ctx.Repo.HeadBranchName(ctx.Context)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("--chain is required when HEAD is not on a branch")
					}
					b, err := ctx.Mgr.Load(ctx.Context, current)
					if err != nil {
						return err
					}
					if b == nil {
						return fmt.Errorf("current branch %q is not part of any chain; pass --chain", current)
					}
					targetChain = b.ChainName
					rootBranch = b.RootBranch
				} else {
					c, err := ctx.Mgr.Get(ctx.Context, targetChain)
					if err != nil {
						return err
					}
					rootBranch = c.RootBranch
				}

				opt := chain.Last()
				switch {
				case first:
					opt = chain.First()
				case before != "":
					opt = chain.BeforeBranch(before)
				case after != "":
					opt = chain.AfterBranch(after)
				}

				if _, err := ctx.Mgr.Setup(ctx.Context, targetChain, rootBranch, branchName, opt); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s to chain %s\n", colorBranch(branchName), colorBranch(targetChain))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to add to (default: current branch's chain)")
	cmd.Flags().BoolVar(&first, "first", false, "place the branch first in the chain")
	cmd.Flags().StringVar(&before, "before", "", "place the branch immediately before this member")
	cmd.Flags().StringVar(&after, "after", "", "place the branch immediately after this member")
	return cmd
}
