package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newPruneCmd() *cobra.Command {
	var (
		chainName string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:           "prune",
		Short:         "Drop chain members already landed on the root branch",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				name := chainName
				if name == "" {
					n, err := currentChainName(ctx)
					if err != nil {
						return err
					}
					name = n
				}
				c, err := ctx.Mgr.Get(ctx.Context, name)
				if err != nil {
					return err
				}
				removed, err := c.Prune(ctx.Context, dryRun)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(removed) == 0 {
					fmt.Fprintln(out, "nothing to prune")
					return nil
				}
				verb := "removed"
				if dryRun {
					verb = "would remove"
				}
				for _, r := range removed {
					fmt.Fprintf(out, "%s %s (landed on %s)\n", verb, colorBranch(r.BranchName), c.RootBranch)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to prune (default: current branch's chain)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be pruned without removing anything")
	return cmd
}
