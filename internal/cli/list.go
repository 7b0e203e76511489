package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newListCmd() *cobra.Command {
	var showPR bool

	cmd := &cobra.Command{
		Use:           "list",
		Aliases:       []string{"ls"},
		Short:         "List every chain and its members",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				chains, err := ctx.Mgr.All(ctx.Context)
				if err != nil {
					return err
				}
				if len(chains) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no chains")
					return nil
				}
				out := cmd.OutOrStdout()
				for i, c := range chains {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "chain %s\n", colorBranch(c.Name))
					if err := renderChainMembers(ctx, out, c, showPR); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showPR, "pr", false, "include each branch's pull request status, if GITHUB_TOKEN is set")
	return cmd
}
