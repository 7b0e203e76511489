package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newPushCmd() *cobra.Command {
	var (
		chainName string
		force     bool
	)

	cmd := &cobra.Command{
		Use:           "push",
		Short:         "Push every member of a chain to its upstream",
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
				if force {
					ok, err := confirm(fmt.Sprintf("force-push every branch in chain %s?", c.Name), false)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("aborted")
					}
				}
				if err := c.Push(ctx.Context, force); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pushed %d branch(es) in chain %s\n", len(c.Branches), colorBranch(c.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to push (default: current branch's chain)")
	cmd.Flags().BoolVar(&force, "force", false, "force-push every member")
	return cmd
}
