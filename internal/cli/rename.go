package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newRenameCmd() *cobra.Command {
	var chainName string

	cmd := &cobra.Command{
		Use:           "rename <new-name>",
		Short:         "Rename a chain",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
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
				oldName := c.Name
				if err := c.Rename(ctx.Context, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed chain %s to %s\n", colorBranch(oldName), colorBranch(c.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to rename (default: current branch's chain)")
	return cmd
}
