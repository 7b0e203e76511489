package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newBackupCmd() *cobra.Command {
	var chainName string

	cmd := &cobra.Command{
		Use:           "backup",
		Short:         "Force-update every member's backup branch to its current commit",
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
				if err := c.Backup(ctx.Context); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "backed up %d branch(es) in chain %s\n", len(c.Branches), colorBranch(c.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to back up (default: current branch's chain)")
	return cmd
}
