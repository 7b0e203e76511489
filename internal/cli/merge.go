package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cascade"
	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/runtime"
)

func newMergeCmd() *cobra.Command {
	var (
		chainName   string
		ignoreRoot  bool
		simple      bool
		squashedRaw string
		mergeFlags  string
		detailed    bool
	)

	cmd := &cobra.Command{
		Use:           "merge",
		Short:         "Cascade-merge a chain's parent changes down through its children",
		Long: `Propagates each member's new commits into its child via an ordinary merge commit,
preserving history. Unlike "chain rebase", a conflict aborts the whole cascade; there is no
--continue/--abort/--skip for merge.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
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

				var flags []string
				if mergeFlags != "" {
					flags = strings.Fields(mergeFlags)
				}

				engine := cascade.NewMergeEngine(ctx.Repo, ctx.Mgr)
				report, err := engine.Run(ctx.Context, cascade.MergeOptions{
					ChainName:             name,
					IgnoreRoot:            ignoreRoot,
					ForkPointMode:         !simple,
					SquashedMergeHandling: handling,
					MergeFlags:            flags,
				})
				return renderCascade(cmd, ctx, report, err, detailed)
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to merge (default: current branch's chain)")
	cmd.Flags().BoolVar(&ignoreRoot, "ignore-root", false, "skip merging the root into the chain's first member")
	cmd.Flags().BoolVar(&simple, "simple", false, "use plain merge-base ancestor resolution instead of fork-point detection")
	cmd.Flags().StringVar(&squashedRaw, "squashed-merge", "reset", "how to handle a branch already squash-merged into its parent: reset, skip, or rebase")
	cmd.Flags().StringVar(&mergeFlags, "merge-flags", "", "extra flags passed through to git merge, space separated")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include per-commit stats in the report")
	return cmd
}
