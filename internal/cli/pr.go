package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/githubpr"
	"github.com/chainctl/chain/internal/runtime"
)

func newPRCmd() *cobra.Command {
	var (
		chainName string
		draft     bool
	)

	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Create or show pull requests for a chain's members",
		Long: `Requires GITHUB_TOKEN (optional feature). For every member lacking a pull request
against its chain parent, opens a draft (or, with --draft=false, ready-for-review) PR; for
members that already have one, prints its number and state.`,
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

				owner, repo, client, ok := resolvePRClient(ctx)
				if !ok {
					return fmt.Errorf("GITHUB_TOKEN is not set, or remote.origin.url is not a GitHub remote")
				}

				out := cmd.OutOrStdout()
				for _, b := range c.Branches {
					base := c.RootBranch
					if before := c.Before(b); before != nil {
						base = before.Name
					}

					pr, found, err := client.GetByBranch(ctx.Context, b.Name)
					if err != nil {
						return err
					}
					if found {
						fmt.Fprintf(out, "%s: #%d %s (%s)\n", colorBranch(b.Name), pr.Number, pr.Title, pr.State)
						continue
					}

					created, err := client.Create(ctx.Context, githubpr.CreateOptions{
						Title: b.Name,
						Head:  b.Name,
						Base:  base,
						Draft: draft,
					})
					if err != nil {
						return fmt.Errorf("create pull request for %s against %s: %w", b.Name, base, err)
					}
					fmt.Fprintf(out, "%s: opened #%d against %s (%s/%s)\n", colorBranch(b.Name), created.Number, base, owner, repo)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chainName, "chain", "", "chain to open pull requests for (default: current branch's chain)")
	cmd.Flags().BoolVar(&draft, "draft", true, "open new pull requests as drafts")
	return cmd
}
