package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chainctl/chain/internal/cli/common"
	"github.com/chainctl/chain/internal/githubpr"
	"github.com/chainctl/chain/internal/runtime"
)

func newStatusCmd() *cobra.Command {
	var showPR bool

	cmd := &cobra.Command{
		Use:           "status [branch]",
		Short:         "Show a branch's chain, position, and neighbours",
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
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not part of any chain\n", colorBranch(branchName))
					return nil
				}
				c, err := ctx.Mgr.Get(ctx.Context, b.ChainName)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s is on chain %s\n", colorBranch(branchName), colorBranch(c.Name))
				return renderChainMembers(ctx, out, c, showPR)
			})
		},
	}

	cmd.Flags().BoolVar(&showPR, "pr", false, "include each member's pull request status, if GITHUB_TOKEN is set")
	return cmd
}

// printPRStatus best-effort looks up branch's pull request; it never fails the command, since PR
// status is supplementary, an optional feature.
func printPRStatus(ctx *runtime.Context, out io.Writer, branch string) {
	owner, repo, client, ok := resolvePRClient(ctx)
	if !ok {
		return
	}
	pr, found, err := client.GetByBranch(ctx.Context, branch)
	if err != nil || !found {
		fmt.Fprintf(out, "  pr: none found (%s/%s)\n", owner, repo)
		return
	}
	fmt.Fprintf(out, "  pr: #%d %s (%s)\n", pr.Number, pr.Title, pr.State)
}

func resolvePRClient(ctx *runtime.Context) (owner, repo string, client githubpr.Client, ok bool) {
	remoteURL, has, err := ctx.Repo.ConfigGet(ctx.Context, "remote.origin.url")
	if err != nil || !has {
		return "", "", nil, false
	}
	owner, repo, ok = githubpr.ParseOwnerRepo(remoteURL)
	if !ok {
		return "", "", nil, false
	}
	client, ok = githubpr.NewFromEnv(ctx.Context, owner, repo)
	return owner, repo, client, ok
}
